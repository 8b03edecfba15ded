package cron

import (
	"fmt"
	"time"
)

// Options Cron 调度配置选项
type Options struct {
	// Location 时区设置，默认 UTC
	Location string `yaml:"location" json:"location"`
	// Seconds 是否启用秒级精度（默认分钟级）
	Seconds bool `yaml:"seconds" json:"seconds"`
	// Verbose 是否启用 cron 库的内部调度日志
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{Location: "UTC"}
}

// Validate 验证配置
func (o Options) Validate() error {
	if _, err := o.location(); err != nil {
		return err
	}
	return nil
}

func (o Options) location() (*time.Location, error) {
	if o.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(o.Location)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid location %q: %w", o.Location, err)
	}
	return loc, nil
}
