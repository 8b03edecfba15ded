package database

import (
	"fmt"
	"time"

	"github.com/gocrud/inject/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultName 默认数据库实例名称，该实例同时按类型 *gorm.DB 提供
const DefaultName = "default"

// Options 数据库配置选项
type Options struct {
	Name         string          `yaml:"-" json:"-"`
	DSN          string          `yaml:"dsn" json:"dsn"`
	MaxIdleConns int             `yaml:"maxIdleConns" json:"maxIdleConns"`
	MaxOpenConns int             `yaml:"maxOpenConns" json:"maxOpenConns"`
	MaxLifetime  config.Duration `yaml:"maxLifetime" json:"maxLifetime"` // 连接最大存活时间，例如 "1h"

	// Dialector 为空时按 DSN 打开 sqlite
	Dialector   gorm.Dialector `yaml:"-" json:"-"`
	GormConfig  *gorm.Config   `yaml:"-" json:"-"`
	AutoMigrate []any          `yaml:"-" json:"-"` // 需要自动迁移的模型
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *Options {
	return &Options{
		Name:         name,
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		MaxLifetime:  config.Duration(time.Hour),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if o.Dialector == nil && o.DSN == "" {
		return fmt.Errorf("database dsn or dialector is required")
	}
	if o.MaxIdleConns < 0 || o.MaxOpenConns < 0 {
		return fmt.Errorf("database pool sizes must be non-negative")
	}
	if o.MaxLifetime < 0 {
		return fmt.Errorf("database maxLifetime must be non-negative")
	}
	return nil
}

func (o *Options) dialector() gorm.Dialector {
	if o.Dialector != nil {
		return o.Dialector
	}
	return sqlite.Open(o.DSN)
}
