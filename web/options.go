package web

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/config"
)

// Options Web 主机配置选项
type Options struct {
	Addr         string          `yaml:"addr" json:"addr"`                 // 监听地址，如 ":8080"
	Mode         string          `yaml:"mode" json:"mode"`                 // Gin 模式：debug / release / test
	ReadTimeout  config.Duration `yaml:"readTimeout" json:"readTimeout"`   // 读取超时时间
	WriteTimeout config.Duration `yaml:"writeTimeout" json:"writeTimeout"` // 写入超时时间
	// Diagnostics 为 true 时挂载 /debug/inject 与 /metrics
	Diagnostics bool `yaml:"diagnostics" json:"diagnostics"`
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		Addr:         ":8080",
		Mode:         gin.ReleaseMode,
		ReadTimeout:  config.Duration(30 * time.Second),
		WriteTimeout: config.Duration(30 * time.Second),
	}
}

// Validate 验证配置
func (o Options) Validate() error {
	if o.Addr == "" {
		return fmt.Errorf("web address is required")
	}
	switch o.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("web mode '%s' is not one of debug, release, test", o.Mode)
	}
	if o.ReadTimeout < 0 || o.WriteTimeout < 0 {
		return fmt.Errorf("web timeouts must be non-negative")
	}
	return nil
}
