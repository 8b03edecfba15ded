package redis

import (
	"fmt"
	"time"

	"github.com/gocrud/inject/config"
	"github.com/redis/go-redis/v9"
)

// DefaultName 默认客户端名称，该客户端同时按类型 *redis.Client 提供
const DefaultName = "default"

// Options Redis 客户端配置选项
type Options struct {
	Name         string          `yaml:"-" json:"-"`
	Addr         string          `yaml:"addr" json:"addr"`                 // Redis 服务器地址 (host:port)
	Password     string          `yaml:"password" json:"password"`         // 密码（可选）
	DB           int             `yaml:"db" json:"db"`                     // 数据库编号
	DialTimeout  config.Duration `yaml:"dialTimeout" json:"dialTimeout"`   // 连接超时时间
	ReadTimeout  config.Duration `yaml:"readTimeout" json:"readTimeout"`   // 读取超时时间
	WriteTimeout config.Duration `yaml:"writeTimeout" json:"writeTimeout"` // 写入超时时间
	PoolSize     int             `yaml:"poolSize" json:"poolSize"`         // 连接池大小
	MinIdleConns int             `yaml:"minIdleConns" json:"minIdleConns"` // 最小空闲连接数
	MaxRetries   int             `yaml:"maxRetries" json:"maxRetries"`     // 最大重试次数
	Ping         bool            `yaml:"ping" json:"ping"`                 // 为 true 时托管服务启动时检测连接
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *Options {
	return &Options{
		Name:         name,
		Addr:         "localhost:6379",
		DialTimeout:  config.Duration(5 * time.Second),
		ReadTimeout:  config.Duration(3 * time.Second),
		WriteTimeout: config.Duration(3 * time.Second),
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("redis client name is required")
	}
	if o.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if o.DB < 0 {
		return fmt.Errorf("redis database number must be non-negative")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("redis dial timeout must be positive")
	}
	return nil
}

func (o *Options) client() *redis.Options {
	return &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.DialTimeout.Std(),
		ReadTimeout:  o.ReadTimeout.Std(),
		WriteTimeout: o.WriteTimeout.Std(),
		PoolSize:     o.PoolSize,
		MinIdleConns: o.MinIdleConns,
		MaxRetries:   o.MaxRetries,
	}
}
