package etcd

import (
	"fmt"
	"time"

	"github.com/gocrud/inject/config"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultName 默认客户端名称，该客户端同时按类型 *clientv3.Client 提供
const DefaultName = "default"

// Options etcd 客户端配置选项
type Options struct {
	Name               string          `yaml:"-" json:"-"`
	Endpoints          []string        `yaml:"endpoints" json:"endpoints"`
	DialTimeout        config.Duration `yaml:"dialTimeout" json:"dialTimeout"`
	Username           string          `yaml:"username" json:"username"`
	Password           string          `yaml:"password" json:"password"`
	AutoSyncInterval   config.Duration `yaml:"autoSyncInterval" json:"autoSyncInterval"`
	MaxCallSendMsgSize int             `yaml:"maxCallSendMsgSize" json:"maxCallSendMsgSize"`
	MaxCallRecvMsgSize int             `yaml:"maxCallRecvMsgSize" json:"maxCallRecvMsgSize"`
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *Options {
	return &Options{
		Name:        name,
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: config.Duration(5 * time.Second),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("etcd client name is required")
	}
	if len(o.Endpoints) == 0 {
		return fmt.Errorf("etcd endpoints are required")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("etcd dial timeout must be positive")
	}
	return nil
}

func (o *Options) client() clientv3.Config {
	cfg := clientv3.Config{
		Endpoints:   o.Endpoints,
		DialTimeout: o.DialTimeout.Std(),
	}
	if o.Username != "" {
		cfg.Username = o.Username
		cfg.Password = o.Password
	}
	if o.AutoSyncInterval > 0 {
		cfg.AutoSyncInterval = o.AutoSyncInterval.Std()
	}
	if o.MaxCallSendMsgSize > 0 {
		cfg.MaxCallSendMsgSize = o.MaxCallSendMsgSize
	}
	if o.MaxCallRecvMsgSize > 0 {
		cfg.MaxCallRecvMsgSize = o.MaxCallRecvMsgSize
	}
	return cfg
}
