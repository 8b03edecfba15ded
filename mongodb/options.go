package mongodb

import (
	"fmt"
	"time"

	"github.com/gocrud/inject/config"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultName 默认客户端名称，该客户端同时按类型 *mongo.Client 提供
const DefaultName = "default"

// Options MongoDB 客户端配置选项
type Options struct {
	Name        string          `yaml:"-" json:"-"`
	URI         string          `yaml:"uri" json:"uri"`
	Username    string          `yaml:"username" json:"username"`
	Password    string          `yaml:"password" json:"password"`
	MaxPoolSize uint64          `yaml:"maxPoolSize" json:"maxPoolSize"`
	MinPoolSize uint64          `yaml:"minPoolSize" json:"minPoolSize"`
	Timeout     config.Duration `yaml:"timeout" json:"timeout"`
	Ping        bool            `yaml:"ping" json:"ping"` // 为 true 时托管服务启动时检测连接
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name, uri string) *Options {
	return &Options{
		Name:        name,
		URI:         uri,
		MaxPoolSize: 100,
		MinPoolSize: 5,
		Timeout:     config.Duration(10 * time.Second),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("mongo client name is required")
	}
	if o.URI == "" {
		return fmt.Errorf("mongo uri is required")
	}
	if o.MinPoolSize > o.MaxPoolSize && o.MaxPoolSize > 0 {
		return fmt.Errorf("mongo minPoolSize %d exceeds maxPoolSize %d", o.MinPoolSize, o.MaxPoolSize)
	}
	return nil
}

func (o *Options) client() *options.ClientOptions {
	clientOpts := options.Client().ApplyURI(o.URI)
	if o.Username != "" || o.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: o.Username,
			Password: o.Password,
		})
	}
	if o.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(o.MinPoolSize)
	}
	if o.Timeout > 0 {
		clientOpts.SetConnectTimeout(o.Timeout.Std())
	}
	return clientOpts
}
