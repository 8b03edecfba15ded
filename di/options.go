package di

import (
	"fmt"

	"github.com/gocrud/inject/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// FactoryPolicy 两个未命名供应方法产出同一类型时的处理策略
type FactoryPolicy string

const (
	// FactoryPolicyError 在绑定阶段报告 ErrDuplicateFactory
	FactoryPolicyError FactoryPolicy = "error"
	// FactoryPolicyFirst 先声明者生效，其余记录警告后忽略
	FactoryPolicyFirst FactoryPolicy = "first"
)

// DefaultMaxDepth 默认的最大解析深度
const DefaultMaxDepth = 1024

// Settings 引擎设置（对应配置节 inject）
type Settings struct {
	FactoryPolicy FactoryPolicy `yaml:"factoryPolicy" json:"factoryPolicy"`
	MaxDepth      int           `yaml:"maxDepth" json:"maxDepth"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() Settings {
	return Settings{
		FactoryPolicy: FactoryPolicyError,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Validate 校验设置，零值字段按默认值处理
func (s Settings) Validate() error {
	switch s.FactoryPolicy {
	case "", FactoryPolicyError, FactoryPolicyFirst:
	default:
		return fmt.Errorf("di: 未知的供应方法策略 %q", s.FactoryPolicy)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("di: 最大解析深度不能为负数: %d", s.MaxDepth)
	}
	return nil
}

func (s Settings) withDefaults() Settings {
	if s.FactoryPolicy == "" {
		s.FactoryPolicy = FactoryPolicyError
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	return s
}

// Option 配置注入器
type Option func(*Injector)

// WithLogger 设置日志
func WithLogger(logger logging.Logger) Option {
	return func(inj *Injector) {
		if logger != nil {
			inj.logger = logger
		}
	}
}

// WithSettings 设置引擎参数
func WithSettings(settings Settings) Option {
	return func(inj *Injector) {
		inj.settings = settings
	}
}

// WithMetrics 将引擎指标注册到 reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(inj *Injector) {
		inj.registerer = reg
	}
}
