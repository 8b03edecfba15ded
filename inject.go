// Package inject 把配置、日志、类型目录、注入器和托管服务组装成一个可运行的应用。
//
// 示例：
//
//	b := catalog.NewBuilder()
//	catalog.Register[*OrderService](b, catalog.Singleton())
//	app, err := inject.Bootstrap(&App{}, b,
//		inject.WithConfigFile("config.yaml"),
//		inject.WithStandardSuppliers(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
package inject

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultShutdownTimeout 默认的优雅关闭超时时间
const DefaultShutdownTimeout = 5 * time.Second

// Setup 在目录构建前追加注册；cfg 与 logger 为 Bootstrap 已构建的实例
type Setup func(b *catalog.Builder, cfg config.Configuration, logger logging.Logger) error

type bootstrap struct {
	loadOptions     []config.LoadOption
	cfg             config.Configuration
	logger          logging.Logger
	registry        *prometheus.Registry
	setups          []Setup
	shutdownTimeout time.Duration
}

// Option 配置 Bootstrap
type Option func(*bootstrap)

// WithConfigFile 添加配置文件（.json 后缀按 JSON 解析），文件不存在时忽略
func WithConfigFile(path string) Option {
	return func(o *bootstrap) {
		o.loadOptions = append(o.loadOptions, config.WithFile(path, true))
	}
}

// WithEnvPrefix 设置环境变量前缀，默认 INJECT_
func WithEnvPrefix(prefix string) Option {
	return func(o *bootstrap) {
		o.loadOptions = append(o.loadOptions, config.WithEnvPrefix(prefix))
	}
}

// WithEtcdConfig 从 etcd 加载配置
func WithEtcdConfig(opts config.EtcdOptions) Option {
	return func(o *bootstrap) {
		o.loadOptions = append(o.loadOptions, config.WithEtcd(opts))
	}
}

// WithOverrides 内存覆盖配置，优先级最高
func WithOverrides(data map[string]any) Option {
	return func(o *bootstrap) {
		o.loadOptions = append(o.loadOptions, config.WithOverrides(data))
	}
}

// WithConfiguration 直接使用已构建的配置，忽略其他配置选项
func WithConfiguration(cfg config.Configuration) Option {
	return func(o *bootstrap) {
		o.cfg = cfg
	}
}

// WithLogger 直接使用 logger，忽略 logging 配置节
func WithLogger(logger logging.Logger) Option {
	return func(o *bootstrap) {
		o.logger = logger
	}
}

// WithRegistry 将引擎指标注册到 reg
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *bootstrap) {
		o.registry = reg
	}
}

// WithSetup 追加注册步骤
func WithSetup(setup Setup) Option {
	return func(o *bootstrap) {
		o.setups = append(o.setups, setup)
	}
}

// WithShutdownTimeout 设置优雅关闭超时时间
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *bootstrap) {
		o.shutdownTimeout = d
	}
}

// Bootstrap 构建配置与日志，完成目录注册并注入 root。
// b 为 nil 时使用空目录；root 的类型未注册时按默认选项注册。
func Bootstrap(root any, b *catalog.Builder, opts ...Option) (*Application, error) {
	o := &bootstrap{shutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if b == nil {
		b = catalog.NewBuilder()
	}
	if root == nil {
		return nil, di.ErrNullRoot
	}

	cfg := o.cfg
	if cfg == nil {
		var err error
		if cfg, err = config.New(o.loadOptions...); err != nil {
			return nil, fmt.Errorf("inject: load configuration: %w", err)
		}
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = newLogger(cfg); err != nil {
			return nil, fmt.Errorf("inject: build logger: %w", err)
		}
	}

	settings, err := config.LoadOr(cfg, "inject", di.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("inject: bind settings: %w", err)
	}

	registerRuntime(b, cfg, logger)
	var errs []error
	for _, setup := range o.setups {
		if err := setup(b, cfg, logger); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("inject: setup: %w", err)
	}

	if t := reflect.TypeOf(root); t != nil {
		if _, ok := b.Lookup(t); !ok {
			desc, err := catalog.Describe(t)
			if err != nil {
				return nil, fmt.Errorf("inject: describe root: %w", err)
			}
			b.Add(desc)
		}
	}

	c, err := b.Build()
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{di.WithLogger(logger), di.WithSettings(settings)}
	if o.registry != nil {
		diOpts = append(diOpts, di.WithMetrics(o.registry))
	}
	inj := di.New(c, diOpts...)
	if err := inj.Inject(root); err != nil {
		return nil, err
	}

	return &Application{
		Injector:        inj,
		Config:          cfg,
		Logger:          logger,
		Registry:        o.registry,
		root:            root,
		shutdownTimeout: o.shutdownTimeout,
	}, nil
}

func newLogger(cfg config.Configuration) (logging.Logger, error) {
	opts, err := config.LoadOr(cfg, "logging", logging.Options{})
	if err != nil {
		return nil, err
	}
	return logging.NewLoggingBuilder().UseOptions(opts).Build()
}
