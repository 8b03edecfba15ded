package cron

import (
	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
	"github.com/robfig/cron/v3"
)

type registration struct {
	options Options
	logger  logging.Logger
	err     error
}

// Option 配置调度器注册
type Option func(*registration)

// WithSeconds 启用秒级精度
func WithSeconds() Option {
	return func(r *registration) {
		r.options.Seconds = true
	}
}

// WithLocation 设置时区
func WithLocation(location string) Option {
	return func(r *registration) {
		r.options.Location = location
	}
}

// WithVerbose 启用 cron 库的内部调度日志
func WithVerbose() Option {
	return func(r *registration) {
		r.options.Verbose = true
	}
}

// FromConfiguration 从配置节加载调度选项
func FromConfiguration(cfg config.Configuration, section string) Option {
	return func(r *registration) {
		opts, err := config.LoadOr(cfg, section, r.options)
		if err != nil {
			r.err = err
			return
		}
		r.options = opts
	}
}

// WithLogger 设置日志
func WithLogger(logger logging.Logger) Option {
	return func(r *registration) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Register 将 *Scheduler 注册为单例，并按类型提供其 *cron.Cron
func Register(b *catalog.Builder, opts ...Option) error {
	r := &registration{options: DefaultOptions(), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return r.err
	}
	if err := r.options.Validate(); err != nil {
		return err
	}

	options := r.options
	logger := r.logger.WithCategory("cron")
	catalog.Register[*Scheduler](b,
		catalog.Singleton(),
		catalog.Constructor(func() (*Scheduler, error) { return newScheduler(options, logger) }),
		catalog.Produce("", func(s *Scheduler) (*cron.Cron, error) { return s.Cron(), nil }),
	)
	return nil
}

// RegisterJob 注册任务类型 T；注入期间调用其 Schedule 方法
func RegisterJob[T Job](b *catalog.Builder, opts ...catalog.Option) *catalog.Builder {
	opts = append([]catalog.Option{catalog.Singleton(), catalog.Setter("Schedule", catalog.Markers{})}, opts...)
	return catalog.Register[T](b, opts...)
}
