package mongodb

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Name 返回客户端 name 在注入器中的名称
func Name(name string) catalog.Name {
	return catalog.Name("mongodb." + name)
}

type registration struct {
	options []Options
	seen    map[string]bool
	logger  logging.Logger
	errors  []error
}

// Option 配置 MongoDB 注册
type Option func(*registration)

// WithClient 添加 MongoDB 客户端配置
func WithClient(name, uri string, configure ...func(*Options)) Option {
	return func(r *registration) {
		opts := NewDefaultOptions(name, uri)
		for _, c := range configure {
			c(opts)
		}
		r.add(*opts)
	}
}

// FromConfiguration 从配置节加载客户端，节下每个子键是一个客户端
func FromConfiguration(cfg config.Configuration, section string) Option {
	return func(r *registration) {
		if !cfg.Exists(section) {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(cfg.GetSection(section).GetAll())) {
			opts, err := config.LoadOr(cfg, section+":"+name, *NewDefaultOptions(name, ""))
			if err != nil {
				r.errors = append(r.errors, err)
				continue
			}
			opts.Name = name
			r.add(opts)
		}
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

func (r *registration) add(opts Options) {
	if r.seen[opts.Name] {
		r.errors = append(r.errors, fmt.Errorf("mongo client '%s' already configured", opts.Name))
		return
	}
	if err := opts.Validate(); err != nil {
		r.errors = append(r.errors, fmt.Errorf("invalid mongo configuration for '%s': %w", opts.Name, err))
		return
	}
	r.seen[opts.Name] = true
	r.options = append(r.options, opts)
}

// Register 将 *Factory 作为单例供应者注册到目录。
// 每个客户端以 Name(name) 提供 *mongo.Client；名为 default 的客户端同时按类型提供。
func Register(b *catalog.Builder, opts ...Option) error {
	r := &registration{seen: make(map[string]bool), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.errors) > 0 {
		return fmt.Errorf("mongodb configuration errors: %w", errors.Join(r.errors...))
	}

	options := r.options
	logger := r.logger.WithCategory("mongodb")
	typeOpts := []catalog.Option{
		catalog.Singleton(),
		catalog.Constructor(func() *Factory { return newFactory(options, logger) }),
	}
	for _, o := range options {
		name := o.Name
		get := func(f *Factory) (*mongo.Client, error) { return f.Get(name) }
		typeOpts = append(typeOpts, catalog.Produce(Name(name), get))
		if name == DefaultName {
			typeOpts = append(typeOpts, catalog.Produce("", get))
		}
	}
	catalog.Register[*Factory](b, typeOpts...)
	return nil
}
