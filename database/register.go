package database

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
	"gorm.io/gorm"
)

// Name 返回数据库 name 在注入器中的名称，用于 inject:"name=..." 标签
//
//	type UserRepo struct {
//		DB *gorm.DB `inject:"name=database.master"`
//	}
func Name(name string) catalog.Name {
	return catalog.Name("database." + name)
}

type registration struct {
	options []Options
	seen    map[string]bool
	logger  logging.Logger
	errors  []error
}

// Option 配置数据库注册
type Option func(*registration)

// WithDatabase 添加数据库配置
func WithDatabase(name, dsn string, configure ...func(*Options)) Option {
	return func(r *registration) {
		opts := NewDefaultOptions(name)
		opts.DSN = dsn
		for _, c := range configure {
			c(opts)
		}
		r.add(*opts)
	}
}

// WithDialector 使用自定义 GORM 驱动添加数据库
func WithDialector(name string, dialector gorm.Dialector, configure ...func(*Options)) Option {
	return WithDatabase(name, "", append([]func(*Options){func(o *Options) { o.Dialector = dialector }}, configure...)...)
}

// FromConfiguration 从配置节加载数据库，节下每个子键是一个数据库：
//
//	database:
//	  default:
//	    dsn: "file::memory:?cache=shared"
//	    maxOpenConns: 5
func FromConfiguration(cfg config.Configuration, section string) Option {
	return func(r *registration) {
		if !cfg.Exists(section) {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(cfg.GetSection(section).GetAll())) {
			opts, err := config.LoadOr(cfg, section+":"+name, *NewDefaultOptions(name))
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
		r.errors = append(r.errors, fmt.Errorf("database '%s' already configured", opts.Name))
		return
	}
	if err := opts.Validate(); err != nil {
		r.errors = append(r.errors, fmt.Errorf("invalid configuration for '%s': %w", opts.Name, err))
		return
	}
	r.seen[opts.Name] = true
	r.options = append(r.options, opts)
}

// Register 将 *Factory 作为单例供应者注册到目录。
// 每个数据库以 Name(name) 提供 *gorm.DB；名为 default 的数据库同时按类型提供。
func Register(b *catalog.Builder, opts ...Option) error {
	r := &registration{seen: make(map[string]bool), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.errors) > 0 {
		return fmt.Errorf("database configuration errors: %w", errors.Join(r.errors...))
	}

	options := r.options
	logger := r.logger.WithCategory("database")
	typeOpts := []catalog.Option{
		catalog.Singleton(),
		catalog.Constructor(func() *Factory { return newFactory(options, logger) }),
	}
	for _, o := range options {
		name := o.Name
		typeOpts = append(typeOpts, catalog.Produce(Name(name), func(f *Factory) (*gorm.DB, error) {
			return f.Get(name)
		}))
		if name == DefaultName {
			typeOpts = append(typeOpts, catalog.Produce("", func(f *Factory) (*gorm.DB, error) {
				return f.Get(name)
			}))
		}
	}
	catalog.Register[*Factory](b, typeOpts...)
	return nil
}
