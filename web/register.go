package web

import (
	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
)

type registration struct {
	options    Options
	middleware []gin.HandlerFunc
	logger     logging.Logger
	err        error
}

// Option 配置 Web 主机注册
type Option func(*registration)

// WithAddr 设置监听地址
func WithAddr(addr string) Option {
	return func(r *registration) {
		r.options.Addr = addr
	}
}

// WithMode 设置 Gin 模式
func WithMode(mode string) Option {
	return func(r *registration) {
		r.options.Mode = mode
	}
}

// WithDiagnostics 启用诊断路由
func WithDiagnostics() Option {
	return func(r *registration) {
		r.options.Diagnostics = true
	}
}

// WithMiddleware 添加全局中间件
func WithMiddleware(middleware ...gin.HandlerFunc) Option {
	return func(r *registration) {
		r.middleware = append(r.middleware, middleware...)
	}
}

// FromConfiguration 从配置节加载主机选项
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

// Register 将 *Server 注册为单例，并按类型提供其 *gin.Engine
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

	options, middleware := r.options, r.middleware
	logger := r.logger.WithCategory("web")
	catalog.Register[*Server](b,
		catalog.Singleton(),
		catalog.Constructor(func() *Server { return newServer(options, logger, middleware) }),
		catalog.Produce("", func(s *Server) (*gin.Engine, error) { return s.Engine(), nil }),
	)
	return nil
}

// RegisterController 将控制器类型 T 注册为单例
func RegisterController[T Controller](b *catalog.Builder, opts ...catalog.Option) *catalog.Builder {
	return catalog.Register[T](b, append([]catalog.Option{catalog.Singleton()}, opts...)...)
}
