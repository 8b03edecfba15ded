package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/logging"
)

// Controller 控制器，由 MountControllers 挂载路由
type Controller interface {
	MountRoutes(router gin.IRouter)
}

// Server Web 主机（基于 Gin），实现 hosting.HostedService
type Server struct {
	engine  *gin.Engine
	server  *http.Server
	logger  logging.Logger
	options Options

	mu      sync.Mutex
	addr    string
	mounted map[Controller]bool
}

func newServer(opts Options, logger logging.Logger, middleware []gin.HandlerFunc) *Server {
	gin.SetMode(opts.Mode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.Use(middleware...)

	return &Server{
		engine:  engine,
		logger:  logger,
		options: opts,
		mounted: make(map[Controller]bool),
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout.Std(),
			WriteTimeout: opts.WriteTimeout.Std(),
		},
	}
}

// Engine 获取 Gin 引擎（用于高级定制）
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Options 返回主机配置
func (s *Server) Options() Options {
	return s.options
}

// Address 返回实际监听地址（e.g. "[::]:50234"），仅在 Start 后有效
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Mount 挂载控制器路由；同一控制器只挂载一次，控制器须为可比较类型（通常为指针）
func (s *Server) Mount(controllers ...Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range controllers {
		if s.mounted[c] {
			continue
		}
		c.MountRoutes(s.engine)
		s.mounted[c] = true
		s.logger.Debug("mapped controller routes", logging.F("controller", fmt.Sprintf("%T", c)))
	}
}

// Start 监听端口并阻塞直到服务退出
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.options.Addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", s.options.Addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.logger.Info("web host started", logging.F("address", ln.Addr().String()))

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("web host error", logging.F("error", err.Error()))
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping web host")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown web host gracefully", logging.F("error", err.Error()))
		return err
	}
	s.logger.Info("web host stopped")
	return nil
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("request",
			logging.F("method", c.Request.Method),
			logging.F("path", c.FullPath()),
			logging.F("status", c.Writer.Status()),
		)
	}
}
