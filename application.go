package inject

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/hosting"
	"github.com/gocrud/inject/logging"
	"github.com/gocrud/inject/web"
	"github.com/prometheus/client_golang/prometheus"
)

// Application 已完成注入的应用
type Application struct {
	Injector *di.Injector
	Config   config.Configuration
	Logger   logging.Logger
	Registry *prometheus.Registry

	root            any
	shutdownTimeout time.Duration
}

// Root 返回注入后的根对象
func (a *Application) Root() any {
	return a.root
}

// Run 启动全部托管服务并阻塞，直到 ctx 结束、收到 SIGINT / SIGTERM 或任一服务失败，
// 然后在超时时间内按逆序停止服务
func (a *Application) Run(ctx context.Context) error {
	a.mountWeb()

	manager := hosting.NewManager(a.Logger)
	manager.Add(hosting.Collect(a.Injector)...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	errCh := manager.StartAll(ctx)
	select {
	case <-ctx.Done():
		a.Logger.Info("application shutting down")
	case runErr = <-errCh:
		a.Logger.Error("application shutting down after service failure", logging.F("error", runErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	stopErr := manager.StopAll(shutdownCtx)
	if err := manager.Wait(shutdownCtx); err != nil {
		a.Logger.Warn("hosted services did not exit in time", logging.F("error", err.Error()))
	}
	return errors.Join(runErr, stopErr)
}

func (a *Application) mountWeb() {
	server, ok := di.Get[*web.Server](a.Injector)
	if !ok {
		return
	}
	n := web.MountControllers(server, a.Injector)
	if server.Options().Diagnostics {
		var gatherer prometheus.Gatherer
		if a.Registry != nil {
			gatherer = a.Registry
		}
		web.MountDiagnostics(server.Engine(), a.Injector, gatherer)
	}
	a.Logger.Debug("web routes mounted", logging.F("controllers", n))
}
