package hosting

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/gocrud/inject/logging"
)

// HostedService 托管服务接口（类似于 .NET Core IHostedService）
// 框架会自动在 goroutine 中调用 Start，用户无需自己启动 goroutine
type HostedService interface {
	// Start 启动服务。该方法可以阻塞，直到 context 被取消或发生错误。
	Start(ctx context.Context) error

	// Stop 执行优雅关闭逻辑，必须支持通过 ctx 进行超时控制。
	Stop(ctx context.Context) error
}

// Manager 托管服务管理器
type Manager struct {
	services []HostedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewManager 创建托管服务管理器
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		services: make([]HostedService, 0),
		logger:   logger.WithCategory("hosting"),
	}
}

// Add 添加托管服务
func (m *Manager) Add(services ...HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, services...)
}

// Len 托管服务数量
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// StartAll 在独立的 goroutine 中启动每个服务。
// 返回的通道接收 Start 返回的非取消错误，缓冲区大小等于服务数量。
func (m *Manager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))
	m.logger.Info("starting hosted services", logging.F("count", len(m.services)))

	for _, service := range m.services {
		m.wg.Add(1)
		go func(svc HostedService) {
			defer m.wg.Done()

			name := nameOf(svc)
			m.logger.Debug("hosted service starting", logging.F("service", name))

			err := svc.Start(ctx)
			switch {
			case err == nil:
				m.logger.Debug("hosted service completed", logging.F("service", name))
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				m.logger.Debug("hosted service stopped (context done)", logging.F("service", name))
			default:
				m.logger.Error("hosted service failed", logging.F("service", name), logging.F("error", err.Error()))
				errCh <- fmt.Errorf("hosting: %s: %w", name, err)
			}
		}(service)
	}

	return errCh
}

// StopAll 按添加的逆序依次停止服务，错误合并返回
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info("stopping hosted services", logging.F("count", len(m.services)))

	var errs []error
	for i := len(m.services) - 1; i >= 0; i-- {
		svc := m.services[i]
		name := nameOf(svc)
		if err := svc.Stop(ctx); err != nil {
			m.logger.Error("failed to stop hosted service", logging.F("service", name), logging.F("error", err.Error()))
			errs = append(errs, fmt.Errorf("hosting: stop %s: %w", name, err))
			continue
		}
		m.logger.Debug("hosted service stopped", logging.F("service", name))
	}
	return errors.Join(errs...)
}

// Wait 等待所有 Start 返回；ctx 结束时提前返回 ctx.Err()
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func nameOf(svc HostedService) string {
	if n, ok := svc.(interface{ Name() string }); ok {
		return n.Name()
	}
	return reflect.TypeOf(svc).String()
}

// WorkerFunc 简单的阻塞后台任务，通过 ctx.Done() 判断退出
type WorkerFunc func(ctx context.Context) error

// Worker 将阻塞函数适配为 HostedService，Stop 时取消其 context
func Worker(name string, fn WorkerFunc) HostedService {
	return &worker{name: name, fn: fn, done: make(chan struct{})}
}

type worker struct {
	name string
	fn   WorkerFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *worker) Name() string { return w.name }

func (w *worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	defer close(w.done)
	return w.fn(ctx)
}

func (w *worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Every 按固定间隔执行 task 的托管服务；task 的错误只记录日志
func Every(name string, interval time.Duration, task func(ctx context.Context) error, logger logging.Logger) HostedService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return Worker(name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := task(ctx); err != nil {
					logger.Error("timed task failed", logging.F("service", name), logging.F("error", err.Error()))
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}
