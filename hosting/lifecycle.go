package hosting

import (
	"context"
	"errors"
	"sync"
)

// Lifecycle 管理应用程序的启动与停止钩子
type Lifecycle struct {
	mu      sync.Mutex
	onStart []func(context.Context) error
	onStop  []func(context.Context) error
}

// NewLifecycle 创建新的生命周期管理器
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// OnStart 注册启动钩子
func (l *Lifecycle) OnStart(fn func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStart = append(l.onStart, fn)
}

// OnStop 注册停止钩子
func (l *Lifecycle) OnStop(fn func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStop = append(l.onStop, fn)
}

// Start 按注册顺序执行启动钩子，遇到第一个错误即返回
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	hooks := append([]func(context.Context) error(nil), l.onStart...)
	l.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop 倒序执行停止钩子；单个钩子失败不会中断其余钩子，错误合并返回
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	hooks := append([]func(context.Context) error(nil), l.onStop...)
	l.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
