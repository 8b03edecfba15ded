package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/logging"
	"github.com/redis/go-redis/v9"
)

// Factory Redis 客户端工厂，同时是托管服务：
// 启动时检测设置了 Ping 的客户端，停止时关闭全部客户端。
type Factory struct {
	options map[string]Options
	names   []string
	logger  logging.Logger

	mu      sync.Mutex
	clients map[string]*redis.Client
}

func newFactory(opts []Options, logger logging.Logger) *Factory {
	f := &Factory{
		options: make(map[string]Options, len(opts)),
		logger:  logger,
		clients: make(map[string]*redis.Client),
	}
	for _, o := range opts {
		f.options[o.Name] = o
		f.names = append(f.names, o.Name)
	}
	return f
}

// Names 按注册顺序返回客户端名称
func (f *Factory) Names() []string {
	return append([]string(nil), f.names...)
}

// Get 获取（必要时创建）名为 name 的客户端；创建客户端不会建立连接
func (f *Factory) Get(name string) (*redis.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("redis: client '%s' is not configured", name)
	}

	client := redis.NewClient(opts.client())
	f.clients[name] = client
	f.logger.Info("redis client created",
		logging.F("name", name),
		logging.F("addr", opts.Addr),
		logging.F("db", opts.DB))
	return client, nil
}

// Start 检测设置了 Ping 的客户端
func (f *Factory) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, client := range f.clients {
		opts := f.options[name]
		if !opts.Ping {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout.Std())
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis: failed to connect '%s': %w", name, err)
		}
	}
	return nil
}

// Stop 关闭所有客户端
func (f *Factory) Stop(ctx context.Context) error {
	return f.Close()
}

// Close 关闭所有客户端
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*redis.Client)
	return errors.Join(errs...)
}
