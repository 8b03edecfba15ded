package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/logging"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Factory MongoDB 客户端工厂，同时是托管服务：
// 启动时检测设置了 Ping 的客户端，停止时断开全部客户端。
type Factory struct {
	options map[string]Options
	names   []string
	logger  logging.Logger

	mu      sync.Mutex
	clients map[string]*mongo.Client
}

func newFactory(opts []Options, logger logging.Logger) *Factory {
	f := &Factory{
		options: make(map[string]Options, len(opts)),
		logger:  logger,
		clients: make(map[string]*mongo.Client),
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

// Get 获取（必要时创建）名为 name 的客户端；服务器连接在后台建立
func (f *Factory) Get(name string) (*mongo.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("mongodb: client '%s' is not configured", name)
	}

	client, err := mongo.Connect(opts.client())
	if err != nil {
		return nil, fmt.Errorf("mongodb: failed to create client '%s': %w", name, err)
	}
	f.clients[name] = client
	f.logger.Info("mongo client created", logging.F("name", name))
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
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout.Std())
		err := client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err != nil {
			return fmt.Errorf("mongodb: failed to connect '%s': %w", name, err)
		}
	}
	return nil
}

// Stop 断开所有客户端
func (f *Factory) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*mongo.Client)
	return errors.Join(errs...)
}
