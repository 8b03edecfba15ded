package etcd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Factory etcd 客户端工厂，停止时关闭全部客户端
type Factory struct {
	options map[string]Options
	names   []string
	logger  logging.Logger

	mu      sync.Mutex
	clients map[string]*clientv3.Client
}

func newFactory(opts []Options, logger logging.Logger) *Factory {
	f := &Factory{
		options: make(map[string]Options, len(opts)),
		logger:  logger,
		clients: make(map[string]*clientv3.Client),
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

// Get 获取（必要时创建）名为 name 的客户端
func (f *Factory) Get(name string) (*clientv3.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("etcd: client '%s' is not configured", name)
	}

	client, err := clientv3.New(opts.client())
	if err != nil {
		return nil, fmt.Errorf("etcd: failed to create client '%s': %w", name, err)
	}
	f.clients[name] = client
	f.logger.Info("etcd client created", logging.F("name", name), logging.F("endpoints", opts.Endpoints))
	return client, nil
}

// Source 返回使用客户端 name 读取 prefix 下配置的配置源
func (f *Factory) Source(name, prefix string) (*config.EtcdSource, error) {
	client, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	opts := f.options[name]
	return &config.EtcdSource{
		Options: config.EtcdOptions{
			Endpoints:   opts.Endpoints,
			Prefix:      prefix,
			DialTimeout: opts.DialTimeout.Std(),
		},
		Client: client,
	}, nil
}

// Start 实现 hosting.HostedService
func (f *Factory) Start(ctx context.Context) error {
	return nil
}

// Stop 关闭所有客户端
func (f *Factory) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*clientv3.Client)
	return errors.Join(errs...)
}
