package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// EtcdSource etcd 配置源。键 /prefix/a/b 对应配置路径 a:b。
type EtcdSource struct {
	Options EtcdOptions
	// Client 非空时复用该客户端，否则按 Options 临时创建
	Client *clientv3.Client
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli := s.Client
	if cli == nil {
		var err error
		cli, err = clientv3.New(clientv3.Config{
			Endpoints:   s.Options.Endpoints,
			Username:    s.Options.Username,
			Password:    s.Options.Password,
			DialTimeout: s.Options.DialTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create etcd client: %w", err)
		}
		defer cli.Close()
	}

	timeout := s.Options.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	pairs := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		pairs[string(kv.Key)] = string(kv.Value)
	}
	return decodeEtcd(s.Options.Prefix, pairs), nil
}

// decodeEtcd 将 etcd 键值展开为嵌套配置。值依次尝试按 JSON、YAML 解析，失败时保留原字符串。
func decodeEtcd(prefix string, pairs map[string]string) map[string]any {
	result := make(map[string]any)

	for key, value := range pairs {
		if prefix != "" {
			key = strings.TrimPrefix(key, prefix)
		}
		key = strings.Trim(key, "/")
		if key == "" {
			continue
		}
		key = strings.ReplaceAll(key, "/", ":")

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			setNestedValue(result, key, decoded)
			continue
		}
		if err := yaml.Unmarshal([]byte(value), &decoded); err == nil && decoded != nil {
			setNestedValue(result, key, decoded)
			continue
		}
		setNestedValue(result, key, value)
	}

	return result
}
