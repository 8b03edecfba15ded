package config

import "strings"

// DefaultEnvPrefix 默认的环境变量前缀
const DefaultEnvPrefix = "INJECT_"

// loadOptions 配置加载选项
type loadOptions struct {
	files     []fileSpec
	envPrefix string
	etcd      *EtcdOptions
	overrides map[string]any
}

type fileSpec struct {
	path     string
	optional bool
}

// LoadOption 配置加载选项函数
type LoadOption func(*loadOptions)

// WithFile 添加 YAML 文件（.json 后缀按 JSON 解析）
func WithFile(path string, optional bool) LoadOption {
	return func(o *loadOptions) {
		o.files = append(o.files, fileSpec{path: path, optional: optional})
	}
}

// WithEnvPrefix 设置环境变量前缀；空字符串表示不读取环境变量
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithEtcd 从 etcd 加载配置，优先级高于文件、低于环境变量
func WithEtcd(opts EtcdOptions) LoadOption {
	return func(o *loadOptions) {
		o.etcd = &opts
	}
}

// WithOverrides 内存覆盖，优先级最高
func WithOverrides(data map[string]any) LoadOption {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]any)
		}
		for k, v := range data {
			o.overrides[k] = v
		}
	}
}

// New 按 文件 -> etcd -> 环境变量 -> 内存覆盖 的顺序构建配置
func New(opts ...LoadOption) (Configuration, error) {
	options := &loadOptions{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(options)
	}

	b := NewConfigurationBuilder()
	for _, f := range options.files {
		if strings.HasSuffix(f.path, ".json") {
			b.AddJsonFile(f.path, f.optional)
		} else {
			b.AddYamlFile(f.path, f.optional)
		}
	}
	if options.etcd != nil {
		b.AddEtcd(*options.etcd)
	}
	if options.envPrefix != "" {
		b.AddEnvironmentVariables(options.envPrefix)
	}
	if len(options.overrides) > 0 {
		b.AddInMemory(options.overrides)
	}
	return b.Build()
}
