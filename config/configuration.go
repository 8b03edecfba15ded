package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Configuration 配置接口（类似于 .NET Core IConfiguration）
//
// 键不区分大小写，路径分隔符支持 ":" 与 "."，例如 "logging:level" 或 "logging.level"。
type Configuration interface {
	// Get 获取配置值
	Get(key string) string
	// GetWithDefault 获取配置值，如果不存在则返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// Exists 判断键是否存在
	Exists(key string) bool
	// GetSection 获取配置节
	GetSection(key string) Configuration
	// Bind 绑定配置到结构体
	Bind(key string, target any) error
	// GetAll 获取所有配置
	GetAll() map[string]any
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 配置构建器
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		sources: make([]ConfigurationSource, 0),
	}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddJsonFile 添加 JSON 文件配置源
func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&JsonFileSource{Path: path, Optional: isOptional})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional})
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// Build 构建配置。配置源按添加顺序加载，后面的覆盖前面的。
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := make(map[string]any)
	for _, source := range b.sources {
		loaded, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("config: failed to load source %s: %w", source.Name(), err)
		}
		mergeMaps(data, normalize(loaded))
	}
	return newConfiguration(data), nil
}

// configuration 构建完成后只读
type configuration struct {
	data  map[string]any
	paths sync.Map // string -> []string
}

func newConfiguration(data map[string]any) *configuration {
	return &configuration{data: data}
}

// Get 获取配置值
func (c *configuration) Get(key string) string {
	value := c.getByPath(key)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetWithDefault 获取配置值，如果不存在则返回默认值
func (c *configuration) GetWithDefault(key, defaultValue string) string {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetInt 获取整数配置值
func (c *configuration) GetInt(key string) (int, error) {
	value := c.getByPath(key)
	if value == nil {
		return 0, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("config: cannot convert %v to int", value)
	}
}

// GetBool 获取布尔配置值
func (c *configuration) GetBool(key string) (bool, error) {
	value := c.getByPath(key)
	if value == nil {
		return false, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("config: cannot convert %v to bool", value)
	}
}

// Exists 判断键是否存在
func (c *configuration) Exists(key string) bool {
	return c.getByPath(key) != nil
}

// GetSection 获取配置节；不存在时返回空配置
func (c *configuration) GetSection(key string) Configuration {
	if m, ok := c.getByPath(key).(map[string]any); ok {
		return newConfiguration(m)
	}
	return newConfiguration(make(map[string]any))
}

// Bind 绑定配置到结构体。字段匹配遵循 encoding/json 的规则（不区分大小写）。
func (c *configuration) Bind(key string, target any) error {
	data := c.getByPath(key)
	if data == nil {
		return fmt.Errorf("config: key %s not found", key)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("config: failed to marshal %s: %w", key, err)
	}
	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("config: failed to bind %s: %w", key, err)
	}
	return nil
}

// GetAll 获取所有配置（副本）
func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any)
	mergeMaps(result, c.data)
	return result
}

// getByPath 通过路径获取值（支持 "a:b:c" 或 "a.b.c"）
func (c *configuration) getByPath(path string) any {
	if path == "" {
		return c.data
	}

	current := any(c.data)
	for _, part := range c.segments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// segments 解析并缓存路径片段
func (c *configuration) segments(path string) []string {
	if v, ok := c.paths.Load(path); ok {
		return v.([]string)
	}
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(path, ":", ".")), ".")
	c.paths.Store(path, parts)
	return parts
}

// mergeMaps 合并两个 map，嵌套 map 递归合并
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if dstMap, ok := dst[k].(map[string]any); ok {
			if srcMap, ok := v.(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		if srcMap, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(srcMap))
			mergeMaps(cp, srcMap)
			v = cp
		}
		dst[k] = v
	}
}

// normalize 将所有键转为小写
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			v = normalize(vv)
		case []any:
			items := make([]any, len(vv))
			for i, item := range vv {
				if im, ok := item.(map[string]any); ok {
					items[i] = normalize(im)
				} else {
					items[i] = item
				}
			}
			v = items
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
