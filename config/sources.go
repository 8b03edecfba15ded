package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// JsonFileSource JSON 文件配置源
type JsonFileSource struct {
	Path     string
	Optional bool
}

func (s *JsonFileSource) Name() string {
	return fmt.Sprintf("JsonFile(%s)", s.Path)
}

func (s *JsonFileSource) Load() (map[string]any, error) {
	data, err := readFile(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return result, nil
}

// YamlFileSource YAML 文件配置源
type YamlFileSource struct {
	Path     string
	Optional bool
}

func (s *YamlFileSource) Name() string {
	return fmt.Sprintf("YamlFile(%s)", s.Path)
}

func (s *YamlFileSource) Load() (map[string]any, error) {
	data, err := readFile(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	result := make(map[string]any)
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return result, nil
}

// readFile 可选文件不存在时返回 nil, nil
func readFile(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// EnvironmentVariableSource 环境变量配置源。
// 去掉前缀后 "_" 作为层级分隔符：INJECT_LOGGING_LEVEL=debug -> logging:level。
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.Prefix != "" {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.Prefix)
		}
		if key == "" {
			continue
		}

		key = strings.ReplaceAll(strings.ToLower(key), "_", ":")
		setNestedValue(result, key, value)
	}

	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	result := make(map[string]any)
	for k, v := range s.Data {
		// 平铺的 "a:b" 键展开为嵌套结构
		if strings.ContainsAny(k, ":.") {
			setNestedValue(result, strings.ReplaceAll(k, ".", ":"), v)
			continue
		}
		if m, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(m))
			mergeMaps(cp, m)
			v = cp
		}
		mergeMaps(result, map[string]any{k: v})
	}
	return result, nil
}

// setNestedValue 设置嵌套值，字符串值会尝试转换为 int / float / bool
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		m, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = m
	}

	if strValue, ok := value.(string); ok {
		if intValue, err := strconv.Atoi(strValue); err == nil {
			value = intValue
		} else if floatValue, err := strconv.ParseFloat(strValue, 64); err == nil {
			value = floatValue
		} else if boolValue, err := strconv.ParseBool(strValue); err == nil {
			value = boolValue
		}
	}

	last := parts[len(parts)-1]
	if existing, ok := current[last].(map[string]any); ok {
		if m, ok := value.(map[string]any); ok {
			mergeMaps(existing, m)
			return
		}
	}
	current[last] = value
}
