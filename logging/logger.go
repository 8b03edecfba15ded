package logging

import (
	"fmt"
	"strings"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别（大小写不敏感）
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LogLevelTrace, nil
	case "DEBUG":
		return LogLevelDebug, nil
	case "", "INFO":
		return LogLevelInfo, nil
	case "WARN", "WARNING":
		return LogLevelWarn, nil
	case "ERROR":
		return LogLevelError, nil
	}
	return LogLevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// F 构造日志字段
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger 日志接口
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	WithCategory(category string) Logger
}
