package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置（对应配置节 logging）
type Options struct {
	Level       string   `yaml:"level" json:"level"`
	Format      string   `yaml:"format" json:"format"` // json | console
	OutputPaths []string `yaml:"outputs" json:"outputs"`
	Development bool     `yaml:"development" json:"development"`
}

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	options Options
	level   LogLevel
	cores   []zapcore.Core
	err     error
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		options: Options{Format: "console", OutputPaths: []string{"stdout"}},
		level:   LogLevelInfo,
	}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.level = level
	return b
}

// UseOptions 应用配置；非法的级别或格式在 Build 时返回
func (b *LoggingBuilder) UseOptions(opts Options) *LoggingBuilder {
	if opts.Level != "" {
		level, err := ParseLevel(opts.Level)
		if err != nil {
			b.err = err
		}
		b.level = level
	}
	if opts.Format != "" {
		b.options.Format = opts.Format
	}
	if len(opts.OutputPaths) > 0 {
		b.options.OutputPaths = opts.OutputPaths
	}
	b.options.Development = opts.Development
	return b
}

// AddCore 追加额外的 zap 输出（例如测试中的 observer）
func (b *LoggingBuilder) AddCore(core zapcore.Core) *LoggingBuilder {
	b.cores = append(b.cores, core)
	return b
}

// Build 构建 Logger
func (b *LoggingBuilder) Build() (Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	var cfg zap.Config
	if b.options.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	switch b.options.Format {
	case "json", "console":
		cfg.Encoding = b.options.Format
	default:
		return nil, fmt.Errorf("logging: unknown format %q", b.options.Format)
	}
	cfg.OutputPaths = b.options.OutputPaths
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(b.level))
	cfg.Sampling = nil

	var opts []zap.Option
	if len(b.cores) > 0 {
		extra := b.cores
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(append([]zapcore.Core{c}, extra...)...)
		}))
	}

	z, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return &zapLogger{logger: z, minimumLevel: b.level}, nil
}
