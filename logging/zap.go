package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger 以 zap 为后端的 Logger 实现
type zapLogger struct {
	logger       *zap.Logger
	minimumLevel LogLevel
}

// NewZap 创建指定最小级别的生产环境 Logger
func NewZap(level LogLevel) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{logger: z, minimumLevel: level}, nil
}

// FromZap 包装已有的 zap.Logger，级别过滤交由 zap 处理
func FromZap(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{logger: z, minimumLevel: LogLevelTrace}
}

// NewNop 创建丢弃所有输出的 Logger
func NewNop() Logger {
	return &zapLogger{logger: zap.NewNop(), minimumLevel: LogLevelError + 1}
}

// Unwrap 返回底层 zap.Logger
func Unwrap(l Logger) (*zap.Logger, bool) {
	zl, ok := l.(*zapLogger)
	if !ok {
		return nil, false
	}
	return zl.logger, true
}

func (l *zapLogger) Trace(msg string, fields ...Field) {
	l.Log(LogLevelTrace, msg, fields...)
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.Log(LogLevelDebug, msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.Log(LogLevelInfo, msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.Log(LogLevelWarn, msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.Log(LogLevelError, msg, fields...)
}

func (l *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.minimumLevel {
		return
	}
	if ce := l.logger.Check(zapLevel(level), msg); ce != nil {
		ce.Write(toZap(fields)...)
	}
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	return &zapLogger{
		logger:       l.logger.With(toZap(fields)...),
		minimumLevel: l.minimumLevel,
	}
}

func (l *zapLogger) WithCategory(category string) Logger {
	return &zapLogger{
		logger:       l.logger.Named(category),
		minimumLevel: l.minimumLevel,
	}
}

// zapLevel zap 没有 Trace 级别，Trace 按 Debug 输出
func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelTrace, LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func toZap(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
