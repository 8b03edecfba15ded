package inject

import (
	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
)

const (
	// LoggerName 应用日志的注入名称
	LoggerName catalog.Name = "logger"
	// ConfigurationName 应用配置的注入名称
	ConfigurationName catalog.Name = "configuration"
)

// Runtime 提供 Bootstrap 构建的 logging.Logger 与 config.Configuration，
// 二者可按类型或按名称（logger / configuration）注入
type Runtime struct {
	logger logging.Logger
	cfg    config.Configuration
}

// Logger 应用日志
func (r *Runtime) Logger() logging.Logger {
	return r.logger
}

// Configuration 应用配置
func (r *Runtime) Configuration() config.Configuration {
	return r.cfg
}

func registerRuntime(b *catalog.Builder, cfg config.Configuration, logger logging.Logger) {
	rt := &Runtime{logger: logger, cfg: cfg}
	logOf := func(r *Runtime) (logging.Logger, error) { return r.logger, nil }
	cfgOf := func(r *Runtime) (config.Configuration, error) { return r.cfg, nil }

	catalog.Register[*Runtime](b,
		catalog.Singleton(),
		catalog.Constructor(func() *Runtime { return rt }),
		catalog.Produce(LoggerName, logOf),
		catalog.Produce("", logOf),
		catalog.Produce(ConfigurationName, cfgOf),
		catalog.Produce("", cfgOf),
	)
}
