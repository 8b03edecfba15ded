package inject

import (
	"errors"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/cron"
	"github.com/gocrud/inject/database"
	"github.com/gocrud/inject/etcd"
	"github.com/gocrud/inject/logging"
	"github.com/gocrud/inject/mongodb"
	"github.com/gocrud/inject/redis"
	"github.com/gocrud/inject/web"
)

// WithStandardSuppliers 为配置中存在的节注册对应的供应者：
// database、redis、mongodb、etcd、cron、web
func WithStandardSuppliers() Option {
	return WithSetup(registerSuppliers)
}

func registerSuppliers(b *catalog.Builder, cfg config.Configuration, logger logging.Logger) error {
	var errs []error
	if cfg.Exists("database") {
		errs = append(errs, database.Register(b, database.FromConfiguration(cfg, "database"), database.WithLogger(logger)))
	}
	if cfg.Exists("redis") {
		errs = append(errs, redis.Register(b, redis.FromConfiguration(cfg, "redis"), redis.WithLogger(logger)))
	}
	if cfg.Exists("mongodb") {
		errs = append(errs, mongodb.Register(b, mongodb.FromConfiguration(cfg, "mongodb"), mongodb.WithLogger(logger)))
	}
	if cfg.Exists("etcd") {
		errs = append(errs, etcd.Register(b, etcd.FromConfiguration(cfg, "etcd"), etcd.WithLogger(logger)))
	}
	if cfg.Exists("cron") {
		errs = append(errs, cron.Register(b, cron.FromConfiguration(cfg, "cron"), cron.WithLogger(logger)))
	}
	if cfg.Exists("web") {
		errs = append(errs, web.Register(b, web.FromConfiguration(cfg, "web"), web.WithLogger(logger)))
	}
	return errors.Join(errs...)
}
