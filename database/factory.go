package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/logging"
	"gorm.io/gorm"
)

// Factory 数据库客户端工厂。连接在首次获取时打开，之后复用。
// Factory 同时是托管服务，停止时关闭全部连接。
type Factory struct {
	options map[string]Options
	names   []string
	logger  logging.Logger

	mu  sync.Mutex
	dbs map[string]*gorm.DB
}

func newFactory(opts []Options, logger logging.Logger) *Factory {
	f := &Factory{
		options: make(map[string]Options, len(opts)),
		logger:  logger,
		dbs:     make(map[string]*gorm.DB),
	}
	for _, o := range opts {
		f.options[o.Name] = o
		f.names = append(f.names, o.Name)
	}
	return f
}

// Names 按注册顺序返回数据库名称
func (f *Factory) Names() []string {
	return append([]string(nil), f.names...)
}

// Get 获取（必要时打开）名为 name 的数据库
func (f *Factory) Get(name string) (*gorm.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.dbs[name]; ok {
		return db, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("database: '%s' is not configured", name)
	}

	cfg := opts.GormConfig
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	db, err := gorm.Open(opts.dialector(), cfg)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open '%s': %w", name, err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: failed to get sql.DB for '%s': %w", name, err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.MaxLifetime.Std())

	if len(opts.AutoMigrate) > 0 {
		if err := db.AutoMigrate(opts.AutoMigrate...); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("database: auto migrate failed for '%s': %w", name, err)
		}
	}

	f.dbs[name] = db
	f.logger.Info("database opened",
		logging.F("name", name),
		logging.F("dialector", db.Dialector.Name()))
	return db, nil
}

// Start 实现 hosting.HostedService；连接已在注入期间打开
func (f *Factory) Start(ctx context.Context) error {
	return nil
}

// Stop 关闭所有已打开的数据库连接
func (f *Factory) Stop(ctx context.Context) error {
	return f.Close()
}

// Close 关闭所有已打开的数据库连接
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, db := range f.dbs {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB for '%s': %w", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database '%s': %w", name, err))
		}
	}
	f.dbs = make(map[string]*gorm.DB)

	if len(errs) > 0 {
		f.logger.Error("failed to close databases", logging.F("error", errors.Join(errs...).Error()))
	}
	return errors.Join(errs...)
}
