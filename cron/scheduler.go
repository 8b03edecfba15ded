package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gocrud/inject/logging"
	"github.com/robfig/cron/v3"
)

// Job 定时任务。Schedule 作为注入方法在注入期间被调用，
// 任务在其中把自己加入调度器：
//
//	func (j *Cleanup) Schedule(s *cron.Scheduler) error {
//		return s.Add("@every 1m", "cleanup", j)
//	}
type Job interface {
	cron.Job
	Schedule(s *Scheduler) error
}

// Scheduler Cron 定时任务托管服务
type Scheduler struct {
	cron   *cron.Cron
	logger logging.Logger

	mu   sync.RWMutex
	jobs map[string]cron.EntryID // 任务名称到任务ID的映射
}

func newScheduler(opts Options, logger logging.Logger) (*Scheduler, error) {
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}

	cl := newCronLogger(logger)
	cronOpts := []cron.Option{
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cl)),
	}
	if opts.Verbose {
		cronOpts = append(cronOpts, cron.WithLogger(cl))
	}
	if opts.Seconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Scheduler{
		cron:   cron.New(cronOpts...),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}, nil
}

// Add 添加定时任务
// spec: cron 表达式，如 "0 */5 * * * *" (启用秒级时每5分钟) 或 "@every 1h"
// name: 任务名称（用于管理和日志）
func (s *Scheduler) Add(spec, name string, job cron.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron: job '%s' already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("cron job started", logging.F("job", name))
		defer s.logger.Debug("cron job completed", logging.F("job", name))
		job.Run()
	})
	if err != nil {
		return fmt.Errorf("cron: failed to add job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("cron job registered", logging.F("job", name), logging.F("spec", spec))
	return nil
}

// AddFunc 添加函数形式的定时任务
func (s *Scheduler) AddFunc(spec, name string, fn func()) error {
	return s.Add(spec, name, cron.FuncJob(fn))
}

// Remove 移除定时任务
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info("cron job removed", logging.F("job", name))
	}
}

// Jobs 返回已调度的任务名称（按名称排序）
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cron 返回底层的 *cron.Cron
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// Start 实现 hosting.HostedService，启动调度后立即返回
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("cron scheduler starting", logging.F("jobs", len(s.Jobs())))
	s.cron.Start()
	return nil
}

// Stop 停止调度并等待正在运行的任务完成或 ctx 超时
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("cron scheduler stopping")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger 适配器：将框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.F("error", err.Error()))
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []any) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.F(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
