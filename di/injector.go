package di

import (
	"reflect"
	"sync/atomic"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Injector 依赖注入引擎。
// Inject 只能成功调用一次；之后 Get / GetNamed 为纯缓存读取，可并发调用。
//
// 示例：
//
//	inj := di.New(c, di.WithLogger(logger))
//	if err := inj.Inject(app); err != nil {
//		return err
//	}
//	wallet, ok := di.Get[*Wallet](inj)
type Injector struct {
	catalog  catalog.Catalog
	store    *store
	logger   logging.Logger
	settings Settings

	registerer prometheus.Registerer
	metrics    *metrics

	injected atomic.Bool
}

// New 创建注入器
func New(c catalog.Catalog, opts ...Option) *Injector {
	inj := &Injector{
		catalog:  c,
		store:    newStore(),
		logger:   logging.NewNop(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(inj)
	}
	inj.logger = inj.logger.WithCategory("di")
	return inj
}

// Inject 构建并注入以 root 为根的完整对象图。
// 任一错误都会中止整个调用并清空缓存，注入器此后不可再次使用。
func (inj *Injector) Inject(root any) error {
	if isNil(root) {
		return ErrNullRoot
	}
	if err := inj.settings.Validate(); err != nil {
		return err
	}
	if !inj.injected.CompareAndSwap(false, true) {
		return ErrAlreadyInjected
	}

	if err := inj.inject(root); err != nil {
		inj.store.reset()
		inj.metrics.failed(err)
		inj.logger.Error("inject failed", logging.F("root", reflect.TypeOf(root).String()), logging.F("error", err.Error()))
		return err
	}

	inj.logger.Info("inject completed",
		logging.F("root", reflect.TypeOf(root).String()),
		logging.F("instances", inj.store.len()))
	return nil
}

func (inj *Injector) inject(root any) error {
	m, err := newMetrics(inj.registerer)
	if err != nil {
		return err
	}
	inj.metrics = m

	settings := inj.settings.withDefaults()
	inj.settings = settings

	b, err := buildBindings(inj.catalog, settings.FactoryPolicy, inj.logger)
	if err != nil {
		return err
	}
	return newResolution(inj, b, root).run()
}

// Get 返回已缓存的 t 类型实例；从不触发构造
func (inj *Injector) Get(t reflect.Type) (any, bool) {
	if t == nil {
		return nil, false
	}
	return inj.store.get(t)
}

// GetNamed 返回已缓存的命名实例
func (inj *Injector) GetNamed(n catalog.Name) (any, bool) {
	return inj.store.getNamed(n)
}

// Instances 按缓存顺序返回全部实例记录
func (inj *Injector) Instances() []Entry {
	return inj.store.snapshot()
}

// Injected 是否已完成一次成功的 Inject
func (inj *Injector) Injected() bool {
	return inj.injected.Load() && inj.store.len() > 0
}

// Get 按类型 T 获取实例
func Get[T any](inj *Injector) (T, bool) {
	var zero T
	v, ok := inj.Get(catalog.TypeOf[T]())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// GetNamed 按名称获取实例并断言为 T
func GetNamed[T any](inj *Injector, n catalog.Name) (T, bool) {
	var zero T
	v, ok := inj.GetNamed(n)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
