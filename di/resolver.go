package di

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/logging"
)

// key 解析栈上的节点。命名的供应产物以 (产物类型, 名称) 区分。
type key struct {
	t    reflect.Type
	name catalog.Name
}

func (k key) String() string {
	if k.name != "" {
		return fmt.Sprintf("%v@named(%s)", k.t, k.name)
	}
	return k.t.String()
}

// resolution 一次 Inject 调用的解析上下文，调用结束后丢弃
type resolution struct {
	bindings *bindings
	store    *store
	logger   logging.Logger
	metrics  *metrics
	maxDepth int

	root     any
	rootType reflect.Type

	// stack / seen 当前调用栈上正在解析的节点
	stack []key
	seen  map[key]bool
}

func newResolution(inj *Injector, b *bindings, root any) *resolution {
	return &resolution{
		bindings: b,
		store:    inj.store,
		logger:   inj.logger,
		metrics:  inj.metrics,
		maxDepth: inj.settings.MaxDepth,
		root:     root,
		rootType: reflect.TypeOf(root),
		seen:     make(map[key]bool),
	}
}

// enter 将 k 压栈；k 已在栈上时报告循环依赖
func (r *resolution) enter(k key) error {
	if r.seen[k] {
		return r.cycle(k)
	}
	if len(r.stack) >= r.maxDepth {
		return fmt.Errorf("%w: 解析 %v 时超过 %d 层", ErrResolutionTooDeep, k, r.maxDepth)
	}
	r.seen[k] = true
	r.stack = append(r.stack, k)
	return nil
}

func (r *resolution) leave() {
	k := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.seen, k)
}

func (r *resolution) cycle(k key) error {
	var path []string
	for i, s := range r.stack {
		if s == k {
			for _, p := range r.stack[i:] {
				path = append(path, p.String())
			}
			break
		}
	}
	path = append(path, k.String())
	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(path, " -> "))
}

// run 解析目录中的全部候选类型，最后注入并登记 root
func (r *resolution) run() error {
	for _, fb := range r.bindings.produced {
		if _, err := r.produce(fb); err != nil {
			return err
		}
	}

	for _, desc := range r.bindings.order {
		if desc.Abstract || desc.Type == r.rootType {
			continue
		}
		if !desc.Singleton && !r.bindings.bound(desc) && !desc.HasInjectionPoints() {
			continue
		}
		if _, err := r.resolveType(desc.Type); err != nil {
			return err
		}
	}

	var alias catalog.Name
	if desc, ok := r.bindings.types[r.rootType]; ok {
		if err := r.injectMembers(desc, r.root); err != nil {
			return err
		}
		alias = desc.Name
	}
	if r.store.putType(r.rootType, r.root, SourceRoot, alias) {
		r.metrics.cached(SourceRoot)
	}
	return nil
}

// resolveTarget 解析一个注入点（参数、字段或方法目标）。
// 优先级：名称标记、限定标记、声明类型。
func (r *resolution) resolveTarget(t reflect.Type, m catalog.Markers) (any, error) {
	var (
		inst any
		err  error
	)
	switch {
	case m.Name != "":
		inst, err = r.resolveName(m.Name)
	case m.Qualifier != "":
		desc, ok := r.bindings.qualifiers[m.Qualifier]
		if !ok {
			return nil, fmt.Errorf("%w: 没有类型实现 @%s（注入目标 %v）", ErrUnboundQualifier, m.Qualifier, t)
		}
		inst, err = r.resolveType(desc.Type)
	case !catalog.IsConcrete(t):
		if _, ok := r.bindings.factories[t]; !ok {
			return nil, fmt.Errorf("%w: %v 需要限定标记或名称标记", ErrUnresolvableAbstractType, t)
		}
		inst, err = r.resolveType(t)
	default:
		inst, err = r.resolveType(t)
	}
	if err != nil {
		return nil, err
	}

	if inst != nil && !reflect.TypeOf(inst).AssignableTo(t) {
		return nil, fmt.Errorf("%w: %v 绑定的 %T 不能赋值给 %v", ErrInvalidInjectionTarget, m, inst, t)
	}
	return inst, nil
}

// resolveName 按名称解析：命名供应产物或命名类型
func (r *resolution) resolveName(n catalog.Name) (any, error) {
	nb, ok := r.bindings.names[n]
	if !ok {
		if inst, cached := r.store.getNamed(n); cached {
			return inst, nil
		}
		return nil, fmt.Errorf("%w: @named(%s)", ErrUnboundName, n)
	}
	if nb.factory != nil {
		return r.produce(*nb.factory)
	}
	return r.resolveType(nb.typ.Type)
}

// resolveType 按类型解析：root、供应方法、缓存、构造。
// 缓存命中直接返回，不进入解析栈。
func (r *resolution) resolveType(t reflect.Type) (any, error) {
	if t == r.rootType {
		return r.root, nil
	}
	if fb, ok := r.bindings.factories[t]; ok {
		return r.produce(fb)
	}
	if inst, ok := r.store.get(t); ok {
		return inst, nil
	}

	k := key{t: t}
	if err := r.enter(k); err != nil {
		return nil, err
	}
	defer r.leave()

	desc, ok := r.bindings.types[t]
	switch {
	case !ok && !catalog.IsConcrete(t):
		return nil, fmt.Errorf("%w: %v 需要限定标记或名称标记", ErrUnresolvableAbstractType, t)
	case !ok:
		return nil, fmt.Errorf("%w: %v 不在类型目录中", ErrUnknownType, t)
	case desc.Abstract:
		return nil, fmt.Errorf("%w: %v 为抽象类型，不会被实例化", ErrUnresolvableAbstractType, t)
	}

	inst, src, err := r.construct(desc)
	if err != nil {
		return nil, err
	}

	// 构造函数创建的实例立即缓存，其字段与方法注入可见该实例；
	// 默认构造的实例在成员注入完成后才缓存，字段间的循环仍会被检测到
	if src == SourceConstructor {
		r.cache(t, inst, src, desc.Name)
	}
	if err := r.injectMembers(desc, inst); err != nil {
		return nil, err
	}
	if src != SourceConstructor {
		r.cache(t, inst, src, desc.Name)
	}
	return inst, nil
}

func (r *resolution) cache(t reflect.Type, inst any, src Source, alias catalog.Name) {
	if r.store.putType(t, inst, src, alias) {
		r.metrics.cached(src)
		r.logger.Debug("instance created", logging.F("type", t.String()), logging.F("source", string(src)))
	}
}

// construct 通过可注入构造函数或默认构造创建实例
func (r *resolution) construct(desc *catalog.TypeDescriptor) (any, Source, error) {
	var ctor *catalog.ConstructorDescriptor
	for i := range desc.Constructors {
		if !desc.Constructors[i].Injectable {
			continue
		}
		if ctor != nil {
			return nil, "", fmt.Errorf("%w: %v 声明了多个可注入构造函数", ErrInvalidInjectionTarget, desc.Type)
		}
		ctor = &desc.Constructors[i]
	}

	if ctor == nil {
		if desc.New == nil {
			return nil, "", fmt.Errorf("%w: %v 既没有可注入构造函数也不能默认构造", ErrConstructionFailure, desc.Type)
		}
		inst, err := invoke(site(desc.Type.String()), desc.New)
		if err != nil {
			return nil, "", err
		}
		if inst == nil {
			return nil, "", fmt.Errorf("%w: %v 的默认构造返回 nil", ErrConstructionFailure, desc.Type)
		}
		return inst, SourceDefault, nil
	}

	args, err := r.resolveParams(ctor.Params)
	if err != nil {
		return nil, "", fmt.Errorf("%v 的构造函数: %w", desc.Type, err)
	}

	start := time.Now()
	inst, err := invoke(site(desc.Type.String()+" 的构造函数"), func() (any, error) {
		return ctor.New(args)
	})
	r.metrics.observe(start)
	if err != nil {
		return nil, "", err
	}
	if inst == nil {
		return nil, "", fmt.Errorf("%w: %v 的构造函数返回 nil", ErrConstructionFailure, desc.Type)
	}
	return inst, SourceConstructor, nil
}

func (r *resolution) resolveParams(params []catalog.Param) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		arg, err := r.resolveTarget(p.Type, p.Markers)
		if err != nil {
			return nil, fmt.Errorf("参数 %d: %w", i, err)
		}
		args[i] = arg
	}
	return args, nil
}

// injectMembers 字段注入，然后方法注入
func (r *resolution) injectMembers(desc *catalog.TypeDescriptor, inst any) error {
	for _, f := range desc.Fields {
		if !f.Injectable {
			continue
		}
		value, err := r.resolveTarget(f.Type, f.Markers)
		if err != nil {
			return fmt.Errorf("字段 %v.%s: %w", desc.Type, f.Name, err)
		}
		set := f.Set
		err = invokeErr(site(fmt.Sprintf("字段 %v.%s", desc.Type, f.Name)), func() error {
			return set(inst, value)
		})
		if err != nil {
			return err
		}
	}

	for _, m := range desc.Methods {
		if !m.Injectable {
			continue
		}
		var (
			args []any
			err  error
		)
		if !m.Markers.IsZero() {
			if len(m.Params) != 1 {
				return fmt.Errorf("%w: 方法 %v.%s 带有 %v 标记，但接受 %d 个参数",
					ErrInvalidInjectionTarget, desc.Type, m.Name, m.Markers, len(m.Params))
			}
			var arg any
			arg, err = r.resolveTarget(m.Params[0].Type, m.Markers)
			args = []any{arg}
		} else {
			args, err = r.resolveParams(m.Params)
		}
		if err != nil {
			return fmt.Errorf("方法 %v.%s: %w", desc.Type, m.Name, err)
		}

		call := m.Invoke
		err = invokeErr(site(fmt.Sprintf("方法 %v.%s", desc.Type, m.Name)), func() error {
			return call(inst, args)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
