package di

import (
	"fmt"
	"reflect"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/logging"
)

// factoryBinding 供应者类型 + 供应方法
type factoryBinding struct {
	supplier *catalog.TypeDescriptor
	method   *catalog.FactoryMethod
}

func (f factoryBinding) String() string {
	return fmt.Sprintf("%v.%s", f.supplier.Type, f.method.Name)
}

// nameBinding 名称的唯一生产者：命名类型或命名供应方法，二者取其一
type nameBinding struct {
	typ     *catalog.TypeDescriptor
	factory *factoryBinding
}

func (n nameBinding) String() string {
	if n.factory != nil {
		return n.factory.String()
	}
	return n.typ.Type.String()
}

// bindings 一次 Inject 期间不可变的绑定表
type bindings struct {
	order      []*catalog.TypeDescriptor
	types      map[reflect.Type]*catalog.TypeDescriptor
	qualifiers map[catalog.Qualifier]*catalog.TypeDescriptor
	names      map[catalog.Name]nameBinding
	// factories 未命名供应方法，按产物类型索引
	factories map[reflect.Type]factoryBinding
	// produced 全部参与预热的供应方法，按声明顺序
	produced []factoryBinding
}

// buildBindings 扫描目录，建立限定标记表、名称表和供应方法表。不创建任何实例。
func buildBindings(c catalog.Catalog, policy FactoryPolicy, logger logging.Logger) (*bindings, error) {
	b := &bindings{
		types:      make(map[reflect.Type]*catalog.TypeDescriptor),
		qualifiers: make(map[catalog.Qualifier]*catalog.TypeDescriptor),
		names:      make(map[catalog.Name]nameBinding),
		factories:  make(map[reflect.Type]factoryBinding),
	}
	if c == nil {
		return b, nil
	}

	for _, desc := range c.Types() {
		if desc == nil || desc.Type == nil {
			return nil, fmt.Errorf("%w: 目录中存在没有类型的描述", ErrInvalidInjectionTarget)
		}
		if _, exists := b.types[desc.Type]; exists {
			return nil, fmt.Errorf("di: %w: %v", catalog.ErrDuplicateType, desc.Type)
		}
		b.types[desc.Type] = desc
		b.order = append(b.order, desc)
	}

	if err := b.bindQualifiers(c.Qualifiers()); err != nil {
		return nil, err
	}
	if err := b.bindNames(); err != nil {
		return nil, err
	}
	if err := b.bindFactories(policy, logger); err != nil {
		return nil, err
	}
	return b, nil
}

// bindQualifiers 每个限定标记必须恰好由一个非抽象类型实现
func (b *bindings) bindQualifiers(declared []catalog.Qualifier) error {
	qualifiers := make([]catalog.Qualifier, 0, len(declared))
	known := make(map[catalog.Qualifier]bool)
	add := func(q catalog.Qualifier) {
		if q != "" && !known[q] {
			known[q] = true
			qualifiers = append(qualifiers, q)
		}
	}
	for _, q := range declared {
		add(q)
	}
	for _, desc := range b.order {
		add(desc.Qualifier)
	}

	for _, q := range qualifiers {
		var impl *catalog.TypeDescriptor
		for _, desc := range b.order {
			if desc.Abstract || desc.Qualifier != q {
				continue
			}
			if impl != nil {
				return fmt.Errorf("%w: @%s 同时由 %v 和 %v 实现", ErrAmbiguousQualifier, q, impl.Type, desc.Type)
			}
			impl = desc
		}
		if impl == nil {
			return fmt.Errorf("%w: 没有类型实现 @%s", ErrUnboundQualifier, q)
		}
		b.qualifiers[q] = impl
	}
	return nil
}

// bindNames 命名类型与命名供应方法共用同一名称空间
func (b *bindings) bindNames() error {
	bind := func(n catalog.Name, nb nameBinding) error {
		if prev, exists := b.names[n]; exists {
			return fmt.Errorf("%w: @named(%s) 同时由 %v 和 %v 声明", ErrDuplicateName, n, prev, nb)
		}
		b.names[n] = nb
		return nil
	}

	for _, desc := range b.order {
		if desc.Name != "" && !desc.Abstract {
			if err := bind(desc.Name, nameBinding{typ: desc}); err != nil {
				return err
			}
		}
		for i := range desc.Factories {
			m := &desc.Factories[i]
			if m.Named == "" {
				continue
			}
			if err := bind(m.Named, nameBinding{factory: &factoryBinding{supplier: desc, method: m}}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *bindings) bindFactories(policy FactoryPolicy, logger logging.Logger) error {
	for _, desc := range b.order {
		for i := range desc.Factories {
			m := &desc.Factories[i]
			if !m.Singleton {
				continue
			}
			fb := factoryBinding{supplier: desc, method: m}
			if m.Product == nil {
				return fmt.Errorf("%w: 供应方法 %v 没有产物类型", ErrInvalidInjectionTarget, fb)
			}
			if m.Named != "" {
				b.produced = append(b.produced, fb)
				continue
			}
			if prev, exists := b.factories[m.Product]; exists {
				if policy == FactoryPolicyFirst {
					logger.Warn("duplicate factory ignored",
						logging.F("product", m.Product.String()),
						logging.F("kept", prev.String()),
						logging.F("ignored", fb.String()))
					continue
				}
				return fmt.Errorf("%w: %v 同时由 %v 和 %v 供应", ErrDuplicateFactory, m.Product, prev, fb)
			}
			b.factories[m.Product] = fb
			b.produced = append(b.produced, fb)
		}
	}
	return nil
}

// bound 类型是否为某个限定标记或名称的绑定目标
func (b *bindings) bound(desc *catalog.TypeDescriptor) bool {
	if desc.Qualifier != "" && b.qualifiers[desc.Qualifier] == desc {
		return true
	}
	if desc.Name != "" {
		nb, ok := b.names[desc.Name]
		return ok && nb.typ == desc
	}
	return false
}
