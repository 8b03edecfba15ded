package catalog

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDuplicateType 同一类型被注册了多次
	ErrDuplicateType = errors.New("catalog: type already registered")
	// ErrInvalidDescriptor 描述无法由给定的 Go 类型或函数导出
	ErrInvalidDescriptor = errors.New("catalog: invalid descriptor")
)

// Catalog 候选类型全集。对引擎而言是只读输入。
type Catalog interface {
	// Types 按声明顺序返回全部候选类型
	Types() []*TypeDescriptor
	// Qualifiers 返回全部已声明的限定标记
	Qualifiers() []Qualifier
}

type staticCatalog struct {
	types      []*TypeDescriptor
	qualifiers []Qualifier
}

// New 使用手工构造的描述创建目录
func New(types []*TypeDescriptor, qualifiers ...Qualifier) Catalog {
	return &staticCatalog{
		types:      append([]*TypeDescriptor(nil), types...),
		qualifiers: append([]Qualifier(nil), qualifiers...),
	}
}

func (c *staticCatalog) Types() []*TypeDescriptor {
	return c.types
}

func (c *staticCatalog) Qualifiers() []Qualifier {
	return c.qualifiers
}

// Builder 目录构建器
//
// 示例：
//
//	b := catalog.NewBuilder()
//	catalog.Register[*GoldCoin](b, catalog.Singleton(), catalog.Qualify(Gold))
//	catalog.Register[*Wallet](b, catalog.Singleton(),
//		catalog.Constructor(NewWallet, catalog.Arg(0, catalog.QualifiedBy(Gold))))
//	c, err := b.Build()
type Builder struct {
	types      []*TypeDescriptor
	index      map[reflect.Type]int
	qualifiers []Qualifier
	declared   map[Qualifier]bool
	errors     []error
}

// NewBuilder 创建目录构建器
func NewBuilder() *Builder {
	return &Builder{
		types:    make([]*TypeDescriptor, 0),
		index:    make(map[reflect.Type]int),
		declared: make(map[Qualifier]bool),
	}
}

// Declare 声明限定标记。实现者数量在注入开始时校验。
func (b *Builder) Declare(qualifiers ...Qualifier) *Builder {
	for _, q := range qualifiers {
		if q == "" || b.declared[q] {
			continue
		}
		b.declared[q] = true
		b.qualifiers = append(b.qualifiers, q)
	}
	return b
}

// Add 添加一个手工构造的类型描述
func (b *Builder) Add(desc *TypeDescriptor) *Builder {
	if desc == nil || desc.Type == nil {
		b.errors = append(b.errors, fmt.Errorf("%w: descriptor without type", ErrInvalidDescriptor))
		return b
	}
	if _, exists := b.index[desc.Type]; exists {
		b.errors = append(b.errors, fmt.Errorf("%w: %v", ErrDuplicateType, desc.Type))
		return b
	}
	if desc.Qualifier != "" {
		b.Declare(desc.Qualifier)
	}
	b.index[desc.Type] = len(b.types)
	b.types = append(b.types, desc)
	return b
}

// Lookup 返回已添加的类型描述
func (b *Builder) Lookup(t reflect.Type) (*TypeDescriptor, bool) {
	i, ok := b.index[t]
	if !ok {
		return nil, false
	}
	return b.types[i], true
}

// Build 构建目录。注册期间累积的错误会合并返回。
func (b *Builder) Build() (Catalog, error) {
	if len(b.errors) > 0 {
		return nil, errors.Join(b.errors...)
	}
	return New(b.types, b.qualifiers...), nil
}

func (b *Builder) fail(t reflect.Type, err error) *Builder {
	b.errors = append(b.errors, fmt.Errorf("%v: %w", t, err))
	return b
}
