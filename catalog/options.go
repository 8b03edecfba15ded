package catalog

import (
	"fmt"
	"reflect"
)

// Option 配置类型注册
type Option func(*spec)

type spec struct {
	singleton bool
	abstract  bool
	qualifier Qualifier
	name      Name
	ctor      *ctorSpec
	setters   []setterSpec
	factories []factorySpec
	produced  []producedSpec
}

type ctorSpec struct {
	fn   any
	args []ArgOption
}

type setterSpec struct {
	method  string
	markers Markers
	args    []ArgOption
}

type factorySpec struct {
	method string
	named  Name
	args   []ArgOption
}

type producedSpec struct {
	supplier reflect.Type
	factory  FactoryMethod
}

// ArgOption 为第 index 个参数附加标记
type ArgOption struct {
	index   int
	markers Markers
}

// Arg 参数级标记
func Arg(index int, markers Markers) ArgOption {
	return ArgOption{index: index, markers: markers}
}

// QualifiedBy 构造限定标记
func QualifiedBy(q Qualifier) Markers {
	return Markers{Qualifier: q}
}

// NamedBy 构造命名标记
func NamedBy(n Name) Markers {
	return Markers{Name: n}
}

// Singleton 标记为单例
func Singleton() Option {
	return func(s *spec) {
		s.singleton = true
	}
}

// Abstract 标记为抽象类型（仅用于被嵌入）
func Abstract() Option {
	return func(s *spec) {
		s.abstract = true
	}
}

// Qualify 声明该类型实现限定标记 q
func Qualify(q Qualifier) Option {
	return func(s *spec) {
		s.qualifier = q
	}
}

// Named 声明该类型的名称
func Named(n Name) Option {
	return func(s *spec) {
		s.name = n
	}
}

// Constructor 指定可注入的构造函数。
// fn 的签名为 func(...) T 或 func(...) (T, error)。
func Constructor(fn any, args ...ArgOption) Option {
	return func(s *spec) {
		s.ctor = &ctorSpec{fn: fn, args: args}
	}
}

// Setter 将名为 method 的方法标记为可注入。
// markers 为方法级标记，非空时该方法必须只有一个参数。
func Setter(method string, markers Markers, args ...ArgOption) Option {
	return func(s *spec) {
		s.setters = append(s.setters, setterSpec{method: method, markers: markers, args: args})
	}
}

// FactoryOption 配置供应方法
type FactoryOption func(*factorySpec)

// Produces 为供应方法的产物命名
func Produces(n Name) FactoryOption {
	return func(f *factorySpec) {
		f.named = n
	}
}

// FactoryArgs 为供应方法的参数附加标记
func FactoryArgs(args ...ArgOption) FactoryOption {
	return func(f *factorySpec) {
		f.args = append(f.args, args...)
	}
}

// Factory 将名为 method 的方法标记为单例供应方法
func Factory(method string, opts ...FactoryOption) Option {
	return func(s *spec) {
		fs := factorySpec{method: method}
		for _, opt := range opts {
			opt(&fs)
		}
		s.factories = append(s.factories, fs)
	}
}

// Produce 以函数形式为供应者类型 S 声明一个命名的单例供应方法，
// 适用于产物名称在运行时才确定的场景（例如按配置打开的多个连接）。
// n 为空时产物按类型 P 缓存。
func Produce[S, P any](n Name, fn func(S) (P, error)) Option {
	supplier := TypeOf[S]()
	return func(s *spec) {
		s.produced = append(s.produced, producedSpec{
			supplier: supplier,
			factory: FactoryMethod{
				Name:      "Produce",
				Product:   TypeOf[P](),
				Singleton: true,
				Named:     n,
				Invoke: func(target any, _ []any) (any, error) {
					sup, ok := target.(S)
					if !ok {
						return nil, fmt.Errorf("receiver %T is not %v", target, supplier)
					}
					p, err := fn(sup)
					if err != nil {
						return nil, err
					}
					return product([]reflect.Value{reflect.ValueOf(&p).Elem()})
				},
			},
		})
	}
}
