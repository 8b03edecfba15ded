package catalog

import (
	"fmt"
	"reflect"
)

// Qualifier 限定标记。一个限定标记必须恰好由一个类型实现，
// 带有该标记的注入点将解析为这个实现类型。
type Qualifier string

// Name 命名标记的键。键包含标记的完整身份（含载荷值），
// 载荷不同的两个命名标记永远不会冲突。
type Name string

// Markers 注入点（参数、字段、方法）上的标记
type Markers struct {
	Qualifier Qualifier
	Name      Name
}

// IsZero 判断是否未携带任何标记
func (m Markers) IsZero() bool {
	return m.Qualifier == "" && m.Name == ""
}

func (m Markers) String() string {
	switch {
	case m.Name != "" && m.Qualifier != "":
		return fmt.Sprintf("@named(%s) @%s", m.Name, m.Qualifier)
	case m.Name != "":
		return fmt.Sprintf("@named(%s)", m.Name)
	case m.Qualifier != "":
		return "@" + string(m.Qualifier)
	}
	return ""
}

// Param 构造函数或方法的参数
type Param struct {
	Type    reflect.Type
	Markers Markers
}

// ConstructorDescriptor 构造函数描述
type ConstructorDescriptor struct {
	Params     []Param
	Injectable bool
	// New 使用已解析的参数创建实例
	New func(args []any) (any, error)
}

// Field 字段描述（包含嵌入结构体带来的字段）
type Field struct {
	Name       string
	Type       reflect.Type
	Injectable bool
	Markers    Markers
	// Set 将 value 写入 target 的该字段，不受可见性限制
	Set func(target, value any) error
}

// Method 方法描述
type Method struct {
	Name       string
	Params     []Param
	Injectable bool
	// Markers 方法级标记。携带标记的方法必须恰好接受一个参数。
	Markers Markers
	Invoke  func(target any, args []any) error
}

// FactoryMethod 供应方法：由供应者类型上的方法产出另一个类型的实例
type FactoryMethod struct {
	Name      string
	Product   reflect.Type
	Params    []Param
	Singleton bool
	// Named 非空时产物按名称缓存，不再按返回类型缓存
	Named  Name
	Invoke func(supplier any, args []any) (any, error)
}

func (f *FactoryMethod) String() string {
	if f.Named != "" {
		return fmt.Sprintf("%s() %v @named(%s)", f.Name, f.Product, f.Named)
	}
	return fmt.Sprintf("%s() %v", f.Name, f.Product)
}

// TypeDescriptor 候选类型的完整描述
type TypeDescriptor struct {
	// Type 类型身份
	Type reflect.Type

	// Abstract 抽象类型永远不会被直接实例化
	Abstract  bool
	Singleton bool
	Qualifier Qualifier
	Name      Name

	Constructors []ConstructorDescriptor
	Fields       []Field
	Methods      []Method
	Factories    []FactoryMethod

	// New 默认构造；为 nil 表示不可默认构造
	New func() (any, error)
}

func (d *TypeDescriptor) String() string {
	return d.Type.String()
}

// HasInjectionPoints 是否声明了任何可注入的构造函数、字段或方法
func (d *TypeDescriptor) HasInjectionPoints() bool {
	for _, c := range d.Constructors {
		if c.Injectable {
			return true
		}
	}
	for _, f := range d.Fields {
		if f.Injectable {
			return true
		}
	}
	for _, m := range d.Methods {
		if m.Injectable {
			return true
		}
	}
	return false
}

// IsConcrete 判断声明类型是否无需绑定即可直接解析
func IsConcrete(t reflect.Type) bool {
	return t != nil && t.Kind() != reflect.Interface
}

// TypeOf 获取类型 T 的 reflect.Type
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
