package catalog

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// TagName 字段注入使用的结构体标签名
//
//	type Service struct {
//		Cash   *CashPayment `inject:""`
//		Credit Payment      `inject:"qualifier=credit"`
//		Debit  Payment      `inject:"name=debit"`
//	}
const TagName = "inject"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Register 通过反射导出类型 T 的描述并加入目录。
// T 通常是结构体指针；接口类型会被视为抽象类型。
func Register[T any](b *Builder, opts ...Option) *Builder {
	t := TypeOf[T]()
	desc, err := Describe(t, opts...)
	if err != nil {
		return b.fail(t, err)
	}
	return b.Add(desc)
}

// Describe 通过反射导出 t 的描述
func Describe(t reflect.Type, opts ...Option) (*TypeDescriptor, error) {
	s := &spec{}
	for _, opt := range opts {
		opt(s)
	}

	desc := &TypeDescriptor{
		Type:      t,
		Abstract:  s.abstract || t.Kind() == reflect.Interface,
		Singleton: s.singleton,
		Qualifier: s.qualifier,
		Name:      s.name,
	}

	if t.Kind() == reflect.Interface {
		if s.ctor != nil || len(s.setters) > 0 || len(s.factories) > 0 || len(s.produced) > 0 {
			return nil, fmt.Errorf("%w: interface types cannot declare injection points", ErrInvalidDescriptor)
		}
		return desc, nil
	}

	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		elem := t.Elem()
		desc.New = func() (any, error) {
			return reflect.New(elem).Interface(), nil
		}
		if err := describeFields(elem, nil, &desc.Fields); err != nil {
			return nil, err
		}
	case t.Kind() == reflect.Struct:
		desc.New = func() (any, error) {
			return reflect.Zero(t).Interface(), nil
		}
		var fields []Field
		if err := describeFields(t, nil, &fields); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			return nil, fmt.Errorf("%w: field injection requires a pointer type, register *%v", ErrInvalidDescriptor, t)
		}
	}

	if s.ctor != nil {
		ctor, err := describeConstructor(t, s.ctor)
		if err != nil {
			return nil, err
		}
		desc.Constructors = append(desc.Constructors, ctor)
	}

	for _, ss := range s.setters {
		m, err := describeSetter(t, ss)
		if err != nil {
			return nil, err
		}
		desc.Methods = append(desc.Methods, m)
	}

	for _, fs := range s.factories {
		f, err := describeFactory(t, fs)
		if err != nil {
			return nil, err
		}
		desc.Factories = append(desc.Factories, f)
	}

	for _, ps := range s.produced {
		if ps.supplier != t {
			return nil, fmt.Errorf("%w: %s declared on %v", ErrInvalidDescriptor, ps.factory.Name, t)
		}
		desc.Factories = append(desc.Factories, ps.factory)
	}

	return desc, nil
}

// describeFields 收集带 inject 标签的字段，未打标签的匿名结构体字段会被展开
func describeFields(st reflect.Type, index []int, out *[]Field) error {
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		path := append(append([]int(nil), index...), i)

		tag, tagged := sf.Tag.Lookup(TagName)
		if !tagged {
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				if err := describeFields(sf.Type, path, out); err != nil {
					return err
				}
			}
			continue
		}

		markers, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidDescriptor, sf.Name, err)
		}

		*out = append(*out, Field{
			Name:       sf.Name,
			Type:       sf.Type,
			Injectable: true,
			Markers:    markers,
			Set:        fieldSetter(path),
		})
	}
	return nil
}

// parseTag 解析标签: "", "name=debit", "qualifier=credit"
func parseTag(tag string) (Markers, error) {
	var m Markers
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return m, fmt.Errorf("malformed tag option %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "name":
			m.Name = Name(value)
		case "qualifier":
			m.Qualifier = Qualifier(value)
		default:
			return m, fmt.Errorf("unknown tag option %q", key)
		}
	}
	return m, nil
}

func fieldSetter(path []int) func(target, value any) error {
	return func(target, value any) error {
		v := reflect.ValueOf(target)
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return fmt.Errorf("target %T is not a non-nil pointer", target)
		}
		f := v.Elem().FieldByIndex(path)
		if !f.CanSet() {
			// 未导出字段
			f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
		}
		return assign(f, value)
	}
}

func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("%v is not assignable to %v", rv.Type(), dst.Type())
	}
	dst.Set(rv)
	return nil
}

func describeConstructor(t reflect.Type, cs *ctorSpec) (ConstructorDescriptor, error) {
	fv := reflect.ValueOf(cs.fn)
	if fv.Kind() != reflect.Func {
		return ConstructorDescriptor{}, fmt.Errorf("%w: constructor must be a function, got %T", ErrInvalidDescriptor, cs.fn)
	}
	ft := fv.Type()
	if err := checkResults(ft); err != nil {
		return ConstructorDescriptor{}, fmt.Errorf("%w: constructor: %v", ErrInvalidDescriptor, err)
	}
	if !ft.Out(0).AssignableTo(t) {
		return ConstructorDescriptor{}, fmt.Errorf("%w: constructor returns %v, not assignable to %v", ErrInvalidDescriptor, ft.Out(0), t)
	}
	params, err := paramsOf(ft, 0, cs.args)
	if err != nil {
		return ConstructorDescriptor{}, err
	}

	return ConstructorDescriptor{
		Params:     params,
		Injectable: true,
		New: func(args []any) (any, error) {
			out, err := call(fv, params, nil, args)
			if err != nil {
				return nil, err
			}
			return product(out)
		},
	}, nil
}

func describeSetter(t reflect.Type, ss setterSpec) (Method, error) {
	m, ok := t.MethodByName(ss.method)
	if !ok {
		return Method{}, fmt.Errorf("%w: method %s not found on %v", ErrInvalidDescriptor, ss.method, t)
	}
	ft := m.Type
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	default:
		return Method{}, fmt.Errorf("%w: setter %s must return nothing or error", ErrInvalidDescriptor, ss.method)
	}
	params, err := paramsOf(ft, 1, ss.args)
	if err != nil {
		return Method{}, err
	}

	fn := m.Func
	return Method{
		Name:       ss.method,
		Params:     params,
		Injectable: true,
		Markers:    ss.markers,
		Invoke: func(target any, args []any) error {
			recv, err := receiver(t, target)
			if err != nil {
				return err
			}
			out, err := call(fn, params, []reflect.Value{recv}, args)
			if err != nil {
				return err
			}
			if len(out) == 1 && !out[0].IsNil() {
				return out[0].Interface().(error)
			}
			return nil
		},
	}, nil
}

func describeFactory(t reflect.Type, fs factorySpec) (FactoryMethod, error) {
	m, ok := t.MethodByName(fs.method)
	if !ok {
		return FactoryMethod{}, fmt.Errorf("%w: method %s not found on %v", ErrInvalidDescriptor, fs.method, t)
	}
	ft := m.Type
	if err := checkResults(ft); err != nil {
		return FactoryMethod{}, fmt.Errorf("%w: factory %s: %v", ErrInvalidDescriptor, fs.method, err)
	}
	params, err := paramsOf(ft, 1, fs.args)
	if err != nil {
		return FactoryMethod{}, err
	}

	fn := m.Func
	return FactoryMethod{
		Name:      fs.method,
		Product:   ft.Out(0),
		Params:    params,
		Singleton: true,
		Named:     fs.named,
		Invoke: func(supplier any, args []any) (any, error) {
			recv, err := receiver(t, supplier)
			if err != nil {
				return nil, err
			}
			out, err := call(fn, params, []reflect.Value{recv}, args)
			if err != nil {
				return nil, err
			}
			return product(out)
		},
	}, nil
}

// checkResults 要求返回 (T) 或 (T, error)
func checkResults(ft reflect.Type) error {
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("must return (T) or (T, error), got %v", ft)
	}
	if ft.IsVariadic() {
		return fmt.Errorf("variadic functions are not supported")
	}
	return nil
}

func paramsOf(ft reflect.Type, offset int, args []ArgOption) ([]Param, error) {
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic functions are not supported: %v", ErrInvalidDescriptor, ft)
	}
	params := make([]Param, 0, ft.NumIn()-offset)
	for i := offset; i < ft.NumIn(); i++ {
		params = append(params, Param{Type: ft.In(i)})
	}
	for _, a := range args {
		if a.index < 0 || a.index >= len(params) {
			return nil, fmt.Errorf("%w: argument index %d out of range for %v", ErrInvalidDescriptor, a.index, ft)
		}
		params[a.index].Markers = a.markers
	}
	return params, nil
}

func receiver(t reflect.Type, target any) (reflect.Value, error) {
	recv := reflect.ValueOf(target)
	if !recv.IsValid() || recv.Type() != t {
		return reflect.Value{}, fmt.Errorf("receiver %T is not %v", target, t)
	}
	return recv, nil
}

func call(fn reflect.Value, params []Param, leading []reflect.Value, args []any) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(params), len(args))
	}
	in := make([]reflect.Value, 0, len(leading)+len(args))
	in = append(in, leading...)
	for i, arg := range args {
		v := reflect.New(params[i].Type).Elem()
		if err := assign(v, arg); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	return fn.Call(in), nil
}

// product 拆分 (T) / (T, error) 返回值；nil 指针或接口按 nil 返回
func product(out []reflect.Value) (any, error) {
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	first := out[0]
	switch first.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if first.IsNil() {
			return nil, nil
		}
	}
	return first.Interface(), nil
}
