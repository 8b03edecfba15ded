package di

import (
	"fmt"
)

// invoke 调用用户代码（构造函数、setter、供应方法、字段赋值）。
// 返回的错误与 panic 均包装为 ErrConstructionFailure。
func invoke[T any](what fmt.Stringer, fn func() (T, error)) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			out = zero
			err = fmt.Errorf("%w: %v 发生 panic: %v", ErrConstructionFailure, what, p)
		}
	}()

	out, err = fn()
	if err != nil {
		return out, fmt.Errorf("%w: %v: %w", ErrConstructionFailure, what, err)
	}
	return out, nil
}

// invokeErr 无返回值的 invoke
func invokeErr(what fmt.Stringer, fn func() error) error {
	_, err := invoke(what, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// site 注入点描述，用于错误信息
type site string

func (s site) String() string {
	return string(s)
}
