package di

import (
	"errors"
)

// 注入失败均为配置或使用错误，通过 errors.Is 匹配
var (
	ErrAlreadyInjected          = errors.New("di: 已完成注入")
	ErrNullRoot                 = errors.New("di: 根对象为 nil")
	ErrUnboundQualifier         = errors.New("di: 限定标记未绑定")
	ErrAmbiguousQualifier       = errors.New("di: 限定标记存在歧义")
	ErrDuplicateName            = errors.New("di: 名称重复")
	ErrUnboundName              = errors.New("di: 名称未绑定")
	ErrUnresolvableAbstractType = errors.New("di: 无法解析的抽象类型")
	ErrUnknownType              = errors.New("di: 未知类型")
	ErrCircularDependency       = errors.New("di: 循环依赖")
	ErrInvalidInjectionTarget   = errors.New("di: 无效的注入目标")
	ErrConstructionFailure      = errors.New("di: 构造失败")
	ErrDuplicateFactory         = errors.New("di: 供应方法重复")
	ErrResolutionTooDeep        = errors.New("di: 解析层级过深")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrAlreadyInjected, "already_injected"},
	{ErrNullRoot, "null_root"},
	{ErrUnboundQualifier, "unbound_qualifier"},
	{ErrAmbiguousQualifier, "ambiguous_qualifier"},
	{ErrDuplicateName, "duplicate_name"},
	{ErrUnboundName, "unbound_name"},
	{ErrUnresolvableAbstractType, "unresolvable_abstract_type"},
	{ErrUnknownType, "unknown_type"},
	{ErrCircularDependency, "circular_dependency"},
	{ErrInvalidInjectionTarget, "invalid_injection_target"},
	{ErrConstructionFailure, "construction_failure"},
	{ErrDuplicateFactory, "duplicate_factory"},
	{ErrResolutionTooDeep, "resolution_too_deep"},
}

// Kind 返回错误的分类标签，无法识别时返回 "unknown"
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unknown"
}
