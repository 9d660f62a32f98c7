package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// CannotCompileError 字段合成失败。
// 类型检查失败、表达式编译失败等都以该类型返回，调用方只需处理一个错误通道。
type CannotCompileError struct {
	Code     string // 诊断码 (F0001)
	Kind     Kind   // 错误种类
	Message  string // 主消息
	Field    string // 相关字段名（可选）
	Expected string // 期望类型（类型不匹配时）
	Actual   string // 实际类型（类型不匹配时）
	Cause    error  // 协作方返回的原始错误
}

// Error 实现 error 接口
func (e *CannotCompileError) Error() string {
	var sb strings.Builder
	sb.WriteString("cannot compile")
	if e.Field != "" {
		sb.WriteString(" field ")
		sb.WriteString(e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&sb, " (expected %s, found %s)", e.Expected, e.Actual)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap 返回原始错误
func (e *CannotCompileError) Unwrap() error {
	return e.Cause
}

// Is 按种类匹配，使 errors.Is(err, ErrTypeMismatch) 可用
func (e *CannotCompileError) Is(target error) bool {
	t, ok := target.(*CannotCompileError)
	if !ok {
		return false
	}
	return t.Code == "" && t.Message == "" && t.Kind == e.Kind
}

// 按种类匹配的哨兵错误
var (
	ErrTypeMismatch       = &CannotCompileError{Kind: KindTypeMismatch}
	ErrCompileFailure     = &CannotCompileError{Kind: KindCompileFailure}
	ErrBadDeclaringClass  = &CannotCompileError{Kind: KindBadDeclaringClass}
	ErrNotAField          = &CannotCompileError{Kind: KindNotAField}
	ErrFrozen             = &CannotCompileError{Kind: KindFrozen}
	ErrInvalidInitializer = &CannotCompileError{Kind: KindInvalidInitializer}
)

func newError(code, field, format string, args ...interface{}) *CannotCompileError {
	info, _ := GetErrorInfo(code)
	return &CannotCompileError{
		Code:    code,
		Kind:    info.Kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// TypeMismatch 初始化器与字段类型不一致
func TypeMismatch(field, expected, actual string) *CannotCompileError {
	e := newError(F0001, field, "type mismatch")
	e.Expected = expected
	e.Actual = actual
	return e
}

// NotArray 字段类型不是数组
func NotArray(field, actual string) *CannotCompileError {
	e := newError(F0002, field, "type mismatch")
	e.Expected = "array type"
	e.Actual = actual
	return e
}

// BadDimensions 数组维度不合法
func BadDimensions(field string, dims, max int) *CannotCompileError {
	return newError(F0003, field, "%d dimensions given for a %d-dimensional array", dims, max)
}

// CompileFailure 包装表达式编译器的错误
func CompileFailure(field string, cause error) *CannotCompileError {
	e := newError(F0100, field, "bad initializer expression")
	e.Cause = cause
	return e
}

// BadDeclaringClass 所属类无效
func BadDeclaringClass(class string) *CannotCompileError {
	return newError(F0200, "", "bad declaring class: %s", class)
}

// NotAField 源码不是字段声明
func NotAField(cause error) *CannotCompileError {
	e := newError(F0201, "", "not a field")
	e.Cause = cause
	return e
}

// Frozen 类已定型
func Frozen(class string) *CannotCompileError {
	return newError(F0202, "", "%s class is frozen", class)
}

// InvalidInitializer 初始化器参数非法
func InvalidInitializer(format string, args ...interface{}) *CannotCompileError {
	return newError(F0300, "", format, args...)
}

// KindOf 返回错误链中第一个 CannotCompileError 的种类
func KindOf(err error) Kind {
	var e *CannotCompileError
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTypeMismatch 是否为类型不匹配错误
func IsTypeMismatch(err error) bool {
	return KindOf(err) == KindTypeMismatch
}

// WithField 返回带字段名的副本，已有字段名时原样返回
func WithField(err error, field string) error {
	var e *CannotCompileError
	if !stderrors.As(err, &e) || e.Field != "" {
		return err
	}
	c := *e
	c.Field = field
	return &c
}
