// Package errors 提供字段合成的统一错误类型与诊断码
package errors

// ============================================================================
// 错误种类
// ============================================================================

// Kind 错误种类。所有种类都归入同一个 CannotCompileError 通道
type Kind int

const (
	KindUnknown            Kind = iota
	KindTypeMismatch            // 初始化器与字段类型不兼容
	KindCompileFailure          // 表达式编译失败
	KindBadDeclaringClass       // 所属类没有可挂载的结构
	KindNotAField               // 源码不是字段声明
	KindFrozen                  // 类已定型，不可修改
	KindInvalidInitializer      // 初始化器参数非法
)

func (k Kind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type mismatch"
	case KindCompileFailure:
		return "compile failure"
	case KindBadDeclaringClass:
		return "bad declaring class"
	case KindNotAField:
		return "not a field"
	case KindFrozen:
		return "class frozen"
	case KindInvalidInitializer:
		return "invalid initializer"
	default:
		return "unknown"
	}
}

// ============================================================================
// 诊断码 (F 开头)
// ============================================================================

const (
	// F0001-F0099: 类型检查
	F0001 = "F0001" // 常量类型与字段类型不一致
	F0002 = "F0002" // 字段不是数组类型
	F0003 = "F0003" // 数组维度不合法

	// F0100-F0199: 表达式编译
	F0100 = "F0100" // 表达式编译失败

	// F0200-F0299: 类结构
	F0200 = "F0200" // 所属类无效
	F0201 = "F0201" // 不是字段声明
	F0202 = "F0202" // 类已定型

	// F0300-F0399: 初始化器
	F0300 = "F0300" // 初始化器参数非法
)

// ErrorInfo 诊断码信息
type ErrorInfo struct {
	Code string
	Kind Kind
	Hint string
}

// errorInfos 诊断码信息表
var errorInfos = map[string]ErrorInfo{
	F0001: {F0001, KindTypeMismatch, "use the constant factory matching the field's declared type"},
	F0002: {F0002, KindTypeMismatch, "array allocation needs an array type"},
	F0003: {F0003, KindTypeMismatch, "give between 1 and the array's dimension count sizes"},
	F0100: {F0100, KindCompileFailure, ""},
	F0200: {F0200, KindBadDeclaringClass, "create the field against a class that owns a constant pool"},
	F0201: {F0201, KindNotAField, "a field declaration looks like `int x = 1;`"},
	F0202: {F0202, KindFrozen, "fields can only change before the class is finalized"},
	F0300: {F0300, KindInvalidInitializer, ""},
}

// GetErrorInfo 获取诊断码信息
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := errorInfos[code]
	return info, ok
}
