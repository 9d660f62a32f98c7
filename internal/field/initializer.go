package field

import (
	"fmt"
	"strconv"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/expr"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
)

// Initializer 字段初始化策略。
// 取值只能是本包定义的变体，构造后不可变；由 Synthesizer 统一分派。
type Initializer interface {
	fmt.Stringer
	initializer()
}

// ConstKind 常量初始化器的值种类
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstLong
	ConstDouble
	ConstString
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstLong:
		return "long"
	case ConstDouble:
		return "double"
	case ConstString:
		return "java.lang.String"
	}
	return "ConstKind(" + strconv.Itoa(int(k)) + ")"
}

// fieldType 常量种类要求的字段类型
func (k ConstKind) fieldType() jtype.Type {
	switch k {
	case ConstInt:
		return jtype.Int
	case ConstLong:
		return jtype.Long
	case ConstDouble:
		return jtype.Double
	default:
		return jtype.String
	}
}

// ConstantInit 常量字面量
type ConstantInit struct {
	Kind ConstKind
	i    int32
	l    int64
	d    float64
	s    string
}

// ParamForwardInit 以构造方法的第 Nth 个参数初始化
type ParamForwardInit struct {
	Nth int
}

// NewObjectInit 以 new ObjectType(this[, String[]][, Object[]]) 初始化
type NewObjectInit struct {
	call invocation
}

// StaticCallInit 以静态方法 Owner.Method(this[, String[]][, Object[]]) 的返回值初始化
type StaticCallInit struct {
	call invocation
}

// NewArrayInit 以一维数组 new Elem[Size] 初始化
type NewArrayInit struct {
	Elem jtype.Type
	Size int32
}

// NewMultiArrayInit 以多维数组初始化，dims 为各维长度；ArrayType 为零值时使用字段类型
type NewMultiArrayInit struct {
	ArrayType jtype.Type
	dims      []int32
}

// SourceExprInit 以源码表达式或已解析的语法树初始化
type SourceExprInit struct {
	Source string
	Tree   expr.Node
}

func (*ConstantInit) initializer()      {}
func (*ParamForwardInit) initializer()  {}
func (*NewObjectInit) initializer()     {}
func (*StaticCallInit) initializer()    {}
func (*NewArrayInit) initializer()      {}
func (*NewMultiArrayInit) initializer() {}
func (*SourceExprInit) initializer()    {}

// ============================================================================
// 工厂函数
// ============================================================================

// Constant 以 int 常量初始化
func Constant(v int32) Initializer {
	return &ConstantInit{Kind: ConstInt, i: v}
}

// ConstantLong 以 long 常量初始化
func ConstantLong(v int64) Initializer {
	return &ConstantInit{Kind: ConstLong, l: v}
}

// ConstantDouble 以 double 常量初始化
func ConstantDouble(v float64) Initializer {
	return &ConstantInit{Kind: ConstDouble, d: v}
}

// ConstantString 以字符串常量初始化
func ConstantString(s string) Initializer {
	return &ConstantInit{Kind: ConstString, s: s}
}

// ByParameter 以构造方法的第 nth 个参数（从 0 开始）初始化。
// 参数不存在或字段为静态字段时不生成任何指令。
func ByParameter(nth int) Initializer {
	return &ParamForwardInit{Nth: nth}
}

// ByNew 以 new objectType(this, stringParams) 初始化；stringParams 为 nil 时不传字符串数组
func ByNew(objectType jtype.Type, stringParams []string) Initializer {
	return &NewObjectInit{call: newInvocation(ConstructorCall, objectType, "<init>", stringParams, false)}
}

// ByNewWithParams 同 ByNew，并以 Object[] 转发构造方法的全部参数
func ByNewWithParams(objectType jtype.Type, stringParams []string) Initializer {
	return &NewObjectInit{call: newInvocation(ConstructorCall, objectType, "<init>", stringParams, true)}
}

// ByCall 以静态方法 owner.method(this, stringParams) 的返回值初始化
func ByCall(owner jtype.Type, method string, stringParams []string) Initializer {
	return &StaticCallInit{call: newInvocation(StaticMethodCall, owner, method, stringParams, false)}
}

// ByCallWithParams 同 ByCall，并以 Object[] 转发构造方法的全部参数
func ByCallWithParams(owner jtype.Type, method string, stringParams []string) Initializer {
	return &StaticCallInit{call: newInvocation(StaticMethodCall, owner, method, stringParams, true)}
}

// ByNewArray 以 new T[size] 初始化，arrayType 为数组类型 T[]
func ByNewArray(arrayType jtype.Type, size int32) (Initializer, error) {
	elem, err := arrayType.ComponentType()
	if err != nil {
		return nil, errors.NotArray("", arrayType.Name())
	}
	return &NewArrayInit{Elem: elem, Size: size}, nil
}

// ByNewMultiArray 以多维数组初始化，dims 为各维长度
func ByNewMultiArray(arrayType jtype.Type, dims []int32) Initializer {
	return &NewMultiArrayInit{ArrayType: arrayType, dims: append([]int32(nil), dims...)}
}

// ByExpr 以源码表达式初始化，例如 "3 + 4L"
func ByExpr(source string) Initializer {
	return &SourceExprInit{Source: source}
}

// ByExprTree 以已解析的表达式初始化
func ByExprTree(tree expr.Node) Initializer {
	return &SourceExprInit{Tree: tree}
}

// ============================================================================
// 访问器与字符串形式
// ============================================================================

// Value 返回常量值（int32、int64、float64 或 string）
func (c *ConstantInit) Value() interface{} {
	switch c.Kind {
	case ConstInt:
		return c.i
	case ConstLong:
		return c.l
	case ConstDouble:
		return c.d
	default:
		return c.s
	}
}

// Dims 返回各维长度的副本
func (m *NewMultiArrayInit) Dims() []int32 {
	return append([]int32(nil), m.dims...)
}

func (c *ConstantInit) String() string {
	switch c.Kind {
	case ConstInt:
		return "constant(" + strconv.FormatInt(int64(c.i), 10) + ")"
	case ConstLong:
		return "constant(" + strconv.FormatInt(c.l, 10) + "L)"
	case ConstDouble:
		return "constant(" + strconv.FormatFloat(c.d, 'g', -1, 64) + "d)"
	default:
		return "constant(" + strconv.Quote(c.s) + ")"
	}
}

func (p *ParamForwardInit) String() string {
	return "parameter(" + strconv.Itoa(p.Nth) + ")"
}

func (n *NewObjectInit) String() string { return "new " + n.call.String() }

func (s *StaticCallInit) String() string { return "call " + s.call.String() }

func (a *NewArrayInit) String() string {
	return fmt.Sprintf("new %s[%d]", a.Elem.Name(), a.Size)
}

func (m *NewMultiArrayInit) String() string {
	name := "<field type>"
	if m.ArrayType.IsValid() {
		name = m.ArrayType.Name()
	}
	return fmt.Sprintf("new %s dims=%v", name, m.dims)
}

func (e *SourceExprInit) String() string {
	if e.Tree != nil {
		return "expr(" + e.Tree.String() + ")"
	}
	return "expr(" + e.Source + ")"
}
