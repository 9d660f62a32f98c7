// Package jtype 提供 JVM 类型模型：基本类型、类类型与数组类型
package jtype

import (
	"fmt"
	"strings"
)

// ============================================================================
// 类型种类
// ============================================================================

// Kind 类型种类
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBoolean
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindClass
	KindArray
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindChar:    "char",
	KindShort:   "short",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindClass:   "class",
	KindArray:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ============================================================================
// Type
// ============================================================================

// Type 表示一个 JVM 类型。
// 类型以描述符作为唯一标识，两个 Type 用 == 比较即为同一性比较。
type Type struct {
	desc string
}

// 基本类型
var (
	Void    = Type{"V"}
	Boolean = Type{"Z"}
	Byte    = Type{"B"}
	Char    = Type{"C"}
	Short   = Type{"S"}
	Int     = Type{"I"}
	Long    = Type{"J"}
	Float   = Type{"F"}
	Double  = Type{"D"}
)

// 常用引用类型
var (
	Object = ClassOf("java.lang.Object")
	String = ClassOf("java.lang.String")
)

// primitiveInfo 基本类型附加信息
type primitiveInfo struct {
	name      string // Java 源码名
	wrapper   string // 包装类内部名
	arrayType uint8  // newarray 指令的 atype 操作数
}

var primitives = map[byte]primitiveInfo{
	'V': {"void", "java/lang/Void", 0},
	'Z': {"boolean", "java/lang/Boolean", 4},
	'C': {"char", "java/lang/Character", 5},
	'F': {"float", "java/lang/Float", 6},
	'D': {"double", "java/lang/Double", 7},
	'B': {"byte", "java/lang/Byte", 8},
	'S': {"short", "java/lang/Short", 9},
	'I': {"int", "java/lang/Integer", 10},
	'J': {"long", "java/lang/Long", 11},
}

// ClassOf 根据 Java 类名（如 java.lang.String）创建类类型
func ClassOf(name string) Type {
	return Type{"L" + strings.ReplaceAll(name, ".", "/") + ";"}
}

// ArrayOf 创建元素类型为 elem 的数组类型
func ArrayOf(elem Type) Type {
	return Type{"[" + elem.desc}
}

// IsValid 是否为有效类型（零值无效）
func (t Type) IsValid() bool {
	return t.desc != ""
}

// Kind 返回类型种类
func (t Type) Kind() Kind {
	if t.desc == "" {
		return KindInvalid
	}
	switch t.desc[0] {
	case 'V':
		return KindVoid
	case 'Z':
		return KindBoolean
	case 'B':
		return KindByte
	case 'C':
		return KindChar
	case 'S':
		return KindShort
	case 'I':
		return KindInt
	case 'J':
		return KindLong
	case 'F':
		return KindFloat
	case 'D':
		return KindDouble
	case 'L':
		return KindClass
	case '[':
		return KindArray
	}
	return KindInvalid
}

// IsPrimitive 是否为基本类型（含 void）
func (t Type) IsPrimitive() bool {
	return len(t.desc) == 1
}

// IsArray 是否为数组类型
func (t Type) IsArray() bool {
	return strings.HasPrefix(t.desc, "[")
}

// IsReference 是否为引用类型（类或数组）
func (t Type) IsReference() bool {
	k := t.Kind()
	return k == KindClass || k == KindArray
}

// IsWide 是否为 64 位类型（long/double），在局部变量表和操作数栈中占两个字
func (t Type) IsWide() bool {
	return t == Long || t == Double
}

// Size 返回该类型值占用的栈字数：void 为 0，long/double 为 2，其余为 1
func (t Type) Size() int {
	switch {
	case t == Void:
		return 0
	case t.IsWide():
		return 2
	default:
		return 1
	}
}

// ComponentType 返回数组的元素类型
func (t Type) ComponentType() (Type, error) {
	if !t.IsArray() {
		return Type{}, fmt.Errorf("%s is not an array type", t.Name())
	}
	return Type{t.desc[1:]}, nil
}

// Dimensions 返回数组维数，非数组返回 0
func (t Type) Dimensions() int {
	n := 0
	for n < len(t.desc) && t.desc[n] == '[' {
		n++
	}
	return n
}

// Descriptor 返回类型描述符
func (t Type) Descriptor() string {
	return t.desc
}

// InternalName 返回类的内部名称（java/lang/String）。
// 数组类型的内部名称就是其描述符，这也是 CONSTANT_Class 对数组的约定。
func (t Type) InternalName() string {
	if t.Kind() == KindClass {
		return t.desc[1 : len(t.desc)-1]
	}
	return t.desc
}

// Name 返回 Java 源码形式的类型名（int、java.lang.String、int[][]）
func (t Type) Name() string {
	switch t.Kind() {
	case KindInvalid:
		return "<invalid>"
	case KindClass:
		return strings.ReplaceAll(t.InternalName(), "/", ".")
	case KindArray:
		elem, _ := t.ComponentType()
		return elem.Name() + "[]"
	default:
		return primitives[t.desc[0]].name
	}
}

// String 实现 fmt.Stringer
func (t Type) String() string {
	return t.Name()
}

// WrapperName 返回基本类型对应包装类的内部名称，非基本类型返回空串
func (t Type) WrapperName() string {
	if !t.IsPrimitive() {
		return ""
	}
	return primitives[t.desc[0]].wrapper
}

// ArrayTypeCode 返回 newarray 指令使用的 atype 码，非基本类型返回 0
func (t Type) ArrayTypeCode() uint8 {
	if !t.IsPrimitive() {
		return 0
	}
	return primitives[t.desc[0]].arrayType
}

// MethodDescriptor 构建方法描述符
func MethodDescriptor(ret Type, params ...Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(p.desc)
	}
	sb.WriteByte(')')
	sb.WriteString(ret.desc)
	return sb.String()
}
