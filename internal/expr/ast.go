package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// 错误
// ============================================================================

// ErrNotField 源码可以解析，但不是字段声明（例如方法声明）
var ErrNotField = errors.New("not a field declaration")

// CompileError 表达式的语法或语义错误
type CompileError struct {
	Pos     int    // 字节偏移
	Message string // 错误信息
	Err     error  // 可选的底层错误
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d: %s", e.Pos, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func errorf(pos int, format string, args ...interface{}) *CompileError {
	return &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ============================================================================
// 语法树
// ============================================================================

// Node 表达式语法树节点
type Node interface {
	Pos() int
	String() string
	exprNode()
}

// IntLit int 字面量
type IntLit struct {
	At    int
	Value int32
}

// LongLit long 字面量
type LongLit struct {
	At    int
	Value int64
}

// FloatLit float 字面量
type FloatLit struct {
	At    int
	Value float32
}

// DoubleLit double 字面量
type DoubleLit struct {
	At    int
	Value float64
}

// StringLit 字符串字面量
type StringLit struct {
	At    int
	Value string
}

// BoolLit 布尔字面量
type BoolLit struct {
	At    int
	Value bool
}

// NullLit null
type NullLit struct {
	At int
}

// Unary 一元运算（只有取负）
type Unary struct {
	At int
	Op TokenType
	X  Node
}

// Binary 二元算术运算
type Binary struct {
	Op TokenType
	X  Node
	Y  Node
}

// NewObject 无参构造对象 new a.b.C()
type NewObject struct {
	At    int
	Class string // Java 类名 a.b.C
}

func (n *IntLit) Pos() int    { return n.At }
func (n *LongLit) Pos() int   { return n.At }
func (n *FloatLit) Pos() int  { return n.At }
func (n *DoubleLit) Pos() int { return n.At }
func (n *StringLit) Pos() int { return n.At }
func (n *BoolLit) Pos() int   { return n.At }
func (n *NullLit) Pos() int   { return n.At }
func (n *Unary) Pos() int     { return n.At }
func (n *Binary) Pos() int    { return n.X.Pos() }
func (n *NewObject) Pos() int { return n.At }

func (n *IntLit) String() string    { return strconv.FormatInt(int64(n.Value), 10) }
func (n *LongLit) String() string   { return strconv.FormatInt(n.Value, 10) + "L" }
func (n *FloatLit) String() string  { return strconv.FormatFloat(float64(n.Value), 'g', -1, 32) + "f" }
func (n *DoubleLit) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) + "d" }
func (n *StringLit) String() string { return strconv.Quote(n.Value) }
func (n *BoolLit) String() string   { return strconv.FormatBool(n.Value) }
func (n *NullLit) String() string   { return "null" }
func (n *Unary) String() string     { return "(" + n.Op.String() + n.X.String() + ")" }
func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op.String() + " " + n.Y.String() + ")"
}
func (n *NewObject) String() string { return "new " + n.Class + "()" }

func (*IntLit) exprNode()    {}
func (*LongLit) exprNode()   {}
func (*FloatLit) exprNode()  {}
func (*DoubleLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NullLit) exprNode()   {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*NewObject) exprNode() {}

// FieldDecl 字段声明 `[modifiers] Type name [= init];`
type FieldDecl struct {
	Modifiers []string
	Type      string // Java 源码形式的类型名，数组带 []
	Name      string
	Init      Node // 没有初始化表达式时为 nil
}

func (d *FieldDecl) String() string {
	var sb strings.Builder
	for _, m := range d.Modifiers {
		sb.WriteString(m)
		sb.WriteByte(' ')
	}
	sb.WriteString(d.Type)
	sb.WriteByte(' ')
	sb.WriteString(d.Name)
	if d.Init != nil {
		sb.WriteString(" = ")
		sb.WriteString(d.Init.String())
	}
	sb.WriteByte(';')
	return sb.String()
}
