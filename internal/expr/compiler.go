package expr

import (
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// nullType null 字面量的类型标记，只参与类型检查，不会写入 class 文件
var nullType = jtype.ClassOf("<null>")

// Compiler 表达式编译器。
// 先完成类型检查再写出指令：类型错误不会在指令流中留下任何内容。
type Compiler struct{}

// NewCompiler 创建表达式编译器
func NewCompiler() *Compiler {
	return &Compiler{}
}

// CompileSource 解析并编译源码，结果转换为 target 类型后留在栈顶。
// 返回求值过程的最大栈深度。
func (c *Compiler) CompileSource(src string, target jtype.Type, code jvmgen.Sink) (int, error) {
	tree, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return c.CompileTree(tree, target, code)
}

// CompileTree 编译已解析的语法树
func (c *Compiler) CompileTree(tree Node, target jtype.Type, code jvmgen.Sink) (int, error) {
	typ, err := TypeOf(tree)
	if err != nil {
		return 0, err
	}
	conv, cerr := assignConversion(typ, target)
	if cerr != nil {
		cerr.Pos = tree.Pos()
		return 0, cerr
	}

	e := &emitter{code: code}
	e.emit(tree)
	for _, op := range conv {
		e.op(op)
	}
	return e.max, nil
}

// ============================================================================
// 类型检查
// ============================================================================

// TypeOf 推断表达式的静态类型
func TypeOf(n Node) (jtype.Type, error) {
	switch n := n.(type) {
	case *IntLit:
		return jtype.Int, nil
	case *LongLit:
		return jtype.Long, nil
	case *FloatLit:
		return jtype.Float, nil
	case *DoubleLit:
		return jtype.Double, nil
	case *StringLit:
		return jtype.String, nil
	case *BoolLit:
		return jtype.Boolean, nil
	case *NullLit:
		return nullType, nil
	case *NewObject:
		t, err := jtype.Parse(n.Class)
		if err != nil || t.Kind() != jtype.KindClass {
			return jtype.Type{}, errorf(n.At, "cannot instantiate %s", n.Class)
		}
		return t, nil
	case *Unary:
		x, err := TypeOf(n.X)
		if err != nil {
			return jtype.Type{}, err
		}
		if !isNumeric(x) {
			return jtype.Type{}, errorf(n.At, "bad operand type %s for unary -", typeName(x))
		}
		return x, nil
	case *Binary:
		x, err := TypeOf(n.X)
		if err != nil {
			return jtype.Type{}, err
		}
		y, err := TypeOf(n.Y)
		if err != nil {
			return jtype.Type{}, err
		}
		if n.Op == PLUS && (x == jtype.String || y == jtype.String) {
			return jtype.Type{}, errorf(n.Pos(), "string concatenation is not supported in initializers")
		}
		if !isNumeric(x) || !isNumeric(y) {
			return jtype.Type{}, errorf(n.Pos(), "bad operand types for %s: %s and %s", n.Op, typeName(x), typeName(y))
		}
		return promote(x, y), nil
	}
	return jtype.Type{}, errorf(n.Pos(), "unsupported expression %s", n)
}

func isNumeric(t jtype.Type) bool {
	switch t {
	case jtype.Int, jtype.Long, jtype.Float, jtype.Double:
		return true
	}
	return false
}

// promote 二元数值提升
func promote(x, y jtype.Type) jtype.Type {
	switch {
	case x == jtype.Double || y == jtype.Double:
		return jtype.Double
	case x == jtype.Float || y == jtype.Float:
		return jtype.Float
	case x == jtype.Long || y == jtype.Long:
		return jtype.Long
	default:
		return jtype.Int
	}
}

func typeName(t jtype.Type) string {
	if t == nullType {
		return "null"
	}
	return t.Name()
}

// widening 基本类型放宽转换表
var widening = map[[2]jtype.Type][]byte{
	{jtype.Int, jtype.Long}:     {jvmgen.OpI2l},
	{jtype.Int, jtype.Float}:    {jvmgen.OpI2f},
	{jtype.Int, jtype.Double}:   {jvmgen.OpI2d},
	{jtype.Long, jtype.Float}:   {jvmgen.OpL2f},
	{jtype.Long, jtype.Double}:  {jvmgen.OpL2d},
	{jtype.Float, jtype.Double}: {jvmgen.OpF2d},
}

// assignConversion 计算从 from 赋值到 to 所需的转换指令
func assignConversion(from, to jtype.Type) ([]byte, *CompileError) {
	if from == to {
		return nil, nil
	}
	if from == nullType && to.IsReference() {
		return nil, nil
	}
	if ops, ok := widening[[2]jtype.Type{from, to}]; ok {
		return ops, nil
	}
	if from.IsReference() && from != nullType && to == jtype.Object {
		return nil, nil
	}
	return nil, errorf(0, "incompatible types: %s cannot be converted to %s", typeName(from), to.Name())
}

// ============================================================================
// 指令生成
// ============================================================================

// emitter 写出指令并跟踪栈深度
type emitter struct {
	code  jvmgen.Sink
	depth int
	max   int
}

func (e *emitter) grow(n int) {
	e.depth += n
	if e.depth > e.max {
		e.max = e.depth
	}
}

func (e *emitter) op(op byte) {
	d, _ := jvmgen.StackEffect(op)
	e.code.AddOpcode(op)
	e.grow(d)
}

// arithOffset int/long/float/double 四个变体相对 int 指令的偏移
func arithOffset(t jtype.Type) byte {
	switch t {
	case jtype.Long:
		return 1
	case jtype.Float:
		return 2
	case jtype.Double:
		return 3
	}
	return 0
}

var arithBase = map[TokenType]byte{
	PLUS:    jvmgen.OpIadd,
	MINUS:   jvmgen.OpIsub,
	STAR:    jvmgen.OpImul,
	SLASH:   jvmgen.OpIdiv,
	PERCENT: jvmgen.OpIrem,
}

// emit 写出已通过类型检查的节点
func (e *emitter) emit(n Node) {
	switch n := n.(type) {
	case *IntLit:
		e.code.AddIconst(n.Value)
		e.grow(1)
	case *BoolLit:
		if n.Value {
			e.code.AddIconst(1)
		} else {
			e.code.AddIconst(0)
		}
		e.grow(1)
	case *LongLit:
		e.code.AddLdc2wLong(n.Value)
		e.grow(2)
	case *FloatLit:
		e.code.AddLdcFloat(n.Value)
		e.grow(1)
	case *DoubleLit:
		e.code.AddLdc2wDouble(n.Value)
		e.grow(2)
	case *StringLit:
		e.code.AddLdc(n.Value)
		e.grow(1)
	case *NullLit:
		e.op(jvmgen.OpAconstNull)
	case *NewObject:
		t, _ := jtype.Parse(n.Class)
		e.code.AddNew(t.InternalName())
		e.grow(1)
		e.op(jvmgen.OpDup)
		e.code.AddInvokespecial(t.InternalName(), "<init>", "()V")
		e.grow(-1)
	case *Unary:
		t, _ := TypeOf(n.X)
		e.emit(n.X)
		e.op(jvmgen.OpIneg + arithOffset(t))
	case *Binary:
		t, _ := TypeOf(n)
		e.emitOperand(n.X, t)
		e.emitOperand(n.Y, t)
		e.op(arithBase[n.Op] + arithOffset(t))
	}
}

// emitOperand 写出操作数并提升到运算类型
func (e *emitter) emitOperand(n Node, to jtype.Type) {
	e.emit(n)
	from, _ := TypeOf(n)
	for _, op := range widening[[2]jtype.Type{from, to}] {
		e.op(op)
	}
}
