package jvmgen

import (
	"fmt"

	"github.com/tangzhangming/fieldsynth/internal/jtype"
)

// Sink 只追加的指令流。
// 字段初始化器与表达式编译器只通过这个接口写出指令。
type Sink interface {
	// AddOpcode 写入无操作数的单字节指令
	AddOpcode(op byte)
	// AddAload 加载局部变量 n 中的引用（n 为 0 时即接收者 this）
	AddAload(n int)
	// AddLoad 按类型 t 加载局部变量 n，返回压入的栈字数
	AddLoad(n int, t jtype.Type) int
	// AddIconst 压入 int 常量，自动选择 iconst/bipush/sipush/ldc
	AddIconst(v int32)
	// AddLdc 压入字符串常量
	AddLdc(s string)
	// AddLdcFloat 压入 float 常量
	AddLdcFloat(v float32)
	// AddLdc2wLong 压入 long 常量
	AddLdc2wLong(v int64)
	// AddLdc2wDouble 压入 double 常量
	AddLdc2wDouble(v float64)
	// AddNew 创建 className 类的未初始化对象
	AddNew(className string)
	// AddNewarray 压入长度 size 后创建元素类型为 elem 的一维数组
	AddNewarray(elem jtype.Type, size int32)
	// AddAnewarray 以栈顶 int 为长度创建引用数组（只写指令，不压长度）
	AddAnewarray(className string)
	// AddMultiNewarray 压入各维长度后创建多维数组，返回压入的维度数
	AddMultiNewarray(arrayType jtype.Type, dims []int32) int
	// AddInvokespecial 调用构造方法或私有方法
	AddInvokespecial(className, name, desc string)
	// AddInvokestatic 调用静态方法
	AddInvokestatic(className, name, desc string)
	// AddPutfield 写入当前类的实例字段
	AddPutfield(name, desc string)
	// AddPutstatic 写入当前类的静态字段
	AddPutstatic(name, desc string)
	// MaxStack 返回迄今为止的最大栈深度
	MaxStack() int
}

// Bytecode 方法体指令序列，实现 Sink。
// 写出指令的同时跟踪当前栈深度与最大栈深度。
type Bytecode struct {
	cp        *ConstPool
	thisClass string // 当前类的内部名称
	code      *ByteWriter
	depth     int
	maxStack  int
}

var _ Sink = (*Bytecode)(nil)

// NewBytecode 创建指令序列，thisClass 为字段所属类的内部名称
func NewBytecode(cp *ConstPool, thisClass string) *Bytecode {
	return &Bytecode{
		cp:        cp,
		thisClass: thisClass,
		code:      NewByteWriter(),
	}
}

// ConstPool 返回关联的常量池
func (b *Bytecode) ConstPool() *ConstPool {
	return b.cp
}

// Bytes 返回已写出的指令字节
func (b *Bytecode) Bytes() []byte {
	return b.code.Bytes()
}

// Len 返回指令字节长度
func (b *Bytecode) Len() int {
	return b.code.Len()
}

// StackDepth 返回当前栈深度
func (b *Bytecode) StackDepth() int {
	return b.depth
}

// MaxStack 返回最大栈深度
func (b *Bytecode) MaxStack() int {
	return b.maxStack
}

// SetMaxStack 提升最大栈深度（只增不减）
func (b *Bytecode) SetMaxStack(n int) {
	if n > b.maxStack {
		b.maxStack = n
	}
}

// growStack 调整当前栈深度并更新最大值
func (b *Bytecode) growStack(n int) {
	b.depth += n
	if b.depth > b.maxStack {
		b.maxStack = b.depth
	}
}

func (b *Bytecode) add(bs ...byte) {
	b.code.WriteBytes(bs)
}

func (b *Bytecode) addIndex(idx uint16) {
	b.code.WriteU16(idx)
}

// AddOpcode 写入无操作数的单字节指令
func (b *Bytecode) AddOpcode(op byte) {
	d, ok := StackEffect(op)
	if !ok {
		panic(fmt.Sprintf("jvmgen: opcode 0x%02X requires operands", op))
	}
	b.add(op)
	b.growStack(d)
}

// AddAload 加载引用类型局部变量
func (b *Bytecode) AddAload(n int) {
	b.addLoadOp(OpAload, OpAload0, n)
	b.growStack(1)
}

// AddLoad 按类型加载局部变量，返回压入的栈字数
func (b *Bytecode) AddLoad(n int, t jtype.Type) int {
	switch t.Kind() {
	case jtype.KindBoolean, jtype.KindByte, jtype.KindChar, jtype.KindShort, jtype.KindInt:
		b.addLoadOp(OpIload, OpIload0, n)
	case jtype.KindLong:
		b.addLoadOp(OpLload, OpLload0, n)
	case jtype.KindFloat:
		b.addLoadOp(OpFload, OpFload0, n)
	case jtype.KindDouble:
		b.addLoadOp(OpDload, OpDload0, n)
	default:
		b.addLoadOp(OpAload, OpAload0, n)
	}
	size := t.Size()
	b.growStack(size)
	return size
}

// addLoadOp 写出加载指令：0..3 使用短格式，256 以上使用 wide 前缀
func (b *Bytecode) addLoadOp(op, op0 byte, n int) {
	switch {
	case n < 4:
		b.add(op0 + byte(n))
	case n < 256:
		b.add(op, byte(n))
	default:
		b.add(OpWide, op)
		b.addIndex(uint16(n))
	}
}

// AddIconst 压入 int 常量
func (b *Bytecode) AddIconst(v int32) {
	switch {
	case v >= -1 && v <= 5:
		b.add(byte(OpIconst0 + v))
	case v >= -128 && v <= 127:
		b.add(OpBipush, byte(int8(v)))
	case v >= -32768 && v <= 32767:
		b.add(OpSipush)
		b.addIndex(uint16(int16(v)))
	default:
		b.addLdcIndex(b.cp.AddInteger(v))
		return
	}
	b.growStack(1)
}

// AddLdc 压入字符串常量
func (b *Bytecode) AddLdc(s string) {
	b.addLdcIndex(b.cp.AddString(s))
}

func (b *Bytecode) addLdcIndex(idx uint16) {
	if idx > 0xFF {
		b.add(OpLdcW)
		b.addIndex(idx)
	} else {
		b.add(OpLdc, byte(idx))
	}
	b.growStack(1)
}

// AddLdcFloat 压入 float 常量
func (b *Bytecode) AddLdcFloat(v float32) {
	b.addLdcIndex(b.cp.AddFloat(v))
}

// AddLdc2wLong 压入 long 常量
func (b *Bytecode) AddLdc2wLong(v int64) {
	b.add(OpLdc2W)
	b.addIndex(b.cp.AddLong(v))
	b.growStack(2)
}

// AddLdc2wDouble 压入 double 常量
func (b *Bytecode) AddLdc2wDouble(v float64) {
	b.add(OpLdc2W)
	b.addIndex(b.cp.AddDouble(v))
	b.growStack(2)
}

// AddNew 创建对象
func (b *Bytecode) AddNew(className string) {
	b.add(OpNew)
	b.addIndex(b.cp.AddClass(className))
	b.growStack(1)
}

// AddNewarray 创建一维数组，基本类型使用 newarray，引用类型使用 anewarray
func (b *Bytecode) AddNewarray(elem jtype.Type, size int32) {
	b.AddIconst(size)
	if elem.IsPrimitive() {
		b.add(OpNewarray, elem.ArrayTypeCode())
		return
	}
	b.AddAnewarray(elem.InternalName())
}

// AddAnewarray 以栈顶长度创建引用数组
func (b *Bytecode) AddAnewarray(className string) {
	b.add(OpAnewarray)
	b.addIndex(b.cp.AddClass(className))
}

// AddMultiNewarray 创建多维数组
func (b *Bytecode) AddMultiNewarray(arrayType jtype.Type, dims []int32) int {
	for _, d := range dims {
		b.AddIconst(d)
	}
	b.add(OpMultianewarray)
	b.addIndex(b.cp.AddClass(arrayType.InternalName()))
	b.add(byte(len(dims)))
	b.growStack(1 - len(dims))
	return len(dims)
}

// AddInvokespecial 调用构造方法
func (b *Bytecode) AddInvokespecial(className, name, desc string) {
	b.add(OpInvokespecial)
	b.addIndex(b.cp.AddMethodref(className, name, desc))
	b.growStack(callStackEffect(desc) - 1)
}

// AddInvokestatic 调用静态方法
func (b *Bytecode) AddInvokestatic(className, name, desc string) {
	b.add(OpInvokestatic)
	b.addIndex(b.cp.AddMethodref(className, name, desc))
	b.growStack(callStackEffect(desc))
}

// AddPutfield 写入当前类的实例字段
func (b *Bytecode) AddPutfield(name, desc string) {
	b.add(OpPutfield)
	b.addIndex(b.cp.AddFieldref(b.thisClass, name, desc))
	b.growStack(-1 - descriptorSize(desc))
}

// AddPutstatic 写入当前类的静态字段
func (b *Bytecode) AddPutstatic(name, desc string) {
	b.add(OpPutstatic)
	b.addIndex(b.cp.AddFieldref(b.thisClass, name, desc))
	b.growStack(-descriptorSize(desc))
}

// callStackEffect 根据方法描述符计算调用（不含接收者）对栈深度的影响
func callStackEffect(desc string) int {
	params, ret, err := jtype.ParseMethodDescriptor(desc)
	if err != nil {
		panic(fmt.Sprintf("jvmgen: %v", err))
	}
	n := ret.Size()
	for _, p := range params {
		n -= p.Size()
	}
	return n
}

func descriptorSize(desc string) int {
	if desc == "J" || desc == "D" {
		return 2
	}
	return 1
}
