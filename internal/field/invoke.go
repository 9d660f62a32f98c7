package field

import (
	"strings"

	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// InvokeKind 生成调用的种类
type InvokeKind int

const (
	// ConstructorCall new Owner(...)，调用后引用留在栈上作为字段值
	ConstructorCall InvokeKind = iota
	// StaticMethodCall Owner.method(...)，返回值作为字段值
	StaticMethodCall
)

func (k InvokeKind) String() string {
	if k == ConstructorCall {
		return "constructor"
	}
	return "static"
}

// invocation 构造调用与静态调用共用的调用构建器
type invocation struct {
	kind    InvokeKind
	owner   jtype.Type
	method  string
	strings []string
	forward bool
}

func newInvocation(kind InvokeKind, owner jtype.Type, method string, stringParams []string, forward bool) invocation {
	inv := invocation{kind: kind, owner: owner, method: method, forward: forward}
	if stringParams != nil {
		inv.strings = append([]string{}, stringParams...)
	}
	return inv
}

func (inv invocation) hasStrings() bool {
	return inv.strings != nil
}

// descriptor 返回完整的方法描述符：构造方法返回 void，静态方法返回字段类型
func (inv invocation) descriptor(fieldType jtype.Type, isStatic bool) string {
	desc := ParamDescriptor(inv.hasStrings(), inv.forward, isStatic)
	if inv.kind == ConstructorCall {
		return desc + "V"
	}
	return desc + fieldType.Descriptor()
}

func (inv invocation) String() string {
	var sb strings.Builder
	sb.WriteString(inv.owner.Name())
	if inv.kind == StaticMethodCall {
		sb.WriteByte('.')
		sb.WriteString(inv.method)
	}
	sb.WriteString("(this")
	if inv.hasStrings() {
		sb.WriteString(", {")
		for i, s := range inv.strings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('"')
			sb.WriteString(s)
			sb.WriteByte('"')
		}
		sb.WriteString("}")
	}
	if inv.forward {
		sb.WriteString(", args")
	}
	sb.WriteByte(')')
	return sb.String()
}

// emitInstance 在构造方法中写出调用并赋值给实例字段，返回栈深度
func (inv invocation) emitInstance(fieldType jtype.Type, name string, code jvmgen.Sink, params []jtype.Type) int {
	var stack int
	code.AddAload(0)
	if inv.kind == ConstructorCall {
		code.AddNew(inv.owner.InternalName())
		code.AddOpcode(jvmgen.OpDup)
		code.AddAload(0)
		stack = 4
	} else {
		code.AddAload(0)
		stack = 2
	}

	if inv.hasStrings() {
		stack += inv.emitStringArray(code)
	}
	if inv.forward {
		stack += emitParamArray(code, params)
	}

	inv.emitCall(fieldType, code, false)
	code.AddPutfield(name, fieldType.Descriptor())
	return stack
}

// emitStatic 在 <clinit> 中写出调用并赋值给静态字段，返回栈深度
func (inv invocation) emitStatic(fieldType jtype.Type, name string, code jvmgen.Sink) int {
	var stack int
	if inv.kind == ConstructorCall {
		code.AddNew(inv.owner.InternalName())
		code.AddOpcode(jvmgen.OpDup)
		stack = 2
	} else {
		stack = 1
	}

	if inv.hasStrings() {
		stack += inv.emitStringArray(code)
	}

	inv.emitCall(fieldType, code, true)
	code.AddPutstatic(name, fieldType.Descriptor())
	return stack
}

func (inv invocation) emitCall(fieldType jtype.Type, code jvmgen.Sink, isStatic bool) {
	desc := inv.descriptor(fieldType, isStatic)
	if inv.kind == ConstructorCall {
		code.AddInvokespecial(inv.owner.InternalName(), "<init>", desc)
	} else {
		code.AddInvokestatic(inv.owner.InternalName(), inv.method, desc)
	}
}

// emitStringArray 构建 String[]，每个元素依次 dup、下标、字面量、aastore。
// 元素之间栈深度不叠加，因此总是返回 4。
func (inv invocation) emitStringArray(code jvmgen.Sink) int {
	code.AddIconst(int32(len(inv.strings)))
	code.AddAnewarray("java/lang/String")
	for j, s := range inv.strings {
		code.AddOpcode(jvmgen.OpDup)
		code.AddIconst(int32(j))
		code.AddLdc(s)
		code.AddOpcode(jvmgen.OpAastore)
	}
	return 4
}

// emitParamArray 将构造方法参数（从槽位 1 开始）装入 Object[]，基本类型先装箱。
// 参数列表为空时只创建空数组，返回 1；否则返回 8。
func emitParamArray(code jvmgen.Sink, params []jtype.Type) int {
	code.AddIconst(int32(len(params)))
	code.AddAnewarray("java/lang/Object")
	if len(params) == 0 {
		return 1
	}

	slot := 1
	for i, p := range params {
		code.AddOpcode(jvmgen.OpDup)
		code.AddIconst(int32(i))
		if p.IsPrimitive() {
			wrapper := p.WrapperName()
			code.AddNew(wrapper)
			code.AddOpcode(jvmgen.OpDup)
			code.AddLoad(slot, p)
			code.AddInvokespecial(wrapper, "<init>", jtype.MethodDescriptor(jtype.Void, p))
		} else {
			code.AddAload(slot)
		}
		code.AddOpcode(jvmgen.OpAastore)
		slot += p.Size()
	}
	return 8
}
