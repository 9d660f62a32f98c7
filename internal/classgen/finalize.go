package classgen

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/fieldsynth/internal/field"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// MethodStat 生成方法的统计
type MethodStat struct {
	Name       string
	Descriptor string
	MaxStack   int
	MaxLocals  int
	CodeLength int
}

// FieldStat 字段初始化的统计。Stack 为各方法中该字段初始化器的最大栈深度。
type FieldStat struct {
	Name        string
	Descriptor  string
	Modifiers   uint16
	Static      bool
	Initializer string
	Stack       int
}

// Result 定型结果
type Result struct {
	Class   string
	Super   string
	Bytes   []byte
	Fields  []FieldStat
	Methods []MethodStat
}

// Finalize 生成 class 文件并定型。
// 所有初始化器先统一检查，任一失败时返回合并后的错误且类保持可修改。
func (c *Class) Finalize() (*Result, error) {
	if err := c.CheckModify(); err != nil {
		return nil, err
	}
	if err := c.checkAll(); err != nil {
		c.log.Warn("class finalization failed",
			zap.String("class", c.name),
			zap.Int("errors", len(multierr.Errors(err))))
		return nil, err
	}

	ctors := c.ctors
	if len(ctors) == 0 {
		ctors = []Constructor{{Access: jvmgen.AccPublic}}
	}

	result := &Result{Class: c.name, Super: c.super}
	fields := c.fields.Fields()
	result.Fields = make([]FieldStat, len(fields))
	stats := make(map[*field.Field]*FieldStat, len(fields))
	for i, f := range fields {
		st := &result.Fields[i]
		*st = FieldStat{
			Name:       f.Name(),
			Descriptor: f.Descriptor(),
			Modifiers:  f.Modifiers(),
			Static:     f.IsStatic(),
		}
		if init := c.inits[f]; init != nil {
			st.Initializer = init.String()
		}
		stats[f] = st
	}

	cf := jvmgen.NewClassFile(c.cp, c.InternalName(), jtype.ClassOf(c.super).InternalName())
	cf.AccessFlags = c.access | jvmgen.AccSuper

	for _, f := range fields {
		cf.Fields = append(cf.Fields, c.fieldInfo(f))
	}

	var errs error
	for _, ctor := range ctors {
		m, st, err := c.generateInit(ctor, stats)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cf.Methods = append(cf.Methods, m)
		result.Methods = append(result.Methods, st)
	}

	if c.hasStaticInit() {
		m, st, err := c.generateClinit(stats)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			cf.Methods = append(cf.Methods, m)
			result.Methods = append(result.Methods, st)
		}
	}
	if errs != nil {
		return nil, errs
	}

	data, err := cf.ToBytes()
	if err != nil {
		return nil, err
	}
	result.Bytes = data
	c.frozen = true

	c.log.Info("class finalized",
		zap.String("class", c.name),
		zap.Int("fields", len(result.Fields)),
		zap.Int("methods", len(result.Methods)),
		zap.Int("bytes", len(data)))
	return result, nil
}

func (c *Class) fieldInfo(f *field.Field) jvmgen.FieldInfo {
	info := jvmgen.FieldInfo{
		AccessFlags:     f.Modifiers(),
		NameIndex:       c.cp.AddUtf8(f.Name()),
		DescriptorIndex: c.cp.AddUtf8(f.Descriptor()),
	}
	for _, a := range f.Attributes() {
		info.Attributes = append(info.Attributes, jvmgen.AttributeInfo{
			NameIndex: c.cp.AddUtf8(a.Name),
			Info:      a.Data,
		})
	}
	return info
}

// generateInit 生成构造方法：调用父类无参构造方法，再按声明顺序初始化实例字段
func (c *Class) generateInit(ctor Constructor, stats map[*field.Field]*FieldStat) (jvmgen.MethodInfo, MethodStat, error) {
	code := jvmgen.NewBytecode(c.cp, c.InternalName())
	code.AddAload(0)
	code.AddInvokespecial(jtype.ClassOf(c.super).InternalName(), "<init>", "()V")

	maxStack := 1
	var errs error
	for _, f := range c.fields.Fields() {
		init := c.inits[f]
		if init == nil || f.IsStatic() {
			continue
		}
		stack, err := c.synth.Synthesize(f, init, ctor.Params, code)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		maxStack = max(maxStack, stack)
		stats[f].Stack = max(stats[f].Stack, stack)
	}
	if errs != nil {
		return jvmgen.MethodInfo{}, MethodStat{}, errs
	}
	code.AddOpcode(jvmgen.OpReturn)

	return c.method(ctor.Access, "<init>", ctor.Descriptor(), code, maxStack, field.SlotOf(len(ctor.Params), ctor.Params, false))
}

// generateClinit 生成类初始化方法，按声明顺序初始化静态字段
func (c *Class) generateClinit(stats map[*field.Field]*FieldStat) (jvmgen.MethodInfo, MethodStat, error) {
	code := jvmgen.NewBytecode(c.cp, c.InternalName())

	maxStack := 0
	var errs error
	for _, f := range c.fields.Fields() {
		init := c.inits[f]
		if init == nil || !f.IsStatic() {
			continue
		}
		stack, err := c.synth.Synthesize(f, init, nil, code)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		maxStack = max(maxStack, stack)
		stats[f].Stack = stack
	}
	if errs != nil {
		return jvmgen.MethodInfo{}, MethodStat{}, errs
	}
	code.AddOpcode(jvmgen.OpReturn)

	return c.method(jvmgen.AccStatic, "<clinit>", "()V", code, maxStack, 0)
}

// method 组装方法与 Code 属性。
// 声明的 max_stack 取初始化器报告值与指令流实际峰值中的较大者。
func (c *Class) method(access uint16, name, desc string, code *jvmgen.Bytecode, maxStack, maxLocals int) (jvmgen.MethodInfo, MethodStat, error) {
	code.SetMaxStack(maxStack)
	attr, err := jvmgen.CodeAttribute(c.cp, code.MaxStack(), maxLocals, code.Bytes())
	if err != nil {
		return jvmgen.MethodInfo{}, MethodStat{}, fmt.Errorf("%s%s: %w", name, desc, err)
	}
	m := jvmgen.MethodInfo{
		AccessFlags:     access,
		NameIndex:       c.cp.AddUtf8(name),
		DescriptorIndex: c.cp.AddUtf8(desc),
		Attributes:      []jvmgen.AttributeInfo{attr},
	}
	st := MethodStat{
		Name:       name,
		Descriptor: desc,
		MaxStack:   code.MaxStack(),
		MaxLocals:  maxLocals,
		CodeLength: code.Len(),
	}
	return m, st, nil
}

func (c *Class) hasStaticInit() bool {
	for _, f := range c.fields.Fields() {
		if f.IsStatic() && c.inits[f] != nil {
			return true
		}
	}
	return false
}
