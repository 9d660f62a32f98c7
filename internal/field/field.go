// Package field 实现字段描述与字段初始化器的字节码合成。
//
// 调用方为字段选择一个 Initializer，类定型时由 Synthesizer 按字段的
// static 修饰符写出实例上下文（构造方法）或静态上下文（<clinit>）的指令，
// 并返回这段指令需要的最大操作数栈深度。
package field

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/expr"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// Declaring 字段所属的类。
// 类负责生命周期：定型后 CheckModify 返回错误，字段不再允许修改。
type Declaring interface {
	// Name 返回 Java 形式的类名 (com.example.Point)
	Name() string
	// ConstPool 返回类的常量池，没有可挂载的 class 结构时返回 nil
	ConstPool() *jvmgen.ConstPool
	// CheckModify 类仍可修改时返回 nil
	CheckModify() error
}

// Attribute 字段属性，值是不透明的字节序列
type Attribute struct {
	Name string
	Data []byte
}

// Field 字段描述
type Field struct {
	declaring  Declaring
	name       string
	typ        jtype.Type
	modifiers  uint16
	attributes []Attribute
}

// New 创建字段。declaring 没有 class 结构可挂载时返回 BadDeclaringClass。
func New(typ jtype.Type, name string, declaring Declaring) (*Field, error) {
	if declaring == nil {
		return nil, errors.BadDeclaringClass("<nil>")
	}
	if declaring.ConstPool() == nil {
		return nil, errors.BadDeclaringClass(declaring.Name())
	}
	if !typ.IsValid() || typ == jtype.Void {
		return nil, errors.InvalidInitializer("invalid field type %s", typ)
	}
	return &Field{declaring: declaring, name: name, typ: typ}, nil
}

// Copy 以 src 的名称和类型在另一个类中创建字段
func Copy(src *Field, declaring Declaring) (*Field, error) {
	return New(src.typ, src.name, declaring)
}

// Make 编译字段声明源码，例如 `public int k = 3;`。
// 带初始化表达式时同时返回对应的 SourceExpr 初始化器，否则初始化器为 nil。
func Make(src string, declaring Declaring) (*Field, Initializer, error) {
	decl, err := expr.ParseFieldDecl(src)
	if err != nil {
		if stderrors.Is(err, expr.ErrNotField) {
			return nil, nil, errors.NotAField(err)
		}
		return nil, nil, errors.CompileFailure("", err)
	}

	typ, err := jtype.Parse(decl.Type)
	if err != nil {
		return nil, nil, errors.CompileFailure(decl.Name, err)
	}

	f, err := New(typ, decl.Name, declaring)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range decl.Modifiers {
		f.modifiers |= modifierFlags[m]
	}

	if decl.Init == nil {
		return f, nil, nil
	}
	return f, ByExprTree(decl.Init), nil
}

// ============================================================================
// 访问器
// ============================================================================

// Name 返回字段名
func (f *Field) Name() string { return f.name }

// Type 返回字段类型
func (f *Field) Type() jtype.Type { return f.typ }

// Descriptor 返回字段类型描述符
func (f *Field) Descriptor() string { return f.typ.Descriptor() }

// Modifiers 返回访问标志
func (f *Field) Modifiers() uint16 { return f.modifiers }

// IsStatic 是否为静态字段
func (f *Field) IsStatic() bool { return f.modifiers&jvmgen.AccStatic != 0 }

// DeclaringClass 返回所属类
func (f *Field) DeclaringClass() Declaring { return f.declaring }

// SetName 修改字段名
func (f *Field) SetName(name string) error {
	if err := f.declaring.CheckModify(); err != nil {
		return err
	}
	f.name = name
	return nil
}

// SetType 修改字段类型
func (f *Field) SetType(typ jtype.Type) error {
	if err := f.declaring.CheckModify(); err != nil {
		return err
	}
	if !typ.IsValid() || typ == jtype.Void {
		return errors.InvalidInitializer("invalid field type %s", typ)
	}
	f.typ = typ
	return nil
}

// SetModifiers 修改访问标志
func (f *Field) SetModifiers(mod uint16) error {
	if err := f.declaring.CheckModify(); err != nil {
		return err
	}
	f.modifiers = mod
	return nil
}

// Attribute 按名称查找属性，不存在时返回 false
func (f *Field) Attribute(name string) ([]byte, bool) {
	for _, a := range f.attributes {
		if a.Name == name {
			return a.Data, true
		}
	}
	return nil, false
}

// SetAttribute 设置属性，同名属性被替换
func (f *Field) SetAttribute(name string, data []byte) error {
	if err := f.declaring.CheckModify(); err != nil {
		return err
	}
	data = append([]byte(nil), data...)
	for i := range f.attributes {
		if f.attributes[i].Name == name {
			f.attributes[i].Data = data
			return nil
		}
	}
	f.attributes = append(f.attributes, Attribute{Name: name, Data: data})
	return nil
}

// Attributes 按添加顺序返回全部属性
func (f *Field) Attributes() []Attribute {
	out := make([]Attribute, len(f.attributes))
	copy(out, f.attributes)
	return out
}

func (f *Field) String() string {
	var sb strings.Builder
	if mods := ModifierString(f.modifiers); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "%s %s", f.typ.Name(), f.name)
	return sb.String()
}

// ============================================================================
// 修饰符
// ============================================================================

var modifierFlags = map[string]uint16{
	"public":    jvmgen.AccPublic,
	"private":   jvmgen.AccPrivate,
	"protected": jvmgen.AccProtected,
	"static":    jvmgen.AccStatic,
	"final":     jvmgen.AccFinal,
	"volatile":  jvmgen.AccVolatile,
	"transient": jvmgen.AccTransient,
}

// modifierOrder Java 源码中修饰符的惯用顺序
var modifierOrder = []string{"public", "protected", "private", "static", "final", "transient", "volatile"}

// ParseModifiers 将修饰符关键字转换为访问标志
func ParseModifiers(words []string) (uint16, error) {
	var mod uint16
	for _, w := range words {
		flag, ok := modifierFlags[w]
		if !ok {
			return 0, errors.InvalidInitializer("unknown modifier %q%s", w, errors.DidYouMean(w, modifierOrder))
		}
		mod |= flag
	}
	return mod, nil
}

// ModifierString 返回访问标志的源码形式
func ModifierString(mod uint16) string {
	var words []string
	for _, w := range modifierOrder {
		if mod&modifierFlags[w] != 0 {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
