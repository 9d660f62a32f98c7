// Package classgen 维护正在构建的类：常量池、字段、构造方法与定型。
//
// Finalize 为每个构造方法生成 <init>，为静态字段生成 <clinit>，
// 字段初始化指令由 field.Synthesizer 写出，最后输出 class 文件。
package classgen

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/field"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

const objectClass = "java.lang.Object"

// Constructor 构造方法签名
type Constructor struct {
	Access uint16
	Params []jtype.Type
}

// Descriptor 返回构造方法描述符
func (c Constructor) Descriptor() string {
	return jtype.MethodDescriptor(jtype.Void, c.Params...)
}

// Class 正在构建的类
type Class struct {
	name   string // Java 形式的类名
	super  string
	access uint16
	cp     *jvmgen.ConstPool
	fields field.List
	inits  map[*field.Field]field.Initializer
	ctors  []Constructor
	frozen bool

	synth *field.Synthesizer
	log   *zap.Logger
}

// Option 配置 Class
type Option func(*Class)

// WithSuper 设置父类（默认 java.lang.Object）。
// 生成的构造方法调用父类的无参构造方法。
func WithSuper(name string) Option {
	return func(c *Class) { c.super = name }
}

// WithAccess 设置类的访问标志（默认 public）
func WithAccess(access uint16) Option {
	return func(c *Class) { c.access = access }
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(c *Class) {
		if log != nil {
			c.log = log
		}
	}
}

// New 创建类，name 为 Java 形式的类名 (com.example.Point)
func New(name string, opts ...Option) *Class {
	c := &Class{
		name:   name,
		super:  objectClass,
		access: jvmgen.AccPublic,
		cp:     jvmgen.NewConstPool(),
		inits:  make(map[*field.Field]field.Initializer),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.synth = field.NewSynthesizer(field.WithLogger(c.log))
	return c
}

// Name 返回 Java 形式的类名
func (c *Class) Name() string { return c.name }

// InternalName 返回内部名称 (com/example/Point)
func (c *Class) InternalName() string { return jtype.ClassOf(c.name).InternalName() }

// Super 返回父类名
func (c *Class) Super() string { return c.super }

// ConstPool 返回常量池
func (c *Class) ConstPool() *jvmgen.ConstPool { return c.cp }

// IsFrozen 是否已定型
func (c *Class) IsFrozen() bool { return c.frozen }

// CheckModify 类已定型时返回 Frozen
func (c *Class) CheckModify() error {
	if c.frozen {
		return errors.Frozen(c.name)
	}
	return nil
}

// Fields 按声明顺序返回字段
func (c *Class) Fields() []*field.Field { return c.fields.Fields() }

// Initializer 返回字段的初始化器，没有时返回 nil
func (c *Class) Initializer(f *field.Field) field.Initializer { return c.inits[f] }

// Constructors 返回构造方法
func (c *Class) Constructors() []Constructor {
	out := make([]Constructor, len(c.ctors))
	copy(out, c.ctors)
	return out
}

// AddField 添加字段，init 可以为 nil。
// 初始化器在添加时即检查，检查失败时类保持不变。
func (c *Class) AddField(f *field.Field, init field.Initializer) error {
	if err := c.CheckModify(); err != nil {
		return err
	}
	if f.DeclaringClass() != field.Declaring(c) {
		return errors.BadDeclaringClass(f.DeclaringClass().Name())
	}
	if c.fields.Lookup(f.Name()) != nil {
		return errors.InvalidInitializer("duplicate field %s in %s", f.Name(), c.name)
	}
	if init != nil {
		if err := c.synth.Check(f, init); err != nil {
			return err
		}
	}

	c.fields.Append(f)
	if init != nil {
		c.inits[f] = init
	}
	c.log.Debug("field added",
		zap.String("class", c.name),
		zap.Stringer("field", f),
		zap.Bool("initialized", init != nil))
	return nil
}

// AddFieldSource 编译字段声明源码并添加，例如 `public int k = 3;`
func (c *Class) AddFieldSource(src string) (*field.Field, error) {
	f, init, err := field.Make(src, c)
	if err != nil {
		return nil, err
	}
	if err := c.AddField(f, init); err != nil {
		return nil, err
	}
	return f, nil
}

// RemoveField 移除字段
func (c *Class) RemoveField(f *field.Field) error {
	if err := c.CheckModify(); err != nil {
		return err
	}
	if !c.fields.Remove(f) {
		return errors.InvalidInitializer("field %s not found in %s", f.Name(), c.name)
	}
	delete(c.inits, f)
	return nil
}

// AddConstructor 添加 public 构造方法
func (c *Class) AddConstructor(params ...jtype.Type) error {
	return c.AddConstructorWithAccess(jvmgen.AccPublic, params...)
}

// AddConstructorWithAccess 添加构造方法
func (c *Class) AddConstructorWithAccess(access uint16, params ...jtype.Type) error {
	if err := c.CheckModify(); err != nil {
		return err
	}
	ctor := Constructor{Access: access, Params: append([]jtype.Type(nil), params...)}
	for _, existing := range c.ctors {
		if existing.Descriptor() == ctor.Descriptor() {
			return errors.InvalidInitializer("duplicate constructor %s in %s", ctor.Descriptor(), c.name)
		}
	}
	for _, p := range params {
		if !p.IsValid() || p == jtype.Void {
			return errors.InvalidInitializer("invalid constructor parameter type %s", p)
		}
	}
	c.ctors = append(c.ctors, ctor)
	return nil
}

// checkAll 重新检查字段名唯一性与全部初始化器，收集所有失败。
// 字段加入后仍可改名，所以名称在这里再查一次。
func (c *Class) checkAll() error {
	var errs error
	seen := make(map[string]bool)
	for _, f := range c.fields.Fields() {
		if seen[f.Name()] {
			errs = multierr.Append(errs, errors.InvalidInitializer("duplicate field %s in %s", f.Name(), c.name))
		}
		seen[f.Name()] = true
		if init := c.inits[f]; init != nil {
			errs = multierr.Append(errs, c.synth.Check(f, init))
		}
	}
	return errs
}
