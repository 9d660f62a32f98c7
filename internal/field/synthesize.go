package field

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/expr"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// Synthesizer 字段初始化器的分派入口
type Synthesizer struct {
	log      *zap.Logger
	compiler ExprCompiler
}

// Option 配置 Synthesizer
type Option func(*Synthesizer)

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(s *Synthesizer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCompiler 替换表达式编译器
func WithCompiler(c ExprCompiler) Option {
	return func(s *Synthesizer) {
		if c != nil {
			s.compiler = c
		}
	}
}

// NewSynthesizer 创建分派入口，默认不输出日志并使用 expr 包的编译器
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		log:      zap.NewNop(),
		compiler: expr.NewCompiler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize 写出字段 f 的初始化指令，返回需要的最大栈深度。
// 静态字段写出 <clinit> 形式，params 被忽略；实例字段写出构造方法形式，
// params 为所在构造方法的参数类型。检查失败时 code 不会收到任何调用。
func (s *Synthesizer) Synthesize(f *Field, init Initializer, params []jtype.Type, code jvmgen.Sink) (int, error) {
	if err := s.Check(f, init); err != nil {
		return 0, err
	}

	var (
		stack int
		err   error
	)
	if f.IsStatic() {
		stack, err = s.emitStatic(init, f.typ, f.name, code)
	} else {
		stack, err = s.emitInstance(init, f.typ, f.name, code, params)
	}
	if err != nil {
		return 0, errors.WithField(err, f.name)
	}

	s.log.Debug("field initializer synthesized",
		zap.String("field", f.name),
		zap.String("type", f.typ.Name()),
		zap.Bool("static", f.IsStatic()),
		zap.Stringer("initializer", init),
		zap.Int("stack", stack))
	return stack, nil
}

// Check 在写出任何指令之前验证初始化器与字段类型是否相容
func (s *Synthesizer) Check(f *Field, init Initializer) error {
	if init == nil {
		return errors.WithField(errors.InvalidInitializer("missing initializer"), f.name)
	}
	if err := check(init, f.typ); err != nil {
		return errors.WithField(err, f.name)
	}
	if e, ok := init.(*SourceExprInit); ok {
		if _, err := compileExpr(s.compiler, e, f.typ, f.name, discard{}); err != nil {
			return err
		}
	}
	return nil
}

// check 与编译器无关的类型检查
func check(init Initializer, typ jtype.Type) error {
	switch i := init.(type) {
	case *ConstantInit:
		if want := i.Kind.fieldType(); typ != want {
			return errors.TypeMismatch("", typ.Name(), want.Name())
		}
		if i.Kind == ConstString {
			return checkLiteral(i.s)
		}
	case *NewObjectInit:
		return checkLiterals(i.call.strings)
	case *StaticCallInit:
		return checkLiterals(i.call.strings)
	case *NewArrayInit:
		if arr := jtype.ArrayOf(i.Elem); typ != arr {
			return errors.TypeMismatch("", typ.Name(), arr.Name())
		}
	case *NewMultiArrayInit:
		if !typ.IsArray() {
			return errors.NotArray("", typ.Name())
		}
		if i.ArrayType.IsValid() && i.ArrayType != typ {
			return errors.TypeMismatch("", typ.Name(), i.ArrayType.Name())
		}
		if n := len(i.dims); n == 0 || n > typ.Dimensions() {
			return errors.BadDimensions("", n, typ.Dimensions())
		}
	case *SourceExprInit:
		if i.Tree == nil && i.Source == "" {
			return errors.InvalidInitializer("empty initializer expression")
		}
	}
	return nil
}

// checkLiteral 字符串常量须能放入一个 CONSTANT_Utf8 条目
func checkLiteral(v string) error {
	if n := jvmgen.ModifiedUTF8Len(v); n > jvmgen.MaxUtf8Length {
		return errors.InvalidInitializer("string constant too long: %d bytes (max %d)", n, jvmgen.MaxUtf8Length)
	}
	return nil
}

func checkLiterals(vs []string) error {
	for _, v := range vs {
		if err := checkLiteral(v); err != nil {
			return err
		}
	}
	return nil
}

// emitInstance 写出实例字段的初始化指令（构造方法上下文）
func (s *Synthesizer) emitInstance(init Initializer, typ jtype.Type, name string, code jvmgen.Sink, params []jtype.Type) (int, error) {
	desc := typ.Descriptor()

	switch i := init.(type) {
	case *ConstantInit:
		code.AddAload(0)
		stack := 1 + emitConstant(i, code)
		code.AddPutfield(name, desc)
		return stack, nil

	case *ParamForwardInit:
		if i.Nth < 0 || i.Nth >= len(params) {
			return 0, nil
		}
		code.AddAload(0)
		stack := code.AddLoad(SlotOf(i.Nth, params, false), typ) + 1
		code.AddPutfield(name, desc)
		return stack, nil

	case *NewObjectInit:
		return i.call.emitInstance(typ, name, code, params), nil

	case *StaticCallInit:
		return i.call.emitInstance(typ, name, code, params), nil

	case *NewArrayInit:
		code.AddAload(0)
		code.AddNewarray(i.Elem, i.Size)
		code.AddPutfield(name, desc)
		return 2, nil

	case *NewMultiArrayInit:
		code.AddAload(0)
		stack := code.AddMultiNewarray(typ, i.dims) + 1
		code.AddPutfield(name, desc)
		return stack, nil

	case *SourceExprInit:
		code.AddAload(0)
		stack, err := compileExpr(s.compiler, i, typ, name, code)
		if err != nil {
			return 0, err
		}
		code.AddPutfield(name, desc)
		return stack + 1, nil
	}
	return 0, errors.InvalidInitializer("unknown initializer %T", init)
}

// emitStatic 写出静态字段的初始化指令（<clinit> 上下文）
func (s *Synthesizer) emitStatic(init Initializer, typ jtype.Type, name string, code jvmgen.Sink) (int, error) {
	desc := typ.Descriptor()

	switch i := init.(type) {
	case *ConstantInit:
		stack := emitConstant(i, code)
		code.AddPutstatic(name, desc)
		return stack, nil

	case *ParamForwardInit:
		// <clinit> 没有构造方法参数
		return 0, nil

	case *NewObjectInit:
		return i.call.emitStatic(typ, name, code), nil

	case *StaticCallInit:
		return i.call.emitStatic(typ, name, code), nil

	case *NewArrayInit:
		code.AddNewarray(i.Elem, i.Size)
		code.AddPutstatic(name, desc)
		return 1, nil

	case *NewMultiArrayInit:
		stack := code.AddMultiNewarray(typ, i.dims)
		code.AddPutstatic(name, desc)
		return stack, nil

	case *SourceExprInit:
		stack, err := compileExpr(s.compiler, i, typ, name, code)
		if err != nil {
			return 0, err
		}
		code.AddPutstatic(name, desc)
		return stack, nil
	}
	return 0, errors.InvalidInitializer("unknown initializer %T", init)
}

// emitConstant 压入常量，返回占用的栈字数
func emitConstant(c *ConstantInit, code jvmgen.Sink) int {
	switch c.Kind {
	case ConstInt:
		code.AddIconst(c.i)
		return 1
	case ConstLong:
		code.AddLdc2wLong(c.l)
		return 2
	case ConstDouble:
		code.AddLdc2wDouble(c.d)
		return 2
	default:
		code.AddLdc(c.s)
		return 1
	}
}
