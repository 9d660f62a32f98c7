package plan

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"

	"github.com/tangzhangming/fieldsynth/internal/classgen"
	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/field"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// Build 按计划创建类、构造方法与字段。
// 字段错误会全部收集后一起返回；返回的类只包含成功添加的字段。
func (p *Plan) Build(opts ...classgen.Option) (*classgen.Class, error) {
	if p.Class.Super != "" {
		opts = append([]classgen.Option{classgen.WithSuper(p.Class.Super)}, opts...)
	}
	if len(p.Class.Modifiers) > 0 {
		access, err := field.ParseModifiers(p.Class.Modifiers)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", p.Class.Name, err)
		}
		opts = append(opts, classgen.WithAccess(access))
	}
	c := classgen.New(p.Class.Name, opts...)

	var errs error
	for i, def := range p.Constructors {
		if err := addConstructor(c, def); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("constructor #%d: %w", i+1, err))
		}
	}
	for i, def := range p.Fields {
		if err := addField(c, def); err != nil {
			name := def.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			errs = multierr.Append(errs, fmt.Errorf("field %s: %w", name, err))
		}
	}
	return c, errs
}

func addConstructor(c *classgen.Class, def ConstructorSpec) error {
	params, err := parseTypes(def.Params)
	if err != nil {
		return err
	}
	access := uint16(jvmgen.AccPublic)
	if len(def.Modifiers) > 0 {
		if access, err = field.ParseModifiers(def.Modifiers); err != nil {
			return err
		}
	}
	return c.AddConstructorWithAccess(access, params...)
}

func addField(c *classgen.Class, def FieldSpec) error {
	if def.Source != "" {
		_, err := c.AddFieldSource(def.Source)
		return err
	}

	typ, err := jtype.Parse(def.Type)
	if err != nil {
		return err
	}
	f, err := field.New(typ, def.Name, c)
	if err != nil {
		return err
	}
	mod, err := field.ParseModifiers(def.Modifiers)
	if err != nil {
		return err
	}
	if err := f.SetModifiers(mod); err != nil {
		return err
	}
	names := make([]string, 0, len(def.Attributes))
	for name := range def.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := hex.DecodeString(def.Attributes[name])
		if err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		if err := f.SetAttribute(name, data); err != nil {
			return err
		}
	}

	var init field.Initializer
	if def.Init != nil {
		if init, err = def.Init.initializer(typ); err != nil {
			return err
		}
	}
	return c.AddField(f, init)
}

// initKinds 支持的初始化器种类
var initKinds = []string{"int", "long", "double", "string", "param", "new", "call", "array", "multiarray", "expr"}

// initializer 将配置转换为初始化器，typ 为字段类型
func (s *InitSpec) initializer(typ jtype.Type) (field.Initializer, error) {
	switch s.Kind {
	case "int":
		v, err := integerValue(s.Value, 32)
		if err != nil {
			return nil, err
		}
		return field.Constant(int32(v)), nil
	case "long":
		v, err := integerValue(s.Value, 64)
		if err != nil {
			return nil, err
		}
		return field.ConstantLong(v), nil
	case "double":
		v, err := floatValue(s.Value)
		if err != nil {
			return nil, err
		}
		return field.ConstantDouble(v), nil
	case "string":
		v, ok := s.Value.(string)
		if !ok {
			return nil, fmt.Errorf("string initializer needs a string value, got %T", s.Value)
		}
		return field.ConstantString(v), nil
	case "param":
		return field.ByParameter(s.Nth), nil
	case "new", "call":
		owner, err := jtype.Parse(s.Class)
		if err != nil {
			return nil, err
		}
		if s.Kind == "new" {
			if s.Forward {
				return field.ByNewWithParams(owner, s.Strings), nil
			}
			return field.ByNew(owner, s.Strings), nil
		}
		if s.Method == "" {
			return nil, fmt.Errorf("call initializer needs a method name")
		}
		if s.Forward {
			return field.ByCallWithParams(owner, s.Method, s.Strings), nil
		}
		return field.ByCall(owner, s.Method, s.Strings), nil
	case "array":
		return field.ByNewArray(typ, s.Size)
	case "multiarray":
		return field.ByNewMultiArray(typ, s.Dims), nil
	case "expr":
		return field.ByExpr(s.Expr), nil
	}
	return nil, fmt.Errorf("unknown initializer kind %q%s", s.Kind, errors.DidYouMean(s.Kind, initKinds))
}

func parseTypes(names []string) ([]jtype.Type, error) {
	types := make([]jtype.Type, 0, len(names))
	for _, n := range names {
		t, err := jtype.Parse(n)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// integerValue 接受 TOML (int64) 与 YAML (int) 解码出的整数
func integerValue(v interface{}, bits int) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows long", x)
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("expected an integer value, got %T", v)
	}
	if bits == 32 && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, fmt.Errorf("value %d overflows int", n)
	}
	return n, nil
}

func floatValue(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
