// Package plan 读取字段合成计划（TOML 或 YAML），并构建对应的类
package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format 计划文件格式
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Plan 字段合成计划
type Plan struct {
	Class        ClassSpec         `toml:"class" yaml:"class"`
	Constructors []ConstructorSpec `toml:"constructors" yaml:"constructors"`
	Fields       []FieldSpec       `toml:"fields" yaml:"fields"`
}

// ClassSpec 类信息
type ClassSpec struct {
	// Name Java 形式的类名（如 com.example.Point）
	Name string `toml:"name" yaml:"name"`

	// Super 父类名，默认 java.lang.Object
	Super string `toml:"super" yaml:"super"`

	// Modifiers 类修饰符，默认 public
	Modifiers []string `toml:"modifiers" yaml:"modifiers"`
}

// ConstructorSpec 构造方法
type ConstructorSpec struct {
	Params    []string `toml:"params" yaml:"params"`
	Modifiers []string `toml:"modifiers" yaml:"modifiers"`
}

// FieldSpec 字段。Source 非空时按字段声明源码编译，忽略其余项。
type FieldSpec struct {
	Source     string            `toml:"source" yaml:"source"`
	Name       string            `toml:"name" yaml:"name"`
	Type       string            `toml:"type" yaml:"type"`
	Modifiers  []string          `toml:"modifiers" yaml:"modifiers"`
	Attributes map[string]string `toml:"attributes" yaml:"attributes"` // 名称 -> 十六进制内容
	Init       *InitSpec         `toml:"init" yaml:"init"`
}

// InitSpec 初始化器。Kind 决定使用哪些字段：
//
//	int/long/double/string  value
//	param                   nth
//	new                     class, strings, forward
//	call                    class, method, strings, forward
//	array                   size（数组类型取字段类型）
//	multiarray              dims
//	expr                    expr
type InitSpec struct {
	Kind    string      `toml:"kind" yaml:"kind"`
	Value   interface{} `toml:"value" yaml:"value"`
	Nth     int         `toml:"nth" yaml:"nth"`
	Class   string      `toml:"class" yaml:"class"`
	Method  string      `toml:"method" yaml:"method"`
	Strings []string    `toml:"strings" yaml:"strings"`
	Forward bool        `toml:"forward" yaml:"forward"`
	Size    int32       `toml:"size" yaml:"size"`
	Dims    []int32     `toml:"dims" yaml:"dims"`
	Expr    string      `toml:"expr" yaml:"expr"`
}

// FormatOf 按扩展名判断格式
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported plan file %s (expected .toml, .yaml or .yml)", path)
}

// Load 从文件加载计划
func Load(path string) (*Plan, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data, format)
}

// Parse 解析计划内容
func Parse(data []byte, format Format) (*Plan, error) {
	var p Plan
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to parse plan file: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to parse plan file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown plan format %q", format)
	}

	if p.Class.Name == "" {
		return nil, fmt.Errorf("plan has no class name")
	}
	return &p, nil
}

// Template 生成带注释的 TOML 计划模板
func Template(className string) string {
	if className == "" {
		className = "com.example.Point"
	}

	var sb strings.Builder
	sb.WriteString("[class]\n")
	sb.WriteString("# 类名（Java 形式）\n")
	sb.WriteString(fmt.Sprintf("name = %q\n", className))
	sb.WriteString("# 父类，生成的构造方法会调用它的无参构造方法\n")
	sb.WriteString("super = \"java.lang.Object\"\n\n")

	sb.WriteString("# 构造方法，参数可用于 kind = \"param\" 的初始化器\n")
	sb.WriteString("[[constructors]]\n")
	sb.WriteString("params = [\"int\", \"long\"]\n\n")

	sb.WriteString("[[fields]]\n")
	sb.WriteString("name = \"x\"\n")
	sb.WriteString("type = \"int\"\n")
	sb.WriteString("modifiers = [\"private\"]\n")
	sb.WriteString("# 取第 0 个构造方法参数\n")
	sb.WriteString("init = { kind = \"param\", nth = 0 }\n\n")

	sb.WriteString("[[fields]]\n")
	sb.WriteString("# 也可以直接写字段声明源码\n")
	sb.WriteString("source = \"public static long total = 3 + 4L;\"\n")
	return sb.String()
}
