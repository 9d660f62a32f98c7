package jtype

import (
	"fmt"
	"strings"
)

// ParseDescriptor 解析字段描述符（I、Ljava/lang/String;、[[J）
func ParseDescriptor(desc string) (Type, error) {
	n, err := scanDescriptor(desc, 0)
	if err != nil {
		return Type{}, err
	}
	if n != len(desc) {
		return Type{}, fmt.Errorf("invalid descriptor %q: trailing characters", desc)
	}
	return Type{desc}, nil
}

// scanDescriptor 从 pos 开始扫描一个完整的描述符，返回结束位置
func scanDescriptor(desc string, pos int) (int, error) {
	for pos < len(desc) && desc[pos] == '[' {
		pos++
	}
	if pos >= len(desc) {
		return 0, fmt.Errorf("invalid descriptor %q: unexpected end", desc)
	}
	switch desc[pos] {
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		return pos + 1, nil
	case 'V':
		if pos > 0 && desc[pos-1] == '[' {
			return 0, fmt.Errorf("invalid descriptor %q: array of void", desc)
		}
		return pos + 1, nil
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end <= 1 {
			return 0, fmt.Errorf("invalid descriptor %q: bad class name", desc)
		}
		return pos + end + 1, nil
	}
	return 0, fmt.Errorf("invalid descriptor %q: unexpected %q", desc, desc[pos])
}

// ParseMethodDescriptor 解析方法描述符，返回参数类型与返回类型
func ParseMethodDescriptor(desc string) ([]Type, Type, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, Type{}, fmt.Errorf("invalid method descriptor %q", desc)
	}
	var params []Type
	pos := 1
	for pos < len(desc) && desc[pos] != ')' {
		end, err := scanDescriptor(desc, pos)
		if err != nil {
			return nil, Type{}, err
		}
		params = append(params, Type{desc[pos:end]})
		pos = end
	}
	if pos >= len(desc) {
		return nil, Type{}, fmt.Errorf("invalid method descriptor %q: missing ')'", desc)
	}
	ret, err := ParseDescriptor(desc[pos+1:])
	if err != nil {
		return nil, Type{}, err
	}
	return params, ret, nil
}

// Parse 解析 Java 源码形式的类型名（int、String、java.util.List、long[][]）。
// 不带包名的 String 和 Object 视为 java.lang 下的类。
func Parse(name string) (Type, error) {
	name = strings.TrimSpace(name)
	dims := 0
	for strings.HasSuffix(name, "[]") {
		dims++
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
	}
	if name == "" {
		return Type{}, fmt.Errorf("empty type name")
	}

	var t Type
	switch name {
	case "void":
		if dims > 0 {
			return Type{}, fmt.Errorf("array of void")
		}
		t = Void
	case "boolean":
		t = Boolean
	case "byte":
		t = Byte
	case "char":
		t = Char
	case "short":
		t = Short
	case "int":
		t = Int
	case "long":
		t = Long
	case "float":
		t = Float
	case "double":
		t = Double
	case "String":
		t = String
	case "Object":
		t = Object
	default:
		if !isQualifiedName(name) {
			return Type{}, fmt.Errorf("invalid type name %q", name)
		}
		t = ClassOf(name)
	}

	for i := 0; i < dims; i++ {
		t = ArrayOf(t)
	}
	return t, nil
}

// MustParse 同 Parse，解析失败时 panic。用于常量初始化与测试
func MustParse(name string) Type {
	t, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

func isQualifiedName(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			digit := r >= '0' && r <= '9'
			if !letter && !(digit && i > 0) {
				return false
			}
		}
	}
	return true
}
