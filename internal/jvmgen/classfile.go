// Package jvmgen 实现 JVM class 文件的常量池、字节码序列与文件写出
package jvmgen

import (
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

// Class 文件常量
const (
	ClassFileMagic    = 0xCAFEBABE
	ClassMajorVersion = 52 // Java 8
	ClassMinorVersion = 0

	// MaxUtf8Length CONSTANT_Utf8 内容的最大字节数（u2 长度前缀）
	MaxUtf8Length = math.MaxUint16
	// MaxCodeLength 单个方法 Code 的最大字节数
	MaxCodeLength = math.MaxUint16
)

// 常量池标签
const (
	ConstantUtf8        = 1
	ConstantInteger     = 3
	ConstantFloat       = 4
	ConstantLong        = 5
	ConstantDouble      = 6
	ConstantClass       = 7
	ConstantString      = 8
	ConstantFieldref    = 9
	ConstantMethodref   = 10
	ConstantNameAndType = 12
)

// 访问标志
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccSuper     = 0x0020
	AccVolatile  = 0x0040
	AccTransient = 0x0080
	AccSynthetic = 0x1000
	AccEnum      = 0x4000
)

// ConstantPoolEntry 常量池条目
type ConstantPoolEntry interface {
	Tag() uint8
	// Slots 返回条目占用的常量池槽位数，long/double 占两个
	Slots() int
	Write(w *ByteWriter)
}

// ConstantUtf8Info UTF8 字符串常量
type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() uint8 { return ConstantUtf8 }
func (c *ConstantUtf8Info) Slots() int { return 1 }
func (c *ConstantUtf8Info) Write(w *ByteWriter) {
	b := modifiedUTF8(c.Value)
	w.WriteU8(c.Tag())
	w.WriteU16(uint16(len(b)))
	w.WriteBytes(b)
}

// ConstantIntegerInfo int 常量
type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() uint8 { return ConstantInteger }
func (c *ConstantIntegerInfo) Slots() int { return 1 }
func (c *ConstantIntegerInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU32(uint32(c.Value))
}

// ConstantFloatInfo float 常量
type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() uint8 { return ConstantFloat }
func (c *ConstantFloatInfo) Slots() int { return 1 }
func (c *ConstantFloatInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU32(math.Float32bits(c.Value))
}

// ConstantLongInfo long 常量
type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() uint8 { return ConstantLong }
func (c *ConstantLongInfo) Slots() int { return 2 }
func (c *ConstantLongInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU64(uint64(c.Value))
}

// ConstantDoubleInfo double 常量
type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() uint8 { return ConstantDouble }
func (c *ConstantDoubleInfo) Slots() int { return 2 }
func (c *ConstantDoubleInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU64(math.Float64bits(c.Value))
}

// ConstantClassInfo 类引用常量
type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() uint8 { return ConstantClass }
func (c *ConstantClassInfo) Slots() int { return 1 }
func (c *ConstantClassInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU16(c.NameIndex)
}

// ConstantStringInfo 字符串常量
type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() uint8 { return ConstantString }
func (c *ConstantStringInfo) Slots() int { return 1 }
func (c *ConstantStringInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU16(c.StringIndex)
}

// ConstantFieldrefInfo 字段引用常量
type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() uint8 { return ConstantFieldref }
func (c *ConstantFieldrefInfo) Slots() int { return 1 }
func (c *ConstantFieldrefInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU16(c.ClassIndex)
	w.WriteU16(c.NameAndTypeIndex)
}

// ConstantMethodrefInfo 方法引用常量
type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() uint8 { return ConstantMethodref }
func (c *ConstantMethodrefInfo) Slots() int { return 1 }
func (c *ConstantMethodrefInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU16(c.ClassIndex)
	w.WriteU16(c.NameAndTypeIndex)
}

// ConstantNameAndTypeInfo 名称和类型描述符常量
type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() uint8 { return ConstantNameAndType }
func (c *ConstantNameAndTypeInfo) Slots() int { return 1 }
func (c *ConstantNameAndTypeInfo) Write(w *ByteWriter) {
	w.WriteU8(c.Tag())
	w.WriteU16(c.NameIndex)
	w.WriteU16(c.DescriptorIndex)
}

// AttributeInfo 属性信息
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// FieldInfo 字段信息
type FieldInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// MethodInfo 方法信息
type MethodInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// ClassFile JVM class 文件结构
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstPool    *ConstPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// NewClassFile 创建新的 class 文件
func NewClassFile(cp *ConstPool, thisClass, superClass string) *ClassFile {
	return &ClassFile{
		MinorVersion: ClassMinorVersion,
		MajorVersion: ClassMajorVersion,
		ConstPool:    cp,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    cp.AddClass(thisClass),
		SuperClass:   cp.AddClass(superClass),
	}
}

// Write 将 class 文件写入 io.Writer
func (cf *ClassFile) Write(w io.Writer) error {
	data, err := cf.ToBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ToBytes 将 class 文件转换为字节数组
func (cf *ClassFile) ToBytes() ([]byte, error) {
	if cf.ConstPool.Size() > math.MaxUint16 {
		return nil, fmt.Errorf("constant pool too large: %d entries", cf.ConstPool.Size())
	}

	for _, e := range cf.ConstPool.Entries() {
		if u, ok := e.(*ConstantUtf8Info); ok {
			if n := ModifiedUTF8Len(u.Value); n > MaxUtf8Length {
				return nil, fmt.Errorf("constant pool string too long: %d bytes (max %d)", n, MaxUtf8Length)
			}
		}
	}

	w := NewByteWriter()
	w.WriteU32(ClassFileMagic)
	w.WriteU16(cf.MinorVersion)
	w.WriteU16(cf.MajorVersion)

	// 常量池计数为最大索引加一
	w.WriteU16(uint16(cf.ConstPool.Size()))
	for _, e := range cf.ConstPool.Entries() {
		e.Write(w)
	}

	w.WriteU16(cf.AccessFlags)
	w.WriteU16(cf.ThisClass)
	w.WriteU16(cf.SuperClass)

	w.WriteU16(uint16(len(cf.Interfaces)))
	for _, iface := range cf.Interfaces {
		w.WriteU16(iface)
	}

	w.WriteU16(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		writeMember(w, f.AccessFlags, f.NameIndex, f.DescriptorIndex, f.Attributes)
	}

	w.WriteU16(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		writeMember(w, m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes)
	}

	writeAttributes(w, cf.Attributes)
	return w.Bytes(), nil
}

func writeMember(w *ByteWriter, flags, name, desc uint16, attrs []AttributeInfo) {
	w.WriteU16(flags)
	w.WriteU16(name)
	w.WriteU16(desc)
	writeAttributes(w, attrs)
}

func writeAttributes(w *ByteWriter, attrs []AttributeInfo) {
	w.WriteU16(uint16(len(attrs)))
	for _, a := range attrs {
		w.WriteU16(a.NameIndex)
		w.WriteU32(uint32(len(a.Info)))
		w.WriteBytes(a.Info)
	}
}

// CodeAttribute 构建 Code 属性，code 超过 MaxCodeLength 时返回错误
func CodeAttribute(cp *ConstPool, maxStack, maxLocals int, code []byte) (AttributeInfo, error) {
	if len(code) > MaxCodeLength {
		return AttributeInfo{}, fmt.Errorf("method code too large: %d bytes (max %d)", len(code), MaxCodeLength)
	}
	data := NewByteWriter()
	data.WriteU16(uint16(maxStack))
	data.WriteU16(uint16(maxLocals))
	data.WriteU32(uint32(len(code)))
	data.WriteBytes(code)
	data.WriteU16(0) // exception_table_length
	data.WriteU16(0) // attributes_count

	return AttributeInfo{
		NameIndex: cp.AddUtf8("Code"),
		Info:      data.Bytes(),
	}, nil
}

// modifiedUTF8 按 class 文件约定编码字符串：
// U+0000 编码为两字节，增补平面字符拆成代理对后分别编码
func modifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendUTF8Unit(out, hi)
			out = appendUTF8Unit(out, lo)
			continue
		}
		out = appendUTF8Unit(out, r)
	}
	return out
}

// ModifiedUTF8Len 返回 s 按 modified UTF-8 编码后的字节数
func ModifiedUTF8Len(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 0x10000:
			n += 6
		case r != 0 && r < 0x80:
			n++
		case r < 0x800:
			n += 2
		default:
			n += 3
		}
	}
	return n
}

func appendUTF8Unit(out []byte, r rune) []byte {
	switch {
	case r != 0 && r < 0x80:
		return append(out, byte(r))
	case r < 0x800:
		return append(out, byte(0xC0|(r>>6)), byte(0x80|(r&0x3F)))
	default:
		return append(out, byte(0xE0|(r>>12)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
	}
}
