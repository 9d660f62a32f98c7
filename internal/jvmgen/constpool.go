package jvmgen

import (
	"math"
	"strconv"
)

// ConstPool 常量池。
// 只追加不删除，相同内容的条目只添加一次，返回的索引在整个生命周期内稳定。
type ConstPool struct {
	entries []ConstantPoolEntry
	next    int               // 下一个可用索引，从 1 开始
	index   map[string]uint16 // 常量池索引缓存
}

// NewConstPool 创建空常量池
func NewConstPool() *ConstPool {
	return &ConstPool{
		next:  1,
		index: make(map[string]uint16),
	}
}

// Entries 返回全部条目（按添加顺序）
func (cp *ConstPool) Entries() []ConstantPoolEntry {
	return cp.entries
}

// Size 返回常量池计数（最大索引 + 1），即 class 文件中的 constant_pool_count
func (cp *ConstPool) Size() int {
	return cp.next
}

// Lookup 查询已存在的条目索引，key 格式与 add 系列方法一致（如 "utf8:Code"）
func (cp *ConstPool) Lookup(key string) (uint16, bool) {
	idx, ok := cp.index[key]
	return idx, ok
}

func (cp *ConstPool) add(key string, e ConstantPoolEntry) uint16 {
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	idx := uint16(cp.next)
	cp.entries = append(cp.entries, e)
	cp.next += e.Slots()
	cp.index[key] = idx
	return idx
}

// AddUtf8 添加 UTF8 常量
func (cp *ConstPool) AddUtf8(value string) uint16 {
	return cp.add("utf8:"+value, &ConstantUtf8Info{Value: value})
}

// AddInteger 添加 int 常量
func (cp *ConstPool) AddInteger(v int32) uint16 {
	return cp.add("int:"+strconv.FormatInt(int64(v), 10), &ConstantIntegerInfo{Value: v})
}

// AddFloat 添加 float 常量
func (cp *ConstPool) AddFloat(v float32) uint16 {
	key := "float:" + strconv.FormatUint(uint64(math.Float32bits(v)), 16)
	return cp.add(key, &ConstantFloatInfo{Value: v})
}

// AddLong 添加 long 常量（占两个槽位）
func (cp *ConstPool) AddLong(v int64) uint16 {
	return cp.add("long:"+strconv.FormatInt(v, 10), &ConstantLongInfo{Value: v})
}

// AddDouble 添加 double 常量（占两个槽位）。
// 以位模式为键，使 0.0 与 -0.0、不同的 NaN 各自独立。
func (cp *ConstPool) AddDouble(v float64) uint16 {
	key := "double:" + strconv.FormatUint(math.Float64bits(v), 16)
	return cp.add(key, &ConstantDoubleInfo{Value: v})
}

// AddClass 添加类引用，name 为内部名称（java/lang/Object）或数组描述符
func (cp *ConstPool) AddClass(name string) uint16 {
	key := "class:" + name
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	nameIdx := cp.AddUtf8(name)
	return cp.add(key, &ConstantClassInfo{NameIndex: nameIdx})
}

// AddString 添加字符串常量
func (cp *ConstPool) AddString(value string) uint16 {
	key := "string:" + value
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	utf8Idx := cp.AddUtf8(value)
	return cp.add(key, &ConstantStringInfo{StringIndex: utf8Idx})
}

// AddNameAndType 添加名称与类型描述符
func (cp *ConstPool) AddNameAndType(name, descriptor string) uint16 {
	key := "nameandtype:" + name + ":" + descriptor
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	nameIdx := cp.AddUtf8(name)
	descIdx := cp.AddUtf8(descriptor)
	return cp.add(key, &ConstantNameAndTypeInfo{
		NameIndex:       nameIdx,
		DescriptorIndex: descIdx,
	})
}

// AddFieldref 添加字段引用
func (cp *ConstPool) AddFieldref(className, name, descriptor string) uint16 {
	key := "fieldref:" + className + "." + name + ":" + descriptor
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	classIdx := cp.AddClass(className)
	natIdx := cp.AddNameAndType(name, descriptor)
	return cp.add(key, &ConstantFieldrefInfo{
		ClassIndex:       classIdx,
		NameAndTypeIndex: natIdx,
	})
}

// AddMethodref 添加方法引用
func (cp *ConstPool) AddMethodref(className, name, descriptor string) uint16 {
	key := "methodref:" + className + "." + name + ":" + descriptor
	if idx, ok := cp.index[key]; ok {
		return idx
	}
	classIdx := cp.AddClass(className)
	natIdx := cp.AddNameAndType(name, descriptor)
	return cp.add(key, &ConstantMethodrefInfo{
		ClassIndex:       classIdx,
		NameAndTypeIndex: natIdx,
	})
}
