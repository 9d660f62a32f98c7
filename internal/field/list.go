package field

// List 按声明顺序排列的字段序列
type List struct {
	fields []*Field
}

// Append 将 f 放到序列末尾
func (l *List) Append(f *Field) {
	l.fields = append(l.fields, f)
}

// Count 返回字段数量
func (l *List) Count() int {
	return len(l.fields)
}

// Fields 返回字段序列的副本
func (l *List) Fields() []*Field {
	out := make([]*Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Lookup 按名称查找字段
func (l *List) Lookup(name string) *Field {
	for _, f := range l.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Remove 移除字段，不存在时返回 false
func (l *List) Remove(f *Field) bool {
	for i, g := range l.fields {
		if g == f {
			l.fields = append(l.fields[:i], l.fields[i+1:]...)
			return true
		}
	}
	return false
}
