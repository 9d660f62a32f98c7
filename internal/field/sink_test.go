package field

import (
	"fmt"
	"strconv"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// recordSink 记录每次调用的 Sink，用于断言指令序列与"零调用"
type recordSink struct {
	calls []string
}

var _ jvmgen.Sink = (*recordSink)(nil)

func (r *recordSink) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordSink) AddOpcode(op byte) {
	switch op {
	case jvmgen.OpDup:
		r.add("dup")
	case jvmgen.OpAastore:
		r.add("aastore")
	default:
		r.add("op 0x%02X", op)
	}
}
func (r *recordSink) AddAload(n int) { r.add("aload %d", n) }
func (r *recordSink) AddLoad(n int, t jtype.Type) int {
	r.add("load %d %s", n, t.Descriptor())
	return t.Size()
}
func (r *recordSink) AddIconst(v int32)          { r.add("iconst %d", v) }
func (r *recordSink) AddLdc(s string)            { r.add("ldc %s", strconv.Quote(s)) }
func (r *recordSink) AddLdcFloat(v float32)      { r.add("ldc float %v", v) }
func (r *recordSink) AddLdc2wLong(v int64)       { r.add("ldc2w long %d", v) }
func (r *recordSink) AddLdc2wDouble(v float64)   { r.add("ldc2w double %v", v) }
func (r *recordSink) AddNew(className string)    { r.add("new %s", className) }
func (r *recordSink) AddAnewarray(class string)  { r.add("anewarray %s", class) }
func (r *recordSink) AddPutfield(name, d string) { r.add("putfield %s %s", name, d) }
func (r *recordSink) AddPutstatic(n, d string)   { r.add("putstatic %s %s", n, d) }
func (r *recordSink) MaxStack() int              { return 0 }
func (r *recordSink) AddNewarray(elem jtype.Type, size int32) {
	r.add("newarray %s %d", elem.Descriptor(), size)
}
func (r *recordSink) AddMultiNewarray(t jtype.Type, dims []int32) int {
	r.add("multianewarray %s %v", t.Descriptor(), dims)
	return len(dims)
}
func (r *recordSink) AddInvokespecial(class, name, desc string) {
	r.add("invokespecial %s.%s%s", class, name, desc)
}
func (r *recordSink) AddInvokestatic(class, name, desc string) {
	r.add("invokestatic %s.%s%s", class, name, desc)
}

// testClass 最小的所属类实现
type testClass struct {
	name   string
	cp     *jvmgen.ConstPool
	frozen bool
}

func newTestClass() *testClass {
	return &testClass{name: "demo.Point", cp: jvmgen.NewConstPool()}
}

func (c *testClass) Name() string                 { return c.name }
func (c *testClass) ConstPool() *jvmgen.ConstPool { return c.cp }
func (c *testClass) CheckModify() error {
	if c.frozen {
		return errors.Frozen(c.name)
	}
	return nil
}
