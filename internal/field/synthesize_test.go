package field

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/expr"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

func newField(t *testing.T, typ jtype.Type, name string, static bool) *Field {
	t.Helper()
	f, err := New(typ, name, newTestClass())
	if err != nil {
		t.Fatalf("New(%s, %s): %v", typ, name, err)
	}
	if static {
		if err := f.SetModifiers(jvmgen.AccStatic); err != nil {
			t.Fatalf("SetModifiers: %v", err)
		}
	}
	return f
}

func synth(t *testing.T, typ jtype.Type, static bool, init Initializer, params []jtype.Type) ([]string, int, error) {
	t.Helper()
	f := newField(t, typ, "f", static)
	sink := &recordSink{}
	stack, err := NewSynthesizer().Synthesize(f, init, params, sink)
	return sink.calls, stack, err
}

func expectCalls(t *testing.T, name string, got, want []string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s: calls mismatch\n got: %q\nwant: %q", name, got, want)
	}
}

// ============================================================================
// 常量
// ============================================================================

func TestConstant(t *testing.T) {
	tests := []struct {
		name          string
		typ           jtype.Type
		init          Initializer
		push          string
		instanceStack int
		staticStack   int
	}{
		{"int", jtype.Int, Constant(7), "iconst 7", 2, 1},
		{"long", jtype.Long, ConstantLong(1 << 40), "ldc2w long 1099511627776", 3, 2},
		{"double", jtype.Double, ConstantDouble(2.5), "ldc2w double 2.5", 3, 2},
		{"string", jtype.String, ConstantString("hi"), `ldc "hi"`, 2, 1},
	}

	for _, tt := range tests {
		desc := tt.typ.Descriptor()

		calls, stack, err := synth(t, tt.typ, false, tt.init, nil)
		if err != nil {
			t.Fatalf("%s instance: %v", tt.name, err)
		}
		expectCalls(t, tt.name+" instance", calls, []string{"aload 0", tt.push, "putfield f " + desc})
		if stack != tt.instanceStack {
			t.Errorf("%s instance: stack got %d, want %d", tt.name, stack, tt.instanceStack)
		}

		calls, stack, err = synth(t, tt.typ, true, tt.init, nil)
		if err != nil {
			t.Fatalf("%s static: %v", tt.name, err)
		}
		expectCalls(t, tt.name+" static", calls, []string{tt.push, "putstatic f " + desc})
		if stack != tt.staticStack {
			t.Errorf("%s static: stack got %d, want %d", tt.name, stack, tt.staticStack)
		}
	}
}

func TestConstantTypeMismatch(t *testing.T) {
	tests := []struct {
		typ  jtype.Type
		init Initializer
	}{
		{jtype.Long, Constant(1)},
		{jtype.Short, Constant(1)},
		{jtype.Int, ConstantLong(1)},
		{jtype.Float, ConstantDouble(1)},
		{jtype.Object, ConstantString("s")},
		{jtype.String, Constant(0)},
	}

	for _, tt := range tests {
		for _, static := range []bool{false, true} {
			calls, stack, err := synth(t, tt.typ, static, tt.init, nil)
			if !stderrors.Is(err, errors.ErrTypeMismatch) {
				t.Errorf("%s on %s: expected type mismatch, got %v", tt.init, tt.typ, err)
			}
			if len(calls) != 0 || stack != 0 {
				t.Errorf("%s on %s: failed check emitted %q (stack %d)", tt.init, tt.typ, calls, stack)
			}
		}
	}

	_, _, err := synth(t, jtype.Long, false, Constant(1), nil)
	var ce *errors.CannotCompileError
	if !stderrors.As(err, &ce) {
		t.Fatalf("expected *CannotCompileError, got %T", err)
	}
	if ce.Field != "f" || ce.Expected != "long" || ce.Actual != "int" {
		t.Errorf("diagnostic got field=%q expected=%q actual=%q", ce.Field, ce.Expected, ce.Actual)
	}
}

func TestStringLiteralTooLong(t *testing.T) {
	long := strings.Repeat("a", jvmgen.MaxUtf8Length+1)
	owner := jtype.ClassOf("demo.Box")
	tests := []struct {
		typ  jtype.Type
		init Initializer
	}{
		{jtype.String, ConstantString(long)},
		{jtype.Object, ByNew(owner, []string{"ok", long})},
		{jtype.String, ByCall(owner, "make", []string{long})},
	}

	for _, tt := range tests {
		for _, static := range []bool{false, true} {
			calls, stack, err := synth(t, tt.typ, static, tt.init, nil)
			if !stderrors.Is(err, errors.ErrInvalidInitializer) {
				t.Errorf("%T static=%v: expected invalid initializer, got %v", tt.init, static, err)
			}
			if len(calls) != 0 || stack != 0 {
				t.Errorf("%T static=%v: failed check emitted %d calls", tt.init, static, len(calls))
			}
		}
	}

	if _, _, err := synth(t, jtype.String, false, ConstantString(long[1:]), nil); err != nil {
		t.Errorf("string at the limit: %v", err)
	}
}

// ============================================================================
// 参数转发
// ============================================================================

func TestParamForward(t *testing.T) {
	params := []jtype.Type{jtype.Int, jtype.Long, jtype.String}

	calls, stack, err := synth(t, jtype.String, false, ByParameter(2), params)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "nth=2", calls, []string{"aload 0", "load 4 Ljava/lang/String;", "putfield f Ljava/lang/String;"})
	if stack != 2 {
		t.Errorf("nth=2: stack got %d, want 2", stack)
	}

	calls, stack, err = synth(t, jtype.Long, false, ByParameter(1), params)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "nth=1", calls, []string{"aload 0", "load 2 J", "putfield f J"})
	if stack != 3 {
		t.Errorf("nth=1: stack got %d, want 3", stack)
	}
}

func TestParamForwardNoOp(t *testing.T) {
	params := []jtype.Type{jtype.Int, jtype.Long, jtype.String}

	tests := []struct {
		name   string
		nth    int
		params []jtype.Type
		static bool
	}{
		{"out of range", 3, params, false},
		{"far out of range", 100, params, false},
		{"negative", -1, params, false},
		{"no params", 0, nil, false},
		{"static field", 0, params, true},
	}

	for _, tt := range tests {
		calls, stack, err := synth(t, jtype.Int, tt.static, ByParameter(tt.nth), tt.params)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if len(calls) != 0 || stack != 0 {
			t.Errorf("%s: expected no-op, got %q (stack %d)", tt.name, calls, stack)
		}
	}
}

func TestSlotOf(t *testing.T) {
	params := []jtype.Type{jtype.Int, jtype.Long, jtype.String, jtype.Double, jtype.Boolean}

	tests := []struct {
		nth      int
		isStatic bool
		expected int
	}{
		{0, false, 1},
		{1, false, 2},
		{2, false, 4},
		{3, false, 5},
		{4, false, 7},
		{0, true, 0},
		{2, true, 3},
		{4, true, 6},
	}

	for _, tt := range tests {
		if got := SlotOf(tt.nth, params, tt.isStatic); got != tt.expected {
			t.Errorf("SlotOf(%d, static=%v) = %d, want %d", tt.nth, tt.isStatic, got, tt.expected)
		}
	}
}

// ============================================================================
// 描述符
// ============================================================================

func TestParamDescriptor(t *testing.T) {
	tests := []struct {
		strs, forward, static bool
		expected              string
	}{
		{false, false, false, "(Ljava/lang/Object;)"},
		{false, true, false, "(Ljava/lang/Object;[Ljava/lang/Object;)"},
		{true, false, false, "(Ljava/lang/Object;[Ljava/lang/String;)"},
		{true, true, false, "(Ljava/lang/Object;[Ljava/lang/String;[Ljava/lang/Object;)"},
		{false, false, true, "()"},
		{false, true, true, "()"},
		{true, false, true, "([Ljava/lang/String;)"},
		{true, true, true, "([Ljava/lang/String;)"},
	}

	for _, tt := range tests {
		first := ParamDescriptor(tt.strs, tt.forward, tt.static)
		if first != tt.expected {
			t.Errorf("ParamDescriptor(%v, %v, %v) = %s, want %s", tt.strs, tt.forward, tt.static, first, tt.expected)
		}
		for i := 0; i < 3; i++ {
			if again := ParamDescriptor(tt.strs, tt.forward, tt.static); again != first {
				t.Errorf("ParamDescriptor not deterministic: %s vs %s", again, first)
			}
		}
	}
}

func TestDescriptorIndependentOfFieldType(t *testing.T) {
	owner := jtype.ClassOf("demo.Factory")
	var prefixes []string
	for _, typ := range []jtype.Type{jtype.Int, jtype.String, jtype.ArrayOf(jtype.Long)} {
		calls, _, err := synth(t, typ, false, ByCall(owner, "make", []string{"x"}), nil)
		if err != nil {
			t.Fatal(err)
		}
		var invoke string
		for _, c := range calls {
			if strings.HasPrefix(c, "invokestatic") {
				invoke = c
			}
		}
		prefix := invoke[:strings.Index(invoke, ")")+1]
		prefixes = append(prefixes, prefix)
		if !strings.HasSuffix(invoke, ")"+typ.Descriptor()) {
			t.Errorf("static call on %s should return the field type: %s", typ, invoke)
		}
	}
	for _, p := range prefixes[1:] {
		if p != prefixes[0] {
			t.Errorf("descriptor prefix differs across field types: %s vs %s", p, prefixes[0])
		}
	}
}

// ============================================================================
// 构造对象与静态调用
// ============================================================================

func TestNewObject(t *testing.T) {
	objType := jtype.ClassOf("demo.Tag")
	fieldType := jtype.ClassOf("demo.Tag")

	calls, stack, err := synth(t, fieldType, false, ByNew(objType, []string{"a", "b"}), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "strings", calls, []string{
		"aload 0", "new demo/Tag", "dup", "aload 0",
		"iconst 2", "anewarray java/lang/String",
		"dup", "iconst 0", `ldc "a"`, "aastore",
		"dup", "iconst 1", `ldc "b"`, "aastore",
		"invokespecial demo/Tag.<init>(Ljava/lang/Object;[Ljava/lang/String;)V",
		"putfield f Ldemo/Tag;",
	})
	if stack != 8 {
		t.Errorf("strings: stack got %d, want 8", stack)
	}

	many := make([]string, 50)
	for i := range many {
		many[i] = "s"
	}
	_, stack, err = synth(t, fieldType, false, ByNew(objType, many), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 8 {
		t.Errorf("50 strings: stack got %d, want 8", stack)
	}

	calls, stack, err = synth(t, fieldType, false, ByNew(objType, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "plain", calls, []string{
		"aload 0", "new demo/Tag", "dup", "aload 0",
		"invokespecial demo/Tag.<init>(Ljava/lang/Object;)V",
		"putfield f Ldemo/Tag;",
	})
	if stack != 4 {
		t.Errorf("plain: stack got %d, want 4", stack)
	}

	calls, stack, err = synth(t, fieldType, false, ByNew(objType, []string{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 8 || calls[len(calls)-2] != "invokespecial demo/Tag.<init>(Ljava/lang/Object;[Ljava/lang/String;)V" {
		t.Errorf("empty string array: stack %d calls %q", stack, calls)
	}
}

func TestNewObjectForwardParams(t *testing.T) {
	objType := jtype.ClassOf("demo.Tag")
	params := []jtype.Type{jtype.Int, jtype.String, jtype.Long}

	calls, stack, err := synth(t, objType, false, ByNewWithParams(objType, nil), params)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "forward", calls, []string{
		"aload 0", "new demo/Tag", "dup", "aload 0",
		"iconst 3", "anewarray java/lang/Object",
		"dup", "iconst 0", "new java/lang/Integer", "dup", "load 1 I", "invokespecial java/lang/Integer.<init>(I)V", "aastore",
		"dup", "iconst 1", "aload 2", "aastore",
		"dup", "iconst 2", "new java/lang/Long", "dup", "load 3 J", "invokespecial java/lang/Long.<init>(J)V", "aastore",
		"invokespecial demo/Tag.<init>(Ljava/lang/Object;[Ljava/lang/Object;)V",
		"putfield f Ldemo/Tag;",
	})
	if stack != 12 {
		t.Errorf("forward: stack got %d, want 12", stack)
	}

	calls, stack, err = synth(t, objType, false, ByNewWithParams(objType, []string{"x"}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 9 {
		t.Errorf("forward empty params: stack got %d, want 9", stack)
	}
	last := calls[len(calls)-2]
	if last != "invokespecial demo/Tag.<init>(Ljava/lang/Object;[Ljava/lang/String;[Ljava/lang/Object;)V" {
		t.Errorf("forward with strings: got %s", last)
	}
}

func TestNewObjectStatic(t *testing.T) {
	objType := jtype.ClassOf("demo.Tag")

	calls, stack, err := synth(t, objType, true, ByNew(objType, []string{"x"}), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "static", calls, []string{
		"new demo/Tag", "dup",
		"iconst 1", "anewarray java/lang/String",
		"dup", "iconst 0", `ldc "x"`, "aastore",
		"invokespecial demo/Tag.<init>([Ljava/lang/String;)V",
		"putstatic f Ldemo/Tag;",
	})
	if stack != 6 {
		t.Errorf("static: stack got %d, want 6", stack)
	}

	calls, stack, err = synth(t, objType, true, ByNewWithParams(objType, nil), []jtype.Type{jtype.Int})
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "static forward", calls, []string{
		"new demo/Tag", "dup",
		"invokespecial demo/Tag.<init>()V",
		"putstatic f Ldemo/Tag;",
	})
	if stack != 2 {
		t.Errorf("static forward: stack got %d, want 2", stack)
	}
}

func TestStaticCall(t *testing.T) {
	owner := jtype.ClassOf("demo.Factory")

	calls, stack, err := synth(t, jtype.Int, false, ByCall(owner, "next", nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "instance", calls, []string{
		"aload 0", "aload 0",
		"invokestatic demo/Factory.next(Ljava/lang/Object;)I",
		"putfield f I",
	})
	if stack != 2 {
		t.Errorf("instance: stack got %d, want 2", stack)
	}

	calls, stack, err = synth(t, jtype.Int, true, ByCall(owner, "next", nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "static", calls, []string{"invokestatic demo/Factory.next()I", "putstatic f I"})
	if stack != 1 {
		t.Errorf("static: stack got %d, want 1", stack)
	}

	_, stack, err = synth(t, jtype.Int, true, ByCall(owner, "next", []string{"a"}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 5 {
		t.Errorf("static with strings: stack got %d, want 5", stack)
	}

	calls, stack, err = synth(t, jtype.String, false, ByCallWithParams(owner, "name", []string{"a"}), []jtype.Type{jtype.Double})
	if err != nil {
		t.Fatal(err)
	}
	if stack != 2+4+8 {
		t.Errorf("with params: stack got %d, want 14", stack)
	}
	want := "invokestatic demo/Factory.name(Ljava/lang/Object;[Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/String;"
	if calls[len(calls)-2] != want {
		t.Errorf("with params: got %s", calls[len(calls)-2])
	}
}

// ============================================================================
// 数组
// ============================================================================

func TestNewArray(t *testing.T) {
	intArray := jtype.ArrayOf(jtype.Int)
	init, err := ByNewArray(intArray, 10)
	if err != nil {
		t.Fatal(err)
	}

	calls, stack, err := synth(t, intArray, false, init, nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "instance", calls, []string{"aload 0", "newarray I 10", "putfield f [I"})
	if stack != 2 {
		t.Errorf("instance: stack got %d, want 2", stack)
	}

	calls, stack, err = synth(t, intArray, true, init, nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "static", calls, []string{"newarray I 10", "putstatic f [I"})
	if stack != 1 {
		t.Errorf("static: stack got %d, want 1", stack)
	}

	if _, err := ByNewArray(jtype.Int, 3); !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("ByNewArray on non-array: got %v", err)
	}

	strs, _ := ByNewArray(jtype.ArrayOf(jtype.String), 1)
	calls, _, err = synth(t, intArray, false, strs, nil)
	if !stderrors.Is(err, errors.ErrTypeMismatch) || len(calls) != 0 {
		t.Errorf("String[] into int[]: err %v calls %q", err, calls)
	}
}

func TestNewMultiArray(t *testing.T) {
	matrix := jtype.ArrayOf(jtype.ArrayOf(jtype.Int))

	calls, stack, err := synth(t, matrix, false, ByNewMultiArray(matrix, []int32{2, 3}), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "instance", calls, []string{"aload 0", "multianewarray [[I [2 3]", "putfield f [[I"})
	if stack != 3 {
		t.Errorf("instance: stack got %d, want 3", stack)
	}

	calls, stack, err = synth(t, matrix, true, ByNewMultiArray(jtype.Type{}, []int32{4}), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "static", calls, []string{"multianewarray [[I [4]", "putstatic f [[I"})
	if stack != 1 {
		t.Errorf("static: stack got %d, want 1", stack)
	}
}

func TestNewMultiArrayCheck(t *testing.T) {
	matrix := jtype.ArrayOf(jtype.ArrayOf(jtype.Int))

	tests := []struct {
		name string
		typ  jtype.Type
		init Initializer
	}{
		{"non-array field", jtype.Int, ByNewMultiArray(matrix, []int32{2, 3})},
		{"object field", jtype.Object, ByNewMultiArray(jtype.Type{}, []int32{2})},
		{"too many dims", matrix, ByNewMultiArray(matrix, []int32{1, 2, 3})},
		{"no dims", matrix, ByNewMultiArray(matrix, nil)},
		{"other array type", matrix, ByNewMultiArray(jtype.ArrayOf(jtype.ArrayOf(jtype.Long)), []int32{1})},
	}

	for _, tt := range tests {
		for _, static := range []bool{false, true} {
			calls, _, err := synth(t, tt.typ, static, tt.init, nil)
			if !stderrors.Is(err, errors.ErrTypeMismatch) {
				t.Errorf("%s: expected type mismatch, got %v", tt.name, err)
			}
			if len(calls) != 0 {
				t.Errorf("%s: sink received %d calls", tt.name, len(calls))
			}
		}
	}
}

// ============================================================================
// 源码表达式
// ============================================================================

func TestSourceExpr(t *testing.T) {
	f := newField(t, jtype.Long, "total", false)
	code := jvmgen.NewBytecode(jvmgen.NewConstPool(), "demo/Point")
	stack, err := NewSynthesizer().Synthesize(f, ByExpr("3 + 4L"), nil, code)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 5 {
		t.Errorf("instance: stack got %d, want 5", stack)
	}
	if code.MaxStack() != 5 || code.StackDepth() != 0 {
		t.Errorf("instance: max %d depth %d", code.MaxStack(), code.StackDepth())
	}
	b := code.Bytes()
	if b[0] != jvmgen.OpAload0 || b[len(b)-3] != jvmgen.OpPutfield {
		t.Errorf("instance: unexpected code % X", b)
	}

	sf := newField(t, jtype.Long, "total", true)
	code = jvmgen.NewBytecode(jvmgen.NewConstPool(), "demo/Point")
	stack, err = NewSynthesizer().Synthesize(sf, ByExpr("3 + 4L"), nil, code)
	if err != nil {
		t.Fatal(err)
	}
	if stack != 4 {
		t.Errorf("static: stack got %d, want 4", stack)
	}
}

func TestSourceExprTree(t *testing.T) {
	tree, err := expr.Parse("2 * 21")
	if err != nil {
		t.Fatal(err)
	}
	calls, stack, err := synth(t, jtype.Int, true, ByExprTree(tree), nil)
	if err != nil {
		t.Fatal(err)
	}
	expectCalls(t, "tree", calls, []string{"iconst 2", "iconst 21", "op 0x68", "putstatic f I"})
	if stack != 2 {
		t.Errorf("stack got %d, want 2", stack)
	}
}

func TestSourceExprFailure(t *testing.T) {
	sources := []string{`"text"`, "1 +", "1.5", ""}

	for _, src := range sources {
		for _, static := range []bool{false, true} {
			calls, _, err := synth(t, jtype.Int, static, ByExpr(src), nil)
			if err == nil {
				t.Errorf("%q: expected error", src)
				continue
			}
			if len(calls) != 0 {
				t.Errorf("%q: failed compile emitted %q", src, calls)
			}
			if src == "" {
				continue
			}
			if !stderrors.Is(err, errors.ErrCompileFailure) {
				t.Errorf("%q: expected compile failure, got %v", src, err)
			}
			var ce *expr.CompileError
			if !stderrors.As(err, &ce) {
				t.Errorf("%q: cause should be *expr.CompileError, got %v", src, err)
			}
		}
	}
}

// stubCompiler 返回固定结果的表达式编译器
type stubCompiler struct {
	stack int
	err   error
}

func (s stubCompiler) CompileSource(string, jtype.Type, jvmgen.Sink) (int, error) {
	return s.stack, s.err
}

func (s stubCompiler) CompileTree(expr.Node, jtype.Type, jvmgen.Sink) (int, error) {
	return s.stack, s.err
}

func TestSourceExprBridgeCost(t *testing.T) {
	s := NewSynthesizer(WithCompiler(stubCompiler{stack: 6}))

	sink := &recordSink{}
	stack, err := s.Synthesize(newField(t, jtype.Int, "f", false), ByExpr("anything"), nil, sink)
	if err != nil || stack != 7 {
		t.Errorf("instance: stack %d err %v, want 7", stack, err)
	}

	stack, err = s.Synthesize(newField(t, jtype.Int, "f", true), ByExpr("anything"), nil, &recordSink{})
	if err != nil || stack != 6 {
		t.Errorf("static: stack %d err %v, want 6", stack, err)
	}

	failing := NewSynthesizer(WithCompiler(stubCompiler{err: stderrors.New("boom")}))
	sink = &recordSink{}
	_, err = failing.Synthesize(newField(t, jtype.Int, "f", false), ByExpr("anything"), nil, sink)
	if errors.KindOf(err) != errors.KindCompileFailure || len(sink.calls) != 0 {
		t.Errorf("failing compiler: err %v calls %q", err, sink.calls)
	}
}

// ============================================================================
// 栈深度与真实指令一致
// ============================================================================

func TestStackCostCoversBytecode(t *testing.T) {
	obj := jtype.ClassOf("demo.Tag")
	matrix := jtype.ArrayOf(jtype.ArrayOf(jtype.Double))
	params := []jtype.Type{jtype.Double, jtype.Int, jtype.String}
	intArray, _ := ByNewArray(jtype.ArrayOf(jtype.Int), 300)

	tests := []struct {
		typ  jtype.Type
		init Initializer
	}{
		{jtype.Int, Constant(100000)},
		{jtype.Long, ConstantLong(-1)},
		{jtype.Double, ConstantDouble(0.5)},
		{jtype.String, ConstantString("x")},
		{jtype.Double, ByParameter(0)},
		{jtype.String, ByParameter(2)},
		{obj, ByNew(obj, []string{"a", "b", "c"})},
		{obj, ByNewWithParams(obj, []string{"a"})},
		{jtype.String, ByCallWithParams(obj, "make", nil)},
		{jtype.ArrayOf(jtype.Int), intArray},
		{matrix, ByNewMultiArray(matrix, []int32{3, 3})},
		{jtype.Double, ByExpr("1 + 2.5 * 4L")},
	}

	for _, tt := range tests {
		for _, static := range []bool{false, true} {
			f := newField(t, tt.typ, "v", static)
			code := jvmgen.NewBytecode(jvmgen.NewConstPool(), "demo/Point")
			stack, err := NewSynthesizer().Synthesize(f, tt.init, params, code)
			if err != nil {
				t.Errorf("%s: %v", tt.init, err)
				continue
			}
			if code.MaxStack() > stack {
				t.Errorf("%s (static=%v): reported %d but code needs %d", tt.init, static, stack, code.MaxStack())
			}
			if code.StackDepth() != 0 {
				t.Errorf("%s (static=%v): stack not balanced, depth %d", tt.init, static, code.StackDepth())
			}
		}
	}
}

// ============================================================================
// 日志
// ============================================================================

func TestSynthesizeLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSynthesizer(WithLogger(zap.New(core)))

	if _, err := s.Synthesize(newField(t, jtype.Int, "count", false), Constant(3), nil, &recordSink{}); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterMessage("field initializer synthesized").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["field"] != "count" || ctx["stack"] != int64(2) || ctx["initializer"] != "constant(3)" {
		t.Errorf("unexpected log context %v", ctx)
	}
}

func TestMissingInitializer(t *testing.T) {
	_, _, err := synth(t, jtype.Int, false, nil, nil)
	if !stderrors.Is(err, errors.ErrInvalidInitializer) {
		t.Errorf("nil initializer: got %v", err)
	}
}
