package field

import (
	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/expr"
	"github.com/tangzhangming/fieldsynth/internal/jtype"
	"github.com/tangzhangming/fieldsynth/internal/jvmgen"
)

// ExprCompiler 表达式编译器。
// 编译结果是留在栈顶的一个 target 类型的值，返回求值的最大栈深度。
type ExprCompiler interface {
	CompileSource(src string, target jtype.Type, code jvmgen.Sink) (int, error)
	CompileTree(tree expr.Node, target jtype.Type, code jvmgen.Sink) (int, error)
}

var _ ExprCompiler = (*expr.Compiler)(nil)

// compileExpr 调用表达式编译器，失败统一包装为 CompileFailure
func compileExpr(c ExprCompiler, e *SourceExprInit, target jtype.Type, name string, code jvmgen.Sink) (int, error) {
	var (
		stack int
		err   error
	)
	if e.Tree != nil {
		stack, err = c.CompileTree(e.Tree, target, code)
	} else {
		stack, err = c.CompileSource(e.Source, target, code)
	}
	if err != nil {
		return 0, errors.CompileFailure(name, err)
	}
	return stack, nil
}

// discard 丢弃全部指令的 Sink，用于在写出前试编译表达式
type discard struct{}

func (discard) AddOpcode(byte)                                  {}
func (discard) AddAload(int)                                    {}
func (discard) AddLoad(_ int, t jtype.Type) int                 { return t.Size() }
func (discard) AddIconst(int32)                                 {}
func (discard) AddLdc(string)                                   {}
func (discard) AddLdcFloat(float32)                             {}
func (discard) AddLdc2wLong(int64)                              {}
func (discard) AddLdc2wDouble(float64)                          {}
func (discard) AddNew(string)                                   {}
func (discard) AddNewarray(jtype.Type, int32)                   {}
func (discard) AddAnewarray(string)                             {}
func (discard) AddMultiNewarray(_ jtype.Type, dims []int32) int { return len(dims) }
func (discard) AddInvokespecial(string, string, string)         {}
func (discard) AddInvokestatic(string, string, string)          {}
func (discard) AddPutfield(string, string)                      {}
func (discard) AddPutstatic(string, string)                     {}
func (discard) MaxStack() int                                   { return 0 }
