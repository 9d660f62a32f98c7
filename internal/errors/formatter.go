package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ============================================================================
// 格式化器
// ============================================================================

// levelError 诊断的级别标签
const levelError = "error"

// Formatter 错误格式化器
type Formatter struct {
	Colors    bool // 是否使用颜色
	ShowHints bool // 是否显示修复建议
	ShowCause bool // 是否显示原始错误
}

// NewFormatter 创建默认格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:    ColorsEnabled(),
		ShowHints: true,
		ShowCause: true,
	}
}

// Format 格式化单个错误
//
// 输出形如:
//
//	error[F0001]: type mismatch
//	 --> field count
//	 = expected: int
//	 = found: long
//	 = help: use the constant factory matching the field's declared type
func (f *Formatter) Format(err error) string {
	var cc *CannotCompileError
	if !stderrors.As(err, &cc) {
		level := f.colorize(levelError, ColorBoldRed)
		return fmt.Sprintf("%s: %s\n", level, err.Error())
	}

	var sb strings.Builder

	levelStr := f.colorize(levelError, ColorBoldRed)
	codeStr := f.colorize(fmt.Sprintf("[%s]", cc.Code), ColorBoldRed)
	sb.WriteString(fmt.Sprintf("%s%s: %s\n", levelStr, codeStr, cc.Message))

	if cc.Field != "" {
		arrow := f.colorize("-->", ColorCyan)
		sb.WriteString(fmt.Sprintf(" %s field %s\n", arrow, f.colorize(cc.Field, ColorCyan)))
	}

	if cc.Expected != "" || cc.Actual != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = expected:", ColorCyan), cc.Expected))
		sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = found:", ColorCyan), cc.Actual))
	}

	if f.ShowCause && cc.Cause != nil {
		sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = note:", ColorCyan), cc.Cause.Error()))
	}

	if f.ShowHints {
		if info, ok := GetErrorInfo(cc.Code); ok && info.Hint != "" {
			sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = help:", ColorCyan), info.Hint))
		}
	}

	return sb.String()
}

// FormatAll 格式化由 multierr 合并的多个错误，末尾附加汇总行
func (f *Formatter) FormatAll(err error) string {
	if err == nil {
		return ""
	}
	errs := multierr.Errors(err)

	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(f.Format(e))
	}
	if len(errs) > 1 {
		summary := fmt.Sprintf("%d errors", len(errs))
		sb.WriteString(f.colorize(summary, ColorBoldRed))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *Formatter) colorize(s string, c Color) string {
	if !f.Colors {
		return s
	}
	return wrapColor(s, c)
}
