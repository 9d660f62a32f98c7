// Package report 记录类定型结果，可输出为文本或 CBOR
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"

	"github.com/tangzhangming/fieldsynth/internal/classgen"
	"github.com/tangzhangming/fieldsynth/internal/field"
)

// ============================================================================
// 报告结构
// ============================================================================

// Report 定型结果摘要
type Report struct {
	Class   string   `cbor:"1,keyasint"`
	Super   string   `cbor:"2,keyasint"`
	Size    int      `cbor:"3,keyasint"` // class 文件字节数
	Fields  []Field  `cbor:"4,keyasint"`
	Methods []Method `cbor:"5,keyasint"`
}

// Field 字段摘要
type Field struct {
	Name        string `cbor:"1,keyasint"`
	Descriptor  string `cbor:"2,keyasint"`
	Modifiers   uint16 `cbor:"3,keyasint"`
	Static      bool   `cbor:"4,keyasint"`
	Initializer string `cbor:"5,keyasint,omitempty"`
	Stack       int    `cbor:"6,keyasint"`
}

// Method 生成方法摘要
type Method struct {
	Name       string `cbor:"1,keyasint"`
	Descriptor string `cbor:"2,keyasint"`
	MaxStack   int    `cbor:"3,keyasint"`
	MaxLocals  int    `cbor:"4,keyasint"`
	CodeLength int    `cbor:"5,keyasint"`
}

// New 由定型结果构建报告
func New(r *classgen.Result) *Report {
	rep := &Report{
		Class:   r.Class,
		Super:   r.Super,
		Size:    len(r.Bytes),
		Fields:  make([]Field, 0, len(r.Fields)),
		Methods: make([]Method, 0, len(r.Methods)),
	}
	for _, f := range r.Fields {
		rep.Fields = append(rep.Fields, Field{
			Name:        f.Name,
			Descriptor:  f.Descriptor,
			Modifiers:   f.Modifiers,
			Static:      f.Static,
			Initializer: f.Initializer,
			Stack:       f.Stack,
		})
	}
	for _, m := range r.Methods {
		rep.Methods = append(rep.Methods, Method(m))
	}
	return rep
}

// ============================================================================
// CBOR
// ============================================================================

// encMode 使用规范编码，相同报告总是得到相同字节
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR encoder: %v", err))
	}
}

// EncodeCBOR 编码报告
func EncodeCBOR(r *Report) ([]byte, error) {
	return encMode.Marshal(r)
}

// DecodeCBOR 解码报告
func DecodeCBOR(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// ============================================================================
// 文本
// ============================================================================

// WriteText 输出可读的报告
func WriteText(w io.Writer, r *Report) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("class %s extends %s (%d bytes)\n", r.Class, r.Super, r.Size))

	if len(r.Fields) > 0 {
		sb.WriteString("\nfields:\n")
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		for _, f := range r.Fields {
			init := f.Initializer
			if init == "" {
				init = "-"
			}
			mods := field.ModifierString(f.Modifiers)
			if mods == "" {
				mods = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\tstack=%d\n", f.Name, f.Descriptor, mods, init, f.Stack)
		}
		tw.Flush()
	}

	sb.WriteString("\nmethods:\n")
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	for _, m := range r.Methods {
		fmt.Fprintf(tw, "  %s%s\tstack=%d\tlocals=%d\tcode=%d\n", m.Name, m.Descriptor, m.MaxStack, m.MaxLocals, m.CodeLength)
	}
	tw.Flush()

	_, err := io.WriteString(w, sb.String())
	return err
}
