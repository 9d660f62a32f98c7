package jvmgen

import "encoding/binary"

// ByteWriter 追加式大端序写入器，class 文件与 Code 属性共用
type ByteWriter struct {
	b []byte
}

// NewByteWriter 创建写入器
func NewByteWriter() *ByteWriter {
	return &ByteWriter{}
}

func (w *ByteWriter) WriteU8(v uint8) { w.b = append(w.b, v) }

func (w *ByteWriter) WriteU16(v uint16) { w.b = binary.BigEndian.AppendUint16(w.b, v) }

func (w *ByteWriter) WriteU32(v uint32) { w.b = binary.BigEndian.AppendUint32(w.b, v) }

// WriteU64 long/double 常量按高位在前的 8 字节写出
func (w *ByteWriter) WriteU64(v uint64) { w.b = binary.BigEndian.AppendUint64(w.b, v) }

func (w *ByteWriter) WriteBytes(p []byte) { w.b = append(w.b, p...) }

// Bytes 返回已写入的内容（与写入器共享底层数组）
func (w *ByteWriter) Bytes() []byte { return w.b }

func (w *ByteWriter) Len() int { return len(w.b) }
