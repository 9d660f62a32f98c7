package jvmgen

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestConstPoolDeduplication(t *testing.T) {
	cp := NewConstPool()
	a := cp.AddUtf8("hello")
	b := cp.AddUtf8("hello")
	if a != b {
		t.Errorf("duplicate utf8 got %d and %d", a, b)
	}
	if a != 1 {
		t.Errorf("first index got %d, want 1", a)
	}

	m1 := cp.AddMethodref("Foo", "<init>", "()V")
	m2 := cp.AddMethodref("Foo", "<init>", "()V")
	if m1 != m2 {
		t.Errorf("duplicate methodref got %d and %d", m1, m2)
	}
}

func TestConstPoolWideSlots(t *testing.T) {
	cp := NewConstPool()
	l := cp.AddLong(7)
	next := cp.AddUtf8("after")
	if next != l+2 {
		t.Errorf("entry after long got index %d, want %d", next, l+2)
	}
	d := cp.AddDouble(1.5)
	if cp.Size() != int(d)+2 {
		t.Errorf("size got %d, want %d", cp.Size(), d+2)
	}
	if cp.AddDouble(1.5) != d {
		t.Error("double constants should deduplicate")
	}
}

func TestClassFileHeader(t *testing.T) {
	cp := NewConstPool()
	cf := NewClassFile(cp, "demo/Point", "java/lang/Object")
	cf.Fields = append(cf.Fields, FieldInfo{
		AccessFlags:     AccPublic,
		NameIndex:       cp.AddUtf8("x"),
		DescriptorIndex: cp.AddUtf8("I"),
	})

	data, err := cf.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	if binary.BigEndian.Uint32(data) != ClassFileMagic {
		t.Errorf("bad magic % X", data[:4])
	}
	if binary.BigEndian.Uint16(data[6:]) != ClassMajorVersion {
		t.Errorf("bad major version % X", data[6:8])
	}
	if int(binary.BigEndian.Uint16(data[8:])) != cp.Size() {
		t.Errorf("constant pool count mismatch")
	}

	var buf bytes.Buffer
	if err := cf.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Error("Write and ToBytes disagree")
	}
}

func TestModifiedUTF8(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{"abc", []byte("abc")},
		{"\x00", []byte{0xC0, 0x80}},
		{"é", []byte{0xC3, 0xA9}},
		{"\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}

	for _, tt := range tests {
		got := modifiedUTF8(tt.input)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("modifiedUTF8(%q) got % X, want % X", tt.input, got, tt.want)
		}
		if n := ModifiedUTF8Len(tt.input); n != len(tt.want) {
			t.Errorf("ModifiedUTF8Len(%q) got %d, want %d", tt.input, n, len(tt.want))
		}
	}
}

func TestToBytesRejectsLongUtf8(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{strings.Repeat("a", MaxUtf8Length), false},
		{strings.Repeat("a", MaxUtf8Length+1), true},
		{strings.Repeat("\x00", MaxUtf8Length/2+1), true}, // U+0000 占两字节
	}
	for _, tt := range tests {
		cp := NewConstPool()
		cf := NewClassFile(cp, "demo/Big", "java/lang/Object")
		cp.AddString(tt.value)

		_, err := cf.ToBytes()
		if (err != nil) != tt.wantErr {
			t.Errorf("%d-char string: err = %v, wantErr %v", len(tt.value), err, tt.wantErr)
		}
	}
}

func TestCodeAttributeLimit(t *testing.T) {
	cp := NewConstPool()
	if _, err := CodeAttribute(cp, 1, 1, make([]byte, MaxCodeLength)); err != nil {
		t.Errorf("code at the limit: %v", err)
	}
	if _, err := CodeAttribute(cp, 1, 1, make([]byte, MaxCodeLength+1)); err == nil {
		t.Error("oversized code should be rejected")
	}
}
