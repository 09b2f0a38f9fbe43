package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestSafeWriter_BigEndian(t *testing.T) {
	tests := []struct {
		write func(sw *SafeWriter) error
		name  string
		want  []byte
	}{
		{
			name:  "uint8",
			write: func(sw *SafeWriter) error { return Write[uint8](sw, 0x42) },
			want:  []byte{0x42},
		},
		{
			name:  "uint16",
			write: func(sw *SafeWriter) error { return Write[uint16](sw, 0xABCD) },
			want:  []byte{0xAB, 0xCD},
		},
		{
			name:  "uint32 chunk length",
			write: func(sw *SafeWriter) error { return Write[uint32](sw, 13) },
			want:  []byte{0x00, 0x00, 0x00, 0x0D},
		},
		{
			name:  "uint64",
			write: func(sw *SafeWriter) error { return Write[uint64](sw, 0x0102030405060708) },
			want:  []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			sw := NewSafeWriter(buf)
			if err := tt.write(sw); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, buf.Bytes())
			}
			if sw.Offset() != int64(len(tt.want)) {
				t.Errorf("expected offset %d, got %d", len(tt.want), sw.Offset())
			}
		})
	}
}

func TestSafeWriter_LittleEndian(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	// BMP file header prefix: "BM", file size, reserved
	_ = sw.WriteString("BM")
	_ = WriteLE[uint32](sw, 0x12345678)
	_ = WriteLE[uint16](sw, 0)

	expected := []byte{'B', 'M', 0x78, 0x56, 0x34, 0x12, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
	if sw.Offset() != 8 {
		t.Errorf("expected offset 8, got %d", sw.Offset())
	}
}

func TestSafeWriter_WriteZeros(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	if err := sw.WriteZeros(150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 150 {
		t.Fatalf("expected 150 bytes, got %d", buf.Len())
	}
	for i, b := range buf.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

type failingWriter struct {
	n int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if len(p) > f.n {
		n := f.n
		f.n = 0
		return n, errors.New("disk full")
	}
	f.n -= len(p)
	return len(p), nil
}

func TestSafeWriter_ErrorKeepsOffset(t *testing.T) {
	sw := NewSafeWriter(&failingWriter{n: 3})

	if err := Write[uint16](sw, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Write[uint32](sw, 1); err == nil {
		t.Fatal("expected error, got nil")
	}
	if sw.Offset() != 3 {
		t.Errorf("expected offset 3 after partial write, got %d", sw.Offset())
	}
}
