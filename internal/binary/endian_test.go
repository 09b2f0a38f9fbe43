package binary

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/simonhull/imagefmt/internal/types"
)

func TestReadLE(t *testing.T) {
	// Create test data with known little-endian values
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint16(513))
	binary.Write(buf, binary.LittleEndian, uint32(67305985))
	binary.Write(buf, binary.LittleEndian, uint64(578437695752307201))

	sr := NewSafeReader(bytes.NewReader(buf.Bytes()), types.FormatTGA)

	v16, err := ReadLE[uint16](sr, "uint16")
	if err != nil || v16 != 513 {
		t.Errorf("ReadLE[uint16] = %d, %v; want 513", v16, err)
	}
	v32, err := ReadLE[uint32](sr, "uint32")
	if err != nil || v32 != 67305985 {
		t.Errorf("ReadLE[uint32] = %d, %v; want 67305985", v32, err)
	}
	v64, err := ReadLE[uint64](sr, "uint64")
	if err != nil || v64 != 578437695752307201 {
		t.Errorf("ReadLE[uint64] = %d, %v; want 578437695752307201", v64, err)
	}
}

func TestReadBE_MatchesRead(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF}
	a := NewSafeReader(bytes.NewReader(data), types.FormatPNG)
	b := NewSafeReader(bytes.NewReader(data), types.FormatPNG)

	va, _ := Read[uint32](a, "crc")
	vb, _ := ReadBE[uint32](b, "crc")
	if va != vb || va != 0xDEADBEEF {
		t.Errorf("Read = 0x%08x, ReadBE = 0x%08x, want 0xDEADBEEF", va, vb)
	}
}

func TestGetPut(t *testing.T) {
	tests := []struct {
		name   string
		endian Endianness
		want   []byte
	}{
		{name: "big endian", endian: BigEndian, want: []byte{0x12, 0x34, 0x56, 0x78}},
		{name: "little endian", endian: LittleEndian, want: []byte{0x78, 0x56, 0x34, 0x12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 4)
			Put(b, uint32(0x12345678), tt.endian)
			if !bytes.Equal(b, tt.want) {
				t.Errorf("Put = %v, want %v", b, tt.want)
			}
			if got := Get[uint32](b, tt.endian); got != 0x12345678 {
				t.Errorf("Get = 0x%08x, want 0x12345678", got)
			}
			if got := Get[uint16](b, tt.endian); got != Get[uint16](tt.want, tt.endian) {
				t.Errorf("Get[uint16] mismatch: 0x%04x", got)
			}
		})
	}
}
