package binary

import (
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
type SafeWriter struct {
	w      io.Writer
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{
		w:      w,
		offset: 0,
	}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// WriteZeros writes n zero bytes.
func (sw *SafeWriter) WriteZeros(n int) error {
	var zeros [64]byte
	for n > 0 {
		k := min(n, len(zeros))
		if err := sw.WriteBytes(zeros[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

// Write writes a value of type T in big-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func Write[T Unsigned](sw *SafeWriter, val T) error {
	var buf [8]byte
	b := buf[:sizeOf[T]()]
	Put(b, val, BigEndian)
	return sw.WriteBytes(b)
}

// WriteLE writes a value of type T in little-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func WriteLE[T Unsigned](sw *SafeWriter, val T) error {
	var buf [8]byte
	b := buf[:sizeOf[T]()]
	Put(b, val, LittleEndian)
	return sw.WriteBytes(b)
}
