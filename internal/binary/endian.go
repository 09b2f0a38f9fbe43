package binary

import "encoding/binary"

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: PNG, JPEG.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: BMP, TGA.
	LittleEndian
)

// order returns the encoding/binary implementation for e.
func (e Endianness) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ReadLE reads a numeric value of type T using little-endian byte order.
//
// This is a convenience wrapper for ReadEndian with LittleEndian.
//
// Example:
//
//	width, err := binary.ReadLE[uint16](sr, "image width")
func ReadLE[T Unsigned](sr *SafeReader, what string) (T, error) {
	return ReadEndian[T](sr, what, LittleEndian)
}

// ReadBE reads a numeric value of type T using big-endian byte order.
//
// Equivalent to Read() but more explicit about byte order.
func ReadBE[T Unsigned](sr *SafeReader, what string) (T, error) {
	return ReadEndian[T](sr, what, BigEndian)
}

// ReadEndian reads a numeric value of type T with the specified byte order.
//
// This is the low-level function used by Read, ReadLE, and ReadBE.
// Most code should use the convenience wrappers instead.
func ReadEndian[T Unsigned](sr *SafeReader, what string, endian Endianness) (T, error) {
	var buf [8]byte
	b := buf[:sizeOf[T]()]
	if err := sr.ReadFull(b, what); err != nil {
		var zero T
		return zero, err
	}
	return Get[T](b, endian), nil
}

// Get decodes a value of type T from the start of b.
// b must hold at least the size of T.
func Get[T Unsigned](b []byte, endian Endianness) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case uint16:
		return T(endian.order().Uint16(b))
	case uint32:
		return T(endian.order().Uint32(b))
	default:
		return T(endian.order().Uint64(b))
	}
}

// Put encodes v into the start of b.
// b must hold at least the size of T.
func Put[T Unsigned](b []byte, v T, endian Endianness) {
	var zero T
	switch any(zero).(type) {
	case uint8:
		b[0] = byte(v)
	case uint16:
		endian.order().PutUint16(b, uint16(v))
	case uint32:
		endian.order().PutUint32(b, uint32(v))
	default:
		endian.order().PutUint64(b, uint64(v))
	}
}
