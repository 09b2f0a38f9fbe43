// Package binary provides type-safe binary reading primitives with offset tracking
package binary

import (
	"io"

	"github.com/simonhull/imagefmt/internal/types"
)

// Unsigned is the set of fixed-size values the readers and writers handle.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// sizeOf returns the encoded size of T in bytes.
func sizeOf[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// SafeReader wraps an io.Reader with offset tracking and classified errors.
//
// Every failure is returned as a *types.Error tagged with the codec format:
// a stream that ends early is invalid data, anything else is an I/O error.
type SafeReader struct {
	r      io.Reader
	offset int64
	format types.Format
}

// NewSafeReader creates a new SafeReader for the given codec.
func NewSafeReader(r io.Reader, f types.Format) *SafeReader {
	return &SafeReader{
		r:      r,
		format: f,
	}
}

// Offset returns the number of bytes consumed so far.
func (sr *SafeReader) Offset() int64 {
	return sr.offset
}

// ReadFull fills b, with context for error messages.
func (sr *SafeReader) ReadFull(b []byte, what string) error {
	n, err := io.ReadFull(sr.r, b)
	sr.offset += int64(n)
	if err != nil {
		return types.IOError(sr.format, what, err)
	}
	return nil
}

// ReadByte reads one byte, implementing io.ByteReader. Wrap unbuffered
// sources in a bufio.Reader before reading byte by byte.
func (sr *SafeReader) ReadByte() (byte, error) {
	var b [1]byte
	if err := sr.ReadFull(b[:], "byte"); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip discards n bytes.
func (sr *SafeReader) Skip(n int64, what string) error {
	return sr.CopyN(io.Discard, n, what)
}

// CopyN copies n bytes to dst. Unlike ReadFull it never allocates up
// front, so a corrupt length field cannot trigger a huge allocation.
func (sr *SafeReader) CopyN(dst io.Writer, n int64, what string) error {
	if n <= 0 {
		return nil
	}
	copied, err := io.CopyN(dst, sr.r, n)
	sr.offset += copied
	if err != nil {
		return types.IOError(sr.format, what, err)
	}
	return nil
}

// Read reads a big-endian value of type T.
// T must be uint8, uint16, uint32, or uint64.
func Read[T Unsigned](sr *SafeReader, what string) (T, error) {
	return ReadEndian[T](sr, what, BigEndian)
}

// Sniff reads up to n bytes at the current position and seeks back.
//
// A short stream is not an error: the returned slice simply holds fewer
// than n bytes. Only seek failures are reported.
func Sniff(r io.ReadSeeker, n int) ([]byte, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, _ := io.ReadFull(r, buf)
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return buf[:got], nil
}
