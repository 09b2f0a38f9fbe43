package binary

import "github.com/simonhull/imagefmt/internal/types"

// ChainReader walks a header buffer with deferred error checking.
// This avoids repetitive "if err != nil" checks when decoding fixed layouts.
type ChainReader struct {
	err   error
	buf   []byte
	off   int
	order Endianness
}

// NewChainReader creates a ChainReader over buf.
func NewChainReader(buf []byte, order Endianness) *ChainReader {
	return &ChainReader{buf: buf, order: order}
}

// take returns the next n bytes, or records an out-of-bounds error.
func (cr *ChainReader) take(n int, what string) []byte {
	if cr.err != nil {
		return nil
	}
	if n < 0 || cr.off+n > len(cr.buf) {
		cr.err = &types.OutOfBoundsError{
			What:   what,
			Offset: int64(cr.off),
			Length: n,
			Size:   int64(len(cr.buf)),
		}
		return nil
	}
	b := cr.buf[cr.off : cr.off+n]
	cr.off += n
	return b
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T Unsigned](cr *ChainReader, what string) T {
	b := cr.take(sizeOf[T](), what)
	if b == nil {
		var zero T
		return zero
	}
	return Get[T](b, cr.order)
}

// Bytes returns the next n bytes without copying, accumulating any error.
func (cr *ChainReader) Bytes(n int, what string) []byte {
	return cr.take(n, what)
}

// Skip advances the offset by n bytes.
func (cr *ChainReader) Skip(n int, what string) {
	cr.take(n, what)
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
