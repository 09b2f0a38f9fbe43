package imagefmt

import (
	"github.com/simonhull/imagefmt/internal/types"
)

// Error is the error type returned by every function in this package.
// Re-exported from internal/types.
type Error = types.Error

// ErrorKind classifies an Error.
type ErrorKind = types.ErrorKind

// OutOfBoundsError reports a header field that lies past the bytes read
// for it. It matches ErrInvalidData.
type OutOfBoundsError = types.OutOfBoundsError

// Error kinds.
const (
	KindInvalidData = types.KindInvalidData
	KindInvalidArg  = types.KindInvalidArg
	KindUnsupported = types.KindUnsupported
	KindInternal    = types.KindInternal
	KindIO          = types.KindIO
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	// ErrInvalidData means the input violates its format's structure.
	ErrInvalidData = types.ErrInvalidData
	// ErrInvalidArg means the caller passed bad parameters.
	ErrInvalidArg = types.ErrInvalidArg
	// ErrUnsupported means the input is valid but uses a feature that is
	// not implemented.
	ErrUnsupported = types.ErrUnsupported
	// ErrInternal means a bug in this package.
	ErrInternal = types.ErrInternal
	// ErrIO means the underlying reader or writer failed.
	ErrIO = types.ErrIO
)

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	return types.KindOf(err)
}
