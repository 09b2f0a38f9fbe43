package types

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies an Error.
type ErrorKind int

const (
	// KindInvalidData means the input violates the format's structure.
	KindInvalidData ErrorKind = iota + 1
	// KindInvalidArg means the caller passed bad parameters.
	KindInvalidArg
	// KindUnsupported means the input is recognized but uses a feature
	// this library does not implement.
	KindUnsupported
	// KindInternal means a bug in this library.
	KindInternal
	// KindIO means the underlying reader or writer failed.
	KindIO
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidData:
		return "invalid data"
	case KindInvalidArg:
		return "invalid argument"
	case KindUnsupported:
		return "unsupported"
	case KindInternal:
		return "internal error"
	case KindIO:
		return "i/o error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every codec and by the facade.
//
// Compare against the Err* sentinels with errors.Is to classify an error
// by kind, or use errors.As to inspect the format and reason.
type Error struct {
	// Wrapped cause (I/O errors, io.ErrUnexpectedEOF), may be nil
	Err error

	// What went wrong, without the kind prefix
	Reason string

	// Stream offset where the problem was found (0 if not applicable)
	Offset int64

	Kind ErrorKind

	// Codec that produced the error (FormatUnknown for facade errors)
	Format Format
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Format != FormatUnknown {
		msg = e.Format.String() + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Offset > 0 {
		msg += fmt.Sprintf(" (at offset %d)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels: errors.Is(err, ErrUnsupported) is true
// for every *Error of KindUnsupported.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == "" && t.Err == nil && t.Format == FormatUnknown && t.Kind == e.Kind
}

// Kind sentinels.
var (
	ErrInvalidData = &Error{Kind: KindInvalidData}
	ErrInvalidArg  = &Error{Kind: KindInvalidArg}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrInternal    = &Error{Kind: KindInternal}
	ErrIO          = &Error{Kind: KindIO}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrorKind, f Format, format string, args ...any) *Error {
	return &Error{Kind: kind, Format: f, Reason: fmt.Sprintf(format, args...)}
}

// InvalidData returns a KindInvalidData error.
func InvalidData(f Format, format string, args ...any) *Error {
	return Errorf(KindInvalidData, f, format, args...)
}

// InvalidArg returns a KindInvalidArg error.
func InvalidArg(f Format, format string, args ...any) *Error {
	return Errorf(KindInvalidArg, f, format, args...)
}

// Unsupported returns a KindUnsupported error.
func Unsupported(f Format, format string, args ...any) *Error {
	return Errorf(KindUnsupported, f, format, args...)
}

// Internal returns a KindInternal error.
func Internal(f Format, format string, args ...any) *Error {
	return Errorf(KindInternal, f, format, args...)
}

// IOError classifies a reader or writer failure.
//
// Errors that are already *Error pass through unchanged. A stream that ends
// early (io.EOF, io.ErrUnexpectedEOF) is structural corruption and becomes
// KindInvalidData; anything else is KindIO.
func IOError(f Format, what string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	var oob *OutOfBoundsError
	if errors.As(err, &oob) {
		return &Error{Kind: KindInvalidData, Format: f, Reason: what, Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Kind: KindInvalidData, Format: f, Reason: "truncated " + what, Err: io.ErrUnexpectedEOF}
	}
	return &Error{Kind: KindIO, Format: f, Reason: what, Err: err}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// OutOfBoundsError is returned when a header field lies beyond the bytes
// that were read for it. It classifies as KindInvalidData.
type OutOfBoundsError struct {
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("offset %d out of bounds (size: %d) while reading %s",
			e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("read of %d bytes at offset %d would exceed size %d while reading %s",
		e.Length, e.Offset, e.Size, e.What)
}

// Is reports true for ErrInvalidData.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrInvalidData
}
