package types

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := InvalidData(FormatPNG, "bad CRC")

	if !errors.Is(err, ErrInvalidData) {
		t.Error("errors.Is(err, ErrInvalidData) = false")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Error("errors.Is(err, ErrUnsupported) = true")
	}

	wrapped := fmt.Errorf("opening icon: %w", err)
	if !errors.Is(wrapped, ErrInvalidData) {
		t.Error("wrapped error lost its kind")
	}

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("errors.As failed")
	}
	if e.Format != FormatPNG || e.Reason != "bad CRC" {
		t.Errorf("got Format=%v Reason=%q", e.Format, e.Reason)
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{Unsupported(FormatJPEG, "progressive JPEG"), "JPEG: unsupported: progressive JPEG"},
		{InvalidArg(FormatUnknown, "nil image"), "invalid argument: nil image"},
		{&Error{Kind: KindInvalidData, Format: FormatTGA, Reason: "bad packet", Offset: 18}, "TGA: invalid data: bad packet (at offset 18)"},
		{&Error{Kind: KindIO, Format: FormatBMP, Reason: "header", Err: os.ErrClosed}, "BMP: i/o error: header: " + os.ErrClosed.Error()},
		{ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIOError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if err := IOError(FormatPNG, "x", nil); err != nil {
			t.Errorf("IOError(nil) = %v", err)
		}
	})

	t.Run("truncation is invalid data", func(t *testing.T) {
		for _, cause := range []error{io.EOF, io.ErrUnexpectedEOF} {
			err := IOError(FormatBMP, "pixel row", cause)
			if !errors.Is(err, ErrInvalidData) {
				t.Errorf("IOError(%v) = %v, want invalid data", cause, err)
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("IOError(%v) should wrap io.ErrUnexpectedEOF", cause)
			}
			if !strings.Contains(err.Error(), "truncated pixel row") {
				t.Errorf("message = %q", err.Error())
			}
		}
	})

	t.Run("other failures are i/o", func(t *testing.T) {
		err := IOError(FormatTGA, "header", os.ErrPermission)
		if KindOf(err) != KindIO {
			t.Errorf("KindOf = %v, want %v", KindOf(err), KindIO)
		}
		if !errors.Is(err, os.ErrPermission) {
			t.Error("cause not wrapped")
		}
	})

	t.Run("existing errors pass through", func(t *testing.T) {
		orig := Unsupported(FormatPNG, "16-bit")
		if got := IOError(FormatPNG, "x", orig); got != error(orig) {
			t.Errorf("IOError rewrapped %v", got)
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		oob := &OutOfBoundsError{What: "masks", Offset: 40, Length: 16, Size: 48}
		err := IOError(FormatBMP, "DIB header", oob)
		if !errors.Is(err, ErrInvalidData) {
			t.Errorf("IOError(oob) = %v, want invalid data", err)
		}
		var got *OutOfBoundsError
		if !errors.As(err, &got) || got != oob {
			t.Error("OutOfBoundsError not reachable through errors.As")
		}
	})
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
	if KindOf(fmt.Errorf("x: %w", Internal(FormatPNG, "oops"))) != KindInternal {
		t.Error("KindOf did not unwrap")
	}
}

func TestOutOfBoundsError_Message(t *testing.T) {
	past := &OutOfBoundsError{What: "palette", Offset: 60, Length: 4, Size: 50}
	if !strings.Contains(past.Error(), "offset 60 out of bounds") {
		t.Errorf("Error() = %q", past.Error())
	}
	over := &OutOfBoundsError{What: "palette", Offset: 40, Length: 16, Size: 50}
	if !strings.Contains(over.Error(), "read of 16 bytes at offset 40") {
		t.Errorf("Error() = %q", over.Error())
	}
	if !errors.Is(over, ErrInvalidData) {
		t.Error("OutOfBoundsError should match ErrInvalidData")
	}
}
