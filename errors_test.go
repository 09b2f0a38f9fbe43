package imagefmt_test

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simonhull/imagefmt"
)

func TestErrors_Classification(t *testing.T) {
	img := testImage(t, 4, 4, imagefmt.ColFmtRGB)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "unrecognized data",
			run: func() error {
				_, err := imagefmt.ReadFrom(bytes.NewReader([]byte("definitely not an image")), imagefmt.ColFmtAuto)
				return err
			},
			want: imagefmt.ErrUnsupported,
		},
		{
			name: "truncated PNG",
			run: func() error {
				data := encode(t, imagefmt.FormatPNG, img)
				_, err := imagefmt.ReadFrom(bytes.NewReader(data[:len(data)-20]), imagefmt.ColFmtAuto)
				return err
			},
			want: imagefmt.ErrInvalidData,
		},
		{
			name: "unknown extension",
			run: func() error {
				return imagefmt.Write(filepath.Join(t.TempDir(), "out.webp"), img, imagefmt.ColTypeAuto)
			},
			want: imagefmt.ErrInvalidArg,
		},
		{
			name: "JPEG encoding",
			run: func() error {
				return imagefmt.WriteTo(&bytes.Buffer{}, imagefmt.FormatJPEG, img, imagefmt.ColTypeAuto)
			},
			want: imagefmt.ErrUnsupported,
		},
		{
			name: "missing file",
			run: func() error {
				_, err := imagefmt.Read(filepath.Join(t.TempDir(), "missing.png"), imagefmt.ColFmtAuto)
				return err
			},
			want: imagefmt.ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want kind %v", err, tt.want)
			}
			var e *imagefmt.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *imagefmt.Error, got %T", err)
			}
			if got := imagefmt.KindOf(fmt.Errorf("wrapped: %w", err)); got != e.Kind {
				t.Errorf("KindOf() = %v, want %v", got, e.Kind)
			}
		})
	}
}

func TestErrors_WrapCause(t *testing.T) {
	_, err := imagefmt.ReadInfo(filepath.Join(t.TempDir(), "missing.tga"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}
	if imagefmt.KindIO.String() != "i/o error" || !strings.Contains(err.Error(), "i/o error") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if got := imagefmt.KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
	if got := imagefmt.KindOf(nil); got != 0 {
		t.Errorf("KindOf(nil) = %v, want 0", got)
	}
}
