package imagefmt_test

import (
	"bytes"
	"errors"
	stdjpeg "image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/simonhull/imagefmt"
)

func TestDetectFormat(t *testing.T) {
	img := testImage(t, 8, 6, imagefmt.ColFmtRGBA)

	std, err := imagefmt.ToImage(img)
	if err != nil {
		t.Fatal(err)
	}
	var jpg bytes.Buffer
	if err := stdjpeg.Encode(&jpg, std, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want imagefmt.Format
	}{
		{"png", encode(t, imagefmt.FormatPNG, img), imagefmt.FormatPNG},
		{"jpeg", jpg.Bytes(), imagefmt.FormatJPEG},
		{"bmp", encode(t, imagefmt.FormatBMP, img), imagefmt.FormatBMP},
		{"tga", encode(t, imagefmt.FormatTGA, img), imagefmt.FormatTGA},
		{"tga raw", encode(t, imagefmt.FormatTGA, img, imagefmt.WithRLE(false)), imagefmt.FormatTGA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			got, err := imagefmt.DetectFormat(r)
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
			if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
				t.Errorf("stream moved to %d", pos)
			}
		})
	}
}

func TestDetectFormat_Foreign(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

	_, err := imagefmt.DetectFormat(bytes.NewReader(gif))
	if !errors.Is(err, imagefmt.ErrUnsupported) {
		t.Fatalf("DetectFormat(GIF) error = %v, want unsupported", err)
	}
	if !strings.Contains(err.Error(), "gif") {
		t.Errorf("error %q does not name the GIF type", err.Error())
	}

	_, err = imagefmt.DetectFormat(bytes.NewReader(nil))
	if !errors.Is(err, imagefmt.ErrUnsupported) {
		t.Errorf("DetectFormat(empty) error = %v, want unsupported", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]imagefmt.Format{
		"a.png":        imagefmt.FormatPNG,
		"b.JPG":        imagefmt.FormatJPEG,
		"c.tga":        imagefmt.FormatTGA,
		"dir/d.bmp":    imagefmt.FormatBMP,
		"e.gif":        imagefmt.FormatUnknown,
		"no-extension": imagefmt.FormatUnknown,
	}
	for path, want := range tests {
		if got := imagefmt.FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}
