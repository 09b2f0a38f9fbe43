package imagefmt_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/imagefmt"
)

// testImage builds a w x h image in format f whose channels vary with
// position, including alpha when f has it.
func testImage(t testing.TB, w, h int, f imagefmt.ColFmt) *imagefmt.Image {
	t.Helper()

	rgba := &imagefmt.Image{W: w, H: h, Fmt: imagefmt.ColFmtRGBA, Buf: make([]byte, 0, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rgba.Buf = append(rgba.Buf, byte(x*13), byte(y*7), byte(x+y), byte(255-x*3))
		}
	}
	img, err := imagefmt.Convert(rgba, f)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return img
}

// encode returns img encoded as format f.
func encode(t testing.TB, f imagefmt.Format, img *imagefmt.Image, opts ...imagefmt.WriteOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imagefmt.WriteTo(&buf, f, img, imagefmt.ColTypeAuto, opts...); err != nil {
		t.Fatalf("WriteTo(%v) error = %v", f, err)
	}
	return buf.Bytes()
}

// writeTemp stores data in a fresh file named name and returns its path.
func writeTemp(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
