package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/imagefmt"
)

// writeSample writes a 4x2 image of solid (40, 80, 120) to dir/name.
func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	img := &imagefmt.Image{W: 4, H: 2, Fmt: imagefmt.ColFmtRGB, Buf: bytes.Repeat([]byte{40, 80, 120}, 8)}
	path := filepath.Join(dir, name)
	require.NoError(t, imagefmt.Write(path, img, imagefmt.ColTypeAuto))
	return path
}

func TestRun_Info(t *testing.T) {
	dir := t.TempDir()
	png := writeSample(t, dir, "a.png")

	// Same image, gzip-wrapped.
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	wrapped := filepath.Join(dir, "a.png.gz")
	require.NoError(t, os.WriteFile(wrapped, gz.Bytes(), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"info", "-mean", png, wrapped}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, png+": PNG 4x2 Color mean #285078", lines[0])
	assert.Equal(t, wrapped+": PNG 4x2 Color (gzip) mean #285078", lines[1])
}

func TestRun_InfoFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image at all"), 0o644))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"info", bad}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `kind=unsupported`)
}

func TestRun_Convert(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.bmp")
	out := filepath.Join(dir, "out.tga")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", "convert", "-type", "gray", in, out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "level=DEBUG")

	info, err := imagefmt.ReadInfo(out)
	require.NoError(t, err)
	assert.Equal(t, imagefmt.Info{W: 4, H: 2, CT: imagefmt.ColTypeGray}, info)
}

func TestRun_Region(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.png")
	out := filepath.Join(dir, "tile.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{"region", "-x", "1", "-w", "2", "-h", "2", in, out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	img, err := imagefmt.Read(out, imagefmt.ColFmtRGB)
	require.NoError(t, err)
	assert.Equal(t, 2, img.W)
	assert.Equal(t, bytes.Repeat([]byte{40, 80, 120}, 4), img.Buf)
}

func TestRun_RegionOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "in.png")
	out := filepath.Join(dir, "tile.png")

	for _, args := range [][]string{
		{"region", "-x", "9223372036854775807", "-w", "1", "-h", "1", in, out},
		{"region", "-x", "3", "-w", "2", "-h", "1", in, out},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(args, &stdout, &stderr), "args %q", args)
		assert.Contains(t, stderr.String(), `kind="invalid argument"`)
		assert.NoFileExists(t, out)
	}
}

func TestRun_Usage(t *testing.T) {
	tests := [][]string{
		nil,
		{"resize"},
		{"info"},
		{"convert", "only-one-arg"},
		{"region", "in.png", "out.png"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(args, &stdout, &stderr), "args %q", args)
	}

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"convert", "-colfmt", "cmyk", "a.png", "b.png"}, &stdout, &stderr))
}
