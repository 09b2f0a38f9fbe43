// Package types provides the core data structures shared by the codecs and
// the public imagefmt API.
//
// This package defines Image, Info, ColFmt, ColType, Format, Region, the
// codec option structs and the Error taxonomy.
package types

import (
	"fmt"
	"math"
)

// Image is a decoded image: a tightly packed pixel buffer plus its layout.
//
// Rows are stored top to bottom without padding, so
// len(Buf) == W * H * Fmt.BytesPerPixel().
type Image struct {
	Buf []byte
	W   int
	H   int
	Fmt ColFmt
}

// Info holds basic information about an image, read from its header.
type Info struct {
	W  int
	H  int
	CT ColType
}

// String returns a human-readable representation, e.g. "640x480 Color".
func (i Info) String() string {
	return fmt.Sprintf("%dx%d %s", i.W, i.H, i.CT)
}

// Validate checks the buffer invariant.
func (img *Image) Validate() error {
	if img == nil {
		return InvalidArg(FormatUnknown, "nil image")
	}
	if !img.Fmt.Valid() {
		return InvalidArg(FormatUnknown, "image color format %s is not concrete", img.Fmt)
	}
	if img.W < 1 || img.H < 1 {
		return InvalidArg(FormatUnknown, "invalid dimensions %dx%d", img.W, img.H)
	}
	bpp := img.Fmt.BytesPerPixel()
	if img.W > math.MaxInt/img.H/bpp {
		return InvalidArg(FormatUnknown, "dimensions %dx%d overflow the buffer size", img.W, img.H)
	}
	if want := img.W * img.H * bpp; len(img.Buf) != want {
		return InvalidArg(FormatUnknown, "buffer length %d does not match %dx%d %s (%d bytes)",
			len(img.Buf), img.W, img.H, img.Fmt, want)
	}
	return nil
}

// Stride returns the length of one row in bytes.
func (img *Image) Stride() int {
	return img.W * img.Fmt.BytesPerPixel()
}

// Bounds returns the region covering the whole image.
func (img *Image) Bounds() Region {
	return Region{W: img.W, H: img.H}
}

// Row returns the bytes of row y limited to region columns.
func (img *Image) Row(y int, rgn Region) []byte {
	bpp := img.Fmt.BytesPerPixel()
	start := y*img.Stride() + rgn.X*bpp
	return img.Buf[start : start+rgn.W*bpp]
}

// SubImage returns a compact copy of the pixels inside rgn.
func (img *Image) SubImage(rgn Region) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := rgn.Within(img.W, img.H); err != nil {
		return nil, err
	}
	bpp := img.Fmt.BytesPerPixel()
	out := &Image{W: rgn.W, H: rgn.H, Fmt: img.Fmt, Buf: make([]byte, 0, rgn.W*rgn.H*bpp)}
	for y := rgn.Y; y < rgn.Y+rgn.H; y++ {
		out.Buf = append(out.Buf, img.Row(y, rgn)...)
	}
	return out, nil
}

// Region is a rectangle of pixels: origin (X, Y) at the top-left, W columns
// by H rows.
type Region struct {
	X int
	Y int
	W int
	H int
}

// String returns "WxH+X+Y".
func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Within checks that the region is non-empty and lies inside a w x h image.
func (r Region) Within(w, h int) error {
	if r.Empty() || r.X < 0 || r.Y < 0 || r.W > w-r.X || r.H > h-r.Y {
		return InvalidArg(FormatUnknown, "region %s is empty or outside %dx%d image", r, w, h)
	}
	return nil
}

// DecodeOptions tune a decoder.
type DecodeOptions struct {
	// Upper bound on W*H accepted from a header (0 = no limit)
	MaxPixels int64
}

// maxPixels bounds every decode regardless of options, keeping
// W*H*4 inside an int on all platforms.
const maxPixels = 1<<29 - 1

// CheckSize applies MaxPixels to header dimensions.
func (o DecodeOptions) CheckSize(f Format, w, h int) error {
	if int64(w)*int64(h) > maxPixels {
		return Unsupported(f, "image of %dx%d pixels is too large", w, h)
	}
	if o.MaxPixels > 0 && int64(w)*int64(h) > o.MaxPixels {
		return Unsupported(f, "image of %dx%d pixels exceeds limit of %d", w, h, o.MaxPixels)
	}
	return nil
}

// EncodeOptions tune an encoder.
type EncodeOptions struct {
	// zlib level for PNG (-1 = default, 0..9)
	CompressionLevel int

	// Run-length encoding for TGA
	RLE bool
}

// DefaultEncodeOptions returns the encoder defaults.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		CompressionLevel: -1,
		RLE:              true,
	}
}

// ExtChunk is a PNG extension chunk: a four-letter name and its payload.
type ExtChunk struct {
	Data []byte
	Name [4]byte
}

// NameString returns the chunk name as a string.
func (c ExtChunk) NameString() string {
	return string(c.Name[:])
}

// NewExtChunk builds an ExtChunk from a string name.
func NewExtChunk(name string, data []byte) (ExtChunk, error) {
	if len(name) != 4 {
		return ExtChunk{}, InvalidArg(FormatPNG, "chunk name %q must be four bytes", name)
	}
	var c ExtChunk
	copy(c.Name[:], name)
	c.Data = data
	return c, nil
}
