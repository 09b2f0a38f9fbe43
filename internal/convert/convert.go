// Package convert translates pixel rows between color formats.
//
// Every pair of concrete formats is supported. Channels are addressed by
// index (Y, R, G, B, A) so a single generic loop covers reordering, alpha
// synthesis and alpha removal; only the gray/color boundary needs math.
package convert

import (
	"github.com/simonhull/imagefmt/internal/types"
)

// Func converts one row of pixels from src into dst.
// dst must hold exactly as many pixels as src.
type Func func(src, dst []byte)

// layout gives the byte index of each channel inside a pixel, -1 if the
// channel is absent.
type layout struct {
	y, r, g, b, a int
	bpp           int
}

var layouts = map[types.ColFmt]layout{
	types.ColFmtY:    {y: 0, r: -1, g: -1, b: -1, a: -1, bpp: 1},
	types.ColFmtYA:   {y: 0, r: -1, g: -1, b: -1, a: 1, bpp: 2},
	types.ColFmtAY:   {y: 1, r: -1, g: -1, b: -1, a: 0, bpp: 2},
	types.ColFmtRGB:  {y: -1, r: 0, g: 1, b: 2, a: -1, bpp: 3},
	types.ColFmtRGBA: {y: -1, r: 0, g: 1, b: 2, a: 3, bpp: 4},
	types.ColFmtBGR:  {y: -1, r: 2, g: 1, b: 0, a: -1, bpp: 3},
	types.ColFmtBGRA: {y: -1, r: 2, g: 1, b: 0, a: 3, bpp: 4},
	types.ColFmtARGB: {y: -1, r: 1, g: 2, b: 3, a: 0, bpp: 4},
	types.ColFmtABGR: {y: -1, r: 3, g: 2, b: 1, a: 0, bpp: 4},
}

func (l layout) gray() bool { return l.y >= 0 }

// Luminance returns the ITU-R BT.601 luma of an RGB triple using the JFIF
// fixed-point weights.
func Luminance(r, g, b byte) byte {
	return byte((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// Get returns a row converter from src to tgt.
//
// tgt == ColFmtAuto (or tgt == src) yields a plain copy. src must be
// concrete.
func Get(src, tgt types.ColFmt) (Func, error) {
	if !src.Valid() {
		return nil, types.InvalidArg(types.FormatUnknown, "cannot convert from color format %s", src)
	}
	if tgt == types.ColFmtAuto || tgt == src {
		return func(s, d []byte) { copy(d, s) }, nil
	}
	if !tgt.Valid() {
		return nil, types.InvalidArg(types.FormatUnknown, "cannot convert to color format %s", tgt)
	}

	sl, tl := layouts[src], layouts[tgt]

	switch {
	case sl.gray() && tl.gray():
		return grayToGray(sl, tl), nil
	case sl.gray():
		return grayToColor(sl, tl), nil
	case tl.gray():
		return colorToGray(sl, tl), nil
	default:
		return colorToColor(sl, tl), nil
	}
}

// alpha returns the alpha of the pixel at p, 255 if the layout has none.
func (l layout) alpha(p []byte) byte {
	if l.a < 0 {
		return 0xff
	}
	return p[l.a]
}

func grayToGray(sl, tl layout) Func {
	return func(src, dst []byte) {
		for s, d := 0, 0; s+sl.bpp <= len(src); s, d = s+sl.bpp, d+tl.bpp {
			p := src[s : s+sl.bpp]
			dst[d+tl.y] = p[sl.y]
			if tl.a >= 0 {
				dst[d+tl.a] = sl.alpha(p)
			}
		}
	}
}

func grayToColor(sl, tl layout) Func {
	return func(src, dst []byte) {
		for s, d := 0, 0; s+sl.bpp <= len(src); s, d = s+sl.bpp, d+tl.bpp {
			p := src[s : s+sl.bpp]
			y := p[sl.y]
			dst[d+tl.r] = y
			dst[d+tl.g] = y
			dst[d+tl.b] = y
			if tl.a >= 0 {
				dst[d+tl.a] = sl.alpha(p)
			}
		}
	}
}

func colorToGray(sl, tl layout) Func {
	return func(src, dst []byte) {
		for s, d := 0, 0; s+sl.bpp <= len(src); s, d = s+sl.bpp, d+tl.bpp {
			p := src[s : s+sl.bpp]
			dst[d+tl.y] = Luminance(p[sl.r], p[sl.g], p[sl.b])
			if tl.a >= 0 {
				dst[d+tl.a] = sl.alpha(p)
			}
		}
	}
}

func colorToColor(sl, tl layout) Func {
	return func(src, dst []byte) {
		for s, d := 0, 0; s+sl.bpp <= len(src); s, d = s+sl.bpp, d+tl.bpp {
			p := src[s : s+sl.bpp]
			dst[d+tl.r] = p[sl.r]
			dst[d+tl.g] = p[sl.g]
			dst[d+tl.b] = p[sl.b]
			if tl.a >= 0 {
				dst[d+tl.a] = sl.alpha(p)
			}
		}
	}
}

// Buffer converts a whole pixel buffer from src to tgt into a new
// allocation. tgt == ColFmtAuto copies.
func Buffer(buf []byte, src, tgt types.ColFmt) ([]byte, error) {
	conv, err := Get(src, tgt)
	if err != nil {
		return nil, err
	}
	if tgt == types.ColFmtAuto {
		tgt = src
	}
	sbpp, tbpp := src.BytesPerPixel(), tgt.BytesPerPixel()
	if len(buf)%sbpp != 0 {
		return nil, types.InvalidArg(types.FormatUnknown,
			"buffer length %d is not a multiple of %s pixel size %d", len(buf), src, sbpp)
	}
	out := make([]byte, len(buf)/sbpp*tbpp)
	conv(buf, out)
	return out, nil
}

// Image returns img converted to tgt as a new Image.
func Image(img *types.Image, tgt types.ColFmt) (*types.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	buf, err := Buffer(img.Buf, img.Fmt, tgt)
	if err != nil {
		return nil, err
	}
	if tgt == types.ColFmtAuto {
		tgt = img.Fmt
	}
	return &types.Image{Buf: buf, W: img.W, H: img.H, Fmt: tgt}, nil
}

// Rows converts the pixels of src inside rgn to tgt, returning one compact
// buffer of rgn.W*rgn.H pixels. Encoders use it to prepare exactly the
// bytes they emit.
func Rows(src *types.Image, rgn types.Region, tgt types.ColFmt) ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := rgn.Within(src.W, src.H); err != nil {
		return nil, err
	}
	conv, err := Get(src.Fmt, tgt)
	if err != nil {
		return nil, err
	}
	if tgt == types.ColFmtAuto {
		tgt = src.Fmt
	}
	stride := rgn.W * tgt.BytesPerPixel()
	out := make([]byte, stride*rgn.H)
	for y := 0; y < rgn.H; y++ {
		conv(src.Row(rgn.Y+y, rgn), out[y*stride:(y+1)*stride])
	}
	return out, nil
}
