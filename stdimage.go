package imagefmt

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

// ToImage wraps a copy of img in a standard library image.
//
// Gray images become *image.Gray; everything else becomes *image.NRGBA,
// with alpha 255 where img has none.
func ToImage(img *Image) (image.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, img.W, img.H)

	if img.Fmt == ColFmtY {
		g := image.NewGray(rect)
		copy(g.Pix, img.Buf)
		return g, nil
	}

	pix, err := convert.Buffer(img.Buf, img.Fmt, ColFmtRGBA)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: pix, Stride: 4 * img.W, Rect: rect}, nil
}

// FromImage copies a standard library image into an Image.
//
// *image.Gray keeps its single channel as ColFmtY. Any other image is
// normalized to non-premultiplied RGBA and stored as ColFmtRGB when every
// pixel is opaque, ColFmtRGBA otherwise.
//
// Example:
//
//	src, _ := png.Decode(f)
//	thumb := imaging.Thumbnail(src, 128, 128, imaging.Lanczos)
//	img, err := imagefmt.FromImage(thumb)
//	err = imagefmt.Write("thumb.tga", img, imagefmt.ColTypeAuto)
func FromImage(m image.Image) (*Image, error) {
	b := m.Bounds()
	if b.Empty() {
		return nil, types.InvalidArg(FormatUnknown, "empty image %v", b)
	}
	w, h := b.Dx(), b.Dy()

	if g, ok := m.(*image.Gray); ok {
		out := &Image{W: w, H: h, Fmt: ColFmtY, Buf: make([]byte, 0, w*h)}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := g.PixOffset(b.Min.X, y)
			out.Buf = append(out.Buf, g.Pix[i:i+w]...)
		}
		return out, nil
	}

	nrgba := imaging.Clone(m)
	out := &Image{W: w, H: h, Fmt: ColFmtRGBA, Buf: nrgba.Pix}
	if nrgba.Opaque() {
		return Convert(out, ColFmtRGB)
	}
	return out, nil
}
