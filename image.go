package imagefmt

import (
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

// Image is a decoded image: W*H pixels of Fmt packed into Buf, rows top to
// bottom.
type Image = types.Image

// Info is the header information returned by ReadInfo.
type Info = types.Info

// Region selects a rectangle of pixels for WriteRegion.
type Region = types.Region

// ExtChunk is a PNG extension chunk, see ReadChunks and WithChunks.
type ExtChunk = types.ExtChunk

// ColFmt is a channel layout; ColType is a color type ignoring channel
// order. Re-exported from internal/types.
type (
	ColFmt  = types.ColFmt
	ColType = types.ColType
)

// Color formats.
const (
	ColFmtAuto = types.ColFmtAuto
	ColFmtY    = types.ColFmtY
	ColFmtYA   = types.ColFmtYA
	ColFmtAY   = types.ColFmtAY
	ColFmtRGB  = types.ColFmtRGB
	ColFmtRGBA = types.ColFmtRGBA
	ColFmtBGR  = types.ColFmtBGR
	ColFmtBGRA = types.ColFmtBGRA
	ColFmtARGB = types.ColFmtARGB
	ColFmtABGR = types.ColFmtABGR
)

// Color types.
const (
	ColTypeAuto       = types.ColTypeAuto
	ColTypeGray       = types.ColTypeGray
	ColTypeGrayAlpha  = types.ColTypeGrayAlpha
	ColTypeColor      = types.ColTypeColor
	ColTypeColorAlpha = types.ColTypeColorAlpha
)

// ParseColFmt parses a color format name such as "rgba" (case-insensitive).
func ParseColFmt(s string) (ColFmt, bool) {
	return types.ParseColFmt(s)
}

// ParseColType parses a color type name such as "grayalpha".
func ParseColType(s string) (ColType, bool) {
	return types.ParseColType(s)
}

// NewExtChunk builds an extension chunk from a four-letter name.
func NewExtChunk(name string, data []byte) (ExtChunk, error) {
	return types.NewExtChunk(name, data)
}

// Convert returns a copy of img in the color format tgt.
//
// Channels are reordered, alpha is added (opaque) or dropped, and color is
// reduced to luminance or gray replicated as needed. ColFmtAuto, or the
// image's own format, produces an identical copy. The source is never
// modified.
//
// Example:
//
//	img, _ := imagefmt.Read("icon.tga", imagefmt.ColFmtAuto)
//	bgra, err := imagefmt.Convert(img, imagefmt.ColFmtBGRA)
func Convert(img *Image, tgt ColFmt) (*Image, error) {
	return convert.Image(img, tgt)
}
