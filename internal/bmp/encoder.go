package bmp

import (
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

const (
	// Largest width or height the encoder writes
	maxDimension = 0x7fff

	infoHeaderSize  = 40
	alphaHeaderSize = 56
)

// encoder implements registry.Encoder for BMP.
type encoder struct{}

// Write encodes the region as a bottom-up BMP. Color is written as 24-bit
// BGR with a BITMAPINFOHEADER; ColorAlpha as 32-bit BGRA with BI_BITFIELDS
// and a 56-byte header carrying the alpha mask. ColTypeAuto picks between
// the two by whether the source has alpha. Gray targets are unsupported.
func (encoder) Write(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, opts types.EncodeOptions) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if err := rgn.Within(src.W, src.H); err != nil {
		return err
	}
	if rgn.W > maxDimension || rgn.H > maxDimension {
		return types.InvalidArg(types.FormatBMP, "dimensions %dx%d exceed %d", rgn.W, rgn.H, maxDimension)
	}

	if tgt == types.ColTypeAuto {
		tgt = types.ColTypeColor
		if src.Fmt.HasAlpha() {
			tgt = types.ColTypeColorAlpha
		}
	}

	var (
		pixFmt  types.ColFmt
		dibSize uint32
		bitsPP  uint16
		comp    uint32
	)
	switch tgt {
	case types.ColTypeColor:
		pixFmt, dibSize, bitsPP, comp = types.ColFmtBGR, infoHeaderSize, 24, compRGB
	case types.ColTypeColorAlpha:
		pixFmt, dibSize, bitsPP, comp = types.ColFmtBGRA, alphaHeaderSize, 32, compBitfields
	case types.ColTypeGray, types.ColTypeGrayAlpha:
		return types.Unsupported(types.FormatBMP, "cannot write %s images", tgt)
	default:
		return types.InvalidArg(types.FormatBMP, "invalid target color type %d", tgt)
	}

	pixels, err := convert.Rows(src, rgn, pixFmt)
	if err != nil {
		return err
	}

	lineSize := rgn.W * pixFmt.BytesPerPixel()
	pad := rowPadding(lineSize)
	pixelOffset := int64(fileHeaderSize) + int64(dibSize)
	fileSize := pixelOffset + int64(rgn.H)*int64(lineSize+pad)
	if fileSize > 0xffffffff {
		return types.InvalidArg(types.FormatBMP, "image too large")
	}

	sw := binary.NewSafeWriter(w)
	if err := writeHeaders(sw, rgn, uint32(fileSize), uint32(pixelOffset), dibSize, bitsPP, comp); err != nil {
		return types.IOError(types.FormatBMP, "BMP header", err)
	}

	// Rows go out bottom-up, each padded to four bytes.
	line := make([]byte, lineSize+pad)
	for y := rgn.H - 1; y >= 0; y-- {
		copy(line, pixels[y*lineSize:(y+1)*lineSize])
		if err := sw.WriteBytes(line); err != nil {
			return types.IOError(types.FormatBMP, "pixel data", err)
		}
	}
	return nil
}

func writeHeaders(sw *binary.SafeWriter, rgn types.Region, fileSize, pixelOffset, dibSize uint32, bitsPP uint16, comp uint32) error {
	if err := sw.WriteString("BM"); err != nil {
		return err
	}
	fields := []uint32{
		fileSize,
		0, // reserved
		pixelOffset,
		dibSize,
		uint32(rgn.W),
		uint32(rgn.H), // positive: bottom-up
	}
	for _, v := range fields {
		if err := binary.WriteLE(sw, v); err != nil {
			return err
		}
	}
	if err := binary.WriteLE(sw, uint16(1)); err != nil { // planes
		return err
	}
	if err := binary.WriteLE(sw, bitsPP); err != nil {
		return err
	}
	if err := binary.WriteLE(sw, comp); err != nil {
		return err
	}
	// image size, resolution, palette length, important colors
	if err := sw.WriteZeros(5 * 4); err != nil {
		return err
	}
	if dibSize == alphaHeaderSize {
		for _, mask := range []uint32{0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000} {
			if err := binary.WriteLE(sw, mask); err != nil {
				return err
			}
		}
	}
	return nil
}
