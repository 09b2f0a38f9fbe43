package tga

import (
	"bytes"
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

const maxDimension = 0xffff

// encoder implements registry.Encoder for TGA.
type encoder struct{}

// Write encodes the region with a top-left origin. Gray and GrayAlpha use
// image type 3 (11 with RLE), Color and ColorAlpha type 2 (10 with RLE).
// ColTypeAuto keeps the source color type.
func (encoder) Write(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, opts types.EncodeOptions) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if err := rgn.Within(src.W, src.H); err != nil {
		return err
	}
	if rgn.W > maxDimension || rgn.H > maxDimension {
		return types.InvalidArg(types.FormatTGA, "dimensions %dx%d exceed %d", rgn.W, rgn.H, maxDimension)
	}
	if tgt == types.ColTypeAuto {
		tgt = src.Fmt.ColorType()
	}

	var (
		pixFmt    types.ColFmt
		imageType uint8
		alphaBits uint8
	)
	switch tgt {
	case types.ColTypeGray:
		pixFmt, imageType = types.ColFmtY, typeGray
	case types.ColTypeGrayAlpha:
		pixFmt, imageType, alphaBits = types.ColFmtYA, typeGray, 8
	case types.ColTypeColor:
		pixFmt, imageType = types.ColFmtBGR, typeTrueColor
	case types.ColTypeColorAlpha:
		pixFmt, imageType, alphaBits = types.ColFmtBGRA, typeTrueColor, 8
	default:
		return types.InvalidArg(types.FormatTGA, "invalid target color type %d", tgt)
	}
	if opts.RLE {
		imageType += rleTypeOffset
	}

	pixels, err := convert.Rows(src, rgn, pixFmt)
	if err != nil {
		return err
	}

	bpp := pixFmt.BytesPerPixel()
	var hdr [headerSize]byte
	hdr[2] = imageType
	binary.Put(hdr[12:14], uint16(rgn.W), binary.LittleEndian)
	binary.Put(hdr[14:16], uint16(rgn.H), binary.LittleEndian)
	hdr[16] = uint8(bpp * 8)
	hdr[17] = descTopToBottom | alphaBits

	sw := binary.NewSafeWriter(w)
	if err := sw.WriteBytes(hdr[:]); err != nil {
		return types.IOError(types.FormatTGA, "TGA header", err)
	}

	if !opts.RLE {
		if err := sw.WriteBytes(pixels); err != nil {
			return types.IOError(types.FormatTGA, "pixel data", err)
		}
		return nil
	}

	// Packets never cross rows.
	stride := rgn.W * bpp
	var packed bytes.Buffer
	for y := 0; y < rgn.H; y++ {
		packed.Reset()
		encodeRLE(&packed, pixels[y*stride:(y+1)*stride], bpp)
		if err := sw.WriteBytes(packed.Bytes()); err != nil {
			return types.IOError(types.FormatTGA, "pixel data", err)
		}
	}
	return nil
}

// encodeRLE appends the run-length packets for one row to out.
func encodeRLE(out *bytes.Buffer, row []byte, bpp int) {
	n := len(row) / bpp
	px := func(i int) []byte { return row[i*bpp : (i+1)*bpp] }

	for i := 0; i < n; {
		// Length of the run of identical pixels starting at i.
		run := 1
		for i+run < n && run < maxPacketCount && bytes.Equal(px(i+run), px(i)) {
			run++
		}
		if run > 1 {
			out.WriteByte(0x80 | byte(run-1))
			out.Write(px(i))
			i += run
			continue
		}

		// Raw packet up to the next pair of equal pixels.
		j := i + 1
		for j < n && j-i < maxPacketCount && !(j+1 < n && bytes.Equal(px(j), px(j+1))) {
			j++
		}
		out.WriteByte(byte(j - i - 1))
		out.Write(row[i*bpp : j*bpp])
		i = j
	}
}
