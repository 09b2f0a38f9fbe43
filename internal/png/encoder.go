package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

// Pixel data is split into IDAT chunks of at most this size.
const idatChunkSize = 1 << 20

// encoder implements registry.Encoder and registry.ChunkWriter for PNG.
type encoder struct{}

// Write encodes the region as an 8-bit PNG. ColTypeAuto keeps the source
// color type.
func (e encoder) Write(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, opts types.EncodeOptions) error {
	return e.WriteChunks(w, src, rgn, tgt, nil, opts)
}

// ValidateChunk checks that an extension chunk can be written: a four
// letter ASCII name with the ancillary bit set, and a length that fits.
func ValidateChunk(c types.ExtChunk) error {
	name := c.NameString()
	if !validName(name) {
		return types.InvalidArg(types.FormatPNG, "invalid chunk name %q", name)
	}
	if critical(name) {
		return types.InvalidArg(types.FormatPNG, "chunk %s is not ancillary", name)
	}
	if name == chunkTRNS {
		return types.InvalidArg(types.FormatPNG, "chunk %s is written by the encoder", name)
	}
	if len(c.Data) > maxChunkLen {
		return types.InvalidArg(types.FormatPNG, "chunk %s is too large", name)
	}
	return nil
}

// WriteChunks is Write with extension chunks placed between IHDR and the
// pixel data.
func (encoder) WriteChunks(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, chunks []types.ExtChunk, opts types.EncodeOptions) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if err := rgn.Within(src.W, src.H); err != nil {
		return err
	}
	for _, c := range chunks {
		if err := ValidateChunk(c); err != nil {
			return err
		}
	}
	if opts.CompressionLevel < zlib.HuffmanOnly || opts.CompressionLevel > zlib.BestCompression {
		return types.InvalidArg(types.FormatPNG, "invalid compression level %d", opts.CompressionLevel)
	}

	if tgt == types.ColTypeAuto {
		tgt = src.Fmt.ColorType()
	}
	var (
		pixFmt    types.ColFmt
		colorType uint8
	)
	switch tgt {
	case types.ColTypeGray:
		pixFmt, colorType = types.ColFmtY, ctGray
	case types.ColTypeGrayAlpha:
		pixFmt, colorType = types.ColFmtYA, ctGrayAlpha
	case types.ColTypeColor:
		pixFmt, colorType = types.ColFmtRGB, ctRGB
	case types.ColTypeColorAlpha:
		pixFmt, colorType = types.ColFmtRGBA, ctRGBA
	default:
		return types.InvalidArg(types.FormatPNG, "invalid target color type %d", tgt)
	}

	pixels, err := convert.Rows(src, rgn, pixFmt)
	if err != nil {
		return err
	}
	idat, err := compress(pixels, rgn.W*pixFmt.BytesPerPixel(), pixFmt.BytesPerPixel(), opts.CompressionLevel)
	if err != nil {
		return err
	}

	sw := binary.NewSafeWriter(w)
	if err := sw.WriteString(signature); err != nil {
		return types.IOError(types.FormatPNG, "signature", err)
	}

	var hdr [13]byte
	binary.Put(hdr[0:4], uint32(rgn.W), binary.BigEndian)
	binary.Put(hdr[4:8], uint32(rgn.H), binary.BigEndian)
	hdr[8] = 8 // bit depth
	hdr[9] = colorType
	if err := writeChunk(sw, chunkIHDR, hdr[:]); err != nil {
		return types.IOError(types.FormatPNG, "IHDR chunk", err)
	}

	for _, c := range chunks {
		if err := writeChunk(sw, c.NameString(), c.Data); err != nil {
			return types.IOError(types.FormatPNG, c.NameString()+" chunk", err)
		}
	}

	for len(idat) > 0 {
		n := min(len(idat), idatChunkSize)
		if err := writeChunk(sw, chunkIDAT, idat[:n]); err != nil {
			return types.IOError(types.FormatPNG, "IDAT chunk", err)
		}
		idat = idat[n:]
	}

	if err := writeChunk(sw, chunkIEND, nil); err != nil {
		return types.IOError(types.FormatPNG, "IEND chunk", err)
	}
	return nil
}

// compress filters each row and deflates the result.
func compress(pixels []byte, stride, bpp, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, types.InvalidArg(types.FormatPNG, "invalid compression level %d", level)
	}

	prev := make([]byte, stride)
	out := make([]byte, stride+1)
	scratch := make([]byte, stride)
	for y := 0; y*stride < len(pixels); y++ {
		row := pixels[y*stride : (y+1)*stride]
		chooseFilter(out, scratch, row, prev, bpp)
		if _, err := zw.Write(out); err != nil {
			return nil, types.Internal(types.FormatPNG, "deflate: %v", err)
		}
		prev = row
	}
	if err := zw.Close(); err != nil {
		return nil, types.Internal(types.FormatPNG, "deflate: %v", err)
	}
	return buf.Bytes(), nil
}
