// Package bmp implements the Windows bitmap codec.
//
// The decoder accepts DIB headers of 12, 40, 52, 56, 108 and 124 bytes with
// 8-bit paletted, 24-bit and 32-bit pixels, uncompressed or with
// byte-aligned BI_BITFIELDS masks. The encoder writes 24-bit BGR and 32-bit
// BGRA images.
package bmp

import (
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

const (
	fileHeaderSize = 14

	// Largest pixel data offset accepted
	maxPixelOffset = 0xffffff
)

// Compression methods
const (
	compRGB       = 0
	compBitfields = 3
)

// dibVersion maps the DIB header size to its version number.
// 0 = BITMAPCOREHEADER, 1 = BITMAPINFOHEADER, 2/3 = the Adobe extensions
// with RGB and RGBA masks, 4 = BITMAPV4HEADER, 5 = BITMAPV5HEADER.
var dibVersion = map[uint32]int{
	12:  0,
	40:  1,
	52:  2,
	56:  3,
	108: 4,
	124: 5,
}

// header holds the fields of the file and DIB headers this codec uses.
type header struct {
	dibSize     uint32
	version     int
	pixelOffset uint32
	width       int
	height      int // negative: top-down
	planes      uint16
	bitsPP      uint16

	// v1+
	compression uint32
	paletteLen  uint32

	// v2+ (or BI_BITFIELDS after a v1 header)
	redMask, greenMask, blueMask uint32
	hasMasks                     bool

	// v3+
	alphaMask uint32
}

// hasAlpha reports whether the pixels carry alpha.
func (h *header) hasAlpha() bool {
	return h.bitsPP == 32 && h.version >= 3 && h.alphaMask != 0
}

// decoder implements registry.Decoder for BMP.
type decoder struct{}

// Detect checks the "BM" signature and a known DIB header size.
func (decoder) Detect(r io.ReadSeeker) bool {
	head, err := binary.Sniff(r, 18)
	if err != nil || len(head) < 18 {
		return false
	}
	if head[0] != 'B' || head[1] != 'M' {
		return false
	}
	_, ok := dibVersion[binary.Get[uint32](head[14:18], binary.LittleEndian)]
	return ok
}

// readHeader reads the file header and the DIB header, plus the bitfield
// masks that follow a 40-byte header.
func readHeader(sr *binary.SafeReader) (*header, error) {
	var fh [18]byte
	if err := sr.ReadFull(fh[:], "BMP header"); err != nil {
		return nil, err
	}
	fcr := binary.NewChainReader(fh[:], binary.LittleEndian)
	if magic := fcr.Bytes(2, "signature"); string(magic) != "BM" {
		return nil, types.InvalidData(types.FormatBMP, "corrupt bmp header")
	}
	fcr.Skip(8, "file size and reserved")
	h := &header{
		pixelOffset: binary.ReadChained[uint32](fcr, "pixel data offset"),
		dibSize:     binary.ReadChained[uint32](fcr, "DIB header size"),
	}
	var ok bool
	if h.version, ok = dibVersion[h.dibSize]; !ok {
		return nil, types.Unsupported(types.FormatBMP, "unsupported DIB header size %d", h.dibSize)
	}

	dib := make([]byte, h.dibSize-4)
	if err := sr.ReadFull(dib, "DIB header"); err != nil {
		return nil, err
	}
	cr := binary.NewChainReader(dib, binary.LittleEndian)

	if h.version == 0 {
		h.width = int(binary.ReadChained[uint16](cr, "width"))
		h.height = int(binary.ReadChained[uint16](cr, "height"))
	} else {
		h.width = int(int32(binary.ReadChained[uint32](cr, "width")))
		h.height = int(int32(binary.ReadChained[uint32](cr, "height")))
	}
	h.planes = binary.ReadChained[uint16](cr, "planes")
	h.bitsPP = binary.ReadChained[uint16](cr, "bits per pixel")

	if h.version >= 1 {
		h.compression = binary.ReadChained[uint32](cr, "compression")
		cr.Skip(12, "image size and resolution")
		h.paletteLen = binary.ReadChained[uint32](cr, "palette length")
		cr.Skip(4, "important colors")
	}
	if h.version >= 2 {
		h.redMask = binary.ReadChained[uint32](cr, "red mask")
		h.greenMask = binary.ReadChained[uint32](cr, "green mask")
		h.blueMask = binary.ReadChained[uint32](cr, "blue mask")
		h.hasMasks = true
	}
	if h.version >= 3 {
		h.alphaMask = binary.ReadChained[uint32](cr, "alpha mask")
	}
	if err := cr.Error(); err != nil {
		return nil, types.IOError(types.FormatBMP, "DIB header", err)
	}

	// A BITMAPINFOHEADER stores its bitfield masks right after the header.
	if h.version == 1 && h.compression == compBitfields {
		var err error
		if h.redMask, err = binary.ReadLE[uint32](sr, "red mask"); err != nil {
			return nil, err
		}
		if h.greenMask, err = binary.ReadLE[uint32](sr, "green mask"); err != nil {
			return nil, err
		}
		if h.blueMask, err = binary.ReadLE[uint32](sr, "blue mask"); err != nil {
			return nil, err
		}
		h.hasMasks = true
	}
	return h, nil
}

// ReadInfo returns width, height and color type.
func (decoder) ReadInfo(r io.ReadSeeker) (types.Info, error) {
	h, err := readHeader(binary.NewSafeReader(r, types.FormatBMP))
	if err != nil {
		return types.Info{}, err
	}
	if err := h.validate(); err != nil {
		return types.Info{}, err
	}
	info := types.Info{W: h.width, H: abs(h.height), CT: types.ColTypeColor}
	if h.hasAlpha() {
		info.CT = types.ColTypeColorAlpha
	}
	return info, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// validate checks the fields the pixel decoder depends on.
func (h *header) validate() error {
	if h.width < 1 || h.height == 0 || h.height < -(1<<31-1) {
		return types.InvalidData(types.FormatBMP, "invalid dimensions %dx%d", h.width, h.height)
	}
	if h.pixelOffset < fileHeaderSize+h.dibSize || h.pixelOffset > maxPixelOffset {
		return types.InvalidData(types.FormatBMP, "invalid pixel data offset %d", h.pixelOffset)
	}
	if h.planes != 1 {
		return types.InvalidData(types.FormatBMP, "plane count must be 1, got %d", h.planes)
	}
	switch h.bitsPP {
	case 8, 24:
	case 32:
		if h.version == 0 {
			return types.Unsupported(types.FormatBMP, "32-bit pixels in a core header")
		}
	default:
		return types.Unsupported(types.FormatBMP, "%d bits per pixel", h.bitsPP)
	}
	if h.paletteLen > 256 {
		return types.InvalidData(types.FormatBMP, "invalid palette length %d", h.paletteLen)
	}
	switch h.compression {
	case compRGB:
	case compBitfields:
		if h.bitsPP == 8 {
			return types.InvalidData(types.FormatBMP, "bitfields on paletted pixels")
		}
	default:
		return types.Unsupported(types.FormatBMP, "compression method %d", h.compression)
	}
	return nil
}

// maskIndex maps a byte-aligned channel mask to the byte holding it.
func maskIndex(mask uint32, bytesPP int) (int, error) {
	var idx int
	switch mask {
	case 0xff000000:
		idx = 3
	case 0x00ff0000:
		idx = 2
	case 0x0000ff00:
		idx = 1
	case 0x000000ff:
		idx = 0
	default:
		return 0, types.Unsupported(types.FormatBMP, "channel mask %#08x", mask)
	}
	if idx >= bytesPP {
		return 0, types.InvalidData(types.FormatBMP, "channel mask %#08x exceeds pixel size", mask)
	}
	return idx, nil
}

// Read decodes the image. ColFmtAuto yields RGB, or RGBA when the header
// carries an alpha mask.
func (decoder) Read(r io.ReadSeeker, req types.ColFmt, opts types.DecodeOptions) (*types.Image, error) {
	sr := binary.NewSafeReader(r, types.FormatBMP)
	h, err := readHeader(sr)
	if err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	w, height := h.width, abs(h.height)
	if err := opts.CheckSize(types.FormatBMP, w, height); err != nil {
		return nil, err
	}

	bytesPP := int(h.bitsPP / 8)
	paletted := h.bitsPP == 8

	// Channel byte positions in a source pixel: blue, green, red, alpha.
	bi, gi, ri, ai := 0, 1, 2, -1
	if h.compression == compBitfields {
		if !h.hasMasks {
			return nil, types.InvalidData(types.FormatBMP, "bitfields without masks")
		}
		if ri, err = maskIndex(h.redMask, bytesPP); err != nil {
			return nil, err
		}
		if gi, err = maskIndex(h.greenMask, bytesPP); err != nil {
			return nil, err
		}
		if bi, err = maskIndex(h.blueMask, bytesPP); err != nil {
			return nil, err
		}
	}
	if h.hasAlpha() {
		if ai, err = maskIndex(h.alphaMask, bytesPP); err != nil {
			return nil, err
		}
	}

	var palette []byte // always stored as BGR triples
	if paletted {
		if palette, err = readPalette(sr, h); err != nil {
			return nil, err
		}
	}

	// Whatever lies between the headers and the pixel data is skipped.
	gap := int64(h.pixelOffset) - sr.Offset()
	if gap < 0 {
		return nil, types.InvalidData(types.FormatBMP, "pixel data offset %d overlaps the headers", h.pixelOffset)
	}
	if err := sr.Skip(gap, "gap before pixel data"); err != nil {
		return nil, err
	}

	srcFmt := types.ColFmtBGR
	if ai >= 0 {
		srcFmt = types.ColFmtBGRA
	}
	tgt := req
	if tgt == types.ColFmtAuto {
		tgt = types.ColFmtRGB
		if ai >= 0 {
			tgt = types.ColFmtRGBA
		}
	}
	conv, err := convert.Get(srcFmt, tgt)
	if err != nil {
		return nil, err
	}

	lineSize := w * bytesPP
	line := make([]byte, lineSize+rowPadding(lineSize))
	norm := make([]byte, w*srcFmt.BytesPerPixel())
	tgtStride := w * tgt.BytesPerPixel()
	out := make([]byte, tgtStride*height)
	nbpp := srcFmt.BytesPerPixel()
	paletteEntries := len(palette) / 3

	for row := 0; row < height; row++ {
		if err := sr.ReadFull(line, "pixel data"); err != nil {
			return nil, err
		}
		src := line[:lineSize]

		if paletted {
			for x, idx := range src {
				if int(idx) >= paletteEntries {
					return nil, types.InvalidData(types.FormatBMP, "palette index %d out of range", idx)
				}
				copy(norm[x*3:x*3+3], palette[int(idx)*3:])
			}
		} else {
			for x, si, di := 0, 0, 0; x < w; x, si, di = x+1, si+bytesPP, di+nbpp {
				norm[di] = src[si+bi]
				norm[di+1] = src[si+gi]
				norm[di+2] = src[si+ri]
				if ai >= 0 {
					norm[di+3] = src[si+ai]
				}
			}
		}

		y := row
		if h.height > 0 {
			y = height - 1 - row
		}
		conv(norm, out[y*tgtStride:(y+1)*tgtStride])
	}

	return &types.Image{Buf: out, W: w, H: height, Fmt: tgt}, nil
}

// readPalette reads the color table into BGR triples. Core headers store
// three bytes per entry, later versions four. An unset length means a full
// table, cut short by the pixel data offset.
func readPalette(sr *binary.SafeReader, h *header) ([]byte, error) {
	entry := 4
	if h.version == 0 {
		entry = 3
	}
	n := int(h.paletteLen)
	if n == 0 {
		n = min(256, int((int64(h.pixelOffset)-sr.Offset())/int64(entry)))
	}
	if n <= 0 {
		return nil, types.InvalidData(types.FormatBMP, "missing palette")
	}
	raw := make([]byte, n*entry)
	if err := sr.ReadFull(raw, "palette"); err != nil {
		return nil, err
	}
	palette := make([]byte, n*3)
	for i := 0; i < n; i++ {
		copy(palette[i*3:i*3+3], raw[i*entry:])
	}
	return palette, nil
}

// rowPadding returns the bytes needed to align a row to four bytes.
func rowPadding(lineSize int) int {
	return (4 - lineSize%4) % 4
}

func init() {
	registry.Register(types.FormatBMP, decoder{})
	registry.RegisterWriter(types.FormatBMP, encoder{})
}
