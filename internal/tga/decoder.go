// Package tga implements the Truevision TGA codec.
package tga

import (
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

const headerSize = 18

// Image types
const (
	typeMapped     = 1
	typeTrueColor  = 2
	typeGray       = 3
	typeMappedRLE  = 9
	typeTrueRLE    = 10
	typeGrayRLE    = 11
	rleTypeOffset  = 8
	maxPacketCount = 128
)

// Image descriptor bits
const (
	descAlphaBits   = 0x0f
	descRightToLeft = 0x10
	descTopToBottom = 0x20
)

type header struct {
	idLength     uint8
	colorMapType uint8
	imageType    uint8
	mapFirst     uint16
	mapLength    uint16
	mapEntryBits uint8
	width        uint16
	height       uint16
	pixelBits    uint8
	descriptor   uint8
}

func parseHeader(b []byte) header {
	cr := binary.NewChainReader(b, binary.LittleEndian)
	var h header
	h.idLength = binary.ReadChained[uint8](cr, "id length")
	h.colorMapType = binary.ReadChained[uint8](cr, "color map type")
	h.imageType = binary.ReadChained[uint8](cr, "image type")
	h.mapFirst = binary.ReadChained[uint16](cr, "first map entry")
	h.mapLength = binary.ReadChained[uint16](cr, "map length")
	h.mapEntryBits = binary.ReadChained[uint8](cr, "map entry size")
	cr.Skip(4, "origin")
	h.width = binary.ReadChained[uint16](cr, "width")
	h.height = binary.ReadChained[uint16](cr, "height")
	h.pixelBits = binary.ReadChained[uint8](cr, "pixel depth")
	h.descriptor = binary.ReadChained[uint8](cr, "descriptor")
	return h
}

func (h header) rle() bool {
	return h.imageType >= typeMappedRLE
}

func (h header) baseType() uint8 {
	if h.rle() {
		return h.imageType - rleTypeOffset
	}
	return h.imageType
}

// plausible reports whether the header looks like a TGA header at all.
// TGA has no signature, so detection relies on field ranges.
func (h header) plausible() bool {
	if h.colorMapType > 1 {
		return false
	}
	switch h.imageType {
	case typeMapped, typeTrueColor, typeGray, typeMappedRLE, typeTrueRLE, typeGrayRLE:
	default:
		return false
	}
	switch h.pixelBits {
	case 8, 15, 16, 24, 32:
	default:
		return false
	}
	if h.width == 0 || h.height == 0 {
		return false
	}
	if h.colorMapType == 0 && (h.mapFirst != 0 || h.mapLength != 0 || h.mapEntryBits != 0) {
		return false
	}
	return true
}

// pixelFormat returns the layout of decoded pixels: what a pixel becomes
// after color map lookup.
func (h header) pixelFormat() (types.ColFmt, error) {
	switch h.baseType() {
	case typeGray:
		switch h.pixelBits {
		case 8:
			return types.ColFmtY, nil
		case 16:
			return types.ColFmtYA, nil
		}
	case typeTrueColor:
		switch h.pixelBits {
		case 24:
			return types.ColFmtBGR, nil
		case 32:
			return types.ColFmtBGRA, nil
		}
	case typeMapped:
		if h.colorMapType != 1 {
			return 0, types.InvalidData(types.FormatTGA, "color-mapped image without a color map")
		}
		if h.pixelBits != 8 {
			return 0, types.Unsupported(types.FormatTGA, "%d-bit color map indices", h.pixelBits)
		}
		switch h.mapEntryBits {
		case 24:
			return types.ColFmtBGR, nil
		case 32:
			return types.ColFmtBGRA, nil
		}
		return 0, types.Unsupported(types.FormatTGA, "%d-bit color map entries", h.mapEntryBits)
	}
	return 0, types.Unsupported(types.FormatTGA, "%d-bit pixels in image type %d", h.pixelBits, h.imageType)
}

// validate checks everything ReadInfo and Read rely on.
func (h header) validate() (types.ColFmt, error) {
	if !h.plausible() {
		return 0, types.InvalidData(types.FormatTGA, "invalid header")
	}
	if h.descriptor&descRightToLeft != 0 {
		return 0, types.Unsupported(types.FormatTGA, "right-to-left pixel order")
	}
	return h.pixelFormat()
}

// decoder implements registry.Decoder for TGA.
type decoder struct{}

// Detect checks that the first 18 bytes form a plausible TGA header.
func (decoder) Detect(r io.ReadSeeker) bool {
	head, err := binary.Sniff(r, headerSize)
	if err != nil || len(head) < headerSize {
		return false
	}
	return parseHeader(head).plausible()
}

func readHeader(sr *binary.SafeReader) (header, types.ColFmt, error) {
	var b [headerSize]byte
	if err := sr.ReadFull(b[:], "TGA header"); err != nil {
		return header{}, 0, err
	}
	h := parseHeader(b[:])
	f, err := h.validate()
	return h, f, err
}

// ReadInfo returns width, height and color type.
func (decoder) ReadInfo(r io.ReadSeeker) (types.Info, error) {
	h, f, err := readHeader(binary.NewSafeReader(r, types.FormatTGA))
	if err != nil {
		return types.Info{}, err
	}
	return types.Info{W: int(h.width), H: int(h.height), CT: f.ColorType()}, nil
}

// Read decodes the image. ColFmtAuto yields Y, YA, RGB or RGBA.
func (decoder) Read(r io.ReadSeeker, req types.ColFmt, opts types.DecodeOptions) (*types.Image, error) {
	sr := binary.NewSafeReader(r, types.FormatTGA)
	h, srcFmt, err := readHeader(sr)
	if err != nil {
		return nil, err
	}
	w, height := int(h.width), int(h.height)
	if err := opts.CheckSize(types.FormatTGA, w, height); err != nil {
		return nil, err
	}

	if err := sr.Skip(int64(h.idLength), "image id"); err != nil {
		return nil, err
	}

	var colorMap []byte
	if h.colorMapType == 1 {
		entry := (int(h.mapEntryBits) + 7) / 8
		raw := make([]byte, int(h.mapLength)*entry)
		if err := sr.ReadFull(raw, "color map"); err != nil {
			return nil, err
		}
		if h.baseType() == typeMapped {
			colorMap = raw
		}
	}

	bpp := int(h.pixelBits) / 8
	raw := make([]byte, w*height*bpp)
	if h.rle() {
		err = decodeRLE(sr, raw, bpp)
	} else {
		err = sr.ReadFull(raw, "pixel data")
	}
	if err != nil {
		return nil, err
	}

	pixels := raw
	if colorMap != nil {
		if pixels, err = lookup(raw, colorMap, h, srcFmt.BytesPerPixel()); err != nil {
			return nil, err
		}
	}

	tgt := req
	if tgt == types.ColFmtAuto {
		tgt = autoFormat(srcFmt)
	}
	conv, err := convert.Get(srcFmt, tgt)
	if err != nil {
		return nil, err
	}

	srcStride := w * srcFmt.BytesPerPixel()
	tgtStride := w * tgt.BytesPerPixel()
	out := make([]byte, tgtStride*height)
	topDown := h.descriptor&descTopToBottom != 0
	for row := 0; row < height; row++ {
		y := row
		if !topDown {
			y = height - 1 - row
		}
		conv(pixels[row*srcStride:(row+1)*srcStride], out[y*tgtStride:(y+1)*tgtStride])
	}

	return &types.Image{Buf: out, W: w, H: height, Fmt: tgt}, nil
}

// autoFormat maps a stored layout to the canonical channel order.
func autoFormat(f types.ColFmt) types.ColFmt {
	switch f {
	case types.ColFmtBGR:
		return types.ColFmtRGB
	case types.ColFmtBGRA:
		return types.ColFmtRGBA
	default:
		return f
	}
}

// decodeRLE fills dst from run-length packets. Packets may span rows but
// must not run past the end of the image.
func decodeRLE(sr *binary.SafeReader, dst []byte, bpp int) error {
	var pixel [4]byte
	for i := 0; i < len(dst); {
		hdr, err := binary.Read[uint8](sr, "RLE packet header")
		if err != nil {
			return err
		}
		n := int(hdr&0x7f) + 1
		if i+n*bpp > len(dst) {
			return types.InvalidData(types.FormatTGA, "RLE packet of %d pixels overruns the image", n)
		}
		if hdr&0x80 == 0 {
			if err := sr.ReadFull(dst[i:i+n*bpp], "RLE raw packet"); err != nil {
				return err
			}
			i += n * bpp
			continue
		}
		if err := sr.ReadFull(pixel[:bpp], "RLE run packet"); err != nil {
			return err
		}
		for ; n > 0; n-- {
			copy(dst[i:i+bpp], pixel[:bpp])
			i += bpp
		}
	}
	return nil
}

// lookup replaces 8-bit indices with color map entries.
func lookup(idx, colorMap []byte, h header, entry int) ([]byte, error) {
	out := make([]byte, len(idx)*entry)
	first, length := int(h.mapFirst), int(h.mapLength)
	for i, v := range idx {
		k := int(v) - first
		if k < 0 || k >= length {
			return nil, types.InvalidData(types.FormatTGA, "color map index %d out of range", v)
		}
		copy(out[i*entry:(i+1)*entry], colorMap[k*entry:])
	}
	return out, nil
}

func init() {
	registry.Register(types.FormatTGA, decoder{})
	registry.RegisterWriter(types.FormatTGA, encoder{})
}
