package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/types"
)

// Color types
const (
	ctGray      = 0
	ctRGB       = 2
	ctPalette   = 3
	ctGrayAlpha = 4
	ctRGBA      = 6
)

// ihdr is the image header.
type ihdr struct {
	width     int
	height    int
	depth     uint8
	colorType uint8
	interlace uint8
}

// channels returns the samples per pixel.
func (h ihdr) channels() int {
	switch h.colorType {
	case ctRGB:
		return 3
	case ctGrayAlpha:
		return 2
	case ctRGBA:
		return 4
	default:
		return 1
	}
}

// bitsPerPixel returns the packed pixel size in bits.
func (h ihdr) bitsPerPixel() int {
	return h.channels() * int(h.depth)
}

func parseIHDR(c chunk) (ihdr, error) {
	if len(c.data) != 13 {
		return ihdr{}, invalidAt(c.offset, "IHDR length %d", len(c.data))
	}
	cr := binary.NewChainReader(c.data, binary.BigEndian)
	w := binary.ReadChained[uint32](cr, "width")
	hgt := binary.ReadChained[uint32](cr, "height")
	h := ihdr{width: int(w), height: int(hgt)}
	h.depth = binary.ReadChained[uint8](cr, "bit depth")
	h.colorType = binary.ReadChained[uint8](cr, "color type")
	compression := binary.ReadChained[uint8](cr, "compression method")
	filter := binary.ReadChained[uint8](cr, "filter method")
	h.interlace = binary.ReadChained[uint8](cr, "interlace method")

	if w == 0 || hgt == 0 || w > maxChunkLen || hgt > maxChunkLen {
		return h, invalidAt(c.offset, "invalid dimensions %dx%d", w, hgt)
	}
	if compression != 0 || filter != 0 || h.interlace > 1 {
		return h, invalidAt(c.offset, "invalid compression, filter or interlace method")
	}

	var depths []uint8
	switch h.colorType {
	case ctGray:
		depths = []uint8{1, 2, 4, 8, 16}
	case ctPalette:
		depths = []uint8{1, 2, 4, 8}
	case ctRGB, ctGrayAlpha, ctRGBA:
		depths = []uint8{8, 16}
	default:
		return h, invalidAt(c.offset, "invalid color type %d", h.colorType)
	}
	for _, d := range depths {
		if d == h.depth {
			return h, nil
		}
	}
	return h, invalidAt(c.offset, "invalid bit depth %d for color type %d", h.depth, h.colorType)
}

// stream is everything read from the chunks of one image.
type stream struct {
	hdr     ihdr
	palette []byte // RGB triples
	trns    []byte
	idat    bytes.Buffer
	extra   []types.ExtChunk
}

// colorType returns the color type a full decode produces.
func (s *stream) colorType() types.ColType {
	return s.natural().ColorType()
}

// natural returns the layout pixels decode to before any requested
// conversion.
func (s *stream) natural() types.ColFmt {
	alpha := s.trns != nil
	switch s.hdr.colorType {
	case ctGray:
		if alpha {
			return types.ColFmtYA
		}
		return types.ColFmtY
	case ctGrayAlpha:
		return types.ColFmtYA
	case ctRGBA:
		return types.ColFmtRGBA
	default:
		if alpha {
			return types.ColFmtRGBA
		}
		return types.ColFmtRGB
	}
}

// readStream walks the chunks. With headerOnly it stops at the first IDAT,
// which is enough to know the color type. Chunks named in want are
// collected into s.extra.
func readStream(r io.Reader, headerOnly bool, want map[string]bool) (*stream, error) {
	sr := binary.NewSafeReader(r, types.FormatPNG)
	if err := checkSignature(sr); err != nil {
		return nil, err
	}

	first, err := readChunk(sr)
	if err != nil {
		return nil, err
	}
	if first.name != chunkIHDR {
		return nil, invalidAt(first.offset, "first chunk is %s, not IHDR", first.name)
	}
	s := &stream{}
	if s.hdr, err = parseIHDR(first); err != nil {
		return nil, err
	}

	var sawIDAT, idatDone bool
	for {
		c, err := readChunk(sr)
		if err != nil {
			return nil, err
		}
		if c.name != chunkIDAT && sawIDAT {
			idatDone = true
		}

		switch c.name {
		case chunkIHDR:
			return nil, invalidAt(c.offset, "duplicate IHDR")

		case chunkPLTE:
			if err := s.setPalette(c, sawIDAT); err != nil {
				return nil, err
			}

		case chunkTRNS:
			if err := s.setTransparency(c, sawIDAT); err != nil {
				return nil, err
			}

		case chunkIDAT:
			if idatDone {
				return nil, invalidAt(c.offset, "IDAT chunks are not consecutive")
			}
			if s.hdr.colorType == ctPalette && s.palette == nil {
				return nil, invalidAt(c.offset, "missing PLTE before IDAT")
			}
			sawIDAT = true
			if headerOnly {
				return s, nil
			}
			s.idat.Write(c.data)

		case chunkIEND:
			if !sawIDAT {
				return nil, invalidAt(c.offset, "no IDAT chunk")
			}
			return s, nil

		default:
			if critical(c.name) {
				return nil, types.Unsupported(types.FormatPNG, "unknown critical chunk %s", c.name)
			}
			if want[c.name] {
				ext := types.ExtChunk{Data: c.data}
				copy(ext.Name[:], c.name)
				s.extra = append(s.extra, ext)
			}
		}
	}
}

func (s *stream) setPalette(c chunk, afterIDAT bool) error {
	switch {
	case afterIDAT:
		return invalidAt(c.offset, "PLTE after IDAT")
	case s.palette != nil:
		return invalidAt(c.offset, "duplicate PLTE")
	case s.trns != nil:
		return invalidAt(c.offset, "PLTE after tRNS")
	case s.hdr.colorType == ctGray || s.hdr.colorType == ctGrayAlpha:
		return invalidAt(c.offset, "PLTE in a grayscale image")
	}
	n := len(c.data) / 3
	if len(c.data)%3 != 0 || n == 0 || n > 256 {
		return invalidAt(c.offset, "invalid PLTE length %d", len(c.data))
	}
	if s.hdr.colorType == ctPalette && n > 1<<s.hdr.depth {
		return invalidAt(c.offset, "%d palette entries for bit depth %d", n, s.hdr.depth)
	}
	// Suggested palettes of truecolor images are not used.
	s.palette = c.data
	return nil
}

func (s *stream) setTransparency(c chunk, afterIDAT bool) error {
	if afterIDAT {
		return invalidAt(c.offset, "tRNS after IDAT")
	}
	if s.trns != nil {
		return invalidAt(c.offset, "duplicate tRNS")
	}
	switch s.hdr.colorType {
	case ctPalette:
		if s.palette == nil {
			return invalidAt(c.offset, "tRNS before PLTE")
		}
		if len(c.data) > len(s.palette)/3 {
			return invalidAt(c.offset, "tRNS has more entries than PLTE")
		}
	case ctGray:
		if len(c.data) != 2 {
			return invalidAt(c.offset, "invalid tRNS length %d", len(c.data))
		}
	case ctRGB:
		if len(c.data) != 6 {
			return invalidAt(c.offset, "invalid tRNS length %d", len(c.data))
		}
	default:
		return invalidAt(c.offset, "tRNS in an image with an alpha channel")
	}
	s.trns = c.data
	if s.trns == nil {
		s.trns = []byte{}
	}
	return nil
}

// ReadInfo returns width, height and color type from the chunks before the
// pixel data.
func (decoder) ReadInfo(r io.ReadSeeker) (types.Info, error) {
	s, err := readStream(r, true, nil)
	if err != nil {
		return types.Info{}, err
	}
	return types.Info{W: s.hdr.width, H: s.hdr.height, CT: s.colorType()}, nil
}

// Read decodes the image. ColFmtAuto yields Y, YA, RGB or RGBA. Sixteen-bit
// samples keep their high byte.
func (d decoder) Read(r io.ReadSeeker, req types.ColFmt, opts types.DecodeOptions) (*types.Image, error) {
	img, _, err := d.ReadChunks(r, req, nil, opts)
	return img, err
}

// ReadChunks decodes the image and returns the ancillary chunks whose names
// are listed, in file order.
func (decoder) ReadChunks(r io.ReadSeeker, req types.ColFmt, names []string, opts types.DecodeOptions) (*types.Image, []types.ExtChunk, error) {
	var want map[string]bool
	if len(names) > 0 {
		want = make(map[string]bool, len(names))
		for _, n := range names {
			want[n] = true
		}
	}

	s, err := readStream(r, false, want)
	if err != nil {
		return nil, nil, err
	}
	if err := opts.CheckSize(types.FormatPNG, s.hdr.width, s.hdr.height); err != nil {
		return nil, nil, err
	}

	pixels, err := s.decodePixels()
	if err != nil {
		return nil, nil, err
	}

	nat := s.natural()
	tgt := req
	if tgt == types.ColFmtAuto {
		tgt = nat
	}
	buf, err := convert.Buffer(pixels, nat, tgt)
	if err != nil {
		return nil, nil, err
	}
	return &types.Image{Buf: buf, W: s.hdr.width, H: s.hdr.height, Fmt: tgt}, s.extra, nil
}

// adam7 lists the interlace passes as x0, y0, dx, dy.
var adam7 = [7][4]int{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// inflateError classifies a failure of the compressed stream.
func inflateError(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return types.IOError(types.FormatPNG, "image data", err)
	}
	return &types.Error{Kind: types.KindInvalidData, Format: types.FormatPNG, Reason: "corrupt image data", Err: err}
}

// decodePixels inflates, unfilters and de-interlaces the image data into
// the natural layout.
func (s *stream) decodePixels() ([]byte, error) {
	zr, err := zlib.NewReader(&s.idat)
	if err != nil {
		return nil, inflateError(err)
	}
	defer zr.Close()

	h := s.hdr
	nat := s.natural()
	out := make([]byte, h.width*h.height*nat.BytesPerPixel())

	passes := [][4]int{{0, 0, 1, 1}}
	if h.interlace == 1 {
		passes = adam7[:]
	}

	filterBPP := max(1, h.bitsPerPixel()/8)
	for _, p := range passes {
		pw := (h.width - p[0] + p[2] - 1) / p[2]
		ph := (h.height - p[1] + p[3] - 1) / p[3]
		if pw <= 0 || ph <= 0 {
			continue
		}

		// Byte 0 of each row holds the filter type.
		rowLen := (pw*h.bitsPerPixel() + 7) / 8
		prev := make([]byte, rowLen+1)
		cur := make([]byte, rowLen+1)
		line := make([]byte, pw*nat.BytesPerPixel())

		for row := 0; row < ph; row++ {
			if _, err := io.ReadFull(zr, cur); err != nil {
				return nil, inflateError(err)
			}
			if err := unfilter(cur[0], cur[1:], prev[1:], filterBPP); err != nil {
				return nil, err
			}
			if err := s.expand(cur[1:], pw, line); err != nil {
				return nil, err
			}

			y := p[1] + row*p[3]
			bpp := nat.BytesPerPixel()
			for i := 0; i < pw; i++ {
				x := p[0] + i*p[2]
				copy(out[(y*h.width+x)*bpp:], line[i*bpp:(i+1)*bpp])
			}
			prev, cur = cur, prev
		}
	}

	// Reading to the end verifies the Adler-32 checksum.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return nil, inflateError(err)
	}
	return out, nil
}

// expand turns one unfiltered row of packed samples into n pixels of the
// natural layout.
func (s *stream) expand(row []byte, n int, dst []byte) error {
	h := s.hdr
	depth := int(h.depth)
	ch := h.channels()

	sample := func(i int) uint16 {
		switch depth {
		case 16:
			return uint16(row[2*i])<<8 | uint16(row[2*i+1])
		case 8:
			return uint16(row[i])
		default:
			bit := i * depth
			return uint16(row[bit/8]>>(8-depth-bit%8)) & (1<<depth - 1)
		}
	}
	scale := func(v uint16) byte {
		switch depth {
		case 16:
			return byte(v >> 8)
		case 8:
			return byte(v)
		default:
			return byte(uint32(v) * 255 / (1<<depth - 1))
		}
	}
	key := func(c int) uint16 {
		return uint16(s.trns[2*c])<<8 | uint16(s.trns[2*c+1])
	}

	switch h.colorType {
	case ctPalette:
		entries := len(s.palette) / 3
		alpha := s.trns != nil
		for i, d := 0, 0; i < n; i++ {
			idx := int(sample(i))
			if idx >= entries {
				return types.InvalidData(types.FormatPNG, "palette index %d out of range", idx)
			}
			copy(dst[d:d+3], s.palette[idx*3:])
			d += 3
			if alpha {
				dst[d] = 0xff
				if idx < len(s.trns) {
					dst[d] = s.trns[idx]
				}
				d++
			}
		}

	case ctGray, ctRGB:
		alpha := s.trns != nil
		for i, d := 0, 0; i < n; i++ {
			keyed := alpha
			for c := 0; c < ch; c++ {
				v := sample(i*ch + c)
				if alpha && v != key(c) {
					keyed = false
				}
				dst[d] = scale(v)
				d++
			}
			if alpha {
				dst[d] = 0xff
				if keyed {
					dst[d] = 0
				}
				d++
			}
		}

	default:
		for i := 0; i < n*ch; i++ {
			dst[i] = scale(sample(i))
		}
	}
	return nil
}
