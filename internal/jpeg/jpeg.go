// Package jpeg implements a baseline JPEG decoder.
//
// Supported are sequential Huffman-coded frames (SOF0, SOF1) with 8-bit
// samples and one or three components, any sampling factors from 1 to 4,
// restart intervals and the Adobe APP14 RGB transform. Progressive,
// lossless, hierarchical and arithmetic-coded frames, 12-bit samples and
// four-component images are reported as unsupported. There is no encoder.
package jpeg

import (
	"bufio"
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/convert"
	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

// Markers
const (
	markerSOF0  = 0xc0
	markerSOF1  = 0xc1
	markerSOF2  = 0xc2
	markerDHT   = 0xc4
	markerDAC   = 0xcc
	markerRST0  = 0xd0
	markerRST7  = 0xd7
	markerSOI   = 0xd8
	markerEOI   = 0xd9
	markerSOS   = 0xda
	markerDQT   = 0xdb
	markerDRI   = 0xdd
	markerAPP0  = 0xe0
	markerAPP14 = 0xee
)

// component is one color component of the frame.
type component struct {
	id     byte
	h, v   int // sampling factors
	tq     int // quantization table
	td, ta int // Huffman tables of the current scan

	// Decoded samples, padded to whole MCUs.
	plane  []byte
	stride int

	pred    int32
	scanned bool
}

// frame is the state built up while walking the markers.
type frame struct {
	width, height int
	comps         []component
	hmax, vmax    int
	mcusX, mcusY  int

	quant    [4]*[64]uint16 // zigzag order
	dc, ac   [4]*huffman
	interval int

	adobe          bool
	adobeTransform byte
	jfif           bool
}

// decoder implements registry.Decoder for JPEG.
type decoder struct{}

// Detect checks for SOI followed by the start of another marker.
func (decoder) Detect(r io.ReadSeeker) bool {
	head, err := binary.Sniff(r, 3)
	return err == nil && len(head) == 3 && head[0] == 0xff && head[1] == markerSOI && head[2] == 0xff
}

// ReadInfo walks the markers up to the frame header.
func (decoder) ReadInfo(r io.ReadSeeker) (types.Info, error) {
	f, err := decode(r, true, types.DecodeOptions{})
	if err != nil {
		return types.Info{}, err
	}
	ct := types.ColTypeColor
	if len(f.comps) == 1 {
		ct = types.ColTypeGray
	}
	return types.Info{W: f.width, H: f.height, CT: ct}, nil
}

// Read decodes the image. ColFmtAuto yields Y or RGB.
func (decoder) Read(r io.ReadSeeker, req types.ColFmt, opts types.DecodeOptions) (*types.Image, error) {
	f, err := decode(r, false, opts)
	if err != nil {
		return nil, err
	}

	nat := types.ColFmtRGB
	if len(f.comps) == 1 {
		nat = types.ColFmtY
	}
	tgt := req
	if tgt == types.ColFmtAuto {
		tgt = nat
	}
	conv, err := convert.Get(nat, tgt)
	if err != nil {
		return nil, err
	}

	line := make([]byte, f.width*nat.BytesPerPixel())
	stride := f.width * tgt.BytesPerPixel()
	out := make([]byte, stride*f.height)
	for y := 0; y < f.height; y++ {
		f.line(y, line)
		conv(line, out[y*stride:(y+1)*stride])
	}
	return &types.Image{Buf: out, W: f.width, H: f.height, Fmt: tgt}, nil
}

// decode walks the marker segments. With headerOnly it returns as soon as
// the frame header is parsed.
func decode(r io.Reader, headerOnly bool, opts types.DecodeOptions) (*frame, error) {
	sr := binary.NewSafeReader(bufio.NewReader(r), types.FormatJPEG)

	var soi [2]byte
	if err := sr.ReadFull(soi[:], "SOI marker"); err != nil {
		return nil, err
	}
	if soi[0] != 0xff || soi[1] != markerSOI {
		return nil, types.InvalidData(types.FormatJPEG, "missing SOI marker")
	}

	f := &frame{}
	m, err := readMarker(sr)
	for {
		if err != nil {
			return nil, err
		}

		switch {
		case m == markerEOI:
			if f.comps == nil {
				return nil, types.InvalidData(types.FormatJPEG, "no frame before EOI")
			}
			for _, c := range f.comps {
				if !c.scanned {
					return nil, types.InvalidData(types.FormatJPEG, "component %d has no scan", c.id)
				}
			}
			return f, nil

		case m == markerSOS:
			if f.comps == nil {
				return nil, types.InvalidData(types.FormatJPEG, "SOS before frame header")
			}
			seg, err := segment(sr, "SOS")
			if err != nil {
				return nil, err
			}
			if m, err = f.scan(sr, seg); err != nil {
				return nil, err
			}
			continue

		case m == markerSOF0 || m == markerSOF1:
			if f.comps != nil {
				return nil, types.InvalidData(types.FormatJPEG, "multiple frame headers")
			}
			seg, err := segment(sr, "SOF")
			if err != nil {
				return nil, err
			}
			if err := f.parseSOF(seg); err != nil {
				return nil, err
			}
			if headerOnly {
				return f, nil
			}
			if err := opts.CheckSize(types.FormatJPEG, f.width, f.height); err != nil {
				return nil, err
			}
			f.allocate()

		case m == markerSOF2:
			return nil, types.Unsupported(types.FormatJPEG, "progressive JPEG")
		case m >= 0xc3 && m <= 0xcf && m != markerDHT && m != markerDAC:
			return nil, types.Unsupported(types.FormatJPEG, "frame type SOF%d", m-markerSOF0)
		case m == markerDAC:
			return nil, types.Unsupported(types.FormatJPEG, "arithmetic coding")

		case m == markerDHT:
			seg, err := segment(sr, "DHT")
			if err != nil {
				return nil, err
			}
			if err := f.parseDHT(seg); err != nil {
				return nil, err
			}

		case m == markerDQT:
			seg, err := segment(sr, "DQT")
			if err != nil {
				return nil, err
			}
			if err := f.parseDQT(seg); err != nil {
				return nil, err
			}

		case m == markerDRI:
			seg, err := segment(sr, "DRI")
			if err != nil {
				return nil, err
			}
			if len(seg) != 2 {
				return nil, types.InvalidData(types.FormatJPEG, "invalid DRI length %d", len(seg))
			}
			f.interval = int(binary.Get[uint16](seg, binary.BigEndian))

		case m == markerAPP0 || m == markerAPP14:
			seg, err := segment(sr, "APP")
			if err != nil {
				return nil, err
			}
			f.parseAPP(m, seg)

		case m >= markerRST0 && m <= markerRST7:
			// Stray restart marker, no payload.

		case m == markerSOI:
			return nil, types.InvalidData(types.FormatJPEG, "unexpected SOI marker")

		default:
			// APPn, COM, DNL and anything else with a length.
			if _, err := segment(sr, "marker segment"); err != nil {
				return nil, err
			}
		}

		m, err = readMarker(sr)
	}
}

// segment reads the payload of a marker segment.
func segment(sr *binary.SafeReader, what string) ([]byte, error) {
	n, err := binary.Read[uint16](sr, what+" length")
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, types.InvalidData(types.FormatJPEG, "%s length %d", what, n)
	}
	buf := make([]byte, n-2)
	if err := sr.ReadFull(buf, what+" segment"); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *frame) parseSOF(seg []byte) error {
	cr := binary.NewChainReader(seg, binary.BigEndian)
	precision := binary.ReadChained[uint8](cr, "precision")
	f.height = int(binary.ReadChained[uint16](cr, "height"))
	f.width = int(binary.ReadChained[uint16](cr, "width"))
	n := int(binary.ReadChained[uint8](cr, "component count"))
	if err := cr.Error(); err != nil {
		return types.IOError(types.FormatJPEG, "SOF", err)
	}

	if precision != 8 {
		return types.Unsupported(types.FormatJPEG, "%d-bit samples", precision)
	}
	if f.height == 0 {
		return types.Unsupported(types.FormatJPEG, "height defined by DNL")
	}
	if f.width == 0 {
		return types.InvalidData(types.FormatJPEG, "zero width")
	}
	switch n {
	case 1, 3:
	case 4:
		return types.Unsupported(types.FormatJPEG, "four-component (CMYK) images")
	default:
		return types.InvalidData(types.FormatJPEG, "invalid component count %d", n)
	}
	if len(seg) != 6+3*n {
		return types.InvalidData(types.FormatJPEG, "invalid SOF length %d", len(seg))
	}

	f.comps = make([]component, n)
	for i := range f.comps {
		c := &f.comps[i]
		c.id = binary.ReadChained[uint8](cr, "component id")
		hv := binary.ReadChained[uint8](cr, "sampling factors")
		c.h, c.v = int(hv>>4), int(hv&0x0f)
		c.tq = int(binary.ReadChained[uint8](cr, "quantization table"))
		if c.h < 1 || c.h > 4 || c.v < 1 || c.v > 4 {
			return types.InvalidData(types.FormatJPEG, "invalid sampling factors %dx%d", c.h, c.v)
		}
		if c.tq > 3 {
			return types.InvalidData(types.FormatJPEG, "invalid quantization table %d", c.tq)
		}
		for j := 0; j < i; j++ {
			if f.comps[j].id == c.id {
				return types.InvalidData(types.FormatJPEG, "duplicate component id %d", c.id)
			}
		}
		f.hmax, f.vmax = max(f.hmax, c.h), max(f.vmax, c.v)
	}
	// A single component is never interleaved; its MCU is one block.
	if n == 1 {
		f.comps[0].h, f.comps[0].v = 1, 1
		f.hmax, f.vmax = 1, 1
	}
	f.mcusX = (f.width + 8*f.hmax - 1) / (8 * f.hmax)
	f.mcusY = (f.height + 8*f.vmax - 1) / (8 * f.vmax)
	return nil
}

// allocate sizes the component planes to whole MCUs.
func (f *frame) allocate() {
	for i := range f.comps {
		c := &f.comps[i]
		c.stride = f.mcusX * c.h * 8
		c.plane = make([]byte, c.stride*f.mcusY*c.v*8)
	}
}

func (f *frame) parseDHT(seg []byte) error {
	for len(seg) > 0 {
		if len(seg) < 17 {
			return types.InvalidData(types.FormatJPEG, "truncated DHT segment")
		}
		class, id := seg[0]>>4, seg[0]&0x0f
		if class > 1 || id > 3 {
			return types.InvalidData(types.FormatJPEG, "invalid Huffman table %d/%d", class, id)
		}
		var counts [16]byte
		copy(counts[:], seg[1:17])
		total := 0
		for _, c := range counts {
			total += int(c)
		}
		if len(seg) < 17+total {
			return types.InvalidData(types.FormatJPEG, "truncated DHT segment")
		}
		h, err := newHuffman(counts, append([]byte(nil), seg[17:17+total]...))
		if err != nil {
			return err
		}
		if class == 0 {
			f.dc[id] = h
		} else {
			f.ac[id] = h
		}
		seg = seg[17+total:]
	}
	return nil
}

func (f *frame) parseDQT(seg []byte) error {
	for len(seg) > 0 {
		pq, id := seg[0]>>4, seg[0]&0x0f
		if pq > 1 || id > 3 {
			return types.InvalidData(types.FormatJPEG, "invalid quantization table %d/%d", pq, id)
		}
		size := 64 * (int(pq) + 1)
		if len(seg) < 1+size {
			return types.InvalidData(types.FormatJPEG, "truncated DQT segment")
		}
		q := new([64]uint16)
		for k := range q {
			if pq == 0 {
				q[k] = uint16(seg[1+k])
			} else {
				q[k] = binary.Get[uint16](seg[1+2*k:], binary.BigEndian)
			}
		}
		f.quant[id] = q
		seg = seg[1+size:]
	}
	return nil
}

// parseAPP records the JFIF and Adobe markers that decide the color
// transform of three-component images.
func (f *frame) parseAPP(m byte, seg []byte) {
	switch {
	case m == markerAPP0 && len(seg) >= 5 && string(seg[:5]) == "JFIF\x00":
		f.jfif = true
	case m == markerAPP14 && len(seg) >= 12 && string(seg[:5]) == "Adobe":
		f.adobe = true
		f.adobeTransform = seg[11]
	}
}

// isRGB reports whether three components hold RGB rather than YCbCr.
func (f *frame) isRGB() bool {
	if f.jfif {
		return false
	}
	if f.adobe {
		return f.adobeTransform == 0
	}
	return f.comps[0].id == 'R' && f.comps[1].id == 'G' && f.comps[2].id == 'B'
}

// line writes row y of the image as Y or RGB.
func (f *frame) line(y int, dst []byte) {
	if len(f.comps) == 1 {
		c := &f.comps[0]
		copy(dst, c.plane[y*c.stride:y*c.stride+f.width])
		return
	}

	c0, c1, c2 := &f.comps[0], &f.comps[1], &f.comps[2]
	r0 := c0.plane[(y*c0.v/f.vmax)*c0.stride:]
	r1 := c1.plane[(y*c1.v/f.vmax)*c1.stride:]
	r2 := c2.plane[(y*c2.v/f.vmax)*c2.stride:]
	rgb := f.isRGB()
	for x, d := 0, 0; x < f.width; x, d = x+1, d+3 {
		a := r0[x*c0.h/f.hmax]
		b := r1[x*c1.h/f.hmax]
		c := r2[x*c2.h/f.hmax]
		if rgb {
			dst[d], dst[d+1], dst[d+2] = a, b, c
		} else {
			dst[d], dst[d+1], dst[d+2] = ycbcrToRGB(a, b, c)
		}
	}
}

// ycbcrToRGB converts using the JFIF equations in 16.16 fixed point.
func ycbcrToRGB(y, cb, cr byte) (byte, byte, byte) {
	yy := int32(y) * 0x10101
	cb1 := int32(cb) - 128
	cr1 := int32(cr) - 128
	r := yy + 91881*cr1
	g := yy - 22554*cb1 - 46802*cr1
	b := yy + 116130*cb1
	return clamp16(r), clamp16(g), clamp16(b)
}

func clamp16(v int32) byte {
	switch {
	case v < 0:
		return 0
	case v > 0xffffff:
		return 0xff
	default:
		return byte(v >> 16)
	}
}

func init() {
	registry.Register(types.FormatJPEG, decoder{})
}
