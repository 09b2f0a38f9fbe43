package jpeg

import (
	"math"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/types"
)

// zigzag maps the stream order of coefficients to their row-major position
// in the 8x8 block.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// idctTable[x][u] = C(u)/2 * cos((2x+1)uπ/16), C(0) = 1/√2, else 1.
var idctTable [8][8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			c := 1.0
			if u == 0 {
				c = 1 / math.Sqrt2
			}
			idctTable[x][u] = c / 2 * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
}

// idct transforms dequantized coefficients (row-major, rows are vertical
// frequencies) into level-shifted samples written to dst with the given
// stride.
func idct(coef *[64]int32, dst []byte, stride int) {
	var tmp [64]float64
	for v := 0; v < 8; v++ {
		row := coef[v*8 : v*8+8]
		for x := 0; x < 8; x++ {
			var sum float64
			for u := 0; u < 8; u++ {
				if row[u] != 0 {
					sum += idctTable[x][u] * float64(row[u])
				}
			}
			tmp[v*8+x] = sum
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for v := 0; v < 8; v++ {
				sum += idctTable[y][v] * tmp[v*8+x]
			}
			s := int(math.Floor(sum + 128.5))
			dst[y*stride+x] = byte(min(max(s, 0), 255))
		}
	}
}

// scan decodes one baseline scan and returns the marker that follows it.
func (f *frame) scan(sr *binary.SafeReader, seg []byte) (byte, error) {
	if len(seg) < 1 {
		return 0, types.InvalidData(types.FormatJPEG, "empty SOS segment")
	}
	ns := int(seg[0])
	if ns < 1 || ns > len(f.comps) || len(seg) != 4+2*ns {
		return 0, types.InvalidData(types.FormatJPEG, "invalid SOS segment")
	}

	comps := make([]*component, ns)
	for i := range comps {
		id, tables := seg[1+2*i], seg[2+2*i]
		for j := range f.comps {
			if f.comps[j].id == id {
				comps[i] = &f.comps[j]
			}
		}
		c := comps[i]
		if c == nil {
			return 0, types.InvalidData(types.FormatJPEG, "scan references unknown component %d", id)
		}
		c.td, c.ta = int(tables>>4), int(tables&0x0f)
		if c.td > 3 || c.ta > 3 || f.dc[c.td] == nil || f.ac[c.ta] == nil {
			return 0, types.InvalidData(types.FormatJPEG, "scan uses undefined Huffman table")
		}
		if f.quant[c.tq] == nil {
			return 0, types.InvalidData(types.FormatJPEG, "component %d uses undefined quantization table %d", c.id, c.tq)
		}
		c.pred = 0
	}
	ss, se, a := seg[1+2*ns], seg[2+2*ns], seg[3+2*ns]
	if ss != 0 || se != 63 || a != 0 {
		return 0, types.InvalidData(types.FormatJPEG, "invalid spectral selection for a sequential scan")
	}

	br := &bitReader{sr: sr}
	var coef [64]int32

	// block decodes the block at block coordinates (bx, by) of c.
	block := func(c *component, bx, by int) error {
		if err := br.block(f, c, &coef); err != nil {
			return err
		}
		idct(&coef, c.plane[by*8*c.stride+bx*8:], c.stride)
		return nil
	}

	// A single-component scan covers only the blocks inside the component;
	// interleaved scans run over whole MCUs.
	var units, perRow int
	if ns == 1 {
		c := comps[0]
		cw := (f.width*c.h + f.hmax - 1) / f.hmax
		chh := (f.height*c.v + f.vmax - 1) / f.vmax
		perRow = (cw + 7) / 8
		units = perRow * ((chh + 7) / 8)
	} else {
		perRow = f.mcusX
		units = f.mcusX * f.mcusY
	}

	restarts := 0
	for u := 0; u < units; u++ {
		if f.interval > 0 && u > 0 && u%f.interval == 0 {
			if err := f.restart(br, comps, restarts); err != nil {
				return 0, err
			}
			restarts++
		}

		ux, uy := u%perRow, u/perRow
		if ns == 1 {
			if err := block(comps[0], ux, uy); err != nil {
				return 0, err
			}
			continue
		}
		for _, c := range comps {
			for by := 0; by < c.v; by++ {
				for bx := 0; bx < c.h; bx++ {
					if err := block(c, ux*c.h+bx, uy*c.v+by); err != nil {
						return 0, err
					}
				}
			}
		}
	}

	for _, c := range comps {
		c.scanned = true
	}
	return br.nextMarker()
}

// restart consumes the RSTn marker expected after every interval of MCUs
// and resets the decoder state.
func (f *frame) restart(br *bitReader, comps []*component, n int) error {
	m, err := br.nextMarker()
	if err != nil {
		return err
	}
	if want := byte(markerRST0 + n%8); m != want {
		return types.InvalidData(types.FormatJPEG, "expected RST%d marker, found %#02x", n%8, m)
	}
	br.reset()
	for _, c := range comps {
		c.pred = 0
	}
	return nil
}

// block decodes and dequantizes one 8x8 block into coef (row-major).
func (br *bitReader) block(f *frame, c *component, coef *[64]int32) error {
	*coef = [64]int32{}
	q := f.quant[c.tq]

	t, err := br.decode(f.dc[c.td])
	if err != nil {
		return err
	}
	diff, err := br.receiveExtend(t)
	if err != nil {
		return err
	}
	c.pred += diff
	coef[0] = c.pred * int32(q[0])

	for k := 1; k < 64; {
		rs, err := br.decode(f.ac[c.ta])
		if err != nil {
			return err
		}
		r, s := int(rs>>4), rs&0x0f
		if s == 0 {
			if r != 15 {
				break // end of block
			}
			k += 16
			continue
		}
		k += r
		if k > 63 {
			return types.InvalidData(types.FormatJPEG, "coefficient index out of range")
		}
		v, err := br.receiveExtend(s)
		if err != nil {
			return err
		}
		coef[zigzag[k]] = v * int32(q[k])
		k++
	}
	return nil
}
