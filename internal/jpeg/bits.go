package jpeg

import (
	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/types"
)

// bitReader reads entropy-coded data, removing stuffed zero bytes.
//
// When it runs into a marker it stops consuming input, remembers the
// marker and returns zero bits from then on; the scan loop decides whether
// that marker was expected.
type bitReader struct {
	sr     *binary.SafeReader
	acc    uint32
	n      int
	marker byte // pending marker, 0 if none
}

func (br *bitReader) fill() error {
	if br.marker != 0 {
		br.acc <<= 8
		br.n += 8
		return nil
	}
	var b [1]byte
	if err := br.sr.ReadFull(b[:], "entropy-coded data"); err != nil {
		return err
	}
	if b[0] == 0xff {
		var next [1]byte
		for {
			if err := br.sr.ReadFull(next[:], "entropy-coded data"); err != nil {
				return err
			}
			if next[0] != 0xff {
				break
			}
		}
		if next[0] != 0x00 {
			br.marker = next[0]
			br.acc <<= 8
			br.n += 8
			return nil
		}
	}
	br.acc = br.acc<<8 | uint32(b[0])
	br.n += 8
	return nil
}

func (br *bitReader) bit() (uint8, error) {
	if br.n == 0 {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	br.n--
	return uint8(br.acc>>br.n) & 1, nil
}

// bits reads n <= 16 bits, most significant first.
func (br *bitReader) bits(n int) (int32, error) {
	for br.n < n {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	br.n -= n
	return int32(br.acc>>br.n) & (1<<n - 1), nil
}

// reset drops buffered bits at a restart boundary.
func (br *bitReader) reset() {
	br.acc, br.n = 0, 0
}

// nextMarker returns the marker that ends the entropy-coded segment,
// skipping any remaining padding.
func (br *bitReader) nextMarker() (byte, error) {
	if br.marker != 0 {
		m := br.marker
		br.marker = 0
		return m, nil
	}
	return readMarker(br.sr)
}

// readMarker scans forward to the next marker, skipping stray bytes and
// 0xFF fill bytes.
func readMarker(sr *binary.SafeReader) (byte, error) {
	for {
		b, err := sr.ReadByte()
		if err != nil {
			return 0, types.IOError(types.FormatJPEG, "marker", err)
		}
		if b != 0xff {
			continue
		}
		for b == 0xff {
			if b, err = sr.ReadByte(); err != nil {
				return 0, types.IOError(types.FormatJPEG, "marker", err)
			}
		}
		if b != 0x00 {
			return b, nil
		}
	}
}
