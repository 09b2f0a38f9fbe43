package png

import "github.com/simonhull/imagefmt/internal/types"

// Filter types
const (
	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4
)

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// unfilter reverses the filter on cur in place. prev is the previous
// unfiltered row (zeros for the first row of a pass).
func unfilter(ft byte, cur, prev []byte, bpp int) error {
	switch ft {
	case filterNone:
	case filterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case filterUp:
		for i := range cur {
			cur[i] += prev[i]
		}
	case filterAverage:
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] += byte((int(left) + int(prev[i])) / 2)
		}
	case filterPaeth:
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = cur[i-bpp], prev[i-bpp]
			}
			cur[i] += paeth(left, prev[i], upLeft)
		}
	default:
		return types.InvalidData(types.FormatPNG, "invalid filter type %d", ft)
	}
	return nil
}

// filterRow writes row filtered with ft into dst (same length as row).
func filterRow(ft byte, dst, row, prev []byte, bpp int) {
	for i := range row {
		var left, upLeft byte
		if i >= bpp {
			left, upLeft = row[i-bpp], prev[i-bpp]
		}
		switch ft {
		case filterNone:
			dst[i] = row[i]
		case filterSub:
			dst[i] = row[i] - left
		case filterUp:
			dst[i] = row[i] - prev[i]
		case filterAverage:
			dst[i] = row[i] - byte((int(left)+int(prev[i]))/2)
		case filterPaeth:
			dst[i] = row[i] - paeth(left, prev[i], upLeft)
		}
	}
}

// chooseFilter picks the filter with the smallest sum of absolute values,
// reading the filtered bytes as signed. The winner is left in out[1:] with
// its type in out[0]. scratch must be as long as row.
func chooseFilter(out, scratch, row, prev []byte, bpp int) {
	best := -1
	for ft := byte(filterNone); ft <= filterPaeth; ft++ {
		filterRow(ft, scratch, row, prev, bpp)
		sum := 0
		for _, b := range scratch {
			sum += abs(int(int8(b)))
			if best >= 0 && sum >= best {
				break
			}
		}
		if best < 0 || sum < best {
			best = sum
			out[0] = ft
			copy(out[1:], scratch)
		}
	}
}
