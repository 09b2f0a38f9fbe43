package jpeg

import "github.com/simonhull/imagefmt/internal/types"

// huffman is a canonical Huffman table in the form of JPEG Annex F.2.2.3:
// for each code length, the largest code and where its values start.
type huffman struct {
	maxCode [17]int32 // -1 if no codes of that length
	valPtr  [17]int32
	minCode [17]int32
	values  []byte
}

// newHuffman builds a table from the 16 code-length counts and the values
// of a DHT segment.
func newHuffman(counts [16]byte, values []byte) (*huffman, error) {
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total == 0 || total > 256 || total != len(values) {
		return nil, types.InvalidData(types.FormatJPEG, "invalid Huffman table with %d codes", total)
	}

	h := &huffman{values: values}
	code, k := int32(0), int32(0)
	for l := 1; l <= 16; l++ {
		n := int32(counts[l-1])
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = k
			h.minCode[l] = code
			code += n
			k += n
			h.maxCode[l] = code - 1
		}
		// All codes of length l must fit in l bits.
		if code > 1<<l {
			return nil, types.InvalidData(types.FormatJPEG, "over-subscribed Huffman table")
		}
		code <<= 1
	}
	return h, nil
}

// decode reads one Huffman-coded value.
func (br *bitReader) decode(h *huffman) (byte, error) {
	code := int32(0)
	for l := 1; l <= 16; l++ {
		bit, err := br.bit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)
		if code <= h.maxCode[l] {
			return h.values[h.valPtr[l]+code-h.minCode[l]], nil
		}
	}
	return 0, types.InvalidData(types.FormatJPEG, "invalid Huffman code")
}

// receiveExtend reads an s-bit magnitude category value and sign-extends
// it (F.2.2.1).
func (br *bitReader) receiveExtend(s byte) (int32, error) {
	if s == 0 {
		return 0, nil
	}
	if s > 16 {
		return 0, types.InvalidData(types.FormatJPEG, "coefficient size %d", s)
	}
	v, err := br.bits(int(s))
	if err != nil {
		return 0, err
	}
	if v < 1<<(s-1) {
		return v - (1 << s) + 1, nil
	}
	return v, nil
}
