package jpeg

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/imagefmt/internal/types"
)

// Pixel differences tolerated against image/jpeg, which uses an integer
// IDCT.
const tolerance = 5

func stdEncode(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, m, &stdjpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func gradientGray(w, h int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetGray(x, y, color.Gray{uint8(x*7 + y*3)})
		}
	}
	return m
}

func gradientRGBA(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, color.RGBA{uint8(x * 6), uint8(y * 9), uint8(200 - x*2), 255})
		}
	}
	return m
}

func assertClose(t *testing.T, want, got []byte) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	worst := 0
	for i := range want {
		d := int(want[i]) - int(got[i])
		if d < 0 {
			d = -d
		}
		worst = max(worst, d)
	}
	assert.LessOrEqual(t, worst, tolerance, "largest sample difference")
}

func TestDecode_Gray(t *testing.T) {
	data := stdEncode(t, gradientGray(37, 21))

	std, err := stdjpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	gray, ok := std.(*image.Gray)
	require.True(t, ok)

	img, err := decoder{}.Read(bytes.NewReader(data), types.ColFmtAuto, types.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.ColFmtY, img.Fmt)
	assert.Equal(t, 37, img.W)
	assert.Equal(t, 21, img.H)
	assertClose(t, gray.Pix, img.Buf)

	info, err := decoder{}.ReadInfo(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, types.Info{W: 37, H: 21, CT: types.ColTypeGray}, info)
}

func TestDecode_Color(t *testing.T) {
	// Odd dimensions exercise partial MCUs with 4:2:0 chroma.
	data := stdEncode(t, gradientRGBA(33, 17))

	std, err := stdjpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	want := make([]byte, 0, 33*17*3)
	for y := 0; y < 17; y++ {
		for x := 0; x < 33; x++ {
			r, g, b, _ := std.At(x, y).RGBA()
			want = append(want, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	img, err := decoder{}.Read(bytes.NewReader(data), types.ColFmtAuto, types.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.ColFmtRGB, img.Fmt)
	assertClose(t, want, img.Buf)

	bgra, err := decoder{}.Read(bytes.NewReader(data), types.ColFmtBGRA, types.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, img.Buf[0:3], []byte{bgra.Buf[2], bgra.Buf[1], bgra.Buf[0]})
	assert.Equal(t, byte(255), bgra.Buf[3])

	info, err := decoder{}.ReadInfo(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, types.Info{W: 33, H: 17, CT: types.ColTypeColor}, info)
}

// restartJPEG builds a 16x8 grayscale image of two MCUs separated by a
// restart marker. Each MCU codes a DC difference of +8 with tiny custom
// Huffman tables, so a missed predictor reset shows up as 130 instead of
// 129 in the second block.
func restartJPEG(rst byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xff, markerSOI})

	b.Write([]byte{0xff, markerDQT, 0x00, 0x43, 0x00})
	b.Write(bytes.Repeat([]byte{1}, 64))

	b.Write([]byte{0xff, markerSOF0, 0x00, 0x0b, 8, 0, 8, 0, 16, 1, 1, 0x11, 0})

	b.Write([]byte{0xff, markerDHT, 0x00, 0x27})
	b.Write([]byte{0x00, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4}) // DC: "0"=0, "1"=4
	b.Write([]byte{0x10, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})    // AC: "0"=EOB

	b.Write([]byte{0xff, markerDRI, 0x00, 0x04, 0x00, 0x01})
	b.Write([]byte{0xff, markerSOS, 0x00, 0x08, 1, 1, 0x00, 0, 63, 0})

	// "1" "1000" "0" padded with ones.
	b.Write([]byte{0xc3, 0xff, rst, 0xc3})
	b.Write([]byte{0xff, markerEOI})
	return b.Bytes()
}

func TestDecode_RestartInterval(t *testing.T) {
	img, err := decoder{}.Read(bytes.NewReader(restartJPEG(markerRST0)), types.ColFmtAuto, types.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{129}, 16*8), img.Buf)

	_, err = decoder{}.Read(bytes.NewReader(restartJPEG(markerRST0+1)), types.ColFmtAuto, types.DecodeOptions{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

// patch returns a copy of data with the byte at the first occurrence of
// marker, plus off, set to v.
func patch(t *testing.T, data []byte, marker byte, off int, v byte) []byte {
	t.Helper()
	i := bytes.Index(data, []byte{0xff, marker})
	require.GreaterOrEqual(t, i, 0, "marker %#x not found", marker)
	out := append([]byte(nil), data...)
	out[i+off] = v
	return out
}

func TestDecode_Errors(t *testing.T) {
	gray := stdEncode(t, gradientGray(16, 16))
	color := stdEncode(t, gradientRGBA(16, 16))

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"progressive", patch(t, gray, markerSOF0, 1, markerSOF2), types.ErrUnsupported},
		{"lossless", patch(t, gray, markerSOF0, 1, 0xc3), types.ErrUnsupported},
		{"arithmetic", patch(t, gray, markerSOF0, 1, 0xc9), types.ErrUnsupported},
		{"12-bit", patch(t, gray, markerSOF0, 4, 12), types.ErrUnsupported},
		{"zero height", patch(t, patch(t, gray, markerSOF0, 5, 0), markerSOF0, 6, 0), types.ErrUnsupported},
		{"two components", patch(t, gray, markerSOF0, 9, 2), types.ErrInvalidData},
		{"bad sampling", patch(t, color, markerSOF0, 11, 0x51), types.ErrInvalidData},
		{"truncated", color[:len(color)/2], types.ErrInvalidData},
		{"no SOI", append([]byte{0xff, 0xd9}, gray[2:]...), types.ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder{}.Read(bytes.NewReader(tt.data), types.ColFmtAuto, types.DecodeOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := decoder{}.ReadInfo(bytes.NewReader(patch(t, gray, markerSOF0, 1, markerSOF2)))
	assert.ErrorIs(t, err, types.ErrUnsupported)
}

func TestDecode_MaxPixels(t *testing.T) {
	data := stdEncode(t, gradientGray(16, 16))
	_, err := decoder{}.Read(bytes.NewReader(data), types.ColFmtAuto, types.DecodeOptions{MaxPixels: 255})
	assert.ErrorIs(t, err, types.ErrUnsupported)
}

func TestDetect(t *testing.T) {
	data := stdEncode(t, gradientGray(8, 8))
	r := bytes.NewReader(data)
	assert.True(t, decoder{}.Detect(r))
	pos, _ := r.Seek(0, io.SeekCurrent)
	assert.Zero(t, pos)

	assert.False(t, decoder{}.Detect(bytes.NewReader(data[:2])))
	assert.False(t, decoder{}.Detect(bytes.NewReader([]byte("BM\x00\x00"))))
}

func TestYCbCrToRGB(t *testing.T) {
	tests := []struct {
		y, cb, cr byte
		r, g, b   byte
	}{
		{0, 128, 128, 0, 0, 0},
		{255, 128, 128, 255, 255, 255},
		{128, 128, 128, 128, 128, 128},
		{76, 85, 255, 254, 0, 0},
	}

	for _, tt := range tests {
		r, g, b := ycbcrToRGB(tt.y, tt.cb, tt.cr)
		want := color.YCbCr{Y: tt.y, Cb: tt.cb, Cr: tt.cr}
		wr, wg, wb, _ := want.RGBA()
		assert.Equal(t, []byte{byte(wr >> 8), byte(wg >> 8), byte(wb >> 8)}, []byte{r, g, b})
	}
}

func TestIsRGB(t *testing.T) {
	f := &frame{comps: []component{{id: 'R'}, {id: 'G'}, {id: 'B'}}}
	assert.True(t, f.isRGB())

	f.jfif = true
	assert.False(t, f.isRGB())

	f = &frame{comps: []component{{id: 1}, {id: 2}, {id: 3}}, adobe: true}
	assert.True(t, f.isRGB())
	f.adobeTransform = 1
	assert.False(t, f.isRGB())
}
