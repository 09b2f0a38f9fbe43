// Package png implements the PNG codec, including access to extension
// chunks.
package png

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

// signature starts every PNG stream.
const signature = "\x89PNG\r\n\x1a\n"

// Largest chunk length allowed by the format
const maxChunkLen = 1<<31 - 1

// Chunk names the codec handles itself.
const (
	chunkIHDR = "IHDR"
	chunkPLTE = "PLTE"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
	chunkTRNS = "tRNS"
)

// chunk is one length-type-data-CRC record.
type chunk struct {
	name   string
	data   []byte
	offset int64 // of the length field
}

// critical reports whether a decoder must understand the chunk.
func critical(name string) bool {
	return name[0]&0x20 == 0
}

// readChunk reads the next chunk and verifies its CRC.
func readChunk(sr *binary.SafeReader) (chunk, error) {
	c := chunk{offset: sr.Offset()}
	length, err := binary.ReadBE[uint32](sr, "chunk length")
	if err != nil {
		return c, err
	}
	if length > maxChunkLen {
		return c, invalidAt(c.offset, "chunk length %d exceeds 2^31-1", length)
	}
	var name [4]byte
	if err := sr.ReadFull(name[:], "chunk type"); err != nil {
		return c, err
	}
	c.name = string(name[:])
	if !validName(c.name) {
		return c, invalidAt(c.offset, "invalid chunk type %q", c.name)
	}

	var data bytes.Buffer
	if err := sr.CopyN(&data, int64(length), c.name+" chunk"); err != nil {
		return c, err
	}
	c.data = data.Bytes()

	want, err := binary.ReadBE[uint32](sr, "chunk CRC")
	if err != nil {
		return c, err
	}
	crc := crc32.NewIEEE()
	crc.Write(name[:])
	crc.Write(c.data)
	if crc.Sum32() != want {
		return c, invalidAt(c.offset, "CRC mismatch in %s chunk", c.name)
	}
	return c, nil
}

// writeChunk writes one chunk with its CRC.
func writeChunk(sw *binary.SafeWriter, name string, data []byte) error {
	if err := binary.Write(sw, uint32(len(data))); err != nil {
		return err
	}
	if err := sw.WriteString(name); err != nil {
		return err
	}
	if err := sw.WriteBytes(data); err != nil {
		return err
	}
	crc := crc32.NewIEEE()
	crc.Write([]byte(name))
	crc.Write(data)
	return binary.Write(sw, crc.Sum32())
}

// validName reports whether name is four ASCII letters.
func validName(name string) bool {
	if len(name) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := name[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// invalidAt returns an InvalidData error located at offset.
func invalidAt(offset int64, format string, args ...any) *types.Error {
	e := types.InvalidData(types.FormatPNG, format, args...)
	e.Offset = offset
	return e
}

// checkSignature reads and verifies the 8-byte signature.
func checkSignature(sr *binary.SafeReader) error {
	var sig [8]byte
	if err := sr.ReadFull(sig[:], "PNG signature"); err != nil {
		return err
	}
	if string(sig[:]) != signature {
		return types.InvalidData(types.FormatPNG, "invalid signature")
	}
	return nil
}

// decoder implements registry.Decoder and registry.ChunkReader for PNG.
type decoder struct{}

// Detect checks the 8-byte signature.
func (decoder) Detect(r io.ReadSeeker) bool {
	head, err := binary.Sniff(r, len(signature))
	return err == nil && string(head) == signature
}

func init() {
	registry.Register(types.FormatPNG, decoder{})
	registry.RegisterWriter(types.FormatPNG, encoder{})
}
