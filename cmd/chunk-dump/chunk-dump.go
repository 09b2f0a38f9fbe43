package main

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/source"
	"github.com/simonhull/imagefmt/internal/types"
)

// Lists the chunks of a PNG file, with lengths, offsets and CRC status.
// Unlike the decoder it keeps going past bad CRCs, so it is useful for
// looking at damaged files.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: chunk-dump <file.png>")
		os.Exit(1)
	}

	src, err := source.Open(os.Args[1], source.DefaultMaxSize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := dumpChunks(os.Stdout, src.Reader()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

var signature = []byte("\x89PNG\r\n\x1a\n")

func dumpChunks(w io.Writer, r io.Reader) error {
	sr := binary.NewSafeReader(r, types.FormatPNG)

	sig := make([]byte, len(signature))
	if err := sr.ReadFull(sig, "signature"); err != nil {
		return err
	}
	if !bytes.Equal(sig, signature) {
		return errors.New("not a PNG file")
	}

	for {
		offset := sr.Offset()
		length, err := binary.Read[uint32](sr, "chunk length")
		if err != nil {
			return err
		}
		var name [4]byte
		if err := sr.ReadFull(name[:], "chunk type"); err != nil {
			return err
		}

		crc := crc32.NewIEEE()
		crc.Write(name[:])
		// Only IHDR is kept; other payloads stream through the hash.
		var data bytes.Buffer
		dst := io.Writer(crc)
		if string(name[:]) == "IHDR" {
			dst = io.MultiWriter(crc, &data)
		}
		if err := sr.CopyN(dst, int64(length), string(name[:])); err != nil {
			return err
		}
		stored, err := binary.Read[uint32](sr, "chunk CRC")
		if err != nil {
			return err
		}

		status := "ok"
		if crc.Sum32() != stored {
			status = fmt.Sprintf("BAD (computed %08x)", crc.Sum32())
		}
		fmt.Fprintf(w, "%s (size: %d, offset: %d, crc: %08x %s)%s\n",
			name[:], length, offset, stored, status, describe(string(name[:]), data.Bytes()))

		if string(name[:]) == "IEND" {
			return nil
		}
	}
}

// describe summarizes chunks whose payload is worth a glance.
func describe(name string, data []byte) string {
	if name != "IHDR" || len(data) != 13 {
		return ""
	}
	return fmt.Sprintf(" %dx%d depth %d color type %d interlace %d",
		binary.Get[uint32](data[0:], binary.BigEndian),
		binary.Get[uint32](data[4:], binary.BigEndian),
		data[8], data[9], data[12])
}
