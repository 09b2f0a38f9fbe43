// Package source loads image files that may be wrapped in a compression
// container (gzip, bzip2, xz or a single-entry zip), so the command-line
// tools can read "icon.png.gz" as easily as "icon.png".
package source

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
	filetype "gopkg.in/h2non/filetype.v1"
	"gopkg.in/h2non/filetype.v1/matchers"

	"github.com/simonhull/imagefmt/internal/types"
)

// Compression identifies the container around the image data.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
	Xz
	Zip
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Xz:
		return "xz"
	case Zip:
		return "zip"
	default:
		return "none"
	}
}

// DefaultMaxSize bounds the unwrapped size of a source.
const DefaultMaxSize = 1 << 30

// Source is image data ready for decoding.
type Source struct {
	// File name of the image; for zip archives, the entry name
	Name string

	// Container the data was unwrapped from
	Compression Compression

	Data []byte
}

// Reader returns a fresh reader over the data.
func (s *Source) Reader() *bytes.Reader {
	return bytes.NewReader(s.Data)
}

// Open reads the file at path and unwraps it.
func Open(path string, maxSize int64) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.IOError(types.FormatUnknown, "read file", err)
	}
	return Unwrap(path, data, maxSize)
}

// Unwrap strips one compression layer from data, if any. A maxSize of 0
// means DefaultMaxSize.
func Unwrap(name string, data []byte, maxSize int64) (*Source, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	kind, _ := filetype.Match(data)
	switch kind {
	case matchers.TypeGz:
		return decompress(name, Gzip, data, maxSize, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) })
	case matchers.TypeBz2:
		return decompress(name, Bzip2, data, maxSize, func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil })
	case matchers.TypeXz:
		return decompress(name, Xz, data, maxSize, func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) })
	case matchers.TypeZip:
		return unzip(data, maxSize)
	default:
		return &Source{Name: name, Compression: None, Data: data}, nil
	}
}

func decompress(name string, c Compression, data []byte, maxSize int64, newReader func(io.Reader) (io.Reader, error)) (*Source, error) {
	r, err := newReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapErr(c, err)
	}
	out, err := readLimited(r, c, maxSize)
	if err != nil {
		return nil, err
	}
	return &Source{Name: name, Compression: c, Data: out}, nil
}

// unzip accepts only archives holding a single file.
func unzip(data []byte, maxSize int64) (*Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, wrapErr(Zip, err)
	}
	if len(zr.File) != 1 {
		return nil, types.Unsupported(types.FormatUnknown, "zip archive holds %d files, want exactly one", len(zr.File))
	}

	entry := zr.File[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, wrapErr(Zip, err)
	}
	defer rc.Close() //nolint:errcheck // Read-only

	out, err := readLimited(rc, Zip, maxSize)
	if err != nil {
		return nil, err
	}
	return &Source{Name: entry.Name, Compression: Zip, Data: out}, nil
}

func readLimited(r io.Reader, c Compression, maxSize int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, wrapErr(c, err)
	}
	if n > maxSize {
		return nil, types.Unsupported(types.FormatUnknown, "%s data expands past %d bytes", c, maxSize)
	}
	return buf.Bytes(), nil
}

// wrapErr reports a broken container as invalid data.
func wrapErr(c Compression, err error) error {
	return &types.Error{Kind: types.KindInvalidData, Reason: fmt.Sprintf("%s stream", c), Err: err}
}
