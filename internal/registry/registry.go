// Package registry manages the format-specific codecs for image file types.
package registry

import (
	"io"

	filetype "gopkg.in/h2non/filetype.v1"

	"github.com/simonhull/imagefmt/internal/binary"
	"github.com/simonhull/imagefmt/internal/types"
)

// Decoder is the interface all format decoders implement.
type Decoder interface {
	// Detect reports whether r starts with this format's signature.
	// It must leave r at the position it started from.
	Detect(r io.ReadSeeker) bool

	// ReadInfo reads the header only, without allocating pixel data.
	ReadInfo(r io.ReadSeeker) (types.Info, error)

	// Read decodes the image and converts it to req (ColFmtAuto keeps the
	// decoded layout).
	Read(r io.ReadSeeker, req types.ColFmt, opts types.DecodeOptions) (*types.Image, error)
}

// Encoder is the interface format encoders implement.
type Encoder interface {
	// Write encodes the pixels of src inside rgn as color type tgt.
	Write(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, opts types.EncodeOptions) error
}

// ChunkReader is an optional interface for decoders that can return
// extension chunks alongside the image.
type ChunkReader interface {
	// ReadChunks decodes the image and collects the chunks whose names are
	// listed in names.
	ReadChunks(r io.ReadSeeker, req types.ColFmt, names []string, opts types.DecodeOptions) (*types.Image, []types.ExtChunk, error)
}

// ChunkWriter is an optional interface for encoders that can embed
// extension chunks.
type ChunkWriter interface {
	// WriteChunks is Write with extra chunks placed before the pixel data.
	WriteChunks(w io.Writer, src *types.Image, rgn types.Region, tgt types.ColType, chunks []types.ExtChunk, opts types.EncodeOptions) error
}

// decoders maps formats to their decoders.
var decoders = make(map[types.Format]Decoder)

// encoders maps formats to their encoders.
var encoders = make(map[types.Format]Encoder)

// Register registers a decoder for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, dec Decoder) {
	decoders[format] = dec
}

// Get returns the decoder for a given format.
// Returns nil if no decoder is registered for the format.
func Get(format types.Format) Decoder {
	return decoders[format]
}

// RegisterWriter registers an encoder for a format.
// This is called by format packages during initialization (init functions).
func RegisterWriter(format types.Format, enc Encoder) {
	encoders[format] = enc
}

// GetWriter returns the encoder for a given format.
// Returns nil if no encoder is registered for the format.
func GetWriter(format types.Format) Encoder {
	return encoders[format]
}

// sniffLen is enough for filetype to recognize every type it knows.
const sniffLen = 262

// Detect asks every registered decoder, in types.Formats() order, whether
// it recognizes r. The stream position is left unchanged.
//
// When nothing matches the error is KindUnsupported; if the prefix is a
// file type known to filetype (GIF, WebP, TIFF, ...) the reason names it.
func Detect(r io.ReadSeeker) (types.Format, error) {
	for _, f := range types.Formats() {
		dec := decoders[f]
		if dec == nil {
			continue
		}
		if dec.Detect(r) {
			return f, nil
		}
	}

	head, err := binary.Sniff(r, sniffLen)
	if err != nil {
		return types.FormatUnknown, types.IOError(types.FormatUnknown, "format signature", err)
	}
	if len(head) == 0 {
		return types.FormatUnknown, types.Unsupported(types.FormatUnknown, "empty stream")
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return types.FormatUnknown, types.Unsupported(types.FormatUnknown,
			"%s (%s) is not a supported image format", kind.Extension, kind.MIME.Value)
	}
	return types.FormatUnknown, types.Unsupported(types.FormatUnknown, "unrecognized image signature")
}
