package imagefmt

import (
	"log/slog"

	"github.com/simonhull/imagefmt/internal/types"
)

// WriteOption configures behavior when encoding images.
//
// Example:
//
//	err := imagefmt.Write("out.png", img, imagefmt.ColTypeAuto,
//	    imagefmt.WithCompressionLevel(9),
//	    imagefmt.WithBackup(".bak"),
//	)
type WriteOption func(*writeOptions)

// writeOptions holds configuration for encoding.
type writeOptions struct {
	logger       *slog.Logger
	level        int        // zlib level for PNG (-1 = default)
	rle          bool       // Run-length encode TGA
	chunks       []ExtChunk // Extra PNG chunks
	backupSuffix string     // Suffix for backup file (e.g., ".bak")
}

// defaultWriteOptions returns the default configuration for writing.
func defaultWriteOptions() *writeOptions {
	d := types.DefaultEncodeOptions()
	return &writeOptions{
		logger:       discardLogger,
		level:        d.CompressionLevel,
		rle:          d.RLE,
		chunks:       nil,
		backupSuffix: "",
	}
}

func applyWriteOptions(opts []WriteOption) *writeOptions {
	options := defaultWriteOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func (o *writeOptions) encodeOptions() types.EncodeOptions {
	return types.EncodeOptions{CompressionLevel: o.level, RLE: o.rle}
}

// WithWriteLogger sends debug output to l while writing, including
// failures to clean up temporary files.
func WithWriteLogger(l *slog.Logger) WriteOption {
	return func(o *writeOptions) {
		o.logger = orDiscard(l)
	}
}

// WithCompressionLevel sets the zlib level used for PNG pixel data.
//
// Levels run from 0 (store) to 9 (best); -1 selects the library default
// and -2 Huffman-only compression. Other formats ignore the setting.
// Out-of-range levels make the write fail with ErrInvalidArg.
func WithCompressionLevel(level int) WriteOption {
	return func(o *writeOptions) {
		o.level = level
	}
}

// WithRLE turns TGA run-length encoding on or off. It is on by default.
func WithRLE(enabled bool) WriteOption {
	return func(o *writeOptions) {
		o.rle = enabled
	}
}

// WithChunks embeds extension chunks in a PNG, between IHDR and the pixel
// data, in the given order.
//
// Chunk names must be four ASCII letters with the ancillary bit set (a
// lowercase first letter). Writing chunks to any other format fails with
// ErrUnsupported.
//
// Example:
//
//	text, _ := imagefmt.NewExtChunk("tEXt", []byte("Software\x00imagefmt"))
//	err := imagefmt.Write("out.png", img, imagefmt.ColTypeAuto, imagefmt.WithChunks(text))
func WithChunks(chunks ...ExtChunk) WriteOption {
	return func(o *writeOptions) {
		o.chunks = append(o.chunks, chunks...)
	}
}

// WithBackup keeps the previous file when Write replaces one.
//
// The existing file is renamed to its path plus suffix just before the new
// file takes its place. For example, WithBackup(".bak") turns "icon.png"
// into "icon.png.bak". An existing backup is overwritten. Ignored by
// WriteTo.
func WithBackup(suffix string) WriteOption {
	return func(o *writeOptions) {
		o.backupSuffix = suffix
	}
}
