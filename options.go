package imagefmt

import "log/slog"

// ReadOption configures behavior when decoding images.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	img, err := imagefmt.Read("upload.png", imagefmt.ColFmtRGBA,
//	    imagefmt.WithMaxPixels(4096*4096),
//	    imagefmt.WithLogger(logger),
//	)
type ReadOption func(*readOptions)

// readOptions holds configuration for decoding.
type readOptions struct {
	logger    *slog.Logger
	maxPixels int64 // Largest W*H accepted (0 = no limit)
}

// discardLogger is the default for both reads and writes.
var discardLogger = slog.New(slog.DiscardHandler)

// defaultReadOptions returns the default configuration.
func defaultReadOptions() *readOptions {
	return &readOptions{
		logger:    discardLogger,
		maxPixels: 0, // No limit
	}
}

func applyReadOptions(opts []ReadOption) *readOptions {
	options := defaultReadOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithLogger sends debug output (detected format, chosen codec) to l.
//
// By default nothing is logged. A nil logger restores the default.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	img, err := imagefmt.Read("photo.jpg", imagefmt.ColFmtAuto, imagefmt.WithLogger(logger))
func WithLogger(l *slog.Logger) ReadOption {
	return func(o *readOptions) {
		o.logger = orDiscard(l)
	}
}

// WithMaxPixels rejects images whose header declares more than n pixels.
//
// The check happens before any pixel memory is allocated, which protects
// services decoding untrusted uploads from decompression bombs. Oversized
// images fail with an ErrUnsupported error.
//
// Default is 0 (no limit beyond the package's hard cap of 2^29 pixels).
//
// Example:
//
//	// Limit to 64 megapixels
//	img, err := imagefmt.Read(path, imagefmt.ColFmtRGB, imagefmt.WithMaxPixels(64<<20))
func WithMaxPixels(n int64) ReadOption {
	return func(o *readOptions) {
		o.maxPixels = n
	}
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger
	}
	return l
}
