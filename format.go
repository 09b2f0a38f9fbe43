package imagefmt

import (
	"io"

	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

// Format is an alias to types.Format.
// Re-exporting from internal/types to maintain public API.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatPNG     = types.FormatPNG
	FormatJPEG    = types.FormatJPEG
	FormatTGA     = types.FormatTGA
	FormatBMP     = types.FormatBMP
)

// DetectFormat identifies the image format from the leading bytes of r.
//
// The stream is left at the position it started from. Returns an error of
// kind KindUnsupported when no codec recognizes the data; if the data is a
// known non-image or foreign image type (GIF, WebP, ZIP, ...) the error
// names it.
func DetectFormat(r io.ReadSeeker) (Format, error) {
	return registry.Detect(r)
}

// FormatFromPath maps a file name to a format by its extension.
// Returns FormatUnknown for missing or unrecognized extensions.
func FormatFromPath(path string) Format {
	return types.FormatFromPath(path)
}
