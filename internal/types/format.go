package types

import (
	"path/filepath"
	"strings"
)

// Format represents a detected or requested image file format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota // Unknown
	// FormatPNG represents Portable Network Graphics files.
	FormatPNG // PNG
	// FormatJPEG represents baseline JPEG/JFIF files.
	FormatJPEG // JPEG
	// FormatTGA represents Truevision TGA files.
	FormatTGA // TGA
	// FormatBMP represents Windows bitmap files.
	FormatBMP // BMP
)

// String returns the short format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatTGA:
		return "TGA"
	case FormatBMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatPNG:
		return []string{".png"}
	case FormatJPEG:
		return []string{".jpg", ".jpeg", ".jpe", ".jfif"}
	case FormatTGA:
		return []string{".tga", ".icb", ".vda", ".vst"}
	case FormatBMP:
		return []string{".bmp", ".dib"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}

// Formats lists every concrete format in detection order.
func Formats() []Format {
	return []Format{FormatPNG, FormatJPEG, FormatBMP, FormatTGA}
}

// FormatFromPath maps a file name to a format using its extension.
//
// The comparison is case-insensitive. Returns FormatUnknown when the
// extension is missing or not recognized.
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return FormatUnknown
	}
	for _, f := range Formats() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return FormatUnknown
}
