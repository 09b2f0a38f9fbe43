package imagefmt

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

// Write encodes img to a file, choosing the format from the file
// extension (".png", ".tga", ".bmp", ...). An unknown extension fails with
// ErrInvalidArg; JPEG fails with ErrUnsupported.
//
// tgt selects the stored color type; ColTypeAuto keeps the type of img.
//
// The file is written atomically: the image goes to a temporary file in the
// same directory, which is synced and then renamed over path. If any step
// fails, path is left untouched and the temporary file removed.
//
// Example:
//
//	err := imagefmt.Write("thumb.png", img, imagefmt.ColTypeGray)
func Write(path string, img *Image, tgt ColType, opts ...WriteOption) error {
	if img == nil {
		return types.InvalidArg(FormatUnknown, "nil image")
	}
	return WriteRegion(path, img, img.Bounds(), tgt, opts...)
}

// WriteRegion is Write limited to the pixels of img inside rgn. A region
// covering the whole image produces the same bytes as Write.
//
// Example:
//
//	// Top-left 64x64 tile
//	err := imagefmt.WriteRegion("tile.bmp", img, imagefmt.Region{W: 64, H: 64}, imagefmt.ColTypeAuto)
func WriteRegion(path string, img *Image, rgn Region, tgt ColType, opts ...WriteOption) error {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return types.InvalidArg(FormatUnknown, "cannot tell image format from file name %q", filepath.Base(path))
	}
	enc, err := encoderFor(format)
	if err != nil {
		return err
	}
	options := applyWriteOptions(opts)

	return writeFile(path, options, func(w io.Writer) error {
		return encode(w, format, enc, img, rgn, tgt, options)
	})
}

// WriteTo encodes img to w in the given format.
func WriteTo(w io.Writer, format Format, img *Image, tgt ColType, opts ...WriteOption) error {
	if img == nil {
		return types.InvalidArg(format, "nil image")
	}
	return WriteRegionTo(w, format, img, img.Bounds(), tgt, opts...)
}

// WriteRegionTo encodes the pixels of img inside rgn to w.
func WriteRegionTo(w io.Writer, format Format, img *Image, rgn Region, tgt ColType, opts ...WriteOption) error {
	enc, err := encoderFor(format)
	if err != nil {
		return err
	}
	return encode(w, format, enc, img, rgn, tgt, applyWriteOptions(opts))
}

func encoderFor(format Format) (registry.Encoder, error) {
	if format == FormatJPEG {
		return nil, types.Unsupported(format, "encoding is not implemented")
	}
	enc := registry.GetWriter(format)
	if enc == nil {
		return nil, types.InvalidArg(format, "no encoder for format %s", format)
	}
	return enc, nil
}

// encode runs enc through a buffered writer.
func encode(w io.Writer, format Format, enc registry.Encoder, img *Image, rgn Region, tgt ColType, options *writeOptions) error {
	bw := bufio.NewWriter(w)

	var err error
	if len(options.chunks) > 0 {
		cw, ok := enc.(registry.ChunkWriter)
		if !ok {
			return types.Unsupported(format, "extension chunks can only be written to PNG")
		}
		err = cw.WriteChunks(bw, img, rgn, tgt, options.chunks, options.encodeOptions())
	} else {
		err = enc.Write(bw, img, rgn, tgt, options.encodeOptions())
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return types.IOError(format, "flush", err)
	}

	options.logger.Debug("encoded image",
		"format", format, "region", rgn, "type", tgt)
	return nil
}

// writeFile replaces path with what write produces, via a temporary file
// in the same directory.
func writeFile(path string, options *writeOptions, write func(io.Writer) error) error { //nolint:gocyclo // Atomic file operations require sequential steps
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".imagefmt-*.tmp")
	if err != nil {
		return types.IOError(FormatUnknown, "create temp file", err)
	}
	tempPath := tempFile.Name()

	// Ensure cleanup on any error
	success := false
	defer func() {
		if success {
			return
		}
		_ = tempFile.Close() //nolint:errcheck // May already be closed
		if err := os.Remove(tempPath); err != nil {
			options.logger.Warn("remove temp file", "path", tempPath, "error", err)
		}
	}()

	if err := write(tempFile); err != nil {
		return err
	}

	// Sync temp file (fsync) to ensure data is on disk
	if err := tempFile.Sync(); err != nil {
		return types.IOError(FormatUnknown, "sync temp file", err)
	}
	if err := tempFile.Close(); err != nil {
		return types.IOError(FormatUnknown, "close temp file", err)
	}

	// Rename the original to the backup path before replacing it
	if options.backupSuffix != "" {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+options.backupSuffix); err != nil {
				return types.IOError(FormatUnknown, "create backup", err)
			}
		}
	}

	if err := os.Rename(tempPath, path); err != nil {
		return types.IOError(FormatUnknown, fmt.Sprintf("rename to %s", filepath.Base(path)), err)
	}
	success = true

	options.logger.Debug("wrote file", slog.String("path", path))
	return nil
}
