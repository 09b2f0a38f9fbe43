package imagefmt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/imagefmt/internal/registry"
	"github.com/simonhull/imagefmt/internal/types"
)

// ReadInfo reads the dimensions and color type of an image file without
// decoding its pixels.
//
// Example:
//
//	info, err := imagefmt.ReadInfo("photo.jpg")
//	if err != nil {
//		return err
//	}
//	fmt.Println(info) // 1920x1080 Color
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, types.IOError(FormatUnknown, "open file", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	return ReadInfoFrom(f)
}

// ReadInfoFrom is ReadInfo on a stream.
//
// On failure r is moved back to where it started, so the caller can try
// something else with the same stream.
func ReadInfoFrom(r io.ReadSeeker) (Info, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Info{}, types.IOError(FormatUnknown, "seek", err)
	}

	dec, _, err := detect(r, discardLogger)
	if err != nil {
		return Info{}, err
	}
	info, err := dec.ReadInfo(r)
	if err != nil {
		_, _ = r.Seek(start, io.SeekStart) //nolint:errcheck // Already failing
		return Info{}, err
	}
	return info, nil
}

// Read decodes an image file, converting its pixels to req.
//
// ColFmtAuto keeps the source layout: Y, YA, RGB or RGBA depending on what
// the file holds.
//
// Example:
//
//	img, err := imagefmt.Read("sprite.tga", imagefmt.ColFmtRGBA)
//	if err != nil {
//		return err
//	}
//	// img.Buf holds img.W*img.H*4 bytes
func Read(path string, req ColFmt, opts ...ReadOption) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.IOError(FormatUnknown, "read file", err)
	}
	return ReadFrom(bytes.NewReader(data), req, opts...)
}

// ReadFrom decodes an image from a stream. The format is detected from the
// data, never from a name.
func ReadFrom(r io.ReadSeeker, req ColFmt, opts ...ReadOption) (*Image, error) {
	options := applyReadOptions(opts)

	dec, format, err := detect(r, options.logger)
	if err != nil {
		return nil, err
	}
	img, err := dec.Read(r, req, types.DecodeOptions{MaxPixels: options.maxPixels})
	if err != nil {
		return nil, err
	}
	options.logger.Debug("decoded image",
		"format", format, "width", img.W, "height", img.H, "colfmt", img.Fmt)
	return img, nil
}

// ReadChunks decodes a PNG and also returns its ancillary chunks whose
// names appear in names, in file order. Other formats fail with
// ErrUnsupported.
//
// Example:
//
//	img, chunks, err := imagefmt.ReadChunks(f, imagefmt.ColFmtAuto, []string{"tEXt", "iTXt"})
//	for _, c := range chunks {
//		fmt.Printf("%s: %q\n", c.NameString(), c.Data)
//	}
func ReadChunks(r io.ReadSeeker, req ColFmt, names []string, opts ...ReadOption) (*Image, []ExtChunk, error) {
	options := applyReadOptions(opts)

	dec, format, err := detect(r, options.logger)
	if err != nil {
		return nil, nil, err
	}
	cr, ok := dec.(registry.ChunkReader)
	if !ok {
		return nil, nil, types.Unsupported(format, "extension chunks are only available for PNG")
	}
	return cr.ReadChunks(r, req, names, types.DecodeOptions{MaxPixels: options.maxPixels})
}

// detect picks the decoder for the data in r.
func detect(r io.ReadSeeker, logger *slog.Logger) (registry.Decoder, Format, error) {
	format, err := registry.Detect(r)
	if err != nil {
		return nil, FormatUnknown, err
	}
	dec := registry.Get(format)
	if dec == nil {
		return nil, format, types.Internal(format, "no decoder registered")
	}
	logger.Debug("detected format", "format", format)
	return dec, format, nil
}

// ReadContext reads an image file with context support for cancellation.
//
// The context is checked before any I/O starts. Decoding itself is not
// interruptible.
func ReadContext(ctx context.Context, path string, req ColFmt, opts ...ReadOption) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Read(path, req, opts...)
}

// ReadMany decodes multiple image files concurrently.
//
// Files are decoded in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths. The first
// failure cancels the files not yet started and is returned with the
// offending path; no images are returned in that case.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	imgs, err := imagefmt.ReadMany(ctx, imagefmt.ColFmtRGBA, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
func ReadMany(ctx context.Context, req ColFmt, paths ...string) ([]*Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Image, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			img, err := ReadContext(ctx, path, req)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
