package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/simonhull/imagefmt"
	"github.com/simonhull/imagefmt/internal/source"
)

func cmdInfo(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	mean := fs.Bool("mean", false, "also decode the pixels and print the mean color")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(fs.Output(), "Usage: imagefmt info [-mean] FILE...")
		return errUsage
	}

	var failed int
	for _, path := range fs.Args() {
		if err := printInfo(stdout, path, *mean, logger); err != nil {
			logFailure(logger, "info", err, "path", path)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func printInfo(w io.Writer, path string, mean bool, logger *slog.Logger) error {
	src, err := source.Open(path, source.DefaultMaxSize)
	if err != nil {
		return err
	}
	r := src.Reader()

	format, err := imagefmt.DetectFormat(r)
	if err != nil {
		return err
	}
	info, err := imagefmt.ReadInfoFrom(r)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%s: %s %s", path, format, info)
	if src.Compression != source.None {
		line += fmt.Sprintf(" (%s)", src.Compression)
	}

	if mean {
		img, err := imagefmt.ReadFrom(src.Reader(), imagefmt.ColFmtRGB, imagefmt.WithLogger(logger))
		if err != nil {
			return err
		}
		line += " mean " + meanColor(img).Hex()
	}

	_, err = fmt.Fprintln(w, line)
	return err
}

// meanColor averages an RGB image.
func meanColor(img *imagefmt.Image) colorful.Color {
	var sum [3]uint64
	for i := 0; i < len(img.Buf); i += 3 {
		sum[0] += uint64(img.Buf[i])
		sum[1] += uint64(img.Buf[i+1])
		sum[2] += uint64(img.Buf[i+2])
	}
	n := float64(img.W*img.H) * 255
	return colorful.Color{R: float64(sum[0]) / n, G: float64(sum[1]) / n, B: float64(sum[2]) / n}
}
