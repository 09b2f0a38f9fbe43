package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/simonhull/imagefmt"
)

func cmdConvert(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	colfmt := fs.String("colfmt", "auto", "color format to decode to before writing (rgba, bgr, y, ...)")
	typ := fs.String("type", "auto", "color type to store: auto, gray, grayalpha, color, coloralpha")
	level := fs.Int("level", -1, "PNG compression level (-1 default, 0-9)")
	rle := fs.Bool("rle", true, "run-length encode TGA output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(fs.Output(), "Usage: imagefmt convert [flags] IN OUT")
		return errUsage
	}

	req, ok := imagefmt.ParseColFmt(*colfmt)
	if !ok {
		return fmt.Errorf("unknown color format %q", *colfmt)
	}
	tgt, err := parseType(*typ)
	if err != nil {
		return err
	}

	in, out := fs.Arg(0), fs.Arg(1)
	img, err := load(in, req, logger)
	if err != nil {
		return err
	}

	err = imagefmt.Write(out, img, tgt,
		imagefmt.WithWriteLogger(logger),
		imagefmt.WithCompressionLevel(*level),
		imagefmt.WithRLE(*rle),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	fmt.Fprintf(stdout, "%s -> %s (%dx%d %s)\n", in, out, img.W, img.H, img.Fmt)
	return nil
}

func cmdRegion(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("region", flag.ContinueOnError)
	var rgn imagefmt.Region
	fs.IntVar(&rgn.X, "x", 0, "left edge")
	fs.IntVar(&rgn.Y, "y", 0, "top edge")
	fs.IntVar(&rgn.W, "w", 0, "width (required)")
	fs.IntVar(&rgn.H, "h", 0, "height (required)")
	typ := fs.String("type", "auto", "color type to store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 || rgn.Empty() {
		fmt.Fprintln(fs.Output(), "Usage: imagefmt region -x X -y Y -w W -h H [-type TYPE] IN OUT")
		return errUsage
	}
	tgt, err := parseType(*typ)
	if err != nil {
		return err
	}

	in, out := fs.Arg(0), fs.Arg(1)
	img, err := load(in, imagefmt.ColFmtAuto, logger)
	if err != nil {
		return err
	}
	if err := imagefmt.WriteRegion(out, img, rgn, tgt, imagefmt.WithWriteLogger(logger)); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	fmt.Fprintf(stdout, "%s %s -> %s\n", in, rgn, out)
	return nil
}
