// Command imagefmt inspects and converts PNG, JPEG, TGA and BMP images.
//
// Usage:
//
//	imagefmt [-v] info [-mean] FILE...
//	imagefmt [-v] convert [-colfmt FMT] [-type TYPE] [-level N] [-rle=false] IN OUT
//	imagefmt [-v] region -x X -y Y -w W -h H [-type TYPE] IN OUT
//
// Inputs may be wrapped in gzip, bzip2, xz or single-file zip containers.
// The output format follows the extension of OUT. The exit status is 2 for
// bad arguments, including a region outside the image, and 1 for other
// failures.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/simonhull/imagefmt"
	"github.com/simonhull/imagefmt/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("imagefmt", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbose := global.Bool("v", false, "log debug output to stderr")
	global.Usage = func() {
		fmt.Fprintln(stderr, "Usage: imagefmt [-v] <info|convert|region> [flags] args...")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	cmds := map[string]func([]string, io.Writer, *slog.Logger) error{
		"info":    cmdInfo,
		"convert": cmdConvert,
		"region":  cmdRegion,
	}
	cmd, ok := cmds[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "imagefmt: unknown command %q\n", rest[0])
		global.Usage()
		return 2
	}

	if err := cmd(rest[1:], stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			return 2
		}
		logFailure(logger, rest[0]+" failed", err)
		return exitCode(err)
	}
	return 0
}

var errUsage = errors.New("usage")

// logFailure logs err at Error level, tagged with its kind when it has one.
func logFailure(logger *slog.Logger, msg string, err error, args ...any) {
	if kind := imagefmt.KindOf(err); kind != 0 {
		args = append(args, "kind", kind)
	}
	logger.Error(msg, append(args, "error", err)...)
}

// exitCode is 2 when the arguments were at fault, 1 otherwise.
func exitCode(err error) int {
	if imagefmt.KindOf(err) == imagefmt.KindInvalidArg {
		return 2
	}
	return 1
}

// load reads an input file, unwrapping any compression container.
func load(path string, req imagefmt.ColFmt, logger *slog.Logger) (*imagefmt.Image, error) {
	src, err := source.Open(path, source.DefaultMaxSize)
	if err != nil {
		return nil, err
	}
	if src.Compression != source.None {
		logger.Debug("unwrapped input", "path", path, "compression", src.Compression, "entry", src.Name, "size", len(src.Data))
	}
	img, err := imagefmt.ReadFrom(src.Reader(), req, imagefmt.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func parseType(s string) (imagefmt.ColType, error) {
	t, ok := imagefmt.ParseColType(s)
	if !ok {
		return 0, fmt.Errorf("unknown color type %q (want auto, gray, grayalpha, color or coloralpha)", s)
	}
	return t, nil
}
