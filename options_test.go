package imagefmt

import (
	"log/slog"
	"testing"
)

func TestReadOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := defaultReadOptions()

		if opts.maxPixels != 0 {
			t.Errorf("expected no pixel limit, got %d", opts.maxPixels)
		}
		if opts.logger != discardLogger {
			t.Error("expected discard logger")
		}
	})

	t.Run("WithMaxPixels", func(t *testing.T) {
		opts := applyReadOptions([]ReadOption{WithMaxPixels(1 << 20)})

		if opts.maxPixels != 1<<20 {
			t.Errorf("expected maxPixels %d, got %d", 1<<20, opts.maxPixels)
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		l := slog.New(slog.DiscardHandler)
		if opts := applyReadOptions([]ReadOption{WithLogger(l)}); opts.logger != l {
			t.Error("logger not applied")
		}
		if opts := applyReadOptions([]ReadOption{WithLogger(nil)}); opts.logger != discardLogger {
			t.Error("nil logger should restore the default")
		}
	})
}

func TestWriteOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := defaultWriteOptions()

		if opts.level != -1 {
			t.Errorf("expected level -1, got %d", opts.level)
		}
		if !opts.rle {
			t.Error("expected RLE to be on")
		}
		if opts.backupSuffix != "" {
			t.Errorf("expected empty backupSuffix, got %q", opts.backupSuffix)
		}
		if len(opts.chunks) != 0 {
			t.Errorf("expected no chunks, got %d", len(opts.chunks))
		}
	})

	t.Run("WithBackup", func(t *testing.T) {
		opts := defaultWriteOptions()
		WithBackup(".bak")(opts)

		if opts.backupSuffix != ".bak" {
			t.Errorf("expected backupSuffix %q, got %q", ".bak", opts.backupSuffix)
		}
	})

	t.Run("encodeOptions", func(t *testing.T) {
		opts := applyWriteOptions([]WriteOption{WithCompressionLevel(9), WithRLE(false)})
		enc := opts.encodeOptions()

		if enc.CompressionLevel != 9 || enc.RLE {
			t.Errorf("encodeOptions() = %+v", enc)
		}
	})

	t.Run("WithChunks accumulates", func(t *testing.T) {
		a, _ := NewExtChunk("tEXt", nil)
		b, _ := NewExtChunk("zTXt", nil)
		opts := applyWriteOptions([]WriteOption{WithChunks(a), WithChunks(b)})

		if len(opts.chunks) != 2 || opts.chunks[1].NameString() != "zTXt" {
			t.Errorf("chunks = %+v", opts.chunks)
		}
	})
}
