package types

import "testing"

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"photo.png", FormatPNG},
		{"PHOTO.PNG", FormatPNG},
		{"scan.jpg", FormatJPEG},
		{"scan.JPeG", FormatJPEG},
		{"sprite.tga", FormatTGA},
		{"/tmp/dir.bmp/icon.bmp", FormatBMP},
		{"legacy.dib", FormatBMP},
		{"archive.png.gz", FormatUnknown},
		{"noext", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormats_DetectionOrder(t *testing.T) {
	want := []Format{FormatPNG, FormatJPEG, FormatBMP, FormatTGA}
	got := Formats()
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFormat_String(t *testing.T) {
	for f, want := range map[Format]string{
		FormatUnknown: "Unknown",
		FormatPNG:     "PNG",
		FormatJPEG:    "JPEG",
		FormatTGA:     "TGA",
		FormatBMP:     "BMP",
		Format(99):    "Unknown",
	} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", int(f), got, want)
		}
	}
}

func TestFormat_Extensions(t *testing.T) {
	for _, f := range Formats() {
		exts := f.Extensions()
		if len(exts) == 0 {
			t.Errorf("%v has no extensions", f)
		}
		for _, e := range exts {
			if got := FormatFromPath("x" + e); got != f {
				t.Errorf("FormatFromPath(%q) = %v, want %v", "x"+e, got, f)
			}
		}
	}
	if FormatUnknown.Extensions() != nil {
		t.Error("FormatUnknown should have no extensions")
	}
}
