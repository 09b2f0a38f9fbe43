package types

import "testing"

func TestColFmt_Layout(t *testing.T) {
	tests := []struct {
		fmt   ColFmt
		bpp   int
		ct    ColType
		alpha bool
		name  string
	}{
		{ColFmtY, 1, ColTypeGray, false, "Y"},
		{ColFmtYA, 2, ColTypeGrayAlpha, true, "YA"},
		{ColFmtAY, 2, ColTypeGrayAlpha, true, "AY"},
		{ColFmtRGB, 3, ColTypeColor, false, "RGB"},
		{ColFmtBGR, 3, ColTypeColor, false, "BGR"},
		{ColFmtRGBA, 4, ColTypeColorAlpha, true, "RGBA"},
		{ColFmtBGRA, 4, ColTypeColorAlpha, true, "BGRA"},
		{ColFmtARGB, 4, ColTypeColorAlpha, true, "ARGB"},
		{ColFmtABGR, 4, ColTypeColorAlpha, true, "ABGR"},
		{ColFmtAuto, 0, ColTypeAuto, false, "Auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fmt.BytesPerPixel(); got != tt.bpp {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bpp)
			}
			if got := tt.fmt.ColorType(); got != tt.ct {
				t.Errorf("ColorType() = %v, want %v", got, tt.ct)
			}
			if got := tt.fmt.HasAlpha(); got != tt.alpha {
				t.Errorf("HasAlpha() = %v, want %v", got, tt.alpha)
			}
			if got := tt.fmt.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.fmt.Valid(); got != (tt.bpp > 0) {
				t.Errorf("Valid() = %v", got)
			}
		})
	}

	if ColFmt(42).Valid() || ColFmt(42).String() != "Invalid" {
		t.Error("out-of-range ColFmt should be invalid")
	}
}

func TestParseColFmt(t *testing.T) {
	for _, c := range append([]ColFmt{ColFmtAuto}, ColFmts()...) {
		got, ok := ParseColFmt(c.String())
		if !ok || got != c {
			t.Errorf("ParseColFmt(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if got, ok := ParseColFmt("bgra"); !ok || got != ColFmtBGRA {
		t.Errorf("ParseColFmt(\"bgra\") = %v, %v", got, ok)
	}
	if _, ok := ParseColFmt("CMYK"); ok {
		t.Error("ParseColFmt(\"CMYK\") should fail")
	}
}

func TestParseColType(t *testing.T) {
	tests := map[string]ColType{
		"auto":       ColTypeAuto,
		"Gray":       ColTypeGray,
		"grayalpha":  ColTypeGrayAlpha,
		"COLOR":      ColTypeColor,
		"ColorAlpha": ColTypeColorAlpha,
	}
	for s, want := range tests {
		got, ok := ParseColType(s)
		if !ok || got != want {
			t.Errorf("ParseColType(%q) = %v, %v, want %v", s, got, ok, want)
		}
	}
	if _, ok := ParseColType("indexed"); ok {
		t.Error("ParseColType(\"indexed\") should fail")
	}
}

func TestColType_HasAlpha(t *testing.T) {
	if ColTypeGray.HasAlpha() || ColTypeColor.HasAlpha() || ColTypeAuto.HasAlpha() {
		t.Error("types without alpha report alpha")
	}
	if !ColTypeGrayAlpha.HasAlpha() || !ColTypeColorAlpha.HasAlpha() {
		t.Error("alpha types do not report alpha")
	}
}
