package types

import "strings"

// ColFmt is a color format: it determines both the color type and the
// order of the channels inside a pixel.
type ColFmt int

const (
	// ColFmtAuto means "whatever the source has". As a read target it keeps
	// the decoded layout; it is never a valid description of a buffer.
	ColFmtAuto ColFmt = iota
	// ColFmtY is 8-bit luminance.
	ColFmtY
	// ColFmtYA is luminance followed by alpha.
	ColFmtYA
	// ColFmtAY is alpha followed by luminance.
	ColFmtAY
	// ColFmtRGB is red, green, blue.
	ColFmtRGB
	// ColFmtRGBA is red, green, blue, alpha.
	ColFmtRGBA
	// ColFmtBGR is blue, green, red.
	ColFmtBGR
	// ColFmtBGRA is blue, green, red, alpha.
	ColFmtBGRA
	// ColFmtARGB is alpha, red, green, blue.
	ColFmtARGB
	// ColFmtABGR is alpha, blue, green, red.
	ColFmtABGR
)

// ColFmts lists every concrete color format.
func ColFmts() []ColFmt {
	return []ColFmt{
		ColFmtY, ColFmtYA, ColFmtAY,
		ColFmtRGB, ColFmtRGBA, ColFmtBGR, ColFmtBGRA, ColFmtARGB, ColFmtABGR,
	}
}

// BytesPerPixel returns the pixel size in bytes, or 0 for ColFmtAuto.
func (c ColFmt) BytesPerPixel() int {
	switch c {
	case ColFmtY:
		return 1
	case ColFmtYA, ColFmtAY:
		return 2
	case ColFmtRGB, ColFmtBGR:
		return 3
	case ColFmtRGBA, ColFmtBGRA, ColFmtARGB, ColFmtABGR:
		return 4
	default:
		return 0
	}
}

// ColorType returns the category of the color format.
func (c ColFmt) ColorType() ColType {
	switch c {
	case ColFmtY:
		return ColTypeGray
	case ColFmtYA, ColFmtAY:
		return ColTypeGrayAlpha
	case ColFmtRGB, ColFmtBGR:
		return ColTypeColor
	case ColFmtRGBA, ColFmtBGRA, ColFmtARGB, ColFmtABGR:
		return ColTypeColorAlpha
	default:
		return ColTypeAuto
	}
}

// HasAlpha reports whether the format carries an alpha channel.
func (c ColFmt) HasAlpha() bool {
	return c.ColorType().HasAlpha()
}

// Valid reports whether c names a concrete channel layout.
func (c ColFmt) Valid() bool {
	return c.BytesPerPixel() != 0
}

// String returns the channel layout name ("RGBA", "Y", ...).
func (c ColFmt) String() string {
	switch c {
	case ColFmtAuto:
		return "Auto"
	case ColFmtY:
		return "Y"
	case ColFmtYA:
		return "YA"
	case ColFmtAY:
		return "AY"
	case ColFmtRGB:
		return "RGB"
	case ColFmtRGBA:
		return "RGBA"
	case ColFmtBGR:
		return "BGR"
	case ColFmtBGRA:
		return "BGRA"
	case ColFmtARGB:
		return "ARGB"
	case ColFmtABGR:
		return "ABGR"
	default:
		return "Invalid"
	}
}

// ParseColFmt is the inverse of ColFmt.String. It is case-insensitive and
// returns false for unknown names.
func ParseColFmt(s string) (ColFmt, bool) {
	for _, c := range append([]ColFmt{ColFmtAuto}, ColFmts()...) {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	return ColFmtAuto, false
}

// ColType is a color type: a category of color formats that ignores
// channel order.
type ColType int

const (
	// ColTypeAuto lets the encoder pick the type of the source data.
	ColTypeAuto ColType = iota
	// ColTypeGray is luminance only.
	ColTypeGray
	// ColTypeGrayAlpha is luminance with alpha.
	ColTypeGrayAlpha
	// ColTypeColor is three color channels.
	ColTypeColor
	// ColTypeColorAlpha is three color channels with alpha.
	ColTypeColorAlpha
)

// HasAlpha reports whether the color type carries an alpha channel.
func (t ColType) HasAlpha() bool {
	return t == ColTypeGrayAlpha || t == ColTypeColorAlpha
}

// String returns the color type name.
func (t ColType) String() string {
	switch t {
	case ColTypeAuto:
		return "Auto"
	case ColTypeGray:
		return "Gray"
	case ColTypeGrayAlpha:
		return "GrayAlpha"
	case ColTypeColor:
		return "Color"
	case ColTypeColorAlpha:
		return "ColorAlpha"
	default:
		return "Invalid"
	}
}

// ParseColType is the inverse of ColType.String, case-insensitive.
func ParseColType(s string) (ColType, bool) {
	for _, t := range []ColType{ColTypeAuto, ColTypeGray, ColTypeGrayAlpha, ColTypeColor, ColTypeColorAlpha} {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return ColTypeAuto, false
}
