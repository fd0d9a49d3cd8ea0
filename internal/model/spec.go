package model

import (
	"fmt"
	"strings"
)

// Format identifies an image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Output file extensions per encodable format
const (
	ExtensionPNG  = ".png"
	ExtensionJPEG = ".jpg"
)

// ParseFormat maps a user or file supplied format name to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unknown image format: %q", s)
	}
}

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// Encodable reports whether the app can write this format
func (f Format) Encodable() bool {
	return f == FormatPNG || f == FormatJPEG
}

// Extension returns the canonical output extension, or "" for formats the app does not write
func (f Format) Extension() string {
	switch f {
	case FormatPNG:
		return ExtensionPNG
	case FormatJPEG:
		return ExtensionJPEG
	default:
		return ""
	}
}

// MimeType returns the media type of the format
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case "":
		return ""
	default:
		return "image/" + string(f)
	}
}

// Unit is the unit a geometry dimension was entered in
type Unit string

const (
	UnitPixel      Unit = "px"
	UnitCentimeter Unit = "cm"
)

// ParseUnit maps a unit label to a Unit
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "px":
		return UnitPixel, nil
	case "cm":
		return UnitCentimeter, nil
	default:
		return "", fmt.Errorf("unknown unit: %q", s)
	}
}

// Dimension is a length as entered by the user
type Dimension struct {
	Value float64
	Unit  Unit
}

// Px is shorthand for a pixel dimension
func Px(v int) Dimension {
	return Dimension{Value: float64(v), Unit: UnitPixel}
}

// Cm is shorthand for a centimetre dimension
func Cm(v float64) Dimension {
	return Dimension{Value: v, Unit: UnitCentimeter}
}

// String formats the dimension as "500px" or "2.5cm"
func (d Dimension) String() string {
	return fmt.Sprintf("%g%s", d.Value, d.Unit)
}

// Geometry is the target size of a resize. DPI applies to non-pixel units;
// zero means the default.
type Geometry struct {
	Width  Dimension
	Height Dimension
	DPI    float64
}

// ConversionSpec describes what every file of one invocation is turned into
type ConversionSpec struct {
	Target   Format
	Quality  int       // JPEG quality 1-100, zero means default
	Geometry *Geometry // nil keeps the source size
}

// Resizes reports whether the spec changes image dimensions
func (s ConversionSpec) Resizes() bool {
	return s.Geometry != nil
}
