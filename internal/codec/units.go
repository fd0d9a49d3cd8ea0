package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/microtools/micro-tools/internal/model"
)

// ErrInvalidDimension is returned for sizes that are not positive or too large
var ErrInvalidDimension = errors.New("invalid dimension")

// Geometry limits
const (
	DefaultDPI         = 96.0 // CSS reference pixel density
	MaxDimension       = 16384
	CentimetresPerInch = 2.54
)

// ToPixels converts a dimension to a whole number of pixels at dpi
func ToPixels(d model.Dimension, dpi float64) (int, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	var px float64
	switch d.Unit {
	case model.UnitPixel, "":
		px = d.Value
	case model.UnitCentimeter:
		px = d.Value / CentimetresPerInch * dpi
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidDimension, d.Unit)
	}

	if math.IsNaN(px) || math.IsInf(px, 0) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDimension, d)
	}
	n := int(math.Round(px))
	if n < 1 {
		return 0, fmt.Errorf("%w: %s is less than one pixel", ErrInvalidDimension, d)
	}
	if n > MaxDimension {
		return 0, fmt.Errorf("%w: %s exceeds %d pixels", ErrInvalidDimension, d, MaxDimension)
	}
	return n, nil
}

// ResolveGeometry converts both dimensions to pixels. The geometry's own DPI
// wins over fallbackDPI.
func ResolveGeometry(g model.Geometry, fallbackDPI float64) (width, height int, err error) {
	dpi := g.DPI
	if dpi <= 0 {
		dpi = fallbackDPI
	}
	width, err = ToPixels(g.Width, dpi)
	if err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	height, err = ToPixels(g.Height, dpi)
	if err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	return width, height, nil
}
