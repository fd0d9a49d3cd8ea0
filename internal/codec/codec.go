package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers WebP with image.Decode

	"github.com/microtools/micro-tools/internal/model"
)

// Errors returned by the codec
var (
	ErrEmptyInput        = errors.New("empty input file")
	ErrUnsupportedImage  = errors.New("unsupported or corrupt image")
	ErrUnsupportedTarget = errors.New("unsupported target format")
)

// Encoding defaults
const (
	DefaultJPEGQuality = 92
	MinJPEGQuality     = 1
	MaxJPEGQuality     = 100

	// MaxDecodePixels bounds the decoded size of one input, about 400 MB as RGBA
	MaxDecodePixels = 100_000_000
)

// PNGCompression selects the zlib effort for PNG output
type PNGCompression string

const (
	PNGCompressionDefault PNGCompression = "default"
	PNGCompressionSpeed   PNGCompression = "speed"
	PNGCompressionBest    PNGCompression = "best"
	PNGCompressionNone    PNGCompression = "none"
)

// Level maps the setting to the encoder level
func (c PNGCompression) Level() png.CompressionLevel {
	switch c {
	case PNGCompressionSpeed:
		return png.BestSpeed
	case PNGCompressionBest:
		return png.BestCompression
	case PNGCompressionNone:
		return png.NoCompression
	default:
		return png.DefaultCompression
	}
}

// Options tune encoding
type Options struct {
	JPEGQuality    int
	PNGCompression PNGCompression
	Background     color.Color // fill behind transparent pixels for JPEG, white if nil
	DPI            float64     // default DPI for non-pixel geometry, DefaultDPI if zero
}

// DefaultOptions returns the options used when settings are absent
func DefaultOptions() Options {
	return Options{
		JPEGQuality:    DefaultJPEGQuality,
		PNGCompression: PNGCompressionDefault,
		Background:     color.White,
		DPI:            DefaultDPI,
	}
}

// WithDefaults fills every zero field from DefaultOptions
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.JPEGQuality == 0 {
		o.JPEGQuality = d.JPEGQuality
	}
	if o.PNGCompression == "" {
		o.PNGCompression = d.PNGCompression
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	if o.DPI == 0 {
		o.DPI = d.DPI
	}
	return o
}

// ClampQuality brings q into the valid JPEG range; zero selects the default
func ClampQuality(q int) int {
	if q == 0 {
		return DefaultJPEGQuality
	}
	if q < MinJPEGQuality {
		return MinJPEGQuality
	}
	if q > MaxJPEGQuality {
		return MaxJPEGQuality
	}
	return q
}

// Sniff identifies the image format from magic bytes
func Sniff(data []byte) (model.Format, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return model.FormatPNG, true
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return model.FormatJPEG, true
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return model.FormatWebP, true
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return model.FormatGIF, true
	case bytes.HasPrefix(data, []byte("BM")):
		return model.FormatBMP, true
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return model.FormatTIFF, true
	default:
		return "", false
	}
}

// Decode parses data into an image, applying EXIF orientation, and reports the source format
func Decode(data []byte) (image.Image, model.Format, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyInput
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	format, err := model.ParseFormat(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	// The header is checked before decoding allocates the pixels
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension || cfg.Width*cfg.Height > MaxDecodePixels {
		return nil, format, fmt.Errorf("%w: %dx%d is too large", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, format, nil
}

// Encode writes img to w in the target format
func Encode(w io.Writer, img image.Image, target model.Format, opts Options) error {
	switch target {
	case model.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(opts.PNGCompression.Level()))
	case model.FormatJPEG:
		bg := opts.Background
		if bg == nil {
			bg = color.White
		}
		return imaging.Encode(w, Flatten(img, bg), imaging.JPEG, imaging.JPEGQuality(ClampQuality(opts.JPEGQuality)))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}
}

// EncodeBytes is Encode into a fresh buffer
func EncodeBytes(img image.Image, target model.Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, target, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Flatten composites img over a solid background, dropping transparency.
// The result is anchored at the origin.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Resize stretches img to exactly width x height; aspect ratio is not kept
func Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// FormatFromName guesses the format from a file name's extension
func FormatFromName(name string) (model.Format, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", false
	}
	f, err := model.ParseFormat(name[idx+1:])
	if err != nil {
		return "", false
	}
	return f, true
}
