package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
	"github.com/microtools/micro-tools/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyOutputDir          = "output_directory"
	KeyMaxParallel        = "max_parallel_conversions"
	KeyJPEGQuality        = "jpeg_quality"
	KeyPNGCompression     = "png_compression"
	KeyDPI                = "dpi"
	KeyCollisionPolicy    = "collision_policy"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyResizeWidth        = "resize_width"
	KeyResizeHeight       = "resize_height"
	KeyResizeUnit         = "resize_unit"
	KeyResizeFormat       = "resize_format"
)

// Default values
const (
	DefaultMaxParallel        = 4
	MaxParallelLimit          = 16
	DefaultPNGCompression     = codec.PNGCompressionDefault
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = true
	DefaultResizeWidth        = 500
	DefaultResizeHeight       = 500
	DefaultResizeUnit         = model.UnitPixel
	DefaultResizeFormat       = model.FormatJPEG
	MaxDPI                    = 2400
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetOutputDirectory returns the directory deliverables are saved to
func (s *Settings) GetOutputDirectory() string {
	dir := s.app.Preferences().String(KeyOutputDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(os.TempDir(), "micro-tools")
		}
		s.SetOutputDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetOutputDirectory sets the output directory
func (s *Settings) SetOutputDirectory(dir string) {
	s.app.Preferences().SetString(KeyOutputDir, dir)
}

// GetMaxParallel returns how many files convert at once
func (s *Settings) GetMaxParallel() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallel(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallel sets how many files convert at once
func (s *Settings) SetMaxParallel(count int) {
	if count < 1 {
		count = 1
	}
	if count > MaxParallelLimit {
		count = MaxParallelLimit
	}
	s.app.Preferences().SetInt(KeyMaxParallel, count)
}

// GetJPEGQuality returns the JPEG quality (1-100)
func (s *Settings) GetJPEGQuality() int {
	value := s.app.Preferences().Int(KeyJPEGQuality)
	if value <= 0 {
		s.SetJPEGQuality(codec.DefaultJPEGQuality)
		return codec.DefaultJPEGQuality
	}
	return value
}

// SetJPEGQuality sets the JPEG quality
func (s *Settings) SetJPEGQuality(quality int) {
	s.app.Preferences().SetInt(KeyJPEGQuality, codec.ClampQuality(quality))
}

// GetPNGCompression returns the PNG compression effort
func (s *Settings) GetPNGCompression() codec.PNGCompression {
	value := codec.PNGCompression(s.app.Preferences().String(KeyPNGCompression))
	for _, option := range s.GetPNGCompressionOptions() {
		if value == option {
			return value
		}
	}
	s.SetPNGCompression(DefaultPNGCompression)
	return DefaultPNGCompression
}

// SetPNGCompression sets the PNG compression effort
func (s *Settings) SetPNGCompression(c codec.PNGCompression) {
	s.app.Preferences().SetString(KeyPNGCompression, string(c))
}

// GetPNGCompressionOptions returns available PNG compression options
func (s *Settings) GetPNGCompressionOptions() []codec.PNGCompression {
	return []codec.PNGCompression{
		codec.PNGCompressionDefault,
		codec.PNGCompressionSpeed,
		codec.PNGCompressionBest,
		codec.PNGCompressionNone,
	}
}

// GetDPI returns the DPI used to turn centimetres into pixels
func (s *Settings) GetDPI() float64 {
	value := s.app.Preferences().Float(KeyDPI)
	if value <= 0 {
		s.SetDPI(codec.DefaultDPI)
		return codec.DefaultDPI
	}
	return value
}

// SetDPI sets the DPI
func (s *Settings) SetDPI(dpi float64) {
	if dpi <= 0 {
		dpi = codec.DefaultDPI
	}
	if dpi > MaxDPI {
		dpi = MaxDPI
	}
	s.app.Preferences().SetFloat(KeyDPI, dpi)
}

// GetCollisionPolicy returns how duplicate names inside a bundle are handled
func (s *Settings) GetCollisionPolicy() naming.CollisionPolicy {
	policy, err := naming.ParseCollisionPolicy(s.app.Preferences().String(KeyCollisionPolicy))
	if err != nil {
		s.SetCollisionPolicy(naming.DefaultCollisionPolicy)
		return naming.DefaultCollisionPolicy
	}
	return policy
}

// SetCollisionPolicy sets the collision policy
func (s *Settings) SetCollisionPolicy(policy naming.CollisionPolicy) {
	s.app.Preferences().SetString(KeyCollisionPolicy, string(policy))
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal saved results in the file manager
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal saved results
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetResizeGeometry returns the last geometry used by the resizer
func (s *Settings) GetResizeGeometry() model.Geometry {
	prefs := s.app.Preferences()
	unit, err := model.ParseUnit(prefs.String(KeyResizeUnit))
	if err != nil {
		unit = DefaultResizeUnit
	}
	width := prefs.FloatWithFallback(KeyResizeWidth, DefaultResizeWidth)
	height := prefs.FloatWithFallback(KeyResizeHeight, DefaultResizeHeight)
	if width <= 0 {
		width = DefaultResizeWidth
	}
	if height <= 0 {
		height = DefaultResizeHeight
	}
	return model.Geometry{
		Width:  model.Dimension{Value: width, Unit: unit},
		Height: model.Dimension{Value: height, Unit: unit},
		DPI:    s.GetDPI(),
	}
}

// SetResizeGeometry remembers the resizer geometry. Both sides share one unit.
func (s *Settings) SetResizeGeometry(g model.Geometry) {
	prefs := s.app.Preferences()
	prefs.SetFloat(KeyResizeWidth, g.Width.Value)
	prefs.SetFloat(KeyResizeHeight, g.Height.Value)
	prefs.SetString(KeyResizeUnit, string(g.Width.Unit))
}

// GetResizeFormat returns the output format of the resizer
func (s *Settings) GetResizeFormat() model.Format {
	format, err := model.ParseFormat(s.app.Preferences().String(KeyResizeFormat))
	if err != nil || !format.Encodable() {
		return DefaultResizeFormat
	}
	return format
}

// SetResizeFormat sets the output format of the resizer
func (s *Settings) SetResizeFormat(format model.Format) {
	s.app.Preferences().SetString(KeyResizeFormat, string(format))
}

// CodecOptions returns encoder options from the current settings
func (s *Settings) CodecOptions() codec.Options {
	opts := codec.DefaultOptions()
	opts.JPEGQuality = s.GetJPEGQuality()
	opts.PNGCompression = s.GetPNGCompression()
	opts.DPI = s.GetDPI()
	return opts
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
