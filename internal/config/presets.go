package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
)

// Presets is a file of named conversion presets for the command line
type Presets struct {
	Defaults PresetDefaults    `yaml:"defaults"`
	Presets  map[string]Preset `yaml:"presets"`
}

// PresetDefaults apply to every run that loads the file
type PresetDefaults struct {
	OutputDir   string  `yaml:"output_dir"`
	MaxParallel int     `yaml:"max_parallel"`
	Collision   string  `yaml:"collision"`
	DPI         float64 `yaml:"dpi"`
}

// Preset is one named set of tool options
type Preset struct {
	Tool           string  `yaml:"tool"`
	Format         string  `yaml:"format"`
	Quality        int     `yaml:"quality"`
	PNGCompression string  `yaml:"png_compression"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Unit           string  `yaml:"unit"`
	DPI            float64 `yaml:"dpi"`
}

// LoadPresets reads and validates a presets file
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets parses and validates presets from YAML
func ParsePresets(data []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid presets: %w", err)
	}

	return &p, nil
}

// Validate checks every preset for values the converters cannot use
func (p *Presets) Validate() error {
	if p.Defaults.MaxParallel < 0 || p.Defaults.MaxParallel > MaxParallelLimit {
		return fmt.Errorf("defaults.max_parallel must be between 0 and %d", MaxParallelLimit)
	}
	if _, err := naming.ParseCollisionPolicy(p.Defaults.Collision); err != nil {
		return fmt.Errorf("defaults.collision: %w", err)
	}
	if p.Defaults.DPI < 0 || p.Defaults.DPI > MaxDPI {
		return fmt.Errorf("defaults.dpi must be between 0 and %d", MaxDPI)
	}

	for _, name := range p.Names() {
		if err := p.Presets[name].validate(); err != nil {
			return fmt.Errorf("presets.%s: %w", name, err)
		}
	}
	return nil
}

func (pr Preset) validate() error {
	if pr.Tool == "" {
		return fmt.Errorf("tool is required")
	}
	if pr.Format != "" {
		format, err := model.ParseFormat(pr.Format)
		if err != nil {
			return err
		}
		if !format.Encodable() {
			return fmt.Errorf("format %s cannot be written", format)
		}
	}
	if pr.Quality < 0 || pr.Quality > codec.MaxJPEGQuality {
		return fmt.Errorf("quality must be between 1 and %d", codec.MaxJPEGQuality)
	}
	if pr.PNGCompression != "" {
		switch codec.PNGCompression(pr.PNGCompression) {
		case codec.PNGCompressionDefault, codec.PNGCompressionSpeed, codec.PNGCompressionBest, codec.PNGCompressionNone:
		default:
			return fmt.Errorf("unknown png_compression: %q", pr.PNGCompression)
		}
	}
	if _, err := model.ParseUnit(pr.Unit); err != nil {
		return err
	}
	if pr.Width < 0 || pr.Height < 0 {
		return fmt.Errorf("width and height must not be negative")
	}
	if (pr.Width == 0) != (pr.Height == 0) {
		return fmt.Errorf("width and height must be set together")
	}
	if pr.DPI < 0 || pr.DPI > MaxDPI {
		return fmt.Errorf("dpi must be between 0 and %d", MaxDPI)
	}
	return nil
}

// Names returns preset names sorted
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.Presets))
	for name := range p.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a preset by name
func (p *Presets) Get(name string) (Preset, error) {
	preset, ok := p.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("preset not found: %s", name)
	}
	return preset, nil
}

// Geometry returns the preset's resize geometry, or nil if it does not resize
func (pr Preset) Geometry(fallbackDPI float64) *model.Geometry {
	if pr.Width == 0 || pr.Height == 0 {
		return nil
	}
	unit, _ := model.ParseUnit(pr.Unit)
	dpi := pr.DPI
	if dpi == 0 {
		dpi = fallbackDPI
	}
	return &model.Geometry{
		Width:  model.Dimension{Value: pr.Width, Unit: unit},
		Height: model.Dimension{Value: pr.Height, Unit: unit},
		DPI:    dpi,
	}
}

// TargetFormat returns the preset's output format, or "" for the tool default
func (pr Preset) TargetFormat() model.Format {
	format, err := model.ParseFormat(pr.Format)
	if err != nil {
		return ""
	}
	return format
}
