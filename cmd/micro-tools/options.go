package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/config"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
	"github.com/microtools/micro-tools/internal/tools"
)

// FileTimeout bounds the work on a single file
const FileTimeout = 2 * time.Minute

// runFlags are the flags shared by convert and watch
type runFlags struct {
	tool           string
	out            string
	format         string
	quality        int
	pngCompression string
	width          float64
	height         float64
	unit           string
	dpi            float64
	collision      string
	parallel       int
	presetsPath    string
	preset         string

	set map[string]bool
}

func newFlagSet(name string, output io.Writer) (*flag.FlagSet, *runFlags) {
	f := &runFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.tool, "tool", "", "tool to run, see 'micro-tools tools'")
	fs.StringVar(&f.out, "out", ".", "output directory")
	fs.StringVar(&f.format, "format", "", "output format of resize-image (jpeg or png)")
	fs.IntVar(&f.quality, "quality", codec.DefaultJPEGQuality, "JPEG quality 1-100")
	fs.StringVar(&f.pngCompression, "png-compression", string(codec.PNGCompressionDefault), "PNG compression: default, speed, best or none")
	fs.Float64Var(&f.width, "width", 0, "resize width")
	fs.Float64Var(&f.height, "height", 0, "resize height")
	fs.StringVar(&f.unit, "unit", string(model.UnitPixel), "unit of width and height: px or cm")
	fs.Float64Var(&f.dpi, "dpi", codec.DefaultDPI, "pixel density for cm sizes")
	fs.StringVar(&f.collision, "collision", string(naming.DefaultCollisionPolicy), "duplicate names in a bundle: overwrite, suffix or error")
	fs.IntVar(&f.parallel, "parallel", config.DefaultMaxParallel, "files converted at once")
	fs.StringVar(&f.presetsPath, "presets", "", "YAML presets file")
	fs.StringVar(&f.preset, "preset", "", "preset name from the presets file")
	return fs, f
}

// parse parses args and records which flags were given explicitly
func (f *runFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return nil
}

// resolve builds the tool and its options. Explicit flags win over the
// preset, which wins over the presets file defaults.
func (f *runFlags) resolve() (tools.Tool, tools.Options, error) {
	if f.preset != "" && f.presetsPath == "" {
		return tools.Tool{}, tools.Options{}, usagef("-preset needs -presets")
	}
	if f.presetsPath != "" {
		if err := f.applyPresets(); err != nil {
			return tools.Tool{}, tools.Options{}, err
		}
	}

	if f.tool == "" {
		return tools.Tool{}, tools.Options{}, usagef("-tool is required")
	}
	tool, err := tools.Lookup(f.tool)
	if err != nil {
		return tools.Tool{}, tools.Options{}, usagef("%v", err)
	}

	collision, err := naming.ParseCollisionPolicy(f.collision)
	if err != nil {
		return tools.Tool{}, tools.Options{}, usagef("%v", err)
	}
	if f.quality < codec.MinJPEGQuality || f.quality > codec.MaxJPEGQuality {
		return tools.Tool{}, tools.Options{}, usagef("-quality must be between %d and %d", codec.MinJPEGQuality, codec.MaxJPEGQuality)
	}
	if f.parallel < 1 || f.parallel > config.MaxParallelLimit {
		return tools.Tool{}, tools.Options{}, usagef("-parallel must be between 1 and %d", config.MaxParallelLimit)
	}
	compression := codec.PNGCompression(f.pngCompression)
	switch compression {
	case codec.PNGCompressionDefault, codec.PNGCompressionSpeed, codec.PNGCompressionBest, codec.PNGCompressionNone:
	default:
		return tools.Tool{}, tools.Options{}, usagef("unknown -png-compression %q", f.pngCompression)
	}

	codecOpts := codec.DefaultOptions()
	codecOpts.JPEGQuality = f.quality
	codecOpts.PNGCompression = compression
	codecOpts.DPI = f.dpi

	opts := tools.Options{
		Quality:     f.quality,
		Codec:       codecOpts,
		Collision:   collision,
		MaxParallel: f.parallel,
		FileTimeout: FileTimeout,
	}

	if tool.Resize {
		if f.width <= 0 || f.height <= 0 {
			return tools.Tool{}, tools.Options{}, usagef("%s needs -width and -height", tool.ID)
		}
		unit, err := model.ParseUnit(f.unit)
		if err != nil {
			return tools.Tool{}, tools.Options{}, usagef("%v", err)
		}
		g := model.Geometry{
			Width:  model.Dimension{Value: f.width, Unit: unit},
			Height: model.Dimension{Value: f.height, Unit: unit},
			DPI:    f.dpi,
		}
		if _, _, err := codec.ResolveGeometry(g, f.dpi); err != nil {
			return tools.Tool{}, tools.Options{}, usagef("%v", err)
		}
		opts.Geometry = &g

		if f.format != "" {
			format, err := model.ParseFormat(f.format)
			if err != nil {
				return tools.Tool{}, tools.Options{}, usagef("%v", err)
			}
			opts.Target = format
		}
	}

	// Spec checks the remaining combinations
	if _, err := tool.Spec(opts); err != nil {
		return tools.Tool{}, tools.Options{}, usagef("%v", err)
	}
	return tool, opts, nil
}

// applyPresets fills in every flag that was not given from the presets file
func (f *runFlags) applyPresets() error {
	presets, err := config.LoadPresets(f.presetsPath)
	if err != nil {
		return err
	}

	d := presets.Defaults
	f.fill("out", d.OutputDir != "", func() { f.out = d.OutputDir })
	f.fill("parallel", d.MaxParallel > 0, func() { f.parallel = d.MaxParallel })
	f.fill("collision", d.Collision != "", func() { f.collision = d.Collision })
	f.fill("dpi", d.DPI > 0, func() { f.dpi = d.DPI })

	if f.preset == "" {
		return nil
	}
	p, err := presets.Get(f.preset)
	if err != nil {
		return usagef("%v (have %v)", err, presets.Names())
	}
	f.fill("tool", true, func() { f.tool = p.Tool })
	f.fill("format", p.TargetFormat() != "", func() { f.format = string(p.TargetFormat()) })
	f.fill("quality", p.Quality > 0, func() { f.quality = p.Quality })
	f.fill("png-compression", p.PNGCompression != "", func() { f.pngCompression = p.PNGCompression })
	if g := p.Geometry(f.dpi); g != nil {
		f.fill("width", true, func() { f.width = g.Width.Value })
		f.fill("height", true, func() { f.height = g.Height.Value })
		f.fill("unit", true, func() { f.unit = string(g.Width.Unit) })
		f.fill("dpi", true, func() { f.dpi = g.DPI })
	}
	return nil
}

func (f *runFlags) fill(name string, ok bool, apply func()) {
	if ok && !f.set[name] {
		apply()
	}
}

// outputDir makes sure the output directory exists
func (f *runFlags) outputDir() (string, error) {
	if err := os.MkdirAll(f.out, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return f.out, nil
}
