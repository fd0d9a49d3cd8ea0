package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microtools/micro-tools/internal/archive"
	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/convert"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
)

// ID identifies a tool
type ID string

const (
	PNGToJPEG  ID = "png-to-jpeg"
	JPEGToPNG  ID = "jpeg-to-png"
	WebPToPNG  ID = "webp-to-png"
	WebPToJPEG ID = "webp-to-jpeg"
	Resize     ID = "resize-image"
)

// Bundle names
const (
	ConvertedBundle = "converted_images"
	ResizedBundle   = "resized_images"
)

// Catalog errors
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingGeometry = errors.New("resize needs a width and a height")
)

// Tool describes one page of the app
type Tool struct {
	ID             ID
	TitleKey       string // localization key of the title
	DescriptionKey string // localization key of the card text
	Accept         []string
	Target         model.Format
	Resize         bool
	BundleStem     string
}

// Options carry user choices into a pipeline
type Options struct {
	Target      model.Format // resize only; empty keeps the tool default
	Quality     int
	Geometry    *model.Geometry
	Codec       codec.Options
	Collision   naming.CollisionPolicy
	MaxParallel int
	FileTimeout time.Duration
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp", ".tif", ".tiff"}

var catalog = []Tool{
	{
		ID:             PNGToJPEG,
		TitleKey:       "tool_png_to_jpeg",
		DescriptionKey: "tool_png_to_jpeg_desc",
		Accept:         []string{".png"},
		Target:         model.FormatJPEG,
		BundleStem:     ConvertedBundle,
	},
	{
		ID:             JPEGToPNG,
		TitleKey:       "tool_jpeg_to_png",
		DescriptionKey: "tool_jpeg_to_png_desc",
		Accept:         []string{".jpg", ".jpeg"},
		Target:         model.FormatPNG,
		BundleStem:     ConvertedBundle,
	},
	{
		ID:             WebPToPNG,
		TitleKey:       "tool_webp_to_png",
		DescriptionKey: "tool_webp_to_png_desc",
		Accept:         []string{".webp"},
		Target:         model.FormatPNG,
		BundleStem:     ConvertedBundle,
	},
	{
		ID:             WebPToJPEG,
		TitleKey:       "tool_webp_to_jpeg",
		DescriptionKey: "tool_webp_to_jpeg_desc",
		Accept:         []string{".webp"},
		Target:         model.FormatJPEG,
		BundleStem:     ConvertedBundle,
	},
	{
		ID:             Resize,
		TitleKey:       "tool_resize",
		DescriptionKey: "tool_resize_desc",
		Accept:         imageExtensions,
		Target:         model.FormatJPEG,
		Resize:         true,
		BundleStem:     ResizedBundle,
	},
}

// All returns every tool in display order
func All() []Tool {
	out := make([]Tool, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a tool by ID
func Lookup(id string) (Tool, error) {
	for _, t := range catalog {
		if string(t.ID) == strings.TrimSpace(strings.ToLower(id)) {
			return t, nil
		}
	}
	return Tool{}, fmt.Errorf("%w: %q", ErrUnknownTool, id)
}

// ImageExtensions lists every extension the decoder understands
func ImageExtensions() []string {
	return append([]string(nil), imageExtensions...)
}

// Accepts reports whether name has one of the tool's extensions
func (t Tool) Accepts(name string) bool {
	_, ext := naming.SplitExt(naming.Flatten(name))
	ext = strings.ToLower(ext)
	for _, a := range t.Accept {
		if ext == a {
			return true
		}
	}
	return false
}

// Spec builds the conversion spec for opts
func (t Tool) Spec(opts Options) (model.ConversionSpec, error) {
	spec := model.ConversionSpec{Target: t.Target, Quality: opts.Quality}
	if !t.Resize {
		return spec, nil
	}

	if opts.Target != "" {
		if !opts.Target.Encodable() {
			return spec, fmt.Errorf("%w: %q", codec.ErrUnsupportedTarget, opts.Target)
		}
		spec.Target = opts.Target
	}
	if opts.Geometry == nil {
		return spec, ErrMissingGeometry
	}
	g := *opts.Geometry
	spec.Geometry = &g
	return spec, nil
}

// Namer returns how the tool names outputs for target
func (t Tool) Namer(target model.Format) naming.Namer {
	if t.Resize {
		return naming.SuffixNamer(naming.ResizedSuffix, target.Extension())
	}
	return naming.ExtensionNamer(target.Extension())
}

// Pipeline builds a ready-to-run pipeline for opts
func (t Tool) Pipeline(opts Options) (*convert.Pipeline, error) {
	spec, err := t.Spec(opts)
	if err != nil {
		return nil, err
	}

	transform, err := codec.NewTransform(spec, t.Namer(spec.Target), opts.Codec.WithDefaults())
	if err != nil {
		return nil, err
	}

	packer := archive.NewZipPacker()
	return &convert.Pipeline{
		Transform:   transform,
		Packer:      packer,
		BundleName:  t.BundleStem + packer.Extension(),
		Collision:   opts.Collision,
		MaxParallel: opts.MaxParallel,
		FileTimeout: opts.FileTimeout,
	}, nil
}
