package codec

import (
	"context"
	"fmt"

	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
)

// Transform converts one input file into one output artifact. Implementations
// are deterministic: equal input and spec give byte-identical output.
type Transform func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error)

// NewTransform validates spec once and returns the per-file transform for it.
// namer maps input names to output names.
func NewTransform(spec model.ConversionSpec, namer naming.Namer, opts Options) (Transform, error) {
	if !spec.Target.Encodable() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, spec.Target)
	}
	if namer == nil {
		namer = naming.ExtensionNamer(spec.Target.Extension())
	}
	if spec.Quality != 0 {
		opts.JPEGQuality = spec.Quality
	}

	var width, height int
	if spec.Geometry != nil {
		var err error
		width, height, err = ResolveGeometry(*spec.Geometry, opts.DPI)
		if err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		if err := ctx.Err(); err != nil {
			return model.OutputArtifact{}, err
		}

		img, _, err := Decode(in.Data)
		if err != nil {
			return model.OutputArtifact{}, fmt.Errorf("%s: %w", in.Name, err)
		}

		if spec.Geometry != nil {
			img = Resize(img, width, height)
		}

		if err := ctx.Err(); err != nil {
			return model.OutputArtifact{}, err
		}

		data, err := EncodeBytes(img, spec.Target, opts)
		if err != nil {
			return model.OutputArtifact{}, fmt.Errorf("%s: encode: %w", in.Name, err)
		}

		b := img.Bounds()
		return model.OutputArtifact{
			Name:   namer(in.Name),
			Data:   data,
			Width:  b.Dx(),
			Height: b.Dy(),
			Source: in.Name,
		}, nil
	}, nil
}
