package tools

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLookup(t *testing.T) {
	for _, tool := range All() {
		got, err := Lookup(string(tool.ID))
		if err != nil {
			t.Errorf("Lookup(%s) failed: %v", tool.ID, err)
			continue
		}
		if got.ID != tool.ID {
			t.Errorf("Lookup(%s) returned %s", tool.ID, got.ID)
		}
	}

	if _, err := Lookup("gif-to-avif"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Expected ErrUnknownTool, got %v", err)
	}
}

func TestCatalogShape(t *testing.T) {
	tools := All()
	if len(tools) != 5 {
		t.Fatalf("Expected 5 tools, got %d", len(tools))
	}
	seen := make(map[ID]bool)
	for _, tool := range tools {
		if seen[tool.ID] {
			t.Errorf("Duplicate tool %s", tool.ID)
		}
		seen[tool.ID] = true
		if !tool.Target.Encodable() {
			t.Errorf("%s targets %s which cannot be encoded", tool.ID, tool.Target)
		}
		if len(tool.Accept) == 0 || tool.TitleKey == "" || tool.BundleStem == "" {
			t.Errorf("%s is incomplete: %+v", tool.ID, tool)
		}
	}

	// All returns a copy
	tools[0].ID = "changed"
	if All()[0].ID == "changed" {
		t.Error("All must not expose the catalog")
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		id       ID
		name     string
		expected bool
	}{
		{PNGToJPEG, "a.png", true},
		{PNGToJPEG, "A.PNG", true},
		{PNGToJPEG, "a.jpg", false},
		{JPEGToPNG, "dir/a.jpeg", true},
		{JPEGToPNG, "a.jpg", true},
		{WebPToPNG, "a.webp", true},
		{Resize, "a.gif", true},
		{Resize, "notes.txt", false},
		{Resize, "noext", false},
	}

	for _, test := range tests {
		tool, _ := Lookup(string(test.id))
		if got := tool.Accepts(test.name); got != test.expected {
			t.Errorf("%s.Accepts(%s) = %v, expected %v", test.id, test.name, got, test.expected)
		}
	}
}

func TestSpec(t *testing.T) {
	converter, _ := Lookup(string(PNGToJPEG))
	geometry := &model.Geometry{Width: model.Px(10), Height: model.Px(10)}

	spec, err := converter.Spec(Options{Quality: 80, Geometry: geometry, Target: model.FormatPNG})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if spec.Target != model.FormatJPEG || spec.Resizes() || spec.Quality != 80 {
		t.Errorf("Converter spec should ignore resize options, got %+v", spec)
	}

	resize, _ := Lookup(string(Resize))
	if _, err := resize.Spec(Options{}); !errors.Is(err, ErrMissingGeometry) {
		t.Errorf("Expected ErrMissingGeometry, got %v", err)
	}
	if _, err := resize.Spec(Options{Geometry: geometry, Target: model.FormatWebP}); !errors.Is(err, codec.ErrUnsupportedTarget) {
		t.Errorf("Expected ErrUnsupportedTarget, got %v", err)
	}

	spec, err = resize.Spec(Options{Geometry: geometry})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if spec.Target != model.FormatJPEG || !spec.Resizes() {
		t.Errorf("Unexpected resize spec %+v", spec)
	}

	spec, _ = resize.Spec(Options{Geometry: geometry, Target: model.FormatPNG})
	if spec.Target != model.FormatPNG {
		t.Errorf("Expected PNG override, got %s", spec.Target)
	}
}

func TestNamer(t *testing.T) {
	converter, _ := Lookup(string(JPEGToPNG))
	if got := converter.Namer(model.FormatPNG)("photo.jpeg"); got != "photo.png" {
		t.Errorf("Expected photo.png, got %s", got)
	}

	resize, _ := Lookup(string(Resize))
	if got := resize.Namer(model.FormatJPEG)("dir/photo.png"); got != "photo_resized.jpg" {
		t.Errorf("Expected photo_resized.jpg, got %s", got)
	}
}

func TestPipeline_Resize(t *testing.T) {
	resize, _ := Lookup(string(Resize))
	p, err := resize.Pipeline(Options{
		Geometry: &model.Geometry{Width: model.Px(5), Height: model.Px(3)},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.BundleName != "resized_images.zip" {
		t.Errorf("Expected resized_images.zip, got %s", p.BundleName)
	}

	sel := model.NewSelectionSet(model.NewInputFile("a.png", pngBytes(t, 20, 20), "image/png"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	d := result.Deliverable
	if d.Name != "a_resized.jpg" {
		t.Errorf("Expected a_resized.jpg, got %s", d.Name)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(d.Data))
	if err != nil {
		t.Fatalf("Output is not a JPEG: %v", err)
	}
	if cfg.Width != 5 || cfg.Height != 3 {
		t.Errorf("Expected 5x3, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestPipeline_ConverterBundle(t *testing.T) {
	converter, _ := Lookup(string(PNGToJPEG))
	p, err := converter.Pipeline(Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	sel := model.NewSelectionSet(
		model.NewInputFile("a.png", pngBytes(t, 4, 4), "image/png"),
		model.NewInputFile("b.png", pngBytes(t, 4, 4), "image/png"),
	)
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Deliverable.Name != "converted_images.zip" {
		t.Errorf("Expected converted_images.zip, got %s", result.Deliverable.Name)
	}
	if got := result.Deliverable.Entries; len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.jpg" {
		t.Errorf("Unexpected entries %v", got)
	}
}

func TestPipeline_KeepsCodecOptionsWithoutQuality(t *testing.T) {
	resize, _ := Lookup(string(Resize))
	p, err := resize.Pipeline(Options{
		Geometry: &model.Geometry{Width: model.Cm(1), Height: model.Cm(0.5)},
		Codec:    codec.Options{DPI: 254, PNGCompression: codec.PNGCompressionNone},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	sel := model.NewSelectionSet(model.NewInputFile("a.png", pngBytes(t, 20, 20), "image/png"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(result.Deliverable.Data))
	if err != nil {
		t.Fatalf("Output is not a JPEG: %v", err)
	}
	// 1 cm at 254 dpi
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("Expected 100x50 at the caller's DPI, got %dx%d", cfg.Width, cfg.Height)
	}
}
