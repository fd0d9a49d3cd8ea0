package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/microtools/micro-tools/internal/archive"
	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
)

// fakePacker records entries instead of building an archive
type fakePacker struct {
	mu      sync.Mutex
	entries []archive.Entry
	err     error
}

func (p *fakePacker) Pack(entries []archive.Entry) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.entries = append([]archive.Entry(nil), entries...)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return []byte(strings.Join(names, ",")), nil
}

func (p *fakePacker) Extension() string { return ".fake" }

// upperTransform renames x.in to x.out and upper-cases the payload; "bad" payloads fail
func upperTransform(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
	if string(in.Data) == "bad" {
		return model.OutputArtifact{}, fmt.Errorf("%s: %w", in.Name, codec.ErrUnsupportedImage)
	}
	return model.OutputArtifact{
		Name:   naming.ReplaceExt(in.Name, ".out"),
		Data:   bytes.ToUpper(in.Data),
		Source: in.Name,
	}, nil
}

func input(name, data string) model.InputFile {
	return model.NewInputFile(name, []byte(data), "application/octet-stream")
}

func TestConvert_EmptySelection(t *testing.T) {
	p := &Pipeline{Transform: upperTransform}
	_, err := p.Convert(context.Background(), model.NewSelectionSet())
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Expected ErrEmptySelection, got %v", err)
	}
}

func TestConvert_NoTransform(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Convert(context.Background(), model.NewSelectionSet(input("a.in", "a")))
	if !errors.Is(err, ErrNoTransform) {
		t.Errorf("Expected ErrNoTransform, got %v", err)
	}
}

func TestConvert_SingleFile(t *testing.T) {
	packer := &fakePacker{}
	p := &Pipeline{Transform: upperTransform, Packer: packer}

	result, err := p.Convert(context.Background(), model.NewSelectionSet(input("a.in", "abc")))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	d := result.Deliverable
	if d.Kind != model.DeliverableSingle || d.IsBundle() {
		t.Errorf("Expected single deliverable, got %s", d.Kind)
	}
	if d.Name != "a.out" || string(d.Data) != "ABC" {
		t.Errorf("Unexpected deliverable %s=%q", d.Name, d.Data)
	}
	if packer.entries != nil {
		t.Error("Packer should not be used for a single file")
	}
}

func TestConvert_SingleFileFailure(t *testing.T) {
	p := &Pipeline{Transform: upperTransform}

	result, err := p.Convert(context.Background(), model.NewSelectionSet(input("a.in", "bad")))
	if !errors.Is(err, ErrNothingConverted) || !errors.Is(err, codec.ErrUnsupportedImage) {
		t.Errorf("Expected ErrNothingConverted wrapping the decode error, got %v", err)
	}
	if result == nil || result.Skipped != 1 || result.Deliverable != nil {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestConvert_Bundle(t *testing.T) {
	packer := &fakePacker{}
	p := &Pipeline{Transform: upperTransform, Packer: packer, BundleName: "converted_images.zip"}

	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "b"), input("c.in", "c"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	d := result.Deliverable
	if !d.IsBundle() || d.Name != "converted_images.zip" {
		t.Errorf("Expected bundle converted_images.zip, got %s %s", d.Kind, d.Name)
	}
	if len(packer.entries) != 3 || result.Converted != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(packer.entries))
	}
	for i, expected := range []string{"a.out", "b.out", "c.out"} {
		if packer.entries[i].Name != expected {
			t.Errorf("Entry %d: expected %s, got %s", i, expected, packer.entries[i].Name)
		}
	}
}

func TestConvert_BundleSkipsFailures(t *testing.T) {
	packer := &fakePacker{}
	p := &Pipeline{Transform: upperTransform, Packer: packer}

	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "bad"), input("c.in", "c"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Skipped != 1 || result.Converted != 2 {
		t.Errorf("Expected 2 converted and 1 skipped, got %d and %d", result.Converted, result.Skipped)
	}
	failures := result.Failures()
	if len(failures) != 1 || failures[0].Input != "b.in" || failures[0].Index != 1 {
		t.Errorf("Unexpected failures %+v", failures)
	}
	if got := result.Deliverable.Entries; len(got) != 2 || got[0] != "a.out" || got[1] != "c.out" {
		t.Errorf("Unexpected entries %v", got)
	}
	if result.Deliverable.Name != DefaultBundleStem+".fake" {
		t.Errorf("Expected default bundle name, got %s", result.Deliverable.Name)
	}
}

func TestConvert_BundleWithOneSurvivorIsStillBundle(t *testing.T) {
	p := &Pipeline{Transform: upperTransform, Packer: &fakePacker{}}

	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "bad"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Deliverable.IsBundle() {
		t.Error("Several inputs must give a bundle")
	}
}

func TestConvert_AllFail(t *testing.T) {
	p := &Pipeline{Transform: upperTransform, Packer: &fakePacker{}}

	sel := model.NewSelectionSet(input("a.in", "bad"), input("b.in", "bad"))
	result, err := p.Convert(context.Background(), sel)
	if !errors.Is(err, ErrNothingConverted) {
		t.Errorf("Expected ErrNothingConverted, got %v", err)
	}
	if result.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", result.Skipped)
	}
}

func TestConvert_CollisionOverwrite(t *testing.T) {
	packer := &fakePacker{}
	p := &Pipeline{Transform: upperTransform, Packer: packer, Collision: naming.CollisionOverwrite}

	sel := model.NewSelectionSet(input("x.in", "first"), input("sub/x.in", "second"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(packer.entries) != 1 {
		t.Fatalf("Expected exactly one entry, got %d", len(packer.entries))
	}
	if packer.entries[0].Name != "x.out" || string(packer.entries[0].Data) != "SECOND" {
		t.Errorf("Expected last input to win, got %s=%q", packer.entries[0].Name, packer.entries[0].Data)
	}
	if result.Converted != 2 {
		t.Errorf("Both files convert even though one is overwritten, got %d", result.Converted)
	}
}

func TestConvert_CollisionSuffix(t *testing.T) {
	packer := &fakePacker{}
	p := &Pipeline{Transform: upperTransform, Packer: packer, Collision: naming.CollisionSuffix}

	sel := model.NewSelectionSet(input("x.in", "first"), input("sub/x.in", "second"))
	if _, err := p.Convert(context.Background(), sel); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(packer.entries) != 2 || packer.entries[1].Name != "x (2).out" {
		t.Errorf("Unexpected entries %+v", packer.entries)
	}
}

func TestConvert_CollisionError(t *testing.T) {
	p := &Pipeline{Transform: upperTransform, Packer: &fakePacker{}, Collision: naming.CollisionError}

	sel := model.NewSelectionSet(input("x.in", "first"), input("sub/x.in", "second"))
	if _, err := p.Convert(context.Background(), sel); !errors.Is(err, naming.ErrNameCollision) {
		t.Errorf("Expected ErrNameCollision, got %v", err)
	}
}

func TestConvert_PackerError(t *testing.T) {
	p := &Pipeline{Transform: upperTransform, Packer: &fakePacker{err: errors.New("disk full")}}

	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "b"))
	if _, err := p.Convert(context.Background(), sel); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected packer error, got %v", err)
	}
}

func TestConvert_PanicIsPerFile(t *testing.T) {
	transform := func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		if in.Name == "boom.in" {
			panic("decoder exploded")
		}
		return upperTransform(ctx, in)
	}
	p := &Pipeline{Transform: transform, Packer: &fakePacker{}}

	sel := model.NewSelectionSet(input("boom.in", "x"), input("ok.in", "y"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Skipped != 1 || !strings.Contains(result.Outcomes[0].Err.Error(), "panicked") {
		t.Errorf("Expected panic to be recorded for boom.in, got %+v", result.Outcomes[0])
	}
}

func TestConvert_FileTimeout(t *testing.T) {
	transform := func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		if in.Name == "slow.in" {
			<-ctx.Done()
			return model.OutputArtifact{}, ctx.Err()
		}
		return upperTransform(ctx, in)
	}
	p := &Pipeline{Transform: transform, Packer: &fakePacker{}, FileTimeout: 20 * time.Millisecond}

	sel := model.NewSelectionSet(input("slow.in", "x"), input("fast.in", "y"))
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !errors.Is(result.Outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error for slow file, got %v", result.Outcomes[0].Err)
	}
	if result.Converted != 1 {
		t.Errorf("Expected 1 converted, got %d", result.Converted)
	}
}

func TestConvert_FileTimeoutIgnoredContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	transform := func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		if in.Name == "stuck.in" {
			<-release
		}
		return upperTransform(ctx, in)
	}
	p := &Pipeline{Transform: transform, Packer: &fakePacker{}, FileTimeout: 20 * time.Millisecond}

	start := time.Now()
	result, err := p.Convert(context.Background(), model.NewSelectionSet(input("stuck.in", "x"), input("fast.in", "y")))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Convert should return at the deadline, took %v", elapsed)
	}
	if !errors.Is(result.Outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error for stuck file, got %v", result.Outcomes[0].Err)
	}
	if result.Converted != 1 || result.Deliverable.Entries[0] != "fast.out" {
		t.Errorf("Expected only fast.in converted, got %+v", result.Deliverable)
	}
}

func TestConvert_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transform := func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		if err := ctx.Err(); err != nil {
			return model.OutputArtifact{}, err
		}
		return upperTransform(ctx, in)
	}
	p := &Pipeline{Transform: transform, MaxParallel: 1}

	_, err := p.Convert(ctx, model.NewSelectionSet(input("a.in", "a"), input("b.in", "b")))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestConvert_MaxParallel(t *testing.T) {
	var running, peak int32
	transform := func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return upperTransform(ctx, in)
	}
	p := &Pipeline{Transform: transform, Packer: &fakePacker{}, MaxParallel: 2}

	var files []model.InputFile
	for i := 0; i < 8; i++ {
		files = append(files, input(fmt.Sprintf("f%d.in", i), "x"))
	}
	if _, err := p.Convert(context.Background(), model.NewSelectionSet(files...)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent transforms, saw %d", peak)
	}
}

func TestConvert_Progress(t *testing.T) {
	var calls []int
	p := &Pipeline{
		Transform: upperTransform,
		Packer:    &fakePacker{},
		OnProgress: func(done, total int) {
			if total != 3 {
				t.Errorf("Expected total 3, got %d", total)
			}
			calls = append(calls, done)
		},
	}

	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "b"), input("c.in", "c"))
	if _, err := p.Convert(context.Background(), sel); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("Unexpected progress calls %v", calls)
	}
}

// End to end through the real codec and zip packer

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(encodePNG(t, w, h)))
	if err != nil {
		t.Fatalf("Failed to decode png: %v", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestConvert_JPEGToPNGBundle(t *testing.T) {
	transform, err := codec.NewTransform(model.ConversionSpec{Target: model.FormatPNG}, naming.ExtensionNamer(".png"), codec.DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	p := &Pipeline{Transform: transform, Packer: archive.NewZipPacker(), BundleName: "converted_images.zip"}

	sel := model.NewSelectionSet(
		model.NewInputFile("a.jpeg", encodeJPEG(t, 10, 10), "image/jpeg"),
		model.NewInputFile("b.jpeg", encodeJPEG(t, 20, 5), "image/jpeg"),
	)
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data := result.Deliverable.Data
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Deliverable is not a zip: %v", err)
	}
	sizes := map[string][2]int{"a.png": {10, 10}, "b.png": {20, 5}}
	if len(zr.File) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", f.Name, err)
		}
		content, _ := io.ReadAll(rc)
		rc.Close()
		cfg, err := png.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			t.Fatalf("%s is not a PNG: %v", f.Name, err)
		}
		expected, ok := sizes[f.Name]
		if !ok || cfg.Width != expected[0] || cfg.Height != expected[1] {
			t.Errorf("Unexpected entry %s %dx%d", f.Name, cfg.Width, cfg.Height)
		}
	}
}

func TestConvert_Idempotent(t *testing.T) {
	transform, err := codec.NewTransform(model.ConversionSpec{Target: model.FormatJPEG}, nil, codec.DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	p := &Pipeline{Transform: transform, Packer: archive.NewZipPacker()}

	sel := model.NewSelectionSet(
		model.NewInputFile("a.png", encodePNG(t, 12, 12), "image/png"),
		model.NewInputFile("b.png", encodePNG(t, 7, 3), "image/png"),
	)
	first, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i := range first.Outcomes {
		if !bytes.Equal(first.Outcomes[i].Artifact.Data, second.Outcomes[i].Artifact.Data) {
			t.Errorf("Artifact %d differs between runs", i)
		}
	}
	if !bytes.Equal(first.Deliverable.Data, second.Deliverable.Data) {
		t.Error("Bundle differs between runs")
	}
}

func TestConvert_UndecodableSkipped(t *testing.T) {
	transform, err := codec.NewTransform(model.ConversionSpec{Target: model.FormatPNG}, nil, codec.DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	p := &Pipeline{Transform: transform, Packer: archive.NewZipPacker()}

	sel := model.NewSelectionSet(
		model.NewInputFile("good.jpeg", encodeJPEG(t, 4, 4), "image/jpeg"),
		model.NewInputFile("empty.jpeg", nil, "image/jpeg"),
		model.NewInputFile("notes.txt", []byte("hello"), "text/plain"),
	)
	result, err := p.Convert(context.Background(), sel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Skipped != 2 || len(result.Deliverable.Entries) != 1 {
		t.Errorf("Expected 1 entry and 2 skipped, got %v and %d", result.Deliverable.Entries, result.Skipped)
	}
}
