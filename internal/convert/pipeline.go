package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/microtools/micro-tools/internal/archive"
	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/naming"
)

// Pipeline errors
var (
	ErrEmptySelection   = errors.New("no files selected")
	ErrNothingConverted = errors.New("no file could be converted")
	ErrNoTransform      = errors.New("pipeline has no transform")
)

// DefaultBundleStem names bundles when the pipeline has no BundleName
const DefaultBundleStem = "converted_images"

// Pipeline runs one transform over a selection and packages the result.
// A zero MaxParallel runs every file at once; a zero FileTimeout disables the
// per-file deadline. A file past its deadline gives up its slot even if its
// transform is still running.
type Pipeline struct {
	Transform   codec.Transform
	Packer      archive.Packer
	BundleName  string
	Collision   naming.CollisionPolicy
	MaxParallel int
	FileTimeout time.Duration

	// OnProgress is called after each file finishes. Calls are serialized.
	OnProgress func(done, total int)
}

// FileOutcome is the result of one input file
type FileOutcome struct {
	Index    int
	Input    string
	Artifact *model.OutputArtifact
	Err      error
}

// OK reports whether the file converted
func (o FileOutcome) OK() bool {
	return o.Err == nil && o.Artifact != nil
}

// Result is everything one Convert call produced
type Result struct {
	Deliverable *model.Deliverable
	Outcomes    []FileOutcome // one per input, in selection order
	Converted   int
	Skipped     int
}

// Failures returns the outcomes of files that failed
func (r *Result) Failures() []FileOutcome {
	var failed []FileOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Convert transforms every file of sel and returns the deliverable.
// One input gives a single-file deliverable; more give a bundle of every
// file that converted. Failed files are reported in the result, not fatal,
// unless none converted.
func (p *Pipeline) Convert(ctx context.Context, sel model.SelectionSet) (*Result, error) {
	if sel.IsEmpty() {
		return nil, ErrEmptySelection
	}
	if p.Transform == nil {
		return nil, ErrNoTransform
	}

	outcomes := p.runAll(ctx, sel.Files())
	result := &Result{Outcomes: outcomes}
	var firstErr error
	for _, o := range outcomes {
		if o.OK() {
			result.Converted++
		} else {
			result.Skipped++
			if firstErr == nil {
				firstErr = o.Err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Converted == 0 {
		return result, fmt.Errorf("%w: %w", ErrNothingConverted, firstErr)
	}

	if sel.Len() == 1 {
		a := outcomes[0].Artifact
		result.Deliverable = &model.Deliverable{
			Kind:    model.DeliverableSingle,
			Name:    a.Name,
			Data:    a.Data,
			Entries: []string{a.Name},
		}
		return result, nil
	}

	deliverable, err := p.bundle(outcomes)
	if err != nil {
		return result, err
	}
	result.Deliverable = deliverable
	return result, nil
}

// runAll starts one goroutine per file, bounded by MaxParallel, and waits for all of them
func (p *Pipeline) runAll(ctx context.Context, files []model.InputFile) []FileOutcome {
	outcomes := make([]FileOutcome, len(files))

	var sem chan struct{}
	if p.MaxParallel > 0 {
		sem = make(chan struct{}, p.MaxParallel)
	}

	var (
		wg         sync.WaitGroup
		progressMu sync.Mutex
		done       int
	)
	for i, f := range files {
		wg.Add(1)
		go func(i int, f model.InputFile) {
			defer wg.Done()
			outcomes[i] = p.runGuarded(ctx, sem, i, f)

			progressMu.Lock()
			done++
			if p.OnProgress != nil {
				p.OnProgress(done, len(files))
			}
			progressMu.Unlock()
		}(i, f)
	}
	wg.Wait()
	return outcomes
}

// runGuarded waits for a slot and runs the transform for one file
func (p *Pipeline) runGuarded(ctx context.Context, sem chan struct{}, index int, f model.InputFile) FileOutcome {
	outcome := FileOutcome{Index: index, Input: f.Name}

	if sem != nil {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		case <-ctx.Done():
			outcome.Err = ctx.Err()
			return outcome
		}
	}

	artifact, err := p.runOne(ctx, f)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Artifact = &artifact
	return outcome
}

// runOne applies the transform with the per-file timeout and turns panics into errors.
// At the deadline the file is reported failed; a transform that ignores ctx is
// left to finish in the background and its result is dropped.
func (p *Pipeline) runOne(ctx context.Context, f model.InputFile) (model.OutputArtifact, error) {
	if p.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.FileTimeout)
		defer cancel()
	}

	type transformResult struct {
		artifact model.OutputArtifact
		err      error
	}
	done := make(chan transformResult, 1)
	go func() {
		var res transformResult
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("%s: transform panicked: %v", f.Name, r)
			}
			done <- res
		}()
		res.artifact, res.err = p.Transform(ctx, f)
	}()

	select {
	case res := <-done:
		return res.artifact, res.err
	case <-ctx.Done():
		return model.OutputArtifact{}, fmt.Errorf("%s: %w", f.Name, ctx.Err())
	}
}

// bundle packs successful artifacts in selection order under the collision policy
func (p *Pipeline) bundle(outcomes []FileOutcome) (*model.Deliverable, error) {
	var artifacts []*model.OutputArtifact
	var names []string
	for _, o := range outcomes {
		if o.OK() {
			artifacts = append(artifacts, o.Artifact)
			names = append(names, o.Artifact.Name)
		}
	}

	resolved, err := naming.Resolve(names, p.Collision)
	if err != nil {
		return nil, err
	}

	entries := make([]archive.Entry, 0, len(artifacts))
	entryNames := make([]string, 0, len(artifacts))
	for i, a := range artifacts {
		if resolved[i] == "" {
			continue
		}
		entries = append(entries, archive.Entry{Name: resolved[i], Data: a.Data})
		entryNames = append(entryNames, resolved[i])
	}

	packer := p.Packer
	if packer == nil {
		packer = archive.NewZipPacker()
	}
	data, err := packer.Pack(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to pack bundle: %w", err)
	}

	name := p.BundleName
	if name == "" {
		name = DefaultBundleStem + packer.Extension()
	}

	return &model.Deliverable{
		Kind:    model.DeliverableBundle,
		Name:    name,
		Data:    data,
		Entries: entryNames,
	}, nil
}
