package convert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/microtools/micro-tools/internal/model"
)

// blockingTransform waits on release or cancellation before converting
func blockingTransform(release <-chan struct{}) func(context.Context, model.InputFile) (model.OutputArtifact, error) {
	return func(ctx context.Context, in model.InputFile) (model.OutputArtifact, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return model.OutputArtifact{}, ctx.Err()
		}
		return upperTransform(ctx, in)
	}
}

func waitJob(t *testing.T, service *Service, id string) *model.ConversionJob {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := service.Wait(ctx, id)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return job
}

func TestNewService(t *testing.T) {
	service := NewService()

	if len(service.jobs) != 0 {
		t.Errorf("Expected empty jobs map, got %d items", len(service.jobs))
	}
	if len(service.GetAllJobs()) != 0 {
		t.Error("Expected no jobs")
	}
}

func TestGenerateJobID(t *testing.T) {
	first := generateJobID()
	second := generateJobID()

	if !strings.HasPrefix(first, JobIDPrefix) {
		t.Errorf("Expected prefix %s, got %s", JobIDPrefix, first)
	}
	if first == second {
		t.Error("Expected unique job IDs")
	}
}

func TestStartJob_Validation(t *testing.T) {
	service := NewService()

	_, err := service.StartJob("png-to-jpeg", model.NewSelectionSet(), &Pipeline{Transform: upperTransform})
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Expected ErrEmptySelection, got %v", err)
	}

	_, err = service.StartJob("png-to-jpeg", model.NewSelectionSet(input("a.in", "a")), &Pipeline{})
	if !errors.Is(err, ErrNoTransform) {
		t.Errorf("Expected ErrNoTransform, got %v", err)
	}

	_, err = service.StartJob("png-to-jpeg", model.NewSelectionSet(input("a.in", "a")), nil)
	if !errors.Is(err, ErrNoTransform) {
		t.Errorf("Expected ErrNoTransform for nil pipeline, got %v", err)
	}
}

func TestStartJob_Completes(t *testing.T) {
	service := NewService()
	sel := model.NewSelectionSet(input("a.in", "a"), input("b.in", "bad"), input("c.in", "c"))

	job, err := service.StartJob("png-to-jpeg", sel, &Pipeline{Transform: upperTransform, Packer: &fakePacker{}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if job.Total != 3 || job.Tool != "png-to-jpeg" {
		t.Errorf("Unexpected job %+v", job)
	}

	final := waitJob(t, service, job.ID)
	if final.Status != model.JobStatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", final.Status, final.LastError)
	}
	if final.Deliverable == nil || !final.Deliverable.IsBundle() {
		t.Error("Expected a bundle deliverable")
	}
	if final.Skipped != 1 || len(final.Failures) != 1 || !strings.HasPrefix(final.Failures[0], "b.in:") {
		t.Errorf("Expected b.in to be skipped, got %v", final.Failures)
	}
	if final.Percent != 100 || final.FinishedAt.IsZero() {
		t.Errorf("Expected finished job at 100%%, got %d", final.Percent)
	}
}

func TestStartJob_Error(t *testing.T) {
	service := NewService()
	sel := model.NewSelectionSet(input("a.in", "bad"))

	job, err := service.StartJob("jpeg-to-png", sel, &Pipeline{Transform: upperTransform})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	final := waitJob(t, service, job.ID)
	if final.Status != model.JobStatusError {
		t.Errorf("Expected error status, got %s", final.Status)
	}
	if !strings.Contains(final.LastError, ErrNothingConverted.Error()) {
		t.Errorf("Unexpected last error %q", final.LastError)
	}
	if final.Deliverable != nil {
		t.Error("Failed job must not carry a deliverable")
	}
}

func TestStartJob_OnePerTool(t *testing.T) {
	service := NewService()
	release := make(chan struct{})
	pipeline := &Pipeline{Transform: blockingTransform(release)}

	job, err := service.StartJob("resize-image", model.NewSelectionSet(input("a.in", "a")), pipeline)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = service.StartJob("resize-image", model.NewSelectionSet(input("b.in", "b")), pipeline)
	if err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Errorf("Expected duplicate job error, got %v", err)
	}

	other, err := service.StartJob("png-to-jpeg", model.NewSelectionSet(input("c.in", "c")), pipeline)
	if err != nil {
		t.Errorf("Other tools should not be blocked, got %v", err)
	}

	close(release)
	waitJob(t, service, job.ID)
	waitJob(t, service, other.ID)

	if _, err := service.StartJob("resize-image", model.NewSelectionSet(input("d.in", "d")), &Pipeline{Transform: upperTransform}); err != nil {
		t.Errorf("Tool should accept a new job after finishing, got %v", err)
	}
}

func TestStopJob(t *testing.T) {
	service := NewService()
	release := make(chan struct{})
	defer close(release)

	job, err := service.StartJob("webp-to-png", model.NewSelectionSet(input("a.in", "a")), &Pipeline{Transform: blockingTransform(release)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := service.StopJob(job.ID); err != nil {
		t.Fatalf("Expected no error stopping job, got %v", err)
	}

	final := waitJob(t, service, job.ID)
	if final.Status != model.JobStatusStopped {
		t.Errorf("Expected stopped, got %s", final.Status)
	}

	if err := service.StopJob(job.ID); err == nil {
		t.Error("Expected error stopping a finished job")
	}
	if err := service.StopJob("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestWait_UnknownAndTimeout(t *testing.T) {
	service := NewService()
	if _, err := service.Wait(context.Background(), "missing"); err == nil {
		t.Error("Expected error for unknown job")
	}

	release := make(chan struct{})
	defer close(release)
	job, err := service.StartJob("webp-to-jpeg", model.NewSelectionSet(input("a.in", "a")), &Pipeline{Transform: blockingTransform(release)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := service.Wait(ctx, job.ID); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	service.StopJob(job.ID)
}

func TestUpdateCallback(t *testing.T) {
	service := NewService()

	var mu sync.Mutex
	var statuses []model.JobStatus
	service.SetUpdateCallback(func(job *model.ConversionJob) {
		// Reading the service from the callback must not deadlock
		service.GetAllJobs()
		mu.Lock()
		statuses = append(statuses, job.Status)
		mu.Unlock()
	})

	var callerCalls int
	pipeline := &Pipeline{
		Transform:  upperTransform,
		Packer:     &fakePacker{},
		OnProgress: func(done, total int) { callerCalls++ },
	}
	job, err := service.StartJob("png-to-jpeg", model.NewSelectionSet(input("a.in", "a"), input("b.in", "b")), pipeline)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitJob(t, service, job.ID)

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) < 2 {
		t.Fatalf("Expected several updates, got %v", statuses)
	}
	if statuses[0] != model.JobStatusRunning {
		t.Errorf("Expected first update to be running, got %s", statuses[0])
	}
	if statuses[len(statuses)-1] != model.JobStatusCompleted {
		t.Errorf("Expected last update to be completed, got %s", statuses[len(statuses)-1])
	}
	if callerCalls != 2 {
		t.Errorf("Expected caller progress to run twice, got %d", callerCalls)
	}
}

func TestGetAllJobs_Ordered(t *testing.T) {
	service := NewService()
	var ids []string
	for _, tool := range []string{"png-to-jpeg", "jpeg-to-png", "webp-to-png"} {
		job, err := service.StartJob(tool, model.NewSelectionSet(input("a.in", "a")), &Pipeline{Transform: upperTransform})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		ids = append(ids, job.ID)
		waitJob(t, service, job.ID)
	}

	jobs := service.GetAllJobs()
	if len(jobs) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.ID != ids[i] {
			t.Errorf("Job %d: expected %s, got %s", i, ids[i], job.ID)
		}
	}
}

var _ Converter = (*Service)(nil)
