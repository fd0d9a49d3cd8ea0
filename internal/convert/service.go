package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/microtools/micro-tools/internal/model"
)

// JobIDPrefix prefixes every conversion job ID
const JobIDPrefix = "convert-"

// Service runs conversion jobs in the background
type Service struct {
	jobs      map[string]*model.ConversionJob
	cancels   map[string]context.CancelFunc
	done      map[string]chan struct{}
	jobsMutex sync.RWMutex
	onUpdate  func(*model.ConversionJob) // callback for UI updates
}

// NewService creates a new conversion service
func NewService() *Service {
	return &Service{
		jobs:    make(map[string]*model.ConversionJob),
		cancels: make(map[string]context.CancelFunc),
		done:    make(map[string]chan struct{}),
	}
}

// SetUpdateCallback sets the callback function for job updates.
// The callback receives a snapshot and runs on the job's goroutine.
func (s *Service) SetUpdateCallback(callback func(*model.ConversionJob)) {
	s.jobsMutex.Lock()
	s.onUpdate = callback
	s.jobsMutex.Unlock()
}

// StartJob starts converting selection with pipeline under the given tool name
func (s *Service) StartJob(tool string, selection model.SelectionSet, pipeline *Pipeline) (*model.ConversionJob, error) {
	if selection.IsEmpty() {
		return nil, ErrEmptySelection
	}
	if pipeline == nil || pipeline.Transform == nil {
		return nil, ErrNoTransform
	}

	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	// One active job per tool
	for _, job := range s.jobs {
		if job.Tool == tool && !job.Status.IsFinished() {
			return nil, fmt.Errorf("conversion already in progress for tool: %s", tool)
		}
	}

	job := &model.ConversionJob{
		ID:        generateJobID(),
		Tool:      tool,
		Status:    model.JobStatusPending,
		Total:     selection.Len(),
		StartedAt: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.jobs[job.ID] = job
	s.cancels[job.ID] = cancel
	s.done[job.ID] = make(chan struct{})

	// Start conversion in background
	go s.runJob(ctx, job, selection, pipeline)

	snapshot := *job
	return &snapshot, nil
}

// StopJob cancels a running job
func (s *Service) StopJob(jobID string) error {
	s.jobsMutex.Lock()

	job, exists := s.jobs[jobID]
	if !exists {
		s.jobsMutex.Unlock()
		return fmt.Errorf("conversion job not found: %s", jobID)
	}

	if job.Status.IsFinished() {
		s.jobsMutex.Unlock()
		return fmt.Errorf("conversion job is not active: %s", job.Status)
	}

	job.Status = model.JobStatusStopping
	s.cancels[jobID]()
	snapshot, callback := s.snapshotLocked(job)
	s.jobsMutex.Unlock()

	notify(callback, snapshot)
	return nil
}

// GetJob returns a snapshot of a job by ID
func (s *Service) GetJob(jobID string) (*model.ConversionJob, bool) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// GetAllJobs returns snapshots of all jobs, oldest first
func (s *Service) GetAllJobs() []*model.ConversionJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	jobs := make([]*model.ConversionJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].ID < jobs[j].ID
	})
	return jobs
}

// Wait blocks until the job finishes or ctx is done and returns its final snapshot
func (s *Service) Wait(ctx context.Context, jobID string) (*model.ConversionJob, error) {
	s.jobsMutex.RLock()
	done, exists := s.done[jobID]
	s.jobsMutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("conversion job not found: %s", jobID)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	job, _ := s.GetJob(jobID)
	return job, nil
}

// runJob performs the conversion and records the outcome
func (s *Service) runJob(ctx context.Context, job *model.ConversionJob, selection model.SelectionSet, pipeline *Pipeline) {
	defer func() {
		s.jobsMutex.Lock()
		s.cancels[job.ID]()
		close(s.done[job.ID])
		s.jobsMutex.Unlock()
	}()

	s.jobsMutex.Lock()
	if job.Status == model.JobStatusPending {
		job.Status = model.JobStatusRunning
	}
	snapshot, callback := s.snapshotLocked(job)
	s.jobsMutex.Unlock()
	notify(callback, snapshot)

	// Progress goes to the job; the caller's own callback still runs
	p := *pipeline
	callerProgress := pipeline.OnProgress
	p.OnProgress = func(done, total int) {
		s.jobsMutex.Lock()
		job.SetProgress(done)
		snapshot, callback := s.snapshotLocked(job)
		s.jobsMutex.Unlock()
		notify(callback, snapshot)
		if callerProgress != nil {
			callerProgress(done, total)
		}
	}

	result, err := p.Convert(ctx, selection)

	s.jobsMutex.Lock()
	if result != nil {
		job.Skipped = result.Skipped
		for _, o := range result.Failures() {
			job.Failures = append(job.Failures, fmt.Sprintf("%s: %v", o.Input, o.Err))
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		job.Status = model.JobStatusStopped
	case err != nil:
		job.Status = model.JobStatusError
		job.LastError = err.Error()
		log.Printf("Conversion job %s failed: %v", job.ID, err)
	default:
		job.Status = model.JobStatusCompleted
		job.Deliverable = result.Deliverable
		job.SetProgress(job.Total)
		if result.Skipped > 0 {
			log.Printf("Conversion job %s skipped %d of %d files", job.ID, result.Skipped, job.Total)
		}
	}
	job.FinishedAt = time.Now()
	snapshot, callback = s.snapshotLocked(job)
	s.jobsMutex.Unlock()
	notify(callback, snapshot)
}

// snapshotLocked copies job and the current callback; jobsMutex must be held
func (s *Service) snapshotLocked(job *model.ConversionJob) (*model.ConversionJob, func(*model.ConversionJob)) {
	snapshot := *job
	snapshot.Failures = append([]string(nil), job.Failures...)
	return &snapshot, s.onUpdate
}

// notify calls the update callback if set
func notify(callback func(*model.ConversionJob), job *model.ConversionJob) {
	if callback != nil {
		callback(job)
	}
}

// generateJobID generates a unique job ID using UUID v7 for time ordering
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
