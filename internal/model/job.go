package model

import (
	"fmt"
	"time"
)

// ConversionJob is one run of a tool over a selection, as tracked by the convert service
type ConversionJob struct {
	ID         string
	Tool       string
	Status     JobStatus
	Total      int     // number of input files
	Done       int     // files finished, successfully or not
	Progress   float64 // 0.0 to 1.0
	Percent    int     // 0 to 100
	Skipped    int     // files that failed and were left out
	LastError  string  // last error message if any
	OutputPath string  // where the deliverable was saved, set by the caller
	StartedAt  time.Time
	FinishedAt time.Time

	Deliverable *Deliverable
	Failures    []string // "name: reason" for every skipped file
}

// SetProgress records done out of Total and derives Progress and Percent
func (j *ConversionJob) SetProgress(done int) {
	j.Done = done
	if j.Total <= 0 {
		j.Progress = 0
		j.Percent = 0
		return
	}
	j.Progress = float64(done) / float64(j.Total)
	if j.Progress > 1.0 {
		j.Progress = 1.0
	}
	j.Percent = int(j.Progress * 100)
}

// GetProgressText returns "done/total" for display
func (j *ConversionJob) GetProgressText() string {
	return fmt.Sprintf("%d/%d", j.Done, j.Total)
}

// Elapsed returns how long the job ran, or has been running
func (j *ConversionJob) Elapsed() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
