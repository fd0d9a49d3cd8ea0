package convert

import (
	"context"

	"github.com/microtools/micro-tools/internal/model"
)

// Converter defines the interface for the conversion job service.
type Converter interface {
	SetUpdateCallback(func(*model.ConversionJob))
	StartJob(tool string, selection model.SelectionSet, pipeline *Pipeline) (*model.ConversionJob, error)
	StopJob(jobID string) error
	GetJob(jobID string) (*model.ConversionJob, bool)
	GetAllJobs() []*model.ConversionJob
	Wait(ctx context.Context, jobID string) (*model.ConversionJob, error)
}
