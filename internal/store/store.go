package store

import (
	"context"

	"github.com/petrosul/recon-cli/internal/model"
)

// RunFilter specifies criteria for listing job runs.
type RunFilter struct {
	Job    string          `json:"job,omitempty"`
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store is the persistence interface for the run log. The run log is an
// audit trail, not an input: reconciliation always works from the workbooks.
type Store interface {
	CreateRun(ctx context.Context, job string) (*model.JobRun, error)
	CompleteRun(ctx context.Context, runID string, result *model.JobResult) error
	FailRun(ctx context.Context, runID string, result *model.JobResult) error
	GetRun(ctx context.Context, runID string) (*model.JobRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.JobRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
