package repository

import (
	"context"

	"github.com/fafnerzhang/codetrekking/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// RunRepository records planning runs. Writes are upserts keyed by run id, so
// recording the same run twice never duplicates it.
type RunRepository interface {
	Save(ctx context.Context, run *domain.PlanningRun) error
	GetByID(ctx context.Context, runID string) (*domain.PlanningRun, error)
	List(ctx context.Context, limit int64) ([]domain.PlanningRun, error)
}
