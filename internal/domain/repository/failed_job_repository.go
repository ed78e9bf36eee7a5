package repository

import (
	"context"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
)

// FailedJobRepository records and lists permanently failed background jobs.
// The table is append-only; there is no update or delete.
type FailedJobRepository interface {
	Insert(ctx context.Context, j *entity.FailedJob) error
	List(ctx context.Context, limit, offset int) ([]*entity.FailedJob, int, error)
}
