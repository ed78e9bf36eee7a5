package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

type FailedJobRepository struct {
	db querier
}

func NewFailedJobRepository(pool *pgxpool.Pool) *FailedJobRepository {
	return &FailedJobRepository{db: pool}
}

func (r *FailedJobRepository) Insert(ctx context.Context, j *entity.FailedJob) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO failed_jobs (queue, payload, error, failed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, j.Queue, j.Payload, j.Error, j.FailedAt)

	return row.Scan(&j.ID)
}

func (r *FailedJobRepository) List(ctx context.Context, limit, offset int) ([]*entity.FailedJob, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM failed_jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit = clampLimit(limit)
	rows, err := r.db.Query(ctx, `
		SELECT id, queue, payload, error, failed_at
		FROM failed_jobs
		ORDER BY failed_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]*entity.FailedJob, 0, limit)
	for rows.Next() {
		j := &entity.FailedJob{}
		if err := rows.Scan(&j.ID, &j.Queue, &j.Payload, &j.Error, &j.FailedAt); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

var _ repository.FailedJobRepository = (*FailedJobRepository)(nil)
