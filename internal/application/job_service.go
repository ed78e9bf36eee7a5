package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	repo "github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

// JobService records and lists permanently failed background jobs.
type JobService struct {
	Repo   repo.FailedJobRepository
	Logger *logrus.Logger
}

func NewJobService(r repo.FailedJobRepository, logger *logrus.Logger) *JobService {
	return &JobService{Repo: r, Logger: logger}
}

// RecordFailure appends a failed job row. payload is the raw message
// body as taken off the queue.
func (s *JobService) RecordFailure(ctx context.Context, queue string, payload []byte, cause error) error {
	j := &entity.FailedJob{
		Queue:    queue,
		Payload:  payload,
		Error:    cause.Error(),
		FailedAt: time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, j); err != nil {
		s.Logger.WithError(err).WithField("queue", queue).Error("failed to record failed job")
		return err
	}
	return nil
}

// ListFailures returns one page of failed jobs, newest first.
func (s *JobService) ListFailures(ctx context.Context, page, perPage int) ([]*entity.FailedJob, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return s.Repo.List(ctx, perPage, (page-1)*perPage)
}
