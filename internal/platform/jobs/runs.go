package jobs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunStore interface {
	StartRun(ctx context.Context, jobType string) (string, error)
	FinishRun(ctx context.Context, id, status string, details []byte) error
}

type PGRunStore struct {
	DB *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *PGRunStore {
	return &PGRunStore{DB: db}
}

func (s *PGRunStore) StartRun(ctx context.Context, jobType string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&id)
	return id, err
}

func (s *PGRunStore) FinishRun(ctx context.Context, id, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}
