package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"inhand/internal/platform/config"
)

const (
	JobRetention        = "salary_history_retention"
	JobIdempotencySweep = "idempotency_key_sweep"
)

var ErrRetentionDisabled = errors.New("history retention is disabled")

// Purger deletes saved calculations created before cutoff.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// KeySweeper drops idempotency records created before cutoff.
type KeySweeper interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	runs      RunStore
	purger    Purger
	sweeper   KeySweeper
	retention time.Duration
	keyTTL    time.Duration
	interval  time.Duration
	queue     chan job
	now       func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunStore, purger Purger, cfg config.Config) *Service {
	return &Service{
		runs:      runs,
		purger:    purger,
		retention: cfg.HistoryRetention,
		keyTTL:    cfg.IdempotencyTTL,
		interval:  cfg.RetentionInterval,
		queue:     make(chan job, 128),
		now:       time.Now,
	}
}

// SetKeySweeper adds the idempotency key sweep to the schedule.
func (s *Service) SetKeySweeper(sweeper KeySweeper) {
	s.sweeper = sweeper
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 && (s.retention > 0 || s.sweeping()) {
		go s.schedule(ctx, s.interval)
	}
}

func (s *Service) sweeping() bool {
	return s.sweeper != nil && s.keyTTL > 0
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// RunRetention purges history older than the configured retention window
// and records the run.
func (s *Service) RunRetention(ctx context.Context) (any, error) {
	if s.retention <= 0 {
		return nil, ErrRetentionDisabled
	}
	return s.RunNow(ctx, JobRetention, s.retentionRun)
}

func (s *Service) retentionRun(ctx context.Context) (any, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.purger.PurgeBefore(ctx, cutoff)
	return map[string]any{
		"cutoff":  cutoff.UTC(),
		"deleted": deleted,
	}, err
}

func (s *Service) sweepRun(ctx context.Context) (any, error) {
	cutoff := s.now().Add(-s.keyTTL)
	deleted, err := s.sweeper.PurgeExpired(ctx, cutoff)
	return map[string]any{
		"cutoff":  cutoff.UTC(),
		"deleted": deleted,
	}, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.runs != nil {
		id, err := s.runs.StartRun(ctx, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueScheduled()
		}
	}
}

func (s *Service) enqueueScheduled() {
	if s.retention > 0 {
		s.Enqueue(JobRetention, s.retentionRun)
	}
	if s.sweeping() {
		s.Enqueue(JobIdempotencySweep, s.sweepRun)
	}
}
