package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stempel/internal/platform/config"
	"stempel/internal/platform/metrics"
)

const JobAutoClockOut = "auto_clock_out"

// Sweeper force-closes open shifts for every tenant whose cutoff
// minute has arrived.
type Sweeper interface {
	RunAutoClockOut(ctx context.Context, now time.Time) (int, error)
}

type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	sweeper Sweeper
	metrics *metrics.Collector
	queue   chan job
}

type job struct {
	Type     string
	TenantID *string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, sweeper Sweeper, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		sweeper: sweeper,
		metrics: collector,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.AutoClockOutInterval > 0 {
		go s.scheduleAutoClockOut(ctx, s.Cfg.AutoClockOutInterval)
	}
}

func (s *Service) Enqueue(jobType string, tenantID *string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job inline, still recording a job_runs row. Used
// by the admin trigger endpoint.
func (s *Service) RunNow(ctx context.Context, jobType string, tenantID *string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
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
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleAutoClockOut(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobAutoClockOut, nil, s.autoClockOutRun(time.Now()))
		}
	}
}

// AutoClockOutNow runs the sweep inline for the current minute.
func (s *Service) AutoClockOutNow(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobAutoClockOut, nil, s.autoClockOutRun(time.Now()))
}

func (s *Service) autoClockOutRun(now time.Time) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		closed, err := s.sweeper.RunAutoClockOut(ctx, now)
		if s.metrics != nil {
			s.metrics.RecordAutoClockOuts(closed)
		}
		return map[string]any{"closedShifts": closed}, err
	}
}
