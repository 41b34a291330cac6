package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"hospitalhr/internal/domain/probation"
	"hospitalhr/internal/platform/db"
)

const JobProbationSweep = "probation_due_sweep"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type ProbationSweeper interface {
	DueSweep(ctx context.Context, withinDays int) (probation.SweepReport, error)
}

// SweepNotifier is told about every successful sweep.
type SweepNotifier interface {
	NotifyProbationDue(ctx context.Context, report probation.SweepReport) error
}

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Service struct {
	DB            db.Queryer
	Probation     ProbationSweeper
	SweepInterval time.Duration
	DueDays       int
	Notifier      SweepNotifier
	Logger        *slog.Logger
	queue         chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(q db.Queryer, sweeper ProbationSweeper, interval time.Duration, dueDays int) *Service {
	return &Service{
		DB:            q,
		Probation:     sweeper,
		SweepInterval: interval,
		DueDays:       dueDays,
		Logger:        slog.Default(),
		queue:         make(chan job, 32),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.SweepInterval > 0 && s.Probation != nil {
		go s.scheduleSweeps(ctx, s.SweepInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		s.Logger.Warn("job queue full", "jobType", jobType)
		return false
	}
}

// EnqueueProbationSweep queues a sweep for the background worker. A
// negative withinDays uses DueDays.
func (s *Service) EnqueueProbationSweep(withinDays int) bool {
	if withinDays < 0 {
		withinDays = s.DueDays
	}
	return s.Enqueue(JobProbationSweep, s.sweep(withinDays))
}

// RunProbationSweep runs the sweep synchronously and records it in job_runs.
func (s *Service) RunProbationSweep(ctx context.Context, withinDays int) (probation.SweepReport, error) {
	if withinDays < 0 {
		withinDays = s.DueDays
	}
	details, err := s.runJob(ctx, job{Type: JobProbationSweep, Run: s.sweep(withinDays)})
	report, _ := details.(probation.SweepReport)
	return report, err
}

func (s *Service) sweep(withinDays int) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		report, err := s.Probation.DueSweep(ctx, withinDays)
		if err != nil {
			return nil, err
		}
		for _, view := range report.Overdue {
			s.Logger.Warn("probation overdue", "employeeRef", view.EmployeeRef, "daysRemaining", view.DaysRemaining, "status", string(view.Status))
		}
		for _, view := range report.Due {
			s.Logger.Info("probation due", "employeeRef", view.EmployeeRef, "daysRemaining", view.DaysRemaining, "label", view.Label)
		}
		if s.Notifier != nil {
			if err := s.Notifier.NotifyProbationDue(ctx, report); err != nil {
				s.Logger.Warn("probation digest not sent", "err", err)
			}
		}
		return report, nil
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Logger.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	var runID int64
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, StatusRunning).Scan(&runID); err != nil {
			s.Logger.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]string{"error": err.Error()}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.Logger.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != 0 {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			s.Logger.Warn("job run update failed", "jobType", j.Type, "err", updErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Service) scheduleSweeps(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobProbationSweep, s.sweep(s.DueDays))
		}
	}
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE job_type = $1
    ORDER BY started_at DESC
    LIMIT $2
  `, jobType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			run       Run
			id        int64
			details   []byte
			completed sql.NullTime
		)
		if err := rows.Scan(&id, &run.JobType, &run.Status, &details, &run.StartedAt, &completed); err != nil {
			return nil, err
		}
		run.Details = details
		run.ID = strconv.FormatInt(id, 10)
		if completed.Valid {
			run.CompletedAt = &completed.Time
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
