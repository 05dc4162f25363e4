package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/platform/config"
	"workforce/internal/platform/email"
)

const (
	JobPayrollGenerate = "payroll_generate"
	JobPayslipBatch    = "payslip_batch"
)

// PayrollGenerator is implemented by the salary service.
type PayrollGenerator interface {
	GenerateForMonth(ctx context.Context, year int, month time.Month) (any, error)
}

type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Payroll PayrollGenerator
	Mailer  email.Mailer
	loc     *time.Location
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, payroll PayrollGenerator, mailer email.Mailer, loc *time.Location) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Payroll: payroll,
		Mailer:  mailer,
		loc:     loc,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.PayrollAutoGenerate {
		go s.schedulePayroll(ctx)
	}
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
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
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

func (s *Service) sendPayrollReport(ctx context.Context, year int, month time.Month, result any) {
	if s.Mailer == nil || s.Cfg.PayrollReportEmail == "" {
		return
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}
	subject := fmt.Sprintf("Payroll run %d-%02d", year, int(month))
	body := fmt.Sprintf("Scheduled payroll generation for %s %d finished.\n\n%s\n", month, year, encoded)
	if err := s.Mailer.Send(ctx, s.Cfg.EmailFrom, s.Cfg.PayrollReportEmail, subject, body); err != nil {
		slog.Warn("payroll report mail failed", "err", err)
	}
}

// schedulePayroll enqueues a payroll run for the previous month once per day,
// after the configured grace period past month end. Regeneration is idempotent
// so firing more than once for the same period is harmless.
func (s *Service) schedulePayroll(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().In(s.loc)
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
			if now.Sub(monthStart) < s.Cfg.PayrollGenerateGrace {
				continue
			}
			prev := monthStart.AddDate(0, -1, 0)
			year, month := prev.Year(), prev.Month()
			s.Enqueue(JobPayrollGenerate, func(ctx context.Context) (any, error) {
				result, err := s.Payroll.GenerateForMonth(ctx, year, month)
				if err == nil {
					s.sendPayrollReport(ctx, year, month, result)
				}
				return result, err
			})
		}
	}
}
