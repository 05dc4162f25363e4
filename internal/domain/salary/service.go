package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"workforce/internal/domain/core"
	cryptoutil "workforce/internal/platform/crypto"
)

type Service struct {
	store      StoreAPI
	directory  Directory
	crypto     *cryptoutil.Service
	payslipDir string
	loc        *time.Location
}

func NewService(store StoreAPI, directory Directory, crypto *cryptoutil.Service, payslipDir string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, directory: directory, crypto: crypto, payslipDir: payslipDir, loc: loc}
}

func (s *Service) ListRates(ctx context.Context, departmentID string) ([]Rate, error) {
	return s.store.ListRates(ctx, departmentID)
}

func (s *Service) CreateRate(ctx context.Context, rate Rate) (string, error) {
	return s.store.CreateRate(ctx, rate)
}

func (s *Service) UpdateRate(ctx context.Context, rate Rate) error {
	return s.store.UpdateRate(ctx, rate)
}

// Resolve returns the rate table row for a (department, contract type)
// pair. A missing row is a hard stop for that employee's payroll, never a
// zero default.
func (s *Service) Resolve(ctx context.Context, departmentID, contractType string) (Rate, error) {
	return s.store.FindRate(ctx, departmentID, contractType)
}

// Aggregate sums the employee's stored per-day buckets over the inclusive
// period and prices them with the resolved rate. Nothing is persisted.
func (s *Service) Aggregate(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (Line, error) {
	if periodEnd.Before(periodStart) {
		return Line{}, ErrInvalidPeriod
	}

	info, err := s.directory.PayrollInfo(ctx, employeeID)
	if err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			return Line{}, ErrEmployeeNotFound
		}
		return Line{}, err
	}

	totals, err := s.store.HourTotalsForPeriod(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return Line{}, err
	}

	rate, err := s.store.FindRate(ctx, info.DepartmentID, info.ContractType)
	if err != nil {
		return Line{}, err
	}

	return Line{
		EmployeeID:  employeeID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Hours:       totals,
		Rate:        rate,
		Total:       ComputeTotal(totals, rate),
	}, nil
}

// GenerateForPeriod runs payroll for every active employee (optionally one
// department). Per-employee domain failures are collected and reported; the
// batch never aborts for them. Paid rows are left untouched and surface in
// the skip list.
func (s *Service) GenerateForPeriod(ctx context.Context, periodStart, periodEnd time.Time, departmentID string) (RunResult, error) {
	result := RunResult{PeriodStart: periodStart, PeriodEnd: periodEnd}
	if periodEnd.Before(periodStart) {
		return result, ErrInvalidPeriod
	}

	employees, err := s.directory.ListActiveEmployees(ctx, departmentID)
	if err != nil {
		return result, err
	}

	for _, employee := range employees {
		line, err := s.Aggregate(ctx, employee.EmployeeID, periodStart, periodEnd)
		if err != nil {
			skip, ok := skipFor(employee.EmployeeID, err)
			if !ok {
				return result, fmt.Errorf("aggregate employee %s: %w", employee.EmployeeID, err)
			}
			result.Skipped = append(result.Skipped, skip)
			continue
		}

		saved, err := s.store.UpsertUnpaidSalary(ctx, line)
		if err != nil {
			skip, ok := skipFor(employee.EmployeeID, err)
			if !ok {
				return result, fmt.Errorf("persist salary for employee %s: %w", employee.EmployeeID, err)
			}
			result.Skipped = append(result.Skipped, skip)
			continue
		}
		result.Generated = append(result.Generated, saved)
	}

	slog.Info("payroll run finished",
		"periodStart", periodStart.Format("2006-01-02"),
		"periodEnd", periodEnd.Format("2006-01-02"),
		"generated", len(result.Generated),
		"skipped", len(result.Skipped))
	return result, nil
}

// GenerateForMonth runs payroll for a calendar month in the service's
// timezone. Scheduled runs use this entry point.
func (s *Service) GenerateForMonth(ctx context.Context, year int, month time.Month) (any, error) {
	start, end := MonthPeriod(year, month, s.loc)
	return s.GenerateForPeriod(ctx, start, end, "")
}

// skipFor classifies an error as a reportable per-employee skip. Anything
// else (storage failures, cancellation) stays fatal for the run.
func skipFor(employeeID string, err error) (SkippedEmployee, bool) {
	switch {
	case errors.Is(err, ErrRateNotFound):
		return SkippedEmployee{EmployeeID: employeeID, Code: SkipCodeRateNotFound, Reason: err.Error()}, true
	case errors.Is(err, ErrEmployeeNotFound):
		return SkippedEmployee{EmployeeID: employeeID, Code: SkipCodeEmployeeNotFound, Reason: err.Error()}, true
	case errors.Is(err, ErrPaidSalaryConflict):
		return SkippedEmployee{EmployeeID: employeeID, Code: SkipCodePaidConflict, Reason: err.Error()}, true
	default:
		return SkippedEmployee{}, false
	}
}

// MarkPaid bulk-transitions unpaid salaries to paid. Already-paid rows are
// skipped quietly; the count reflects rows actually transitioned.
func (s *Service) MarkPaid(ctx context.Context, salaryIDs []string, paymentDate time.Time) (int64, error) {
	return s.store.MarkPaid(ctx, salaryIDs, paymentDate)
}

// SetPaymentStatus updates one salary. Setting the current status again is
// a no-op, not an error; the payment date is set iff the row is paid.
func (s *Service) SetPaymentStatus(ctx context.Context, salaryID, status string, paymentDate time.Time) (Salary, error) {
	current, err := s.store.GetSalary(ctx, salaryID)
	if err != nil {
		return Salary{}, err
	}
	if current.PaymentStatus == status {
		return current, nil
	}

	var updated bool
	switch status {
	case PaymentStatusPaid:
		updated, err = s.store.SetPaid(ctx, salaryID, paymentDate)
	case PaymentStatusUnpaid:
		updated, err = s.store.SetUnpaid(ctx, salaryID)
	default:
		return Salary{}, fmt.Errorf("unknown payment status %q", status)
	}
	if err != nil {
		return Salary{}, err
	}
	if !updated {
		slog.Warn("payment status transition lost a concurrent race", "salaryId", salaryID, "requested", status)
	}
	return s.store.GetSalary(ctx, salaryID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Salary, error) {
	return s.store.ListSalaries(ctx, filter)
}

func (s *Service) Register(ctx context.Context, filter ListFilter) ([]RegisterRow, error) {
	return s.store.RegisterRows(ctx, filter)
}
