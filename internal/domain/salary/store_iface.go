package salary

import (
	"context"
	"time"

	"workforce/internal/domain/core"
)

type StoreAPI interface {
	ListRates(ctx context.Context, departmentID string) ([]Rate, error)
	CreateRate(ctx context.Context, rate Rate) (string, error)
	UpdateRate(ctx context.Context, rate Rate) error
	FindRate(ctx context.Context, departmentID, contractType string) (Rate, error)
	HourTotalsForPeriod(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (HourTotals, error)
	UpsertUnpaidSalary(ctx context.Context, line Line) (Salary, error)
	GetSalary(ctx context.Context, salaryID string) (Salary, error)
	ListSalaries(ctx context.Context, filter ListFilter) ([]Salary, error)
	MarkPaid(ctx context.Context, salaryIDs []string, paymentDate time.Time) (int64, error)
	SetPaid(ctx context.Context, salaryID string, paymentDate time.Time) (bool, error)
	SetUnpaid(ctx context.Context, salaryID string) (bool, error)
	RegisterRows(ctx context.Context, filter ListFilter) ([]RegisterRow, error)
	PayslipData(ctx context.Context, salaryID string) (PayslipData, error)
}

// Directory is the slice of the employee directory the salary engine reads.
type Directory interface {
	PayrollInfo(ctx context.Context, employeeID string) (core.PayrollInfo, error)
	ListActiveEmployees(ctx context.Context, departmentID string) ([]core.PayrollInfo, error)
}
