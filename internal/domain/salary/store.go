package salary

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListRates(ctx context.Context, departmentID string) ([]Rate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, department_id, contract_type, main_rate, regular_overtime_rate, weekly_overtime_rate, created_at, updated_at
    FROM salary_rates
    WHERE ($1 = '' OR department_id::text = $1)
    ORDER BY department_id, contract_type
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.ID, &rate.DepartmentID, &rate.ContractType,
			&rate.MainRate, &rate.RegularOvertimeRate, &rate.WeeklyOvertimeRate,
			&rate.CreatedAt, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func (s *Store) CreateRate(ctx context.Context, rate Rate) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_rates (department_id, contract_type, main_rate, regular_overtime_rate, weekly_overtime_rate)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, rate.DepartmentID, rate.ContractType, rate.MainRate, rate.RegularOvertimeRate, rate.WeeklyOvertimeRate).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateRate
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateRate(ctx context.Context, rate Rate) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salary_rates
    SET main_rate = $2, regular_overtime_rate = $3, weekly_overtime_rate = $4, updated_at = now()
    WHERE id = $1
  `, rate.ID, rate.MainRate, rate.RegularOvertimeRate, rate.WeeklyOvertimeRate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRateNotFound
	}
	return nil
}

func (s *Store) FindRate(ctx context.Context, departmentID, contractType string) (Rate, error) {
	var rate Rate
	err := s.DB.QueryRow(ctx, `
    SELECT id, department_id, contract_type, main_rate, regular_overtime_rate, weekly_overtime_rate, created_at, updated_at
    FROM salary_rates
    WHERE department_id = $1 AND contract_type = $2
  `, departmentID, contractType).Scan(&rate.ID, &rate.DepartmentID, &rate.ContractType,
		&rate.MainRate, &rate.RegularOvertimeRate, &rate.WeeklyOvertimeRate,
		&rate.CreatedAt, &rate.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	return rate, err
}

// HourTotalsForPeriod sums the persisted per-day buckets; classification is
// trusted as stored, never re-derived here.
func (s *Store) HourTotalsForPeriod(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (HourTotals, error) {
	var totals HourTotals
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(main_hours), 0),
           COALESCE(SUM(regular_overtime_hours), 0),
           COALESCE(SUM(weekly_overtime_hours), 0)
    FROM attendance_records
    WHERE employee_id = $1
      AND attendance_date >= $2
      AND attendance_date <= $3
  `, employeeID, periodStart, periodEnd).Scan(&totals.Main, &totals.RegularOvertime, &totals.WeeklyOvertime)
	return totals, err
}

const salaryColumns = `
    id, employee_id, period_start, period_end,
    main_hours, regular_overtime_hours, weekly_overtime_hours,
    total_salary, payment_status, payment_date, created_at, updated_at`

// UpsertUnpaidSalary writes one employee-period result. The conditional
// update makes the paid guard atomic: a row that is (or concurrently
// becomes) paid is not touched, and the statement returns no row, which is
// reported as a conflict.
func (s *Store) UpsertUnpaidSalary(ctx context.Context, line Line) (Salary, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO salaries (employee_id, period_start, period_end,
                          main_hours, regular_overtime_hours, weekly_overtime_hours,
                          total_salary, payment_status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (employee_id, period_start, period_end)
    DO UPDATE SET main_hours = EXCLUDED.main_hours,
                  regular_overtime_hours = EXCLUDED.regular_overtime_hours,
                  weekly_overtime_hours = EXCLUDED.weekly_overtime_hours,
                  total_salary = EXCLUDED.total_salary,
                  updated_at = now()
    WHERE salaries.payment_status = $8
    RETURNING `+salaryColumns+`
  `, line.EmployeeID, line.PeriodStart, line.PeriodEnd,
		line.Hours.Main, line.Hours.RegularOvertime, line.Hours.WeeklyOvertime,
		line.Total, PaymentStatusUnpaid)
	result, err := scanSalary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, ErrPaidSalaryConflict
	}
	return result, err
}

func (s *Store) GetSalary(ctx context.Context, salaryID string) (Salary, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+salaryColumns+`
    FROM salaries
    WHERE id = $1
  `, salaryID)
	result, err := scanSalary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, ErrSalaryNotFound
	}
	return result, err
}

func (s *Store) ListSalaries(ctx context.Context, filter ListFilter) ([]Salary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT s.id, s.employee_id, s.period_start, s.period_end,
           s.main_hours, s.regular_overtime_hours, s.weekly_overtime_hours,
           s.total_salary, s.payment_status, s.payment_date, s.created_at, s.updated_at
    FROM salaries s
    JOIN employees e ON s.employee_id = e.id
    WHERE ($1 = '' OR s.employee_id::text = $1)
      AND ($2 = '' OR e.department_id::text = $2)
      AND ($3 = '' OR e.contract_type = $3)
      AND ($4 = '' OR s.payment_status = $4)
      AND ($5::date IS NULL OR s.period_start >= $5)
      AND ($6::date IS NULL OR s.period_end <= $6)
    ORDER BY s.period_start DESC, s.employee_id
    LIMIT $7 OFFSET $8
  `, filter.EmployeeID, filter.DepartmentID, filter.ContractType, filter.PaymentStatus,
		nullIfZeroTime(filter.From), nullIfZeroTime(filter.To), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var salaries []Salary
	for rows.Next() {
		result, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		salaries = append(salaries, result)
	}
	return salaries, nil
}

// MarkPaid transitions every targeted unpaid row in one statement. Rows
// already paid keep their original payment date; the returned count is the
// number of rows actually transitioned.
func (s *Store) MarkPaid(ctx context.Context, salaryIDs []string, paymentDate time.Time) (int64, error) {
	if len(salaryIDs) == 0 {
		return 0, nil
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE salaries
    SET payment_status = $2, payment_date = $3, updated_at = now()
    WHERE id = ANY($1) AND payment_status = $4
  `, salaryIDs, PaymentStatusPaid, paymentDate, PaymentStatusUnpaid)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) SetPaid(ctx context.Context, salaryID string, paymentDate time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salaries
    SET payment_status = $2, payment_date = $3, updated_at = now()
    WHERE id = $1 AND payment_status = $4
  `, salaryID, PaymentStatusPaid, paymentDate, PaymentStatusUnpaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SetUnpaid(ctx context.Context, salaryID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salaries
    SET payment_status = $2, payment_date = NULL, updated_at = now()
    WHERE id = $1 AND payment_status = $3
  `, salaryID, PaymentStatusUnpaid, PaymentStatusPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) RegisterRows(ctx context.Context, filter ListFilter) ([]RegisterRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT s.employee_id, e.employee_number, e.first_name, e.last_name,
           d.name, e.contract_type, s.period_start, s.period_end,
           s.main_hours, s.regular_overtime_hours, s.weekly_overtime_hours,
           s.total_salary, s.payment_status
    FROM salaries s
    JOIN employees e ON s.employee_id = e.id
    JOIN departments d ON e.department_id = d.id
    WHERE ($1 = '' OR e.department_id::text = $1)
      AND ($2 = '' OR s.payment_status = $2)
      AND ($3::date IS NULL OR s.period_start >= $3)
      AND ($4::date IS NULL OR s.period_end <= $4)
    ORDER BY d.name, e.last_name, e.first_name, s.period_start
  `, filter.DepartmentID, filter.PaymentStatus, nullIfZeroTime(filter.From), nullIfZeroTime(filter.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisterRow
	for rows.Next() {
		var row RegisterRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeNumber, &row.FirstName, &row.LastName,
			&row.DepartmentName, &row.ContractType, &row.PeriodStart, &row.PeriodEnd,
			&row.MainHours, &row.RegularOvertimeHours, &row.WeeklyOvertimeHours,
			&row.TotalSalary, &row.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) PayslipData(ctx context.Context, salaryID string) (PayslipData, error) {
	var data PayslipData
	row := s.DB.QueryRow(ctx, `
    SELECT s.id, s.employee_id, s.period_start, s.period_end,
           s.main_hours, s.regular_overtime_hours, s.weekly_overtime_hours,
           s.total_salary, s.payment_status, s.payment_date, s.created_at, s.updated_at,
           e.first_name, e.last_name, e.employee_number, d.name, e.contract_type
    FROM salaries s
    JOIN employees e ON s.employee_id = e.id
    JOIN departments d ON e.department_id = d.id
    WHERE s.id = $1
  `, salaryID)
	err := row.Scan(
		&data.Salary.ID, &data.Salary.EmployeeID, &data.Salary.PeriodStart, &data.Salary.PeriodEnd,
		&data.Salary.MainHours, &data.Salary.RegularOvertimeHours, &data.Salary.WeeklyOvertimeHours,
		&data.Salary.TotalSalary, &data.Salary.PaymentStatus, &data.Salary.PaymentDate,
		&data.Salary.CreatedAt, &data.Salary.UpdatedAt,
		&data.FirstName, &data.LastName, &data.EmployeeNumber, &data.DepartmentName, &data.ContractType,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayslipData{}, ErrSalaryNotFound
	}
	return data, err
}

func scanSalary(row pgx.Row) (Salary, error) {
	var result Salary
	if err := row.Scan(
		&result.ID, &result.EmployeeID, &result.PeriodStart, &result.PeriodEnd,
		&result.MainHours, &result.RegularOvertimeHours, &result.WeeklyOvertimeHours,
		&result.TotalSalary, &result.PaymentStatus, &result.PaymentDate,
		&result.CreatedAt, &result.UpdatedAt,
	); err != nil {
		return Salary{}, err
	}
	return result, nil
}

func nullIfZeroTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
