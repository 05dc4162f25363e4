package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/shift"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
    id, employee_id, attendance_date, check_in_time, check_out_time,
    main_hours, regular_overtime_hours, weekly_overtime_hours, uncovered_hours,
    status, created_at, updated_at`

func (s *Store) CreateCheckIn(ctx context.Context, employeeID string, date time.Time, checkIn time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, attendance_date, check_in_time, status)
    VALUES ($1, $2, $3, $4)
    RETURNING `+recordColumns+`
  `, employeeID, date, checkIn, StatusCheckedIn)
	record, err := scanRecord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, err
	}
	return record, nil
}

func (s *Store) FindOpenRecord(ctx context.Context, employeeID string) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE employee_id = $1 AND check_out_time IS NULL AND status = $2
    ORDER BY attendance_date DESC
    LIMIT 1
  `, employeeID, StatusCheckedIn)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotCheckedIn
	}
	return record, err
}

func (s *Store) GetRecord(ctx context.Context, recordID string) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE id = $1
  `, recordID)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return record, err
}

func (s *Store) SaveClassification(ctx context.Context, recordID string, checkIn time.Time, checkOut time.Time, buckets HourBuckets, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_in_time = $2, check_out_time = $3,
        main_hours = $4, regular_overtime_hours = $5, weekly_overtime_hours = $6,
        uncovered_hours = $7, status = $8, updated_at = now()
    WHERE id = $1
  `, recordID, checkIn, checkOut,
		buckets.Main, buckets.RegularOvertime, buckets.WeeklyOvertime, buckets.Uncovered, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, filter Filter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE ($1 = '' OR employee_id::text = $1)
      AND ($2::date IS NULL OR attendance_date >= $2)
      AND ($3::date IS NULL OR attendance_date <= $3)
      AND ($4 = '' OR status = $4)
    ORDER BY attendance_date DESC
    LIMIT $5 OFFSET $6
  `, filter.EmployeeID, nullIfZeroTime(filter.From), nullIfZeroTime(filter.To), filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ScheduleForEmployee resolves the schedule through the employee row so the
// caller never needs a second lookup for the shift id.
func (s *Store) ScheduleForEmployee(ctx context.Context, employeeID string) (shift.Schedule, error) {
	var scheduleID *string
	err := s.DB.QueryRow(ctx, `
    SELECT shift_schedule_id::text
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&scheduleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return shift.Schedule{}, ErrRecordNotFound
	}
	if err != nil {
		return shift.Schedule{}, err
	}
	if scheduleID == nil || *scheduleID == "" {
		return shift.Schedule{}, ErrNoScheduleAssigned
	}
	return shift.NewStore(s.DB).GetSchedule(ctx, *scheduleID)
}

func (s *Store) MarkExcused(ctx context.Context, employeeID string, date time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_records (employee_id, attendance_date, check_in_time, status)
    VALUES ($1, $2, $2, $3)
    ON CONFLICT (employee_id, attendance_date) DO NOTHING
  `, employeeID, date, StatusExcused)
	return err
}

func scanRecord(row pgx.Row) (Record, error) {
	var record Record
	if err := row.Scan(
		&record.ID, &record.EmployeeID, &record.AttendanceDate, &record.CheckInTime,
		&record.CheckOutTime, &record.MainHours, &record.RegularOvertimeHours,
		&record.WeeklyOvertimeHours, &record.UncoveredHours, &record.Status,
		&record.CreatedAt, &record.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	return record, nil
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
