package attendance

import (
	"context"
	"log/slog"
	"time"
)

type Service struct {
	store StoreAPI
	loc   *time.Location
}

func NewService(store StoreAPI, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc}
}

// CheckIn opens the employee's record for the calendar day of the check-in
// moment. A second check-in on the same day is a conflict.
func (s *Service) CheckIn(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	local := at.In(s.loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return s.store.CreateCheckIn(ctx, employeeID, date, at)
}

// CheckOut closes the most recent open record and classifies the worked
// hours against the employee's shift schedule. The derived buckets are
// recomputed from the stored timestamps, never carried over.
func (s *Service) CheckOut(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	record, err := s.store.FindOpenRecord(ctx, employeeID)
	if err != nil {
		return Record{}, err
	}
	return s.classifyAndSave(ctx, record, record.CheckInTime, at)
}

// Correct lets an administrator replace both timestamps on a finalized
// record; classification runs again from scratch.
func (s *Service) Correct(ctx context.Context, recordID string, checkIn, checkOut time.Time) (Record, error) {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	return s.classifyAndSave(ctx, record, checkIn, checkOut)
}

func (s *Service) classifyAndSave(ctx context.Context, record Record, checkIn, checkOut time.Time) (Record, error) {
	schedule, err := s.store.ScheduleForEmployee(ctx, record.EmployeeID)
	if err != nil {
		return Record{}, err
	}

	buckets, err := ClassifyWorkHours(checkIn, checkOut, record.AttendanceDate.In(s.loc), schedule)
	if err != nil {
		return Record{}, err
	}
	if buckets.Uncovered > 0 {
		slog.Info("attendance has uncovered hours",
			"employeeId", record.EmployeeID,
			"date", record.AttendanceDate.Format("2006-01-02"),
			"uncoveredHours", buckets.Uncovered)
	}

	if err := s.store.SaveClassification(ctx, record.ID, checkIn, checkOut, buckets, StatusPresent); err != nil {
		return Record{}, err
	}

	record.CheckInTime = checkIn
	record.CheckOutTime = &checkOut
	record.MainHours = buckets.Main
	record.RegularOvertimeHours = buckets.RegularOvertime
	record.WeeklyOvertimeHours = buckets.WeeklyOvertime
	record.UncoveredHours = buckets.Uncovered
	record.Status = StatusPresent
	return record, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	return s.store.ListRecords(ctx, filter)
}

// Excuse records an approved-leave day so payroll and reports do not count
// it as absent. Existing records for the day are left untouched.
func (s *Service) Excuse(ctx context.Context, employeeID string, date time.Time) error {
	return s.store.MarkExcused(ctx, employeeID, date)
}
