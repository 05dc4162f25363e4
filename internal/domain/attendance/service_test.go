package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"workforce/internal/domain/shift"
)

type memStore struct {
	records   map[string]Record
	schedules map[string]shift.Schedule
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]Record{}, schedules: map[string]shift.Schedule{}}
}

func (s *memStore) CreateCheckIn(_ context.Context, employeeID string, date, checkIn time.Time) (Record, error) {
	for _, r := range s.records {
		if r.EmployeeID == employeeID && r.AttendanceDate.Equal(date) {
			return Record{}, ErrAlreadyCheckedIn
		}
	}
	s.nextID++
	record := Record{
		ID:             fmt.Sprintf("att-%d", s.nextID),
		EmployeeID:     employeeID,
		AttendanceDate: date,
		CheckInTime:    checkIn,
		Status:         StatusCheckedIn,
	}
	s.records[record.ID] = record
	return record, nil
}

func (s *memStore) FindOpenRecord(_ context.Context, employeeID string) (Record, error) {
	for _, r := range s.records {
		if r.EmployeeID == employeeID && r.CheckOutTime == nil && r.Status == StatusCheckedIn {
			return r, nil
		}
	}
	return Record{}, ErrNotCheckedIn
}

func (s *memStore) GetRecord(_ context.Context, recordID string) (Record, error) {
	record, ok := s.records[recordID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

func (s *memStore) SaveClassification(_ context.Context, recordID string, checkIn, checkOut time.Time, buckets HourBuckets, status string) error {
	record, ok := s.records[recordID]
	if !ok {
		return ErrRecordNotFound
	}
	record.CheckInTime = checkIn
	record.CheckOutTime = &checkOut
	record.MainHours = buckets.Main
	record.RegularOvertimeHours = buckets.RegularOvertime
	record.WeeklyOvertimeHours = buckets.WeeklyOvertime
	record.UncoveredHours = buckets.Uncovered
	record.Status = status
	s.records[recordID] = record
	return nil
}

func (s *memStore) ListRecords(context.Context, Filter) ([]Record, error) { return nil, nil }

func (s *memStore) ScheduleForEmployee(_ context.Context, employeeID string) (shift.Schedule, error) {
	schedule, ok := s.schedules[employeeID]
	if !ok {
		return shift.Schedule{}, ErrNoScheduleAssigned
	}
	return schedule, nil
}

func (s *memStore) MarkExcused(context.Context, string, time.Time) error { return nil }

func TestCheckInOutFlow(t *testing.T) {
	store := newMemStore()
	lunch := shift.Window{Start: 720, End: 780}
	store.schedules["emp-1"] = shift.Schedule{
		Main:  shift.Window{Start: 480, End: 960},
		Lunch: &lunch,
	}
	svc := NewService(store, time.UTC)

	checkIn := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	record, err := svc.CheckIn(context.Background(), "emp-1", checkIn)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if record.Status != StatusCheckedIn {
		t.Fatalf("expected checked_in, got %s", record.Status)
	}
	if !record.AttendanceDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected attendance date %v", record.AttendanceDate)
	}

	record, err = svc.CheckOut(context.Background(), "emp-1", checkIn.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if record.Status != StatusPresent {
		t.Fatalf("expected present, got %s", record.Status)
	}
	if record.MainHours != 7 || record.UncoveredHours != 1 {
		t.Fatalf("unexpected buckets: %+v", record)
	}
}

func TestCheckInTwiceSameDay(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, time.UTC)

	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if _, err := svc.CheckIn(context.Background(), "emp-1", at); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if _, err := svc.CheckIn(context.Background(), "emp-1", at.Add(time.Hour)); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := NewService(newMemStore(), time.UTC)
	_, err := svc.CheckOut(context.Background(), "emp-1", time.Now())
	if !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}

func TestCheckOutWithoutSchedule(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, time.UTC)

	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if _, err := svc.CheckIn(context.Background(), "emp-1", at); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), "emp-1", at.Add(8*time.Hour)); !errors.Is(err, ErrNoScheduleAssigned) {
		t.Fatalf("expected ErrNoScheduleAssigned, got %v", err)
	}
}

func TestCorrectReclassifies(t *testing.T) {
	store := newMemStore()
	store.schedules["emp-1"] = shift.Schedule{Main: shift.Window{Start: 480, End: 960}}
	svc := NewService(store, time.UTC)

	checkIn := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	record, err := svc.CheckIn(context.Background(), "emp-1", checkIn)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), "emp-1", checkIn.Add(4*time.Hour)); err != nil {
		t.Fatalf("check-out: %v", err)
	}

	corrected, err := svc.Correct(context.Background(), record.ID, checkIn, checkIn.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corrected.MainHours != 8 {
		t.Fatalf("expected 8 main hours after correction, got %v", corrected.MainHours)
	}

	if _, err := svc.Correct(context.Background(), "missing", checkIn, checkIn.Add(time.Hour)); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
