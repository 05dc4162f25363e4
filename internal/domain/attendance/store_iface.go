package attendance

import (
	"context"
	"time"

	"workforce/internal/domain/shift"
)

type StoreAPI interface {
	CreateCheckIn(ctx context.Context, employeeID string, date time.Time, checkIn time.Time) (Record, error)
	FindOpenRecord(ctx context.Context, employeeID string) (Record, error)
	GetRecord(ctx context.Context, recordID string) (Record, error)
	SaveClassification(ctx context.Context, recordID string, checkIn time.Time, checkOut time.Time, buckets HourBuckets, status string) error
	ListRecords(ctx context.Context, filter Filter) ([]Record, error)
	ScheduleForEmployee(ctx context.Context, employeeID string) (shift.Schedule, error)
	MarkExcused(ctx context.Context, employeeID string, date time.Time) error
}
