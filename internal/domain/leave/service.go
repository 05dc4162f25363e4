package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTypeNotFound    = errors.New("leave type not found")
	ErrRequestNotFound = errors.New("leave request not found")
	ErrInvalidState    = errors.New("leave request is not pending")
)

// Excuser marks attendance days covered by an approved request so they are
// not reported absent. attendance.Service satisfies it.
type Excuser interface {
	Excuse(ctx context.Context, employeeID string, date time.Time) error
}

type Service struct {
	DB      *pgxpool.Pool
	Excuser Excuser
}

func NewService(db *pgxpool.Pool, excuser Excuser) *Service {
	return &Service{DB: db, Excuser: excuser}
}

func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, is_paid, created_at
    FROM leave_types
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.IsPaid, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (s *Service) CreateType(ctx context.Context, payload Type) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, code, is_paid)
    VALUES ($1,$2,$3)
    RETURNING id
  `, payload.Name, payload.Code, payload.IsPaid).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) CreateRequest(ctx context.Context, payload Request) (Request, error) {
	days, err := CalculateDays(payload.StartDate, payload.EndDate)
	if err != nil {
		return Request{}, err
	}

	var typeCount int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_types WHERE id = $1", payload.LeaveTypeID).Scan(&typeCount); err != nil {
		return Request{}, err
	}
	if typeCount == 0 {
		return Request{}, ErrTypeNotFound
	}

	payload.Days = days
	payload.Status = StatusPending
	err = s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, leave_type_id, start_date, end_date, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at
  `, payload.EmployeeID, payload.LeaveTypeID, payload.StartDate, payload.EndDate,
		payload.Days, payload.Reason, payload.Status).Scan(&payload.ID, &payload.CreatedAt)
	if err != nil {
		return Request{}, err
	}
	return payload, nil
}

func (s *Service) ListRequests(ctx context.Context, employeeID, status string, limit, offset int) ([]Request, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, leave_type_id, start_date, end_date, days, reason, status,
           COALESCE(decided_by::text, ''), decided_at, created_at
    FROM leave_requests
    WHERE ($1 = '' OR employee_id::text = $1)
      AND ($2 = '' OR status = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, employeeID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var request Request
		if err := rows.Scan(&request.ID, &request.EmployeeID, &request.LeaveTypeID,
			&request.StartDate, &request.EndDate, &request.Days, &request.Reason,
			&request.Status, &request.DecidedBy, &request.DecidedAt, &request.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// Decide transitions a pending request to approved or rejected. The guard
// on the current status keeps double decisions out. Approval excuses each
// covered attendance day.
func (s *Service) Decide(ctx context.Context, requestID, decidedBy, newStatus string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $2, decided_by = $3, decided_at = now()
    WHERE id = $1 AND status = $4
    RETURNING id, employee_id, leave_type_id, start_date, end_date, days, reason, status,
              COALESCE(decided_by::text, ''), decided_at, created_at
  `, requestID, newStatus, decidedBy, StatusPending)

	var request Request
	err := row.Scan(&request.ID, &request.EmployeeID, &request.LeaveTypeID,
		&request.StartDate, &request.EndDate, &request.Days, &request.Reason,
		&request.Status, &request.DecidedBy, &request.DecidedAt, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE id = $1", requestID).Scan(&count); err != nil {
			return Request{}, err
		}
		if count == 0 {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, ErrInvalidState
	}
	if err != nil {
		return Request{}, err
	}

	if newStatus == StatusApproved && s.Excuser != nil {
		for day := request.StartDate; !day.After(request.EndDate); day = day.AddDate(0, 0, 1) {
			if err := s.Excuser.Excuse(ctx, request.EmployeeID, day); err != nil {
				slog.Warn("excuse attendance day failed", "employeeId", request.EmployeeID, "date", day.Format("2006-01-02"), "err", err)
			}
		}
	}
	return request, nil
}
