package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends one audit row. Administrative mutations (rates, schedules,
// payroll runs, payment transitions) call this after the write succeeds.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, request_id, details_json)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, nullIfEmpty(actorID), action, entityType, entityID, requestID, detailsJSON)
	return err
}

func (s *Service) List(ctx context.Context, action string, limit, offset int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, created_at, details_json
    FROM audit_events
    WHERE ($1 = '' OR action = $1)
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Details); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
