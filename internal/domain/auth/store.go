package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID           string
	Role         string
	PasswordHash string
	EmployeeID   string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.role, u.password_hash, COALESCE(u.employee_id::text, '')
    FROM users u
    WHERE u.email = $1 AND u.status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.Role, &out.PasswordHash, &out.EmployeeID)
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND token_hash = $2", userID, tokenHash)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL AND expires_at > now()
  `, userID, tokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}
