package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminEmail) == "" {
		return nil
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	if password == "" {
		password = "changeme"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role, status)
    VALUES ($1, $2, $3, $4)
  `, email, hash, auth.RoleAdmin, auth.UserStatusActive)
	return err
}
