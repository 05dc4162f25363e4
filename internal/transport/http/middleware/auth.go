package middleware

import (
	"context"
	"net/http"
	"strings"

	"workforce/internal/domain/auth"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// SessionChecker is satisfied by the auth store.
type SessionChecker interface {
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
}

// Auth attaches the caller identity when a valid bearer token is present.
// Requests without one pass through anonymously; route guards decide what
// anonymous callers may reach.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				valid, err := sessions.SessionValid(r.Context(), claims.UserID, auth.HashToken(parts[1]))
				if err != nil || !valid {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, auth.UserContext{
				UserID:    claims.UserID,
				Role:      claims.Role,
				SessionID: claims.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
