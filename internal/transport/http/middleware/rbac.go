package middleware

import (
	"net/http"

	"workforce/internal/transport/http/api"
)

// RequireRole rejects anonymous callers and callers outside the allowed
// roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !allowed[user.Role] {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
