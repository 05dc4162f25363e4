package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workforce/internal/domain/auth"
)

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: auth.RoleHR, SessionID: "s1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	handler := Auth(secret, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.Role != auth.RoleHR {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestRequireRoleRejectsAnonymousAndWrongRole(t *testing.T) {
	guarded := RequireRole(auth.RoleAdmin, auth.RoleHR)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	anon := httptest.NewRequest(http.MethodPost, "/api/v1/salaries/generate", nil)
	anonRec := httptest.NewRecorder()
	guarded.ServeHTTP(anonRec, anon)
	if anonRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", anonRec.Code)
	}

	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u2", Role: auth.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	chain := Auth(secret, nil)(guarded)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/salaries/generate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee role, got %d", rec.Code)
	}
}
