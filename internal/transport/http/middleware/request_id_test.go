package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-abc" {
		t.Fatalf("expected context request id req-abc, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Fatalf("expected echoed header, got %q", got)
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Fatal("response header and context request id differ")
	}
}
