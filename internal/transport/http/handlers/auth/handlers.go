package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/email"
	"workforce/internal/platform/requestctx"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
)

type Handler struct {
	DB           *pgxpool.Pool
	Store        *auth.Store
	Secret       string
	SessionTTL   time.Duration
	Mailer       email.Mailer
	MailFrom     string
	ResetBaseURL string
}

func NewHandler(db *pgxpool.Pool, secret string, sessionTTL time.Duration, mailer email.Mailer, mailFrom, resetBaseURL string) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Handler{
		DB:           db,
		Store:        auth.NewStore(db),
		Secret:       secret,
		SessionTTL:   sessionTTL,
		Mailer:       mailer,
		MailFrom:     mailFrom,
		ResetBaseURL: resetBaseURL,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	sessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Role: user.Role, SessionID: sessionID}, h.SessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(token), time.Now().Add(h.SessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":         user.ID,
			"role":       user.Role,
			"employeeId": user.EmployeeID,
		},
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if ok {
		if token := bearerToken(r); token != "" {
			if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(token)); err != nil {
				slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
			}
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	// Response is the same whether or not the email exists.
	var userID string
	err := h.DB.QueryRow(r.Context(), "SELECT id FROM users WHERE email = $1", payload.Email).Scan(&userID)
	if err == nil {
		token, err := generateToken()
		if err != nil {
			slog.Warn("password reset token generation failed", "userId", userID, "err", err)
			api.Success(w, map[string]string{"status": "reset_requested"}, requestctx.GetRequestID(r.Context()))
			return
		}
		ttl := 2 * time.Hour
		if _, err := h.DB.Exec(r.Context(), `
      INSERT INTO password_resets (user_id, token_hash, expires_at)
      VALUES ($1, $2, $3)
    `, userID, auth.HashToken(token), time.Now().Add(ttl)); err != nil {
			slog.Warn("password reset insert failed", "userId", userID, "err", err)
		} else if h.Mailer != nil {
			body := buildResetEmailMessage(buildResetLink(h.ResetBaseURL, token), ttl)
			if err := h.Mailer.Send(r.Context(), h.MailFrom, payload.Email, "Password reset", body); err != nil {
				slog.Warn("password reset mail failed", "userId", userID, "err", err)
			}
		}
	}

	api.Success(w, map[string]string{"status": "reset_requested"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := validateResetPassword(payload.NewPassword); err != nil {
		api.Fail(w, http.StatusBadRequest, "weak_password", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}

	var userID string
	err := h.DB.QueryRow(r.Context(), `
    SELECT user_id
    FROM password_resets
    WHERE token_hash = $1 AND expires_at > now() AND used_at IS NULL
  `, auth.HashToken(payload.Token)).Scan(&userID)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestctx.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", requestctx.GetRequestID(r.Context()))
		return
	}
	if _, err := h.DB.Exec(r.Context(), "UPDATE users SET password_hash = $1 WHERE id = $2", hash, userID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update password", requestctx.GetRequestID(r.Context()))
		return
	}
	if _, err := h.DB.Exec(r.Context(), "UPDATE password_resets SET used_at = now() WHERE token_hash = $1", auth.HashToken(payload.Token)); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_reset"}, requestctx.GetRequestID(r.Context()))
}

func validateResetPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain upper and lower case letters and a digit")
	}
	return nil
}

// buildResetLink points at the frontend reset page; a missing or broken
// base URL falls back to the local default.
func buildResetLink(baseURL, token string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		parsed = &url.URL{Scheme: "http", Host: "localhost:8080"}
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/reset"
	parsed.RawQuery = url.Values{"token": {token}}.Encode()
	return parsed.String()
}

func buildResetEmailMessage(link string, ttl time.Duration) string {
	return fmt.Sprintf(
		"A password reset was requested for your account.\n\nOpen the link below to choose a new password:\n%s\n\nThe link expires in %d hour(s). If you did not request this, ignore this message.",
		link, int(ttl.Hours()))
}

func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func generateToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
