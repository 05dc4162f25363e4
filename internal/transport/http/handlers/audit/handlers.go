package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	events, err := h.Service.List(r.Context(), r.URL.Query().Get("action"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
