package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/leave"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, auditor *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

type typePayload struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	IsPaid bool   `json:"isPaid"`
}

type requestPayload struct {
	EmployeeID  string `json:"employeeId"`
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/types", h.handleListTypes)
		r.With(manage).Post("/types", h.handleCreateType)
		r.With(middleware.RequireAuth).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireAuth).Post("/requests", h.handleCreateRequest)
		r.With(manage).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(manage).Post("/requests/{requestID}/reject", h.handleReject)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload typePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("code", payload.Code, "code is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), leave.Type{
		Name:   strings.TrimSpace(payload.Name),
		Code:   strings.ToLower(strings.TrimSpace(payload.Code)),
		IsPaid: payload.IsPaid,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "leave_type.create", "leave_type", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit leave_type.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 500)
	requests, err := h.Service.ListRequests(r.Context(),
		r.URL.Query().Get("employeeId"), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_requests_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("leaveTypeId", payload.LeaveTypeID, "leave type id is required")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	request, err := h.Service.CreateRequest(r.Context(), leave.Request{
		EmployeeID:  payload.EmployeeID,
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      strings.TrimSpace(payload.Reason),
	})
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrTypeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must not precede start date", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_request_failed", "failed to create leave request", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	request, err := h.Service.Decide(r.Context(), requestID, user.UserID, status)
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrRequestNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrInvalidState):
			api.Fail(w, http.StatusConflict, "invalid_state", "leave request was already decided", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_decide_failed", "failed to decide leave request", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "leave_request."+status, "leave_request", requestID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit leave decision failed", "err", err)
	}
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}
