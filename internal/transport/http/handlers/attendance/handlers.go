package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/attendance"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/shift"
	"workforce/internal/platform/metrics"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Metrics *metrics.Collector
}

func NewHandler(service *attendance.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

type punchPayload struct {
	EmployeeID string `json:"employeeId"`
	At         string `json:"at"`
}

type correctionPayload struct {
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequireAuth).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/{recordID}/correct", h.handleCorrect)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, at, ok := h.punchFromBody(w, r)
	if !ok {
		return
	}

	record, err := h.Service.CheckIn(r.Context(), employeeID, at)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			api.Fail(w, http.StatusConflict, "already_checked_in", "employee already checked in today", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to record check-in", middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCheckIn()
	}
	api.Created(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, at, ok := h.punchFromBody(w, r)
	if !ok {
		return
	}

	record, err := h.Service.CheckOut(r.Context(), employeeID, at)
	if err != nil {
		h.failClassification(w, r, err, "check_out_failed", "failed to record check-out")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCheckOut()
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")

	var payload correctionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	checkIn, err := time.Parse(time.RFC3339, payload.CheckInTime)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "checkInTime must be RFC3339", middleware.GetRequestID(r.Context()))
		return
	}
	checkOut, err := time.Parse(time.RFC3339, payload.CheckOutTime)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "checkOutTime must be RFC3339", middleware.GetRequestID(r.Context()))
		return
	}

	record, err := h.Service.Correct(r.Context(), recordID, checkIn, checkOut)
	if err != nil {
		h.failClassification(w, r, err, "correction_failed", "failed to correct attendance record")
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 500)
	filter := attendance.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid from date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.From = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid to date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.To = parsed
	}

	records, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) punchFromBody(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	var payload punchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return "", time.Time{}, false
	}

	employeeID := payload.EmployeeID
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee id is required", middleware.GetRequestID(r.Context()))
		return "", time.Time{}, false
	}

	at := time.Now()
	if payload.At != "" {
		parsed, err := time.Parse(time.RFC3339, payload.At)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "at must be RFC3339", middleware.GetRequestID(r.Context()))
			return "", time.Time{}, false
		}
		at = parsed
	}
	return employeeID, at, true
}

func (h *Handler) failClassification(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusConflict, "not_checked_in", "no open attendance record for employee", requestID)
	case errors.Is(err, attendance.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
	case errors.Is(err, attendance.ErrNoScheduleAssigned):
		api.Fail(w, http.StatusUnprocessableEntity, "no_schedule", "employee has no shift schedule assigned", requestID)
	case errors.Is(err, attendance.ErrInvalidAttendanceWindow):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_attendance_window", "check-out must be after check-in", requestID)
	case errors.Is(err, shift.ErrScheduleNotFound):
		api.Fail(w, http.StatusUnprocessableEntity, "no_schedule", "employee's shift schedule no longer exists", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
