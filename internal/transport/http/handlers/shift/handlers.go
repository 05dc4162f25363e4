package shifthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/shift"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Store *shift.Store
	Core  *core.Store
	Audit *audit.Service
}

func NewHandler(store *shift.Store, coreStore *core.Store, auditor *audit.Service) *Handler {
	return &Handler{Store: store, Core: coreStore, Audit: auditor}
}

type schedulePayload struct {
	DepartmentID    string         `json:"departmentId"`
	Name            string         `json:"name"`
	ShiftType       string         `json:"shiftType"`
	Main            windowPayload  `json:"main"`
	Lunch           *windowPayload `json:"lunch"`
	RegularOvertime *windowPayload `json:"regularOvertime"`
	WeeklyOvertime  *windowPayload `json:"weeklyOvertime"`
}

type windowPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/shift-schedules", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreate)
		r.Route("/{scheduleID}", func(r chi.Router) {
			r.With(middleware.RequireAuth).Get("/", h.handleGet)
			r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/", h.handleUpdate)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Store.ListSchedules(r.Context(), r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedule_list_failed", "failed to list shift schedules", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, schedules, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Store.GetSchedule(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		if errors.Is(err, shift.ErrScheduleNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "shift schedule not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "schedule_get_failed", "failed to load shift schedule", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, schedule, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	schedule, ok := h.scheduleFromBody(w, r)
	if !ok {
		return
	}

	id, err := h.Store.CreateSchedule(r.Context(), schedule)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedule_create_failed", "failed to create shift schedule", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "shift_schedule.create", "shift_schedule", id, middleware.GetRequestID(r.Context()), schedule); err != nil {
		slog.Warn("audit shift_schedule.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	scheduleID := chi.URLParam(r, "scheduleID")

	schedule, ok := h.scheduleFromBody(w, r)
	if !ok {
		return
	}
	schedule.ID = scheduleID

	if err := h.Store.UpdateSchedule(r.Context(), schedule); err != nil {
		if errors.Is(err, shift.ErrScheduleNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "shift schedule not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "schedule_update_failed", "failed to update shift schedule", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "shift_schedule.update", "shift_schedule", scheduleID, middleware.GetRequestID(r.Context()), schedule); err != nil {
		slog.Warn("audit shift_schedule.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": scheduleID}, middleware.GetRequestID(r.Context()))
}

// scheduleFromBody decodes, validates field presence, parses HH:MM windows,
// and runs the domain validation. Window parse failures are 400s; a schedule
// that parses but breaks the window rules is a 422.
func (h *Handler) scheduleFromBody(w http.ResponseWriter, r *http.Request) (shift.Schedule, bool) {
	var payload schedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return shift.Schedule{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("departmentId", payload.DepartmentID, "department id is required")
	v.Enum("shiftType", payload.ShiftType, shift.Types, "shift type must be one of non_shift, shift_a, shift_b")
	v.Required("main.start", payload.Main.Start, "main window start is required")
	v.Required("main.end", payload.Main.End, "main window end is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return shift.Schedule{}, false
	}

	schedule := shift.Schedule{
		DepartmentID: payload.DepartmentID,
		Name:         strings.TrimSpace(payload.Name),
		ShiftType:    strings.ToLower(strings.TrimSpace(payload.ShiftType)),
	}
	if schedule.ShiftType == "" {
		schedule.ShiftType = shift.TypeNonShift
	}

	main, err := parseWindow(payload.Main)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_window", "main window must use HH:MM times", middleware.GetRequestID(r.Context()))
		return shift.Schedule{}, false
	}
	schedule.Main = main

	for _, opt := range []struct {
		name    string
		payload *windowPayload
		target  **shift.Window
	}{
		{"lunch", payload.Lunch, &schedule.Lunch},
		{"regularOvertime", payload.RegularOvertime, &schedule.RegularOvertime},
		{"weeklyOvertime", payload.WeeklyOvertime, &schedule.WeeklyOvertime},
	} {
		if opt.payload == nil {
			continue
		}
		window, err := parseWindow(*opt.payload)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_window", opt.name+" window must use HH:MM times", middleware.GetRequestID(r.Context()))
			return shift.Schedule{}, false
		}
		*opt.target = &window
	}

	if err := schedule.Validate(); err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_schedule", err.Error(), middleware.GetRequestID(r.Context()))
		return shift.Schedule{}, false
	}

	exists, err := h.Core.DepartmentExists(r.Context(), schedule.DepartmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_lookup_failed", "failed to verify department", middleware.GetRequestID(r.Context()))
		return shift.Schedule{}, false
	}
	if !exists {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", middleware.GetRequestID(r.Context()))
		return shift.Schedule{}, false
	}
	return schedule, true
}

func parseWindow(payload windowPayload) (shift.Window, error) {
	start, err := shift.ParseTimeOfDay(payload.Start)
	if err != nil {
		return shift.Window{}, err
	}
	end, err := shift.ParseTimeOfDay(payload.End)
	if err != nil {
		return shift.Window{}, err
	}
	return shift.Window{Start: start, End: end}, nil
}
