package corehandler

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
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
	Audit *audit.Service
}

func NewHandler(store *core.Store, auditor *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditor}
}

type employeePayload struct {
	EmployeeNumber  string `json:"employeeNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DepartmentID    string `json:"departmentId"`
	ContractType    string `json:"contractType"`
	ShiftScheduleID string `json:"shiftScheduleId"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Status          string `json:"status"`
}

type departmentPayload struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListEmployees)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequireAuth).Get("/", h.handleGetEmployee)
			r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/", h.handleUpdateEmployee)
		})
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDepartments)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreateDepartment)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{
		"id":   user.UserID,
		"role": user.Role,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	departmentID := r.URL.Query().Get("departmentId")

	employees, err := h.Store.ListEmployees(r.Context(), departmentID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	employee, ok := h.employeeFromPayload(w, r, payload)
	if !ok {
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), employee)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			api.Fail(w, http.StatusConflict, "duplicate_email", "an employee with this email already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employee.create", "employee", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	employee, ok := h.employeeFromPayload(w, r, payload)
	if !ok {
		return
	}
	employee.ID = employeeID

	if err := h.Store.UpdateEmployee(r.Context(), employee); err != nil {
		switch {
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, core.ErrDuplicateEmail):
			api.Fail(w, http.StatusConflict, "duplicate_email", "an employee with this email already exists", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employee.update", "employee", employeeID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) employeeFromPayload(w http.ResponseWriter, r *http.Request, payload employeePayload) (core.Employee, bool) {
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("departmentId", payload.DepartmentID, "department id is required")
	v.Enum("contractType", payload.ContractType, core.ContractTypes, "contract type must be one of permanent, contract, intern")
	v.Enum("status", payload.Status, []string{core.EmployeeStatusActive, core.EmployeeStatusInactive}, "status must be active or inactive")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return core.Employee{}, false
	}

	employee := core.Employee{
		EmployeeNumber:  strings.TrimSpace(payload.EmployeeNumber),
		FirstName:       strings.TrimSpace(payload.FirstName),
		LastName:        strings.TrimSpace(payload.LastName),
		Email:           strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:           strings.TrimSpace(payload.Phone),
		DepartmentID:    payload.DepartmentID,
		ContractType:    strings.ToLower(strings.TrimSpace(payload.ContractType)),
		ShiftScheduleID: payload.ShiftScheduleID,
		Status:          strings.ToLower(strings.TrimSpace(payload.Status)),
	}
	if employee.ContractType == "" {
		employee.ContractType = core.ContractTypePermanent
	}
	if employee.Status == "" {
		employee.Status = core.EmployeeStatusActive
	}
	if payload.StartDate != "" {
		parsed, err := shared.ParseDate(payload.StartDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", middleware.GetRequestID(r.Context()))
			return core.Employee{}, false
		}
		employee.StartDate = &parsed
	}
	if payload.EndDate != "" {
		parsed, err := shared.ParseDate(payload.EndDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", middleware.GetRequestID(r.Context()))
			return core.Employee{}, false
		}
		employee.EndDate = &parsed
	}

	exists, err := h.Store.DepartmentExists(r.Context(), employee.DepartmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_lookup_failed", "failed to verify department", middleware.GetRequestID(r.Context()))
		return core.Employee{}, false
	}
	if !exists {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", middleware.GetRequestID(r.Context()))
		return core.Employee{}, false
	}
	return employee, true
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), strings.TrimSpace(payload.Name), payload.ParentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "department.create", "department", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit department.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
