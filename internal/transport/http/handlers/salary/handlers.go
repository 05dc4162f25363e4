package salaryhandler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/salary"
	"workforce/internal/platform/metrics"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *salary.Service
	DB      *pgxpool.Pool
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *salary.Service, db *pgxpool.Pool, auditor *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, DB: db, Audit: auditor, Metrics: collector}
}

type ratePayload struct {
	DepartmentID        string  `json:"departmentId"`
	ContractType        string  `json:"contractType"`
	MainRate            float64 `json:"mainWorkHourRate"`
	RegularOvertimeRate float64 `json:"regularOvertimeRate"`
	WeeklyOvertimeRate  float64 `json:"weeklyOvertimeRate"`
}

type generatePayload struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	PeriodStart  string `json:"periodStart"`
	PeriodEnd    string `json:"periodEnd"`
	DepartmentID string `json:"departmentId"`
}

type markPaidPayload struct {
	SalaryIDs   []string `json:"salaryIds"`
	PaymentDate string   `json:"paymentDate"`
}

type paymentStatusPayload struct {
	Status      string `json:"status"`
	PaymentDate string `json:"paymentDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)
	r.Route("/salary-rates", func(r chi.Router) {
		r.With(manage).Get("/", h.handleListRates)
		r.With(manage).Post("/", h.handleCreateRate)
		r.With(manage).Put("/{rateID}", h.handleUpdateRate)
	})
	r.Route("/salaries", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(manage).Get("/aggregate", h.handleAggregate)
		r.With(manage).Post("/generate", h.handleGenerate)
		r.With(manage).Post("/mark-paid", h.handleMarkPaid)
		r.With(manage).Put("/{salaryID}/payment-status", h.handlePaymentStatus)
		r.With(manage).Get("/export/register.csv", h.handleExportRegisterCSV)
		r.With(manage).Get("/export/register.xlsx", h.handleExportRegisterXLSX)
		r.With(middleware.RequireAuth).Get("/{salaryID}/payslip", h.handleDownloadPayslip)
	})
}

func (h *Handler) handleListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Service.ListRates(r.Context(), r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rate_list_failed", "failed to list salary rates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	rate, ok := h.rateFromBody(w, r)
	if !ok {
		return
	}

	id, err := h.Service.CreateRate(r.Context(), rate)
	if err != nil {
		if errors.Is(err, salary.ErrDuplicateRate) {
			api.Fail(w, http.StatusConflict, "duplicate_rate", "a rate for this department and contract type already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "rate_create_failed", "failed to create salary rate", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary_rate.create", "salary_rate", id, middleware.GetRequestID(r.Context()), rate); err != nil {
		slog.Warn("audit salary_rate.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rateID := chi.URLParam(r, "rateID")

	rate, ok := h.rateFromBody(w, r)
	if !ok {
		return
	}
	rate.ID = rateID

	if err := h.Service.UpdateRate(r.Context(), rate); err != nil {
		switch {
		case errors.Is(err, salary.ErrRateNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "salary rate not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, salary.ErrDuplicateRate):
			api.Fail(w, http.StatusConflict, "duplicate_rate", "a rate for this department and contract type already exists", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "rate_update_failed", "failed to update salary rate", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary_rate.update", "salary_rate", rateID, middleware.GetRequestID(r.Context()), rate); err != nil {
		slog.Warn("audit salary_rate.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": rateID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) rateFromBody(w http.ResponseWriter, r *http.Request) (salary.Rate, bool) {
	var payload ratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return salary.Rate{}, false
	}

	v := shared.NewValidator()
	v.Required("departmentId", payload.DepartmentID, "department id is required")
	v.Enum("contractType", payload.ContractType, core.ContractTypes, "contract type must be one of permanent, contract, intern")
	v.Required("contractType", payload.ContractType, "contract type is required")
	if payload.MainRate < 0 || payload.RegularOvertimeRate < 0 || payload.WeeklyOvertimeRate < 0 {
		v.Add("rates", "rates must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return salary.Rate{}, false
	}

	return salary.Rate{
		DepartmentID:        payload.DepartmentID,
		ContractType:        strings.ToLower(strings.TrimSpace(payload.ContractType)),
		MainRate:            payload.MainRate,
		RegularOvertimeRate: payload.RegularOvertimeRate,
		WeeklyOvertimeRate:  payload.WeeklyOvertimeRate,
	}, true
}

// handleAggregate previews one employee's period without persisting.
func (h *Handler) handleAggregate(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee id is required", middleware.GetRequestID(r.Context()))
		return
	}
	periodStart, periodEnd, ok := h.periodFromQuery(w, r)
	if !ok {
		return
	}

	line, err := h.Service.Aggregate(r.Context(), employeeID, periodStart, periodEnd)
	if err != nil {
		switch {
		case errors.Is(err, salary.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, salary.ErrRateNotFound):
			api.Fail(w, http.StatusUnprocessableEntity, "rate_not_found", "no salary rate for employee's department and contract type", middleware.GetRequestID(r.Context()))
		case errors.Is(err, salary.ErrInvalidPeriod):
			api.Fail(w, http.StatusBadRequest, "invalid_period", "period end must not precede period start", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "aggregate_failed", "failed to aggregate salary", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, line, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var periodStart, periodEnd time.Time
	switch {
	case payload.Year != 0 || payload.Month != 0:
		if payload.Year < 2000 || payload.Month < 1 || payload.Month > 12 {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "year and month must describe a calendar month", middleware.GetRequestID(r.Context()))
			return
		}
		periodStart, periodEnd = salary.MonthPeriod(payload.Year, time.Month(payload.Month), time.Local)
	case payload.PeriodStart != "" && payload.PeriodEnd != "":
		var err error
		periodStart, err = shared.ParseDate(payload.PeriodStart)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid period start", middleware.GetRequestID(r.Context()))
			return
		}
		periodEnd, err = shared.ParseDate(payload.PeriodEnd)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid period end", middleware.GetRequestID(r.Context()))
			return
		}
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "either year/month or periodStart/periodEnd is required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.GenerateForPeriod(r.Context(), periodStart, periodEnd, payload.DepartmentID)
	if err != nil {
		if errors.Is(err, salary.ErrInvalidPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_period", "period end must not precede period start", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_run_failed", "payroll generation failed", middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayrollRun(len(result.Skipped))
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "payroll.generate", "salary_period",
		periodStart.Format("2006-01-02")+".."+periodEnd.Format("2006-01-02"),
		middleware.GetRequestID(r.Context()),
		map[string]any{"generated": len(result.Generated), "skipped": len(result.Skipped)}); err != nil {
		slog.Warn("audit payroll.generate failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload markPaidPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.SalaryIDs) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "salary ids are required", middleware.GetRequestID(r.Context()))
		return
	}

	paymentDate := time.Now()
	if payload.PaymentDate != "" {
		parsed, err := shared.ParseDate(payload.PaymentDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid payment date", middleware.GetRequestID(r.Context()))
			return
		}
		paymentDate = parsed
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" {
		stored, found, err := middleware.CheckIdempotency(r.Context(), h.DB, user.UserID, "salaries.mark-paid", idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	transitioned, err := h.Service.MarkPaid(r.Context(), payload.SalaryIDs, paymentDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mark_paid_failed", "failed to mark salaries paid", middleware.GetRequestID(r.Context()))
		return
	}

	response := map[string]any{
		"requested":    len(payload.SalaryIDs),
		"transitioned": transitioned,
	}
	if idempotencyKey != "" {
		encoded, err := json.Marshal(response)
		if err != nil {
			slog.Warn("idempotency response marshal failed", "err", err)
		} else if err := middleware.SaveIdempotency(r.Context(), h.DB, user.UserID, "salaries.mark-paid", idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "salary.mark-paid", "salary", strings.Join(payload.SalaryIDs, ","), middleware.GetRequestID(r.Context()), response); err != nil {
		slog.Warn("audit salary.mark-paid failed", "err", err)
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	var payload paymentStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status != salary.PaymentStatusPaid && status != salary.PaymentStatusUnpaid {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "status must be paid or unpaid", middleware.GetRequestID(r.Context()))
		return
	}
	paymentDate := time.Now()
	if payload.PaymentDate != "" {
		parsed, err := shared.ParseDate(payload.PaymentDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid payment date", middleware.GetRequestID(r.Context()))
			return
		}
		paymentDate = parsed
	}

	updated, err := h.Service.SetPaymentStatus(r.Context(), salaryID, status, paymentDate)
	if err != nil {
		if errors.Is(err, salary.ErrSalaryNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "salary not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payment_status_failed", "failed to update payment status", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "salary.payment-status", "salary", salaryID, middleware.GetRequestID(r.Context()), map[string]string{"status": status}); err != nil {
		slog.Warn("audit salary.payment-status failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	salaries, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salary_list_failed", "failed to list salaries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, salaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportRegisterCSV(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Register(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export salary register", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=salary-register.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write(registerHeader()); err != nil {
		slog.Warn("register csv header write failed", "err", err)
	}
	for _, row := range rows {
		if err := writer.Write(registerRecord(row)); err != nil {
			slog.Warn("register csv row write failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("register csv flush failed", "err", err)
	}
}

func (h *Handler) handleExportRegisterXLSX(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Register(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export salary register", middleware.GetRequestID(r.Context()))
		return
	}

	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	for col, title := range registerHeader() {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := book.SetCellValue(sheet, cell, title); err != nil {
			slog.Warn("register xlsx header write failed", "err", err)
		}
	}
	for i, row := range rows {
		for col, value := range registerRecord(row) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				slog.Warn("register xlsx cell write failed", "err", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=salary-register.xlsx")
	if err := book.Write(w); err != nil {
		slog.Warn("register xlsx write failed", "err", err)
	}
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	salaryID := chi.URLParam(r, "salaryID")

	path, err := h.Service.GeneratePayslipPDF(r.Context(), salaryID)
	if err != nil {
		if errors.Is(err, salary.ErrSalaryNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "salary not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to produce payslip", middleware.GetRequestID(r.Context()))
		return
	}

	content, err := h.Service.ReadPayslip(path)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to read payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", salaryID))
	if _, err := w.Write(content); err != nil {
		slog.Warn("payslip response write failed", "err", err)
	}
}

func (h *Handler) periodFromQuery(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	query := r.URL.Query()
	if year := query.Get("year"); year != "" {
		y, errY := strconv.Atoi(year)
		m, errM := strconv.Atoi(query.Get("month"))
		if errY != nil || errM != nil || m < 1 || m > 12 {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "year and month must describe a calendar month", middleware.GetRequestID(r.Context()))
			return time.Time{}, time.Time{}, false
		}
		start, end := salary.MonthPeriod(y, time.Month(m), time.Local)
		return start, end, true
	}

	start, err := shared.ParseDate(query.Get("periodStart"))
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid period start", middleware.GetRequestID(r.Context()))
		return time.Time{}, time.Time{}, false
	}
	end, err := shared.ParseDate(query.Get("periodEnd"))
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid period end", middleware.GetRequestID(r.Context()))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) filterFromQuery(w http.ResponseWriter, r *http.Request) (salary.ListFilter, bool) {
	page := shared.ParsePagination(r, 50, 500)
	query := r.URL.Query()
	filter := salary.ListFilter{
		EmployeeID:    query.Get("employeeId"),
		DepartmentID:  query.Get("departmentId"),
		ContractType:  query.Get("contractType"),
		PaymentStatus: query.Get("paymentStatus"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	}
	if raw := query.Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid from date", middleware.GetRequestID(r.Context()))
			return salary.ListFilter{}, false
		}
		filter.From = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid to date", middleware.GetRequestID(r.Context()))
			return salary.ListFilter{}, false
		}
		filter.To = parsed
	}
	return filter, true
}

func registerHeader() []string {
	return []string{
		"employee_id", "employee_number", "first_name", "last_name",
		"department", "contract_type", "period_start", "period_end",
		"main_hours", "regular_overtime_hours", "weekly_overtime_hours",
		"total_salary", "payment_status",
	}
}

func registerRecord(row salary.RegisterRow) []string {
	return []string{
		row.EmployeeID,
		row.EmployeeNumber,
		row.FirstName,
		row.LastName,
		row.DepartmentName,
		row.ContractType,
		row.PeriodStart.Format("2006-01-02"),
		row.PeriodEnd.Format("2006-01-02"),
		fmt.Sprintf("%.2f", row.MainHours),
		fmt.Sprintf("%.2f", row.RegularOvertimeHours),
		fmt.Sprintf("%.2f", row.WeeklyOvertimeHours),
		fmt.Sprintf("%.2f", row.TotalSalary),
		row.PaymentStatus,
	}
}
