package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/erpmaroc/paie-backend-go/internal/domain/paie"
	"github.com/erpmaroc/paie-backend-go/internal/handler/http/response"
	paieService "github.com/erpmaroc/paie-backend-go/internal/service/paie"
	"github.com/go-chi/chi/v5"
)

type PaieHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	CalculateForEmployee(w http.ResponseWriter, r *http.Request)
	CreatePayslip(w http.ResponseWriter, r *http.Request)
}

type paieHandlerImpl struct {
	paieService *paieService.Service
}

func NewPaieHandler(svc *paieService.Service) PaieHandler {
	return &paieHandlerImpl{paieService: svc}
}

// Calculate runs one payroll computation from an explicit input payload.
func (h *paieHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req paie.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paieService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CalculateForEmployee computes a payslip from the stored employee record.
func (h *paieHandlerImpl) CalculateForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	result, err := h.paieService.CalculateForEmployee(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type createPayslipRequest struct {
	EmployeeID  string `json:"employee_id"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
}

// CreatePayslip computes the payslip and opens its workflow document.
func (h *paieHandlerImpl) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	var req createPayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paieService.CreatePayslipDocument(r.Context(), req.EmployeeID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslip document created", result)
}

func periodParams(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "Invalid month parameter", nil)
		return 0, 0, false
	}
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Invalid year parameter", nil)
		return 0, 0, false
	}
	return month, year, true
}
