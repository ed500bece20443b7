package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/erpmaroc/paie-backend-go/internal/domain/document"
	"github.com/erpmaroc/paie-backend-go/internal/handler/http/response"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/validator"
	documentService "github.com/erpmaroc/paie-backend-go/internal/service/document"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type DocumentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	BatchTransition(w http.ResponseWriter, r *http.Request)
	StatusHistory(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
}

type documentHandlerImpl struct {
	documentService *documentService.Service
}

func NewDocumentHandler(svc *documentService.Service) DocumentHandler {
	return &documentHandlerImpl{documentService: svc}
}

func (h *documentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req document.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.documentService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Document created", result)
}

func (h *documentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.documentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *documentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := document.ListFilter{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 20),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := document.Status(s)
		if !status.IsValid() {
			response.BadRequest(w, "Unknown status filter", nil)
			return
		}
		filter.Status = &status
	}
	if e := r.URL.Query().Get("employee_id"); e != "" {
		filter.EmployeeID = &e
	}
	if t := r.URL.Query().Get("type"); t != "" {
		docType := document.Type(t)
		filter.Type = &docType
	}

	docs, total, err := h.documentService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, docs, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
		TotalPages: totalPages(total, filter.Limit),
	})
}

func (h *documentHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	var req document.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tctx := document.TransitionContext{
		ActorID:   actorID(r),
		Trigger:   document.Trigger(req.Trigger),
		Reason:    req.Reason,
		RequestID: req.RequestID,
		Metadata:  req.Metadata,
		Storage:   req.Storage,
		Error:     req.Error,
	}

	result, err := h.documentService.Transition(r.Context(), chi.URLParam(r, "id"), document.Status(req.TargetStatus), tctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *documentHandlerImpl) BatchTransition(w http.ResponseWriter, r *http.Request) {
	var req document.BatchTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	tctx := document.TransitionContext{
		ActorID:  actorID(r),
		Trigger:  document.Trigger(req.Trigger),
		Reason:   req.Reason,
		Metadata: req.Metadata,
	}

	result, err := h.documentService.BatchTransition(r.Context(), req, tctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *documentHandlerImpl) StatusHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	entries, total, err := h.documentService.StatusHistory(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, entries, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages(total, limit),
	})
}

type statisticsResponse struct {
	WindowStart      string                     `json:"window_start"`
	WindowEnd        string                     `json:"window_end"`
	TotalTransitions int64                      `json:"total_transitions"`
	ByTrigger        map[document.Trigger]int64 `json:"by_trigger"`
	ByActor          map[string]int64           `json:"by_actor"`
	ByStatusPair     map[string]int64           `json:"by_status_pair"`
	AvgProcessingMs  float64                    `json:"avg_processing_ms"`
	ErrorRate        float64                    `json:"error_rate"`
}

func (h *documentHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	if s := r.URL.Query().Get("from"); s != "" {
		t, ok := validator.IsValidDateTime(s)
		if !ok {
			response.BadRequest(w, "Invalid 'from' timestamp", nil)
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, ok := validator.IsValidDateTime(s)
		if !ok {
			response.BadRequest(w, "Invalid 'to' timestamp", nil)
			return
		}
		to = t
	}

	stats, err := h.documentService.Statistics(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, statisticsResponse{
		WindowStart:      stats.WindowStart.Format(time.RFC3339),
		WindowEnd:        stats.WindowEnd.Format(time.RFC3339),
		TotalTransitions: stats.TotalTransitions,
		ByTrigger:        stats.ByTrigger,
		ByActor:          stats.ByActor,
		ByStatusPair:     stats.ByStatusPair,
		AvgProcessingMs:  stats.AvgProcessingMs,
		ErrorRate:        stats.ErrorRate,
	})
}

// actorID resolves the authenticated user from the verified JWT. Routes
// behind the auth middleware always carry one.
func actorID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	return ""
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
