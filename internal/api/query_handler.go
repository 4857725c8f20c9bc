package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"queryforge/internal/core"
	"queryforge/internal/service"
)

type QueryHandler struct {
	orchestrator *service.QueryOrchestrator
	feedback     *service.FeedbackBinder
}

func NewQueryHandler(orchestrator *service.QueryOrchestrator, feedback *service.FeedbackBinder) *QueryHandler {
	return &QueryHandler{orchestrator: orchestrator, feedback: feedback}
}

func (h *QueryHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	r.Get("/", h.List)
	r.Get("/{queryID}", h.Get)
	r.Post("/{queryID}/feedback", h.AttachFeedback)
	r.Get("/{queryID}/feedback", h.GetFeedback)
	return r
}

type submitRequest struct {
	NaturalLanguageQuery string `json:"natural_language_query"`
	ConnectionID         string `json:"connection_id"`
}

type submitResponse struct {
	*core.Query
	ResultData *core.ExecutionResult `json:"result_data,omitempty"`
}

// Submit runs one question through translation and execution. Translation
// and execution failures still answer 201: the failed query record is the
// response, not an error.
func (h *QueryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	query, result, err := h.orchestrator.Submit(r.Context(), UserID(r), req.ConnectionID, req.NaturalLanguageQuery)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, submitResponse{Query: query, ResultData: result})
}

func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	queries, err := h.orchestrator.List(UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queries)
}

func (h *QueryHandler) Get(w http.ResponseWriter, r *http.Request) {
	query, err := h.orchestrator.Get(UserID(r), chi.URLParam(r, "queryID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, query)
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *QueryHandler) AttachFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fb, err := h.feedback.Attach(UserID(r), chi.URLParam(r, "queryID"), req.Rating, req.Comment)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, fb)
}

func (h *QueryHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := h.feedback.GetForQuery(UserID(r), chi.URLParam(r, "queryID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fb)
}
