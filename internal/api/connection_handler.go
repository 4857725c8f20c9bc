package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"queryforge/internal/service"
)

type ConnectionHandler struct {
	registry *service.ConnectionRegistry
}

func NewConnectionHandler(registry *service.ConnectionRegistry) *ConnectionHandler {
	return &ConnectionHandler{registry: registry}
}

func (h *ConnectionHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/test", h.Test)
	r.Get("/{connectionID}", h.Get)
	r.Put("/{connectionID}", h.Update)
	r.Delete("/{connectionID}", h.Delete)
	r.Put("/{connectionID}/set-primary", h.SetPrimary)
	return r
}

func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var spec service.ConnectionSpec
	if !decodeBody(w, r, &spec) {
		return
	}

	conn, err := h.registry.Create(UserID(r), spec)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conn)
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	conns, err := h.registry.List(UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conns)
}

func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	conn, err := h.registry.Get(UserID(r), chi.URLParam(r, "connectionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conn)
}

func (h *ConnectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd service.ConnectionUpdate
	if !decodeBody(w, r, &upd) {
		return
	}

	conn, err := h.registry.Update(UserID(r), chi.URLParam(r, "connectionID"), upd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conn)
}

func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(UserID(r), chi.URLParam(r, "connectionID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConnectionHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	conn, err := h.registry.SetPrimary(UserID(r), chi.URLParam(r, "connectionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conn)
}

// Test probes reachability of an unsaved connection spec. Failures come back
// as a 200 with success=false; a dead database is data, not a fault.
func (h *ConnectionHandler) Test(w http.ResponseWriter, r *http.Request) {
	var spec service.ConnectionSpec
	if !decodeBody(w, r, &spec) {
		return
	}

	result := h.registry.Probe(r.Context(), spec)
	respondJSON(w, http.StatusOK, result)
}
