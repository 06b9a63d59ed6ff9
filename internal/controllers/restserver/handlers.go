package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mfairbank/restocalc/internal/engine"
	"github.com/mfairbank/restocalc/internal/log"
	"github.com/mfairbank/restocalc/internal/selector"
	"github.com/mfairbank/restocalc/internal/types"
	"github.com/mfairbank/restocalc/internal/views"
	"github.com/mfairbank/restocalc/pkg/costing"
	"github.com/mfairbank/restocalc/pkg/iicrc"
	"github.com/mfairbank/restocalc/pkg/psychro"
	"github.com/mfairbank/restocalc/pkg/units"
)

// Handlers contains the HTTP handlers for the REST endpoints.
type Handlers struct {
	controller *Controller
}

// NewHandlers creates the handler set for a controller.
func NewHandlers(controller *Controller) *Handlers {
	return &Handlers{controller: controller}
}

// assessmentResponse is the wire shape of a completed assessment plus its
// three stakeholder views.
type assessmentResponse struct {
	Assessment *types.Assessment `json:"assessment"`
	Views      *views.Bundle     `json:"views"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// GetHealth reports process liveness and catalog snapshot age.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	payload := map[string]any{
		"status": "ok",
	}
	if h.controller.store != nil {
		payload["catalog_loaded_at"] = h.controller.store.LoadedAt().Format(time.RFC3339)
		payload["catalog_entries"] = len(h.controller.store.Snapshot())
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetCatalog returns the current equipment catalog snapshot.
func (h *Handlers) GetCatalog(w http.ResponseWriter, req *http.Request) {
	if h.controller.store == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured", "catalog_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, h.controller.store.Snapshot())
}

// PostAssessment runs the full pipeline on a raw input bundle and returns
// the completed assessment with its three views.
func (h *Handlers) PostAssessment(w http.ResponseWriter, req *http.Request) {
	var in engine.Input
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "bad_request")
		return
	}

	a, err := h.controller.engine.Run(req.Context(), in)
	if err != nil {
		status, kind := classifyError(err)
		log.Warnw("assessment rejected", "kind", kind, "error", err)
		writeError(w, status, err.Error(), kind)
		return
	}

	bundle, err := h.controller.projector.Project(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "projection_failed")
		return
	}

	writeJSON(w, http.StatusOK, assessmentResponse{Assessment: a, Views: bundle})
}

// classifyError maps the engine's error taxonomy onto HTTP status codes.
func classifyError(err error) (int, string) {
	var unitsErr *units.ValidationError
	var psychroErr *psychro.ValidationError
	var costErr *costing.ValidationError
	var selectorErr *selector.ValidationError
	var conflictErr *iicrc.ClassificationConflictError
	var infeasibleErr *selector.InfeasibleSelectionError

	switch {
	case errors.As(err, &unitsErr), errors.As(err, &psychroErr), errors.As(err, &costErr), errors.As(err, &selectorErr):
		return http.StatusBadRequest, "validation_error"
	case errors.As(err, &conflictErr):
		return http.StatusUnprocessableEntity, "classification_conflict"
	case errors.As(err, &infeasibleErr):
		return http.StatusConflict, "infeasible_selection"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("error encoding response to JSON:", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, kind string) {
	writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}
