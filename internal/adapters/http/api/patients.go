package api

import (
	"net/http"

	"github.com/okian/rehabplan/internal/domain/model"
)

// PatientHandler serves the per-patient endpoints.
type PatientHandler struct {
	deps PatientDependencies
}

// NewPatientHandler creates a new patient handler.
func NewPatientHandler(deps PatientDependencies) *PatientHandler {
	return &PatientHandler{deps: deps}
}

// HandleListPatients handles GET /patients.
func (h *PatientHandler) HandleListPatients(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.PatientIDs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// HandleRecommendations handles
// GET /patients/{id}/recommendations?motor_weight=&cognitive_weight=&limit=.
func (h *PatientHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weights, err := weightsParam(q, h.deps.Weights())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rec, err := h.deps.Recommend(r.Context(), r.PathValue("id"), weights)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rec.Ranked = rec.Top(limit)
	writeJSON(w, http.StatusOK, rec)
}

// HandlePlan handles GET /patients/{id}/plan.
func (h *PatientHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	req, err := planParams(r.URL.Query(), h.deps.Weights())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	wp, err := h.deps.WeeklyPlan(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wp)
}

// HandleAggregates handles GET /patients/{id}/aggregates?alpha=. An absent
// alpha selects the service default.
func (h *PatientHandler) HandleAggregates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	alpha, err := floatParam(q, "alpha", 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if q.Has("alpha") && alpha == 0 {
		writeServiceError(w, model.NewValidationError("alpha", alpha, "must lie within (0, 1]"))
		return
	}
	agg, err := h.deps.Aggregate(r.Context(), r.PathValue("id"), alpha)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
