package api

import (
	"net/http"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/rollup"
)

// ProtocolHandler serves the catalog and population endpoints.
type ProtocolHandler struct {
	deps ProtocolDependencies
}

// NewProtocolHandler creates a new protocol handler.
func NewProtocolHandler(deps ProtocolDependencies) *ProtocolHandler {
	return &ProtocolHandler{deps: deps}
}

// HandleListProtocols handles GET /protocols.
func (h *ProtocolHandler) HandleListProtocols(w http.ResponseWriter, r *http.Request) {
	ps, err := h.deps.Protocols(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ps == nil {
		ps = []model.Protocol{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleGetProtocol handles GET /protocols/{id}.
func (h *ProtocolHandler) HandleGetProtocol(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Protocol(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRollup handles GET /protocols/{id}/rollup.
func (h *ProtocolHandler) HandleRollup(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Rollup(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleRollupAll handles GET /rollup.
func (h *ProtocolHandler) HandleRollupAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.RollupAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if all == nil {
		all = []rollup.Summary{}
	}
	writeJSON(w, http.StatusOK, all)
}
