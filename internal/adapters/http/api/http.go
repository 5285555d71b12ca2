// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/rollup"
	"github.com/okian/rehabplan/internal/domain/scoring"
	"github.com/okian/rehabplan/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PatientDependencies
	ProtocolDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	opsHandler      *OpsHandler
	patientHandler  *PatientHandler
	protocolHandler *ProtocolHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		opsHandler:      NewOpsHandler(statsProvider),
		patientHandler:  NewPatientHandler(deps),
		protocolHandler: NewProtocolHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.opsHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.opsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /patients", MetricsMiddleware(s.patientHandler.HandleListPatients, "patients"))
	mux.HandleFunc("GET /patients/{id}/recommendations",
		MetricsMiddleware(s.patientHandler.HandleRecommendations, "recommendations"))
	mux.HandleFunc("GET /patients/{id}/plan", MetricsMiddleware(s.patientHandler.HandlePlan, "plan"))
	mux.HandleFunc("GET /patients/{id}/aggregates", MetricsMiddleware(s.patientHandler.HandleAggregates, "aggregates"))

	mux.HandleFunc("GET /protocols", MetricsMiddleware(s.protocolHandler.HandleListProtocols, "protocols"))
	mux.HandleFunc("GET /protocols/{id}", MetricsMiddleware(s.protocolHandler.HandleGetProtocol, "protocol"))
	mux.HandleFunc("GET /protocols/{id}/rollup", MetricsMiddleware(s.protocolHandler.HandleRollup, "rollup"))
	mux.HandleFunc("GET /rollup", MetricsMiddleware(s.protocolHandler.HandleRollupAll, "rollup_all"))
}

// PatientDependencies defines the per-patient operations.
type PatientDependencies interface {
	PatientIDs(ctx context.Context) ([]string, error)
	Recommend(ctx context.Context, patientID string, w scoring.Weights) (types.Recommendation, error)
	WeeklyPlan(ctx context.Context, patientID string, req types.PlanRequest) (types.WeeklyPlan, error)
	Aggregate(ctx context.Context, patientID string, alpha float64) (aggregate.PatientAggregate, error)
	Weights() scoring.Weights
}

// ProtocolDependencies defines the catalog and population operations.
type ProtocolDependencies interface {
	Protocols(ctx context.Context) ([]model.Protocol, error)
	Protocol(ctx context.Context, id string) (model.Protocol, error)
	Rollup(ctx context.Context, protocolID string) (rollup.Summary, error)
	RollupAll(ctx context.Context) ([]rollup.Summary, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
