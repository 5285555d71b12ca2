// Package types contains the read shapes shared by the service and its
// transports.
package types

import (
	"time"

	"github.com/okian/rehabplan/internal/domain/eligibility"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/scoring"
)

// Recommendation is a ranked, contraindication-filtered catalog for one
// patient.
type Recommendation struct {
	PatientID  string                   `json:"patient_id"`
	Weights    scoring.Weights          `json:"weights"`
	Ranked     []scoring.ScoredProtocol `json:"ranked"`
	Excluded   []eligibility.Exclusion  `json:"excluded,omitempty"`
	Conditions []model.Condition        `json:"conditions,omitempty"`
}

// Top returns the first n ranked protocols, or all of them when n is not
// positive or exceeds the list.
func (r Recommendation) Top(n int) []scoring.ScoredProtocol {
	if n <= 0 || n >= len(r.Ranked) {
		return r.Ranked
	}
	return r.Ranked[:n]
}

// PlanRequest carries the request-scoped plan inputs. Zero values fall
// back to the service defaults.
type PlanRequest struct {
	Weights     *scoring.Weights
	WeekStart   time.Time
	ItemsPerDay int
	Other       plan.OtherPolicy
}

// WeeklyPlan is a seven-day schedule with the prescriptions it implies.
type WeeklyPlan struct {
	Recommendation
	WeekStart     time.Time            `json:"week_start"`
	Plan          plan.Plan            `json:"plan"`
	Prescriptions []model.Prescription `json:"prescriptions"`
}
