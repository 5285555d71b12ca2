package model

import (
	"math"
	"time"
)

// Prescription is a protocol planned for a patient over a date range.
type Prescription struct {
	ID                   string             `json:"prescription_id"`
	PatientID            string             `json:"patient_id"`
	ProtocolID           string             `json:"protocol_id"`
	StartDate            time.Time          `json:"start_date"`
	EndDate              time.Time          `json:"end_date"`
	Weekday              string             `json:"weekday,omitempty"`
	PrescribedDuration   float64            `json:"prescribed_duration"`
	DecisionScores       map[string]float64 `json:"decision_scores,omitempty"`
	Explanation          string             `json:"explanation,omitempty"`
	PrescribedDifficulty *float64           `json:"prescribed_difficulty,omitempty"`
}

// Validate checks the prescription bounds.
func (p Prescription) Validate() error {
	if p.ID == "" {
		return NewValidationError("prescription_id", p.ID, "must not be empty")
	}
	if p.PrescribedDuration < 0 {
		return NewValidationError("prescribed_duration", p.PrescribedDuration, "must not be negative")
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return NewValidationError("end_date", p.EndDate, "must not precede start_date")
	}
	if d := p.PrescribedDifficulty; d != nil && (*d < 0 || *d > 1) {
		return NewValidationError("prescribed_difficulty", *d, "must lie within [0, 1]")
	}
	return nil
}

// Session is one logged execution of a protocol. Duration is in minutes.
type Session struct {
	ID                  string    `json:"session_id"`
	PatientID           string    `json:"patient_id"`
	ProtocolID          string    `json:"protocol_id"`
	PrescriptionID      string    `json:"prescription_id"`
	Timestamp           time.Time `json:"timestamp"`
	Duration            float64   `json:"duration"`
	DifficultyModulator float64   `json:"difficulty_modulator"`
	PerformanceScore    float64   `json:"performance_score"`
}

// Validate checks the session bounds.
func (s Session) Validate() error {
	if s.ID == "" {
		return NewValidationError("session_id", s.ID, "must not be empty")
	}
	if math.IsNaN(s.Duration) || s.Duration < 0 {
		return NewValidationError("duration", s.Duration, "must not be negative")
	}
	if !unit(s.DifficultyModulator) {
		return NewValidationError("difficulty_modulator", s.DifficultyModulator, "must lie within [0, 1]")
	}
	if !unit(s.PerformanceScore) {
		return NewValidationError("performance_score", s.PerformanceScore, "must lie within [0, 1]")
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// PrescriptionIndex resolves sessions to the prescriptions they belong to.
type PrescriptionIndex map[string]Prescription

// NewPrescriptionIndex indexes prescriptions by ID. Later duplicates win.
func NewPrescriptionIndex(prescriptions []Prescription) PrescriptionIndex {
	idx := make(PrescriptionIndex, len(prescriptions))
	for _, p := range prescriptions {
		idx[p.ID] = p
	}
	return idx
}

// Lookup returns the prescription a session references.
func (idx PrescriptionIndex) Lookup(s Session) (Prescription, bool) {
	p, ok := idx[s.PrescriptionID]
	return p, ok
}

// Adherence returns min(duration / prescribed, 1). It is 0 when the
// prescription is missing or has no prescribed duration; found reports
// whether the prescription resolved.
func (idx PrescriptionIndex) Adherence(s Session) (adherence float64, found bool) {
	p, ok := idx.Lookup(s)
	if !ok {
		return 0, false
	}
	if p.PrescribedDuration <= 0 {
		return 0, true
	}
	return math.Min(s.Duration/p.PrescribedDuration, 1), true
}
