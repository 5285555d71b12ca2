package model

import (
	"slices"
	"time"
)

// Demographics holds the descriptive patient fields.
type Demographics struct {
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Handedness string `json:"handedness,omitempty"`
	HeightCM   int    `json:"height,omitempty"`
}

// StrokeInfo describes the stroke event.
type StrokeInfo struct {
	Type           string    `json:"type,omitempty"`
	Location       string    `json:"location,omitempty"`
	Heminegligence int       `json:"heminegligence"`
	PareticSide    string    `json:"paretic_side,omitempty"`
	OnsetDate      time.Time `json:"onset_date,omitzero"`
}

// Patient is the canonical patient entity. File and relational stores both
// map onto it.
type Patient struct {
	ID             string          `json:"patient_id"`
	Demographics   Demographics    `json:"demographics"`
	StrokeInfo     StrokeInfo      `json:"stroke_info"`
	ClinicalScores ClinicalProfile `json:"clinical_scores"`
	ClinicianNotes string          `json:"clinician_notes,omitempty"`
	Tags           []string        `json:"tags"`
	Prescriptions  []Prescription  `json:"prescriptions,omitempty"`
	Sessions       []Session       `json:"sessions,omitempty"`
}

// Validate checks the identifier and clinical scores.
func (p Patient) Validate() error {
	if p.ID == "" {
		return NewValidationError("patient_id", p.ID, "must not be empty")
	}
	return p.ClinicalScores.Validate()
}

// HasTag reports whether the patient carries tag.
func (p Patient) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// PrescriptionIndex indexes the patient's prescriptions.
func (p Patient) PrescriptionIndex() PrescriptionIndex {
	return NewPrescriptionIndex(p.Prescriptions)
}
