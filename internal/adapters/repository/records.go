package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Accepted date and timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrMalformedRecord, s)
}

// flexTime decodes the date and timestamp spellings found in stored records.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: time must be a string", ErrMalformedRecord)
	}
	if s == "" {
		*t = flexTime{}
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	*t = flexTime(parsed)
	return nil
}

type strokeRecord struct {
	Type           string   `json:"type"`
	Location       string   `json:"location"`
	Heminegligence int      `json:"heminegligence"`
	PareticSide    string   `json:"paretic_side"`
	OnsetDate      flexTime `json:"onset_date"`
}

type patientRecord struct {
	ID             string                `json:"patient_id"`
	Demographics   model.Demographics    `json:"demographics"`
	StrokeInfo     strokeRecord          `json:"stroke_info"`
	ClinicalScores model.ClinicalProfile `json:"clinical_scores"`
	ClinicianNotes *string               `json:"clinician_notes"`
	Tags           []string              `json:"tags"`
}

func (r patientRecord) toModel() (model.Patient, error) {
	p := model.Patient{
		ID:           r.ID,
		Demographics: r.Demographics,
		StrokeInfo: model.StrokeInfo{
			Type:           r.StrokeInfo.Type,
			Location:       r.StrokeInfo.Location,
			Heminegligence: r.StrokeInfo.Heminegligence,
			PareticSide:    r.StrokeInfo.PareticSide,
			OnsetDate:      time.Time(r.StrokeInfo.OnsetDate),
		},
		ClinicalScores: r.ClinicalScores,
		Tags:           r.Tags,
	}
	if r.ClinicianNotes != nil {
		p.ClinicianNotes = *r.ClinicianNotes
	}
	if err := p.Validate(); err != nil {
		return model.Patient{}, fmt.Errorf("patient %s: %w", r.ID, err)
	}
	return p, nil
}

type prescriptionRecord struct {
	ID                   string             `json:"prescription_id"`
	PatientID            string             `json:"patient_id"`
	ProtocolID           string             `json:"protocol_id"`
	StartDate            flexTime           `json:"start_date"`
	EndDate              flexTime           `json:"end_date"`
	Weekday              string             `json:"weekday"`
	PrescribedDuration   float64            `json:"prescribed_duration"`
	DecisionScores       map[string]float64 `json:"decision_scores"`
	Explanation          string             `json:"explanation"`
	PrescribedDifficulty *float64           `json:"prescribed_difficulty"`
}

func (r prescriptionRecord) toModel() (model.Prescription, error) {
	p := model.Prescription{
		ID:                   r.ID,
		PatientID:            r.PatientID,
		ProtocolID:           r.ProtocolID,
		StartDate:            time.Time(r.StartDate),
		EndDate:              time.Time(r.EndDate),
		Weekday:              r.Weekday,
		PrescribedDuration:   r.PrescribedDuration,
		DecisionScores:       r.DecisionScores,
		Explanation:          r.Explanation,
		PrescribedDifficulty: r.PrescribedDifficulty,
	}
	if err := p.Validate(); err != nil {
		return model.Prescription{}, fmt.Errorf("prescription %s: %w", r.ID, err)
	}
	return p, nil
}

type sessionRecord struct {
	ID                  string   `json:"session_id"`
	PatientID           string   `json:"patient_id"`
	ProtocolID          string   `json:"protocol_id"`
	PrescriptionID      string   `json:"prescription_id"`
	Timestamp           flexTime `json:"timestamp"`
	Duration            float64  `json:"duration"`
	DifficultyModulator float64  `json:"difficulty_modulator"`
	PerformanceScore    float64  `json:"performance_score"`
}

func (r sessionRecord) toModel() (model.Session, error) {
	s := model.Session{
		ID:                  r.ID,
		PatientID:           r.PatientID,
		ProtocolID:          r.ProtocolID,
		PrescriptionID:      r.PrescriptionID,
		Timestamp:           time.Time(r.Timestamp),
		Duration:            r.Duration,
		DifficultyModulator: r.DifficultyModulator,
		PerformanceScore:    r.PerformanceScore,
	}
	if err := s.Validate(); err != nil {
		return model.Session{}, fmt.Errorf("session %s: %w", r.ID, err)
	}
	return s, nil
}
