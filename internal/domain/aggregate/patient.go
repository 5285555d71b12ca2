package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/rehabplan/internal/domain/model"
)

// PatientAggregate is the longitudinal view of one patient.
type PatientAggregate struct {
	PatientID  string            `json:"patient_id"`
	Alpha      float64           `json:"alpha"`
	Protocols  []Series          `json:"protocols"`
	Weeks      []Week            `json:"weeks"`
	Conditions []model.Condition `json:"conditions,omitempty"`
}

// Protocol returns the series for a protocol, if the patient has sessions
// for it.
func (a PatientAggregate) Protocol(id string) (Series, bool) {
	for _, s := range a.Protocols {
		if s.ProtocolID == id {
			return s, true
		}
	}
	return Series{}, false
}

// Patient aggregates a patient's log with smoothing factor alpha. Sessions
// whose prescription ID is unknown keep adherence 0, stay out of the weekly
// view and are reported as orphan conditions. A session with a known
// prescription that falls in no prescribed week is dropped from the weekly
// view without a condition. Repeated session IDs are counted once.
func Patient(p model.Patient, alpha float64) (PatientAggregate, error) {
	if err := ValidateAlpha(alpha); err != nil {
		return PatientAggregate{}, fmt.Errorf("aggregate patient %s: %w", p.ID, err)
	}
	agg := PatientAggregate{PatientID: p.ID, Alpha: alpha}
	idx := p.PrescriptionIndex()

	seen := make(map[string]struct{}, len(p.Sessions))
	byProtocol := make(map[string][]model.Session)
	byPrescription := make(map[string][]model.Session)
	for _, s := range p.Sessions {
		if _, dup := seen[s.ID]; dup {
			agg.Conditions = append(agg.Conditions, model.Condition{
				Kind:    model.ConditionDuplicateSession,
				Subject: s.ID,
				Detail:  "repeated session id ignored",
			})
			continue
		}
		seen[s.ID] = struct{}{}
		if _, ok := idx.Lookup(s); !ok {
			agg.Conditions = append(agg.Conditions, model.Condition{
				Kind:    model.ConditionOrphanSession,
				Subject: s.ID,
				Detail:  fmt.Sprintf("prescription %q not found", s.PrescriptionID),
			})
		}
		byProtocol[s.ProtocolID] = append(byProtocol[s.ProtocolID], s)
		byPrescription[s.PrescriptionID] = append(byPrescription[s.PrescriptionID], s)
	}

	ids := make([]string, 0, len(byProtocol))
	for id := range byProtocol {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s, ok := NewSeries(id, byProtocol[id], idx, alpha); ok {
			agg.Protocols = append(agg.Protocols, s)
		}
	}

	var weekly Weekly
	for _, rx := range p.Prescriptions {
		weekly.Add(rx, byPrescription[rx.ID])
	}
	agg.Weeks = weekly.Weeks(idx)
	return agg, nil
}
