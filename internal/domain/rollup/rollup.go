// Package rollup summarizes protocol usage across a patient population.
package rollup

import (
	"sort"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Summary is the pooled usage of one protocol. Means are taken over all
// sessions, not over per-patient means.
type Summary struct {
	ProtocolID      string  `json:"protocol_id"`
	PatientCount    int     `json:"patient_count"`
	SessionCount    int     `json:"session_count"`
	TotalDuration   float64 `json:"total_duration"`
	MeanAdherence   float64 `json:"mean_adherence"`
	MeanPerformance float64 `json:"mean_performance"`
}

type accumulator struct {
	Summary
	patients    map[string]struct{}
	adherence   float64
	performance float64
}

func (a *accumulator) add(patientID string, s model.Session, adherence float64) {
	if a.patients == nil {
		a.patients = make(map[string]struct{})
	}
	a.patients[patientID] = struct{}{}
	a.SessionCount++
	a.TotalDuration += s.Duration
	a.adherence += adherence
	a.performance += s.PerformanceScore
}

func (a *accumulator) summary() Summary {
	out := a.Summary
	out.PatientCount = len(a.patients)
	if out.SessionCount > 0 {
		out.MeanAdherence = a.adherence / float64(out.SessionCount)
		out.MeanPerformance = a.performance / float64(out.SessionCount)
	}
	return out
}

// Protocol pools every session of protocolID across patients. With no
// sessions every figure is zero.
func Protocol(protocolID string, patients []model.Patient) Summary {
	acc := accumulator{Summary: Summary{ProtocolID: protocolID}}
	for _, p := range patients {
		idx := p.PrescriptionIndex()
		for _, s := range p.Sessions {
			if s.ProtocolID != protocolID {
				continue
			}
			a, _ := idx.Adherence(s)
			acc.add(p.ID, s, a)
		}
	}
	return acc.summary()
}

// All summarizes every protocol that appears in a session, sorted by ID.
func All(patients []model.Patient) []Summary {
	accs := make(map[string]*accumulator)
	for _, p := range patients {
		idx := p.PrescriptionIndex()
		for _, s := range p.Sessions {
			acc, ok := accs[s.ProtocolID]
			if !ok {
				acc = &accumulator{Summary: Summary{ProtocolID: s.ProtocolID}}
				accs[s.ProtocolID] = acc
			}
			a, _ := idx.Adherence(s)
			acc.add(p.ID, s, a)
		}
	}
	out := make([]Summary, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProtocolID < out[j].ProtocolID })
	return out
}
