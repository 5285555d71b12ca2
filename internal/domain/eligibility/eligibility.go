// Package eligibility removes protocols that are contraindicated for a patient.
package eligibility

import (
	"slices"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Exclusion records a protocol that was dropped and the tag that blocked it.
type Exclusion struct {
	ProtocolID string `json:"protocol_id"`
	Tag        string `json:"tag"`
}

// Filter keeps the protocols whose contraindications share no element with
// tags. Order is preserved and the input is not modified.
func Filter(protocols []model.Protocol, tags []string) []model.Protocol {
	kept, _ := Partition(protocols, tags)
	return kept
}

// Partition is Filter that also reports every exclusion.
func Partition(protocols []model.Protocol, tags []string) ([]model.Protocol, []Exclusion) {
	kept := make([]model.Protocol, 0, len(protocols))
	var excluded []Exclusion
	for _, p := range protocols {
		if tag, blocked := blockingTag(p, tags); blocked {
			excluded = append(excluded, Exclusion{ProtocolID: p.ID, Tag: tag})
			continue
		}
		kept = append(kept, p)
	}
	return kept, excluded
}

func blockingTag(p model.Protocol, tags []string) (string, bool) {
	for _, c := range p.SafetyConstraints.Contraindications {
		if slices.Contains(tags, c) {
			return c, true
		}
	}
	return "", false
}
