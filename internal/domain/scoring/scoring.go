// Package scoring ranks protocols by how well their trained features cover a
// patient's clinical deficits.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Default weighting of the two similarity terms.
const (
	DefaultMotorWeight     = 0.6
	DefaultCognitiveWeight = 0.3
)

// Weights scales the motor and cognitive similarity terms. They are
// request-scoped and are not required to sum to 1.
type Weights struct {
	Motor     float64 `json:"motor"`
	Cognitive float64 `json:"cognitive"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{Motor: DefaultMotorWeight, Cognitive: DefaultCognitiveWeight}
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	if math.IsNaN(w.Motor) || math.IsInf(w.Motor, 0) || w.Motor < 0 {
		return model.NewValidationError("motor_weight", w.Motor, "must be a non-negative number")
	}
	if math.IsNaN(w.Cognitive) || math.IsInf(w.Cognitive, 0) || w.Cognitive < 0 {
		return model.NewValidationError("cognitive_weight", w.Cognitive, "must be a non-negative number")
	}
	return nil
}

// ScoredProtocol is a protocol annotated with its match score.
type ScoredProtocol struct {
	Protocol               model.Protocol     `json:"protocol"`
	Rank                   int                `json:"rank"`
	Score                  float64            `json:"score"`
	MotorSimilarity        float64            `json:"motor_similarity"`
	CognitiveSimilarity    float64            `json:"cognitive_similarity"`
	MotorContributions     map[string]float64 `json:"motor_contributions"`
	CognitiveContributions map[string]float64 `json:"cognitive_contributions"`
	EmptyFeatures          bool               `json:"empty_features,omitempty"`
}

// Score computes the match of a single protocol. Rank is left at zero.
func Score(profile model.ClinicalProfile, p model.Protocol, w Weights) ScoredProtocol {
	sp := ScoredProtocol{
		Protocol:               p,
		MotorContributions:     make(map[string]float64, len(MotorPairs)),
		CognitiveContributions: make(map[string]float64, len(CognitivePairs)),
	}
	trained := false
	for _, pair := range MotorPairs {
		c := contribution(profile, p, pair, &trained)
		sp.MotorContributions[string(pair.Subscale)] = c
		sp.MotorSimilarity += c
	}
	for _, pair := range CognitivePairs {
		c := contribution(profile, p, pair, &trained)
		sp.CognitiveContributions[string(pair.Subscale)] = c
		sp.CognitiveSimilarity += c
	}
	sp.EmptyFeatures = !trained
	sp.Score = sp.MotorSimilarity*w.Motor + sp.CognitiveSimilarity*w.Cognitive
	return sp
}

func contribution(profile model.ClinicalProfile, p model.Protocol, pair Pair, trained *bool) float64 {
	if !pair.Trains(p) {
		return 0
	}
	*trained = true
	return profile.Deficit(pair.Subscale)
}

// ScoreAll scores every protocol and returns them ranked by score,
// descending. Ties keep catalog order. Protocols with no paired feature
// score zero and are reported as conditions.
func ScoreAll(profile model.ClinicalProfile, protocols []model.Protocol, w Weights) ([]ScoredProtocol, []model.Condition, error) {
	if err := w.Validate(); err != nil {
		return nil, nil, fmt.Errorf("score protocols: %w", err)
	}
	out := make([]ScoredProtocol, 0, len(protocols))
	var conds []model.Condition
	for _, p := range protocols {
		sp := Score(profile, p, w)
		if sp.EmptyFeatures {
			conds = append(conds, model.Condition{
				Kind:    model.ConditionEmptyFeatures,
				Subject: p.ID,
				Detail:  "protocol trains none of the paired features",
			})
		}
		out = append(out, sp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, conds, nil
}
