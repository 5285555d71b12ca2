package aggregate

import (
	"math"
	"sort"

	"github.com/okian/rehabplan/internal/domain/model"
)

// DefaultAlpha is the EWMA smoothing factor.
const DefaultAlpha = 0.3

// ValidateAlpha rejects smoothing factors outside (0, 1].
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return model.NewValidationError("alpha", alpha, "must lie within (0, 1]")
	}
	return nil
}

// EWMA smooths values with factor alpha, seeded by the first value:
// e[0] = v[0], e[i] = alpha*v[i] + (1-alpha)*e[i-1].
func EWMA(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// Latest holds the final point of each smoothed series.
type Latest struct {
	Adherence        float64 `json:"ewma_adherence"`
	Performance      float64 `json:"ewma_performance"`
	DifficultyChange float64 `json:"ewma_difficulty_change"`
}

// Series is the per-session history of one protocol for one patient,
// ordered by timestamp.
type Series struct {
	ProtocolID           string          `json:"protocol_id"`
	Sessions             []model.Session `json:"sessions"`
	Adherence            []float64       `json:"adherence"`
	EWMAAdherence        []float64       `json:"ewma_adherence"`
	EWMAPerformance      []float64       `json:"ewma_performance"`
	DifficultyChange     []float64       `json:"difficulty_change"`
	EWMADifficultyChange []float64       `json:"ewma_difficulty_change"`
	TotalAdherence       float64         `json:"total_adherence"`
	Latest               Latest          `json:"latest"`
}

// NewSeries orders sessions by timestamp and computes the smoothed series.
// It reports false when there are no sessions.
func NewSeries(protocolID string, sessions []model.Session, idx model.PrescriptionIndex, alpha float64) (Series, bool) {
	if len(sessions) == 0 {
		return Series{}, false
	}
	sorted := make([]model.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	n := len(sorted)
	adherence := make([]float64, n)
	performance := make([]float64, n)
	change := make([]float64, n)
	var total float64
	for i, s := range sorted {
		adherence[i], _ = idx.Adherence(s)
		total += adherence[i]
		performance[i] = s.PerformanceScore
		if i > 0 {
			change[i] = s.DifficultyModulator - sorted[i-1].DifficultyModulator
		}
	}

	s := Series{
		ProtocolID:           protocolID,
		Sessions:             sorted,
		Adherence:            adherence,
		EWMAAdherence:        EWMA(adherence, alpha),
		EWMAPerformance:      EWMA(performance, alpha),
		DifficultyChange:     change,
		EWMADifficultyChange: EWMA(change, alpha),
		TotalAdherence:       total / float64(n),
	}
	s.Latest = Latest{
		Adherence:        s.EWMAAdherence[n-1],
		Performance:      s.EWMAPerformance[n-1],
		DifficultyChange: s.EWMADifficultyChange[n-1],
	}
	return s, true
}
