package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Prescriptions turns a plan into one prescription per scheduled item for
// the week starting at weekStart. Each prescription spans the week, names
// its weekday and prescribes the protocol's maximum safe duration.
func Prescriptions(p Plan, patientID string, weekStart time.Time) []model.Prescription {
	end := weekStart.AddDate(0, 0, len(Weekdays)-1)
	out := make([]model.Prescription, 0, p.Placed())
	for _, d := range p.Days {
		for _, sp := range d.Items {
			out = append(out, model.Prescription{
				ID:                 uuid.NewString(),
				PatientID:          patientID,
				ProtocolID:         sp.Protocol.ID,
				StartDate:          weekStart,
				EndDate:            end,
				Weekday:            d.Name,
				PrescribedDuration: float64(sp.Protocol.SafetyConstraints.MaxDuration),
				DecisionScores: map[string]float64{
					"score":                sp.Score,
					"motor_similarity":     sp.MotorSimilarity,
					"cognitive_similarity": sp.CognitiveSimilarity,
				},
				Explanation: fmt.Sprintf("rank %d, %s-led day", sp.Rank, d.Lead),
			})
		}
	}
	return out
}
