package mockdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/pkg/logger"
)

// generator draws record values from a seeded source so runs repeat.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// uniform returns a value in [lo, hi).
func (g *generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intn returns a value in [lo, hi].
func (g *generator) intn(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// Generate builds a patient, the sample catalog, one week of prescriptions
// (one per protocol, weekdays rotating from the week start) and
// cfg.SessionsPerDay sessions on each prescribed weekday.
func Generate(ctx context.Context, cfg Config) (Dataset, error) {
	cfg = cfg.withDefaults()
	if cfg.WeekStart.Weekday() != time.Monday {
		return Dataset{}, model.NewValidationError("week_start", cfg.WeekStart.Format(time.DateOnly), "must be a Monday")
	}
	g := newGenerator(cfg.Seed)

	patientID := cfg.PatientID
	if patientID == "" {
		patientID = uuid.New().String()
	}
	ds := Dataset{Patient: Patient(patientID), Protocols: Catalog()}

	weekStart := aggregate.WeekStart(cfg.WeekStart)
	weekEnd := weekStart.AddDate(0, 0, daysPerWeek-1)
	for i, proto := range ds.Protocols {
		if err := ctx.Err(); err != nil {
			return Dataset{}, fmt.Errorf("context cancelled during generation: %w", err)
		}
		ds.Prescriptions = append(ds.Prescriptions, g.prescription(patientID, proto.ID, weekStart, weekEnd, i))
	}
	for _, rx := range ds.Prescriptions {
		ds.Sessions = append(ds.Sessions, g.sessions(rx, cfg.SessionsPerDay)...)
	}

	logger.Get().Info(ctx, "generated mock dataset",
		logger.PatientID(patientID),
		logger.Int("protocols", len(ds.Protocols)),
		logger.Int("prescriptions", len(ds.Prescriptions)),
		logger.Int("sessions", len(ds.Sessions)),
	)
	return ds, nil
}

func (g *generator) prescription(patientID, protocolID string, start, end time.Time, i int) model.Prescription {
	difficulty := g.rng.Float64()
	return model.Prescription{
		ID:                   uuid.New().String(),
		PatientID:            patientID,
		ProtocolID:           protocolID,
		StartDate:            start,
		EndDate:              end,
		Weekday:              start.AddDate(0, 0, i%daysPerWeek).Weekday().String(),
		PrescribedDuration:   float64(g.intn(minPrescribedMinutes, maxPrescribedMinutes)),
		DecisionScores:       map[string]float64{"motor_score": g.uniform(minPerformance, 1)},
		Explanation:          "Generated mock prescription",
		PrescribedDifficulty: &difficulty,
	}
}

// sessions logs n sessions on every date in the prescription window that
// falls on its weekday.
func (g *generator) sessions(rx model.Prescription, n int) []model.Session {
	var out []model.Session
	for day := rx.StartDate; !day.After(rx.EndDate); day = day.AddDate(0, 0, 1) {
		if day.Weekday().String() != rx.Weekday {
			continue
		}
		for range n {
			hour := time.Duration(g.intn(firstSessionHour, lastSessionHour)) * time.Hour
			out = append(out, model.Session{
				ID:                  uuid.New().String(),
				PatientID:           rx.PatientID,
				ProtocolID:          rx.ProtocolID,
				PrescriptionID:      rx.ID,
				Timestamp:           day.Add(hour),
				Duration:            g.uniform(minSessionMinutes, maxSessionMinutes),
				DifficultyModulator: g.rng.Float64(),
				PerformanceScore:    g.uniform(minPerformance, 1),
			})
		}
	}
	return out
}
