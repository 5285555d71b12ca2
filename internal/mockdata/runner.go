package mockdata

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/rehabplan/internal/adapters/repository"
	"github.com/okian/rehabplan/pkg/logger"
)

// Run generates a dataset, writes it through w and, when cfg.BaseURL is
// set, checks that a running service reports it back.
func Run(ctx context.Context, cfg Config, w repository.Writer) (Stats, error) {
	cfg = cfg.withDefaults()
	stats := Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting mock data run",
		logger.PatientID(cfg.PatientID),
		logger.String("week_start", cfg.WeekStart.Format(time.DateOnly)),
		logger.Int("sessions_per_day", cfg.SessionsPerDay),
		logger.String("base_url", cfg.BaseURL),
		logger.Bool("verbose", cfg.Verbose),
	)

	ds, err := Generate(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}

	if err := Save(ctx, w, ds, &stats); err != nil {
		return stats, fmt.Errorf("write failed: %w", err)
	}

	if cfg.BaseURL != "" {
		if err := Verify(ctx, cfg, ds); err != nil {
			return stats, fmt.Errorf("verification failed: %w", err)
		}
		stats.Verified = true
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// Save writes the catalog, then the patient, then its log. Counts land
// in stats as records are written.
func Save(ctx context.Context, w repository.Writer, ds Dataset, stats *Stats) error {
	for _, p := range ds.Protocols {
		if err := w.SaveProtocol(ctx, p); err != nil {
			return fmt.Errorf("protocol %s: %w", p.ID, err)
		}
		stats.Protocols++
	}
	if err := w.SavePatient(ctx, ds.Patient); err != nil {
		return fmt.Errorf("patient %s: %w", ds.Patient.ID, err)
	}
	for _, rx := range ds.Prescriptions {
		if err := w.SavePrescription(ctx, rx); err != nil {
			return fmt.Errorf("prescription %s: %w", rx.ID, err)
		}
		stats.Prescriptions++
	}
	for _, s := range ds.Sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.SaveSession(ctx, s); err != nil {
			return fmt.Errorf("session %s: %w", s.ID, err)
		}
		stats.Sessions++
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("protocols", stats.Protocols),
		logger.Int("prescriptions", stats.Prescriptions),
		logger.Int("sessions", stats.Sessions),
		logger.Bool("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
	)
}
