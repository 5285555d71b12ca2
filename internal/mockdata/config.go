package mockdata

import (
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
)

// Config holds configuration for a mock data run
type Config struct {
	PatientID      string        // Patient to generate for; a uuid when empty
	WeekStart      time.Time     // Monday the prescriptions start on
	SessionsPerDay int           // Sessions logged on each prescribed weekday
	Seed           uint64        // Seed for the value generator
	BaseURL        string        // Service to verify against; skipped when empty
	Timeout        time.Duration // HTTP request timeout
	Verbose        bool          // Enable verbose logging
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.WeekStart.IsZero() {
		c.WeekStart = DefaultWeekStart
	}
	if c.SessionsPerDay <= 0 {
		c.SessionsPerDay = DefaultSessionsPerDay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Dataset is one generated patient with its catalog and log.
type Dataset struct {
	Patient       model.Patient
	Protocols     []model.Protocol
	Prescriptions []model.Prescription
	Sessions      []model.Session
}

// SessionsFor counts the sessions logged against protocolID.
func (d Dataset) SessionsFor(protocolID string) int {
	n := 0
	for _, s := range d.Sessions {
		if s.ProtocolID == protocolID {
			n++
		}
	}
	return n
}

// Stats holds run statistics
type Stats struct {
	Protocols     int
	Prescriptions int
	Sessions      int
	Verified      bool
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
