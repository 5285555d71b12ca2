package mockdata

import "time"

// Generation defaults.
var (
	DefaultWeekStart = time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)
)

const (
	DefaultSessionsPerDay = 4
	DefaultTimeout        = 10 * time.Second
)

// Value ranges for generated records.
const (
	minPrescribedMinutes = 30
	maxPrescribedMinutes = 60
	minSessionMinutes    = 15.0
	maxSessionMinutes    = 60.0
	minPerformance       = 0.5
	firstSessionHour     = 8
	lastSessionHour      = 18
	daysPerWeek          = 7
)

// HTTP status code constants.
const (
	StatusOK = 200
)
