// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and snake_case so env vars map onto them directly.
// - New(ctx) returns the defaults; Load(ctx) layers file and env on top.
// - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the patient and protocol backend: file, sqlite or memory.
	Store string `koanf:"store"`

	// DataDir is the root of the flat-file layout (patients/, protocols/,
	// prescriptions/, sessions/).
	DataDir string `koanf:"data_dir"`

	// SQLitePath is the database file for the sqlite store.
	SQLitePath string `koanf:"sqlite_path"`

	// MotorWeight and CognitiveWeight are the default scoring weights when a
	// request does not supply its own.
	MotorWeight     float64 `koanf:"motor_weight"`
	CognitiveWeight float64 `koanf:"cognitive_weight"`

	// EWMAAlpha is the default smoothing factor for session aggregates.
	EWMAAlpha float64 `koanf:"ewma_alpha"`

	// PlanItemsPerDay caps protocols per day in weekly plans.
	PlanItemsPerDay int `koanf:"plan_items_per_day"`

	// PlanOtherCategories is exclude or fill.
	PlanOtherCategories string `koanf:"plan_other_categories"`

	// LoadConcurrency bounds parallel patient file loads.
	LoadConcurrency int `koanf:"load_concurrency"`
}

// New returns a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Store:               StoreFile,
		DataDir:             "data",
		SQLitePath:          "rehabplan.db",
		MotorWeight:         0.6,
		CognitiveWeight:     0.3,
		EWMAAlpha:           0.3,
		PlanItemsPerDay:     4,
		PlanOtherCategories: "exclude",
		LoadConcurrency:     runtime.NumCPU(),
	}
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("store %q must be file, sqlite or memory", c.Store))
	}
	if c.Store == StoreFile && c.DataDir == "" {
		problems = append(problems, "data_dir must not be empty for the file store")
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		problems = append(problems, "sqlite_path must not be empty for the sqlite store")
	}
	if c.MotorWeight < 0 || c.CognitiveWeight < 0 {
		problems = append(problems, "motor_weight and cognitive_weight must not be negative")
	}
	if c.EWMAAlpha <= 0 || c.EWMAAlpha > 1 {
		problems = append(problems, "ewma_alpha must lie within (0, 1]")
	}
	if c.PlanItemsPerDay <= 0 {
		problems = append(problems, "plan_items_per_day must be positive")
	}
	switch c.PlanOtherCategories {
	case "exclude", "fill":
	default:
		problems = append(problems, fmt.Sprintf("plan_other_categories %q must be exclude or fill", c.PlanOtherCategories))
	}
	if c.LoadConcurrency <= 0 {
		problems = append(problems, "load_concurrency must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
