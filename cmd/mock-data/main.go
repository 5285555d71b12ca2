package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rehabplan/internal/adapters/repository"
	"github.com/okian/rehabplan/internal/config"
	"github.com/okian/rehabplan/internal/mockdata"
)

// Default configuration constants.
const (
	defaultRunTimeout = 5 * time.Minute
	defaultDataDir    = "data"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the flag values of one run.
type options struct {
	store      string
	dataDir    string
	sqlitePath string
	patientID  string
	weekStart  string
	perDay     int
	seed       uint64
	baseURL    string
	timeout    time.Duration
	logFile    string
	logFormat  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "mock-data",
		Short:         "Write a mock patient, catalog and week of sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			return run(ctx, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.store, "store", "file", "destination: file or sqlite")
	f.StringVar(&o.dataDir, "data-dir", defaultDataDir, "root of the flat-file layout")
	f.StringVar(&o.sqlitePath, "sqlite-path", "rehabplan.db", "sqlite database file")
	f.StringVar(&o.patientID, "patient", "", "patient ID (default a fresh uuid)")
	f.StringVar(&o.weekStart, "week-start", mockdata.DefaultWeekStart.Format(time.DateOnly), "Monday the prescriptions start on")
	f.IntVar(&o.perDay, "sessions-per-day", mockdata.DefaultSessionsPerDay, "sessions logged on each prescribed weekday")
	f.Uint64Var(&o.seed, "seed", uint64(time.Now().UnixNano()), "seed for generated values")
	f.StringVar(&o.baseURL, "url", "", "service base URL to verify against, e.g. http://localhost:9080")
	f.DurationVar(&o.timeout, "timeout", mockdata.DefaultTimeout, "HTTP request timeout")
	f.StringVar(&o.logFile, "log", "", "also write logs to this file")
	f.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	f.BoolVar(&o.verbose, "verbose", false, "enable verbose logging")
	return cmd
}

func run(ctx context.Context, o *options) error {
	closeLog, err := mockdata.SetupLogging(o.logFile, o.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	weekStart, err := time.Parse(time.DateOnly, o.weekStart)
	if err != nil {
		return fmt.Errorf("week-start: %w", err)
	}

	w, closeStore, err := openWriter(ctx, o)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	_, err = mockdata.Run(ctx, mockdata.Config{
		PatientID:      o.patientID,
		WeekStart:      weekStart,
		SessionsPerDay: o.perDay,
		Seed:           o.seed,
		BaseURL:        o.baseURL,
		Timeout:        o.timeout,
		Verbose:        o.verbose,
	}, w)
	return err
}

// openWriter returns the destination store and its closer.
func openWriter(ctx context.Context, o *options) (repository.Writer, func() error, error) {
	switch o.store {
	case "file":
		s := repository.NewFileStore(o.dataDir)
		return s, s.Close, nil
	case "sqlite":
		s, err := repository.OpenSQLStore(ctx, o.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w %q: want file or sqlite", config.ErrUnknownStore, o.store)
	}
}
