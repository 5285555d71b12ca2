package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rehabplan/internal/adapters/repository"
	app "github.com/okian/rehabplan/internal/app"
	"github.com/okian/rehabplan/internal/config"
	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/scoring"
	"github.com/okian/rehabplan/internal/domain/types"
	"github.com/okian/rehabplan/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globals holds persistent flag values shared by every subcommand.
type globals struct {
	configPath string
	store      string
	dataDir    string
	sqlitePath string
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "rehabplan",
		Short:         "Stroke rehabilitation protocol recommender and session aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&g.store, "store", "", "backend: file, sqlite or memory")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "root of the flat-file layout")
	root.PersistentFlags().StringVar(&g.sqlitePath, "sqlite-path", "", "sqlite database file")

	root.AddCommand(newServeCmd(g))
	root.AddCommand(newPatientsCmd(g))
	root.AddCommand(newRecommendCmd(g))
	root.AddCommand(newPlanCmd(g))
	root.AddCommand(newAggregateCmd(g))
	root.AddCommand(newRollupCmd(g))
	return root
}

// loadConfig layers the persistent flags over file and environment.
func loadConfig(ctx context.Context, g *globals) (*config.Config, error) {
	return config.Load(ctx,
		config.WithFile(g.configPath),
		config.WithOverride("store", g.store),
		config.WithOverride("data_dir", g.dataDir),
		config.WithOverride("sqlite_path", g.sqlitePath),
	)
}

// setupLogging initializes the global logger on w with the configured
// format and level.
func setupLogging(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// openStore selects the backend named by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return repository.NewFileStore(cfg.DataDir,
			repository.WithLoadConcurrency(cfg.LoadConcurrency),
			repository.WithLogger(logger.Named("filestore")),
		), nil
	case config.StoreSQLite:
		s, err := repository.OpenSQLStore(ctx, cfg.SQLitePath, repository.WithSQLLogger(logger.Named("sqlstore")))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownStore, cfg.Store)
	}
}

// newService opens the configured store and starts a service over it.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	other, err := plan.ParseOtherPolicy(cfg.PlanOtherCategories)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	svc := app.New(
		app.WithStore(store),
		app.WithLogger(logger.Named("service")),
		app.WithDefaultWeights(scoring.Weights{Motor: cfg.MotorWeight, Cognitive: cfg.CognitiveWeight}),
		app.WithDefaultAlpha(cfg.EWMAAlpha),
		app.WithPlanItemsPerDay(cfg.PlanItemsPerDay),
		app.WithPlanOtherCategories(other),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

// runWithService loads config, logs to stderr and hands a started service
// to fn. Results are printed to the command's output as JSON.
func runWithService(cmd *cobra.Command, g *globals, fn func(context.Context, *app.Service) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return err
	}
	if err := setupLogging(ctx, cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	out, err := fn(ctx, svc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPatientsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List known patient IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, g, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.PatientIDs(ctx)
			})
		},
	}
}

// weightFlags registers the per-request scoring weights.
type weightFlags struct {
	motor, cognitive float64
}

func (f *weightFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.motor, "motor-weight", 0, "motor weight (default from config)")
	cmd.Flags().Float64Var(&f.cognitive, "cognitive-weight", 0, "cognitive weight (default from config)")
}

// resolve overlays the flags that were set on defaults.
func (f *weightFlags) resolve(cmd *cobra.Command, defaults scoring.Weights) scoring.Weights {
	w := defaults
	if cmd.Flags().Changed("motor-weight") {
		w.Motor = f.motor
	}
	if cmd.Flags().Changed("cognitive-weight") {
		w.Cognitive = f.cognitive
	}
	return w
}

func newRecommendCmd(g *globals) *cobra.Command {
	var (
		patientID string
		limit     int
		weights   weightFlags
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank eligible protocols for a patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, g, func(ctx context.Context, svc *app.Service) (any, error) {
				rec, err := svc.Recommend(ctx, patientID, weights.resolve(cmd, svc.Weights()))
				if err != nil {
					return nil, err
				}
				if limit > 0 {
					rec.Ranked = rec.Top(limit)
				}
				return rec, nil
			})
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "patient ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "keep only the top N protocols")
	weights.register(cmd)
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func newPlanCmd(g *globals) *cobra.Command {
	var (
		patientID   string
		weekStart   string
		other       string
		itemsPerDay int
		weights     weightFlags
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a weekly plan and its prescriptions for a patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := types.PlanRequest{ItemsPerDay: itemsPerDay}
			if other != "" {
				p, err := plan.ParseOtherPolicy(other)
				if err != nil {
					return err
				}
				req.Other = p
			}
			if weekStart != "" {
				t, err := time.Parse(time.DateOnly, weekStart)
				if err != nil {
					return fmt.Errorf("week-start: %w", err)
				}
				req.WeekStart = t
			}
			return runWithService(cmd, g, func(ctx context.Context, svc *app.Service) (any, error) {
				w := weights.resolve(cmd, svc.Weights())
				req.Weights = &w
				return svc.WeeklyPlan(ctx, patientID, req)
			})
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "patient ID")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "week start as YYYY-MM-DD (default next Monday)")
	cmd.Flags().StringVar(&other, "other", "", "assessment/balanced placement: exclude or fill")
	cmd.Flags().IntVar(&itemsPerDay, "items-per-day", 0, "protocols per day (default from config)")
	weights.register(cmd)
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func newAggregateCmd(g *globals) *cobra.Command {
	var (
		patientID string
		alpha     float64
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarize a patient's session log with weekly and EWMA signals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, g, func(ctx context.Context, svc *app.Service) (any, error) {
				if !cmd.Flags().Changed("alpha") {
					return svc.Aggregate(ctx, patientID, svc.Alpha())
				}
				// An explicit zero must not fall back to the default.
				if err := aggregate.ValidateAlpha(alpha); err != nil {
					return nil, err
				}
				return svc.Aggregate(ctx, patientID, alpha)
			})
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "patient ID")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "EWMA smoothing factor in (0, 1] (default from config)")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func newRollupCmd(g *globals) *cobra.Command {
	var protocolID string
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Summarize protocol outcomes across all patients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, g, func(ctx context.Context, svc *app.Service) (any, error) {
				if protocolID == "" {
					return svc.RollupAll(ctx)
				}
				return svc.Rollup(ctx, protocolID)
			})
		},
	}
	cmd.Flags().StringVar(&protocolID, "protocol", "", "protocol ID (default every protocol with sessions)")
	return cmd
}
