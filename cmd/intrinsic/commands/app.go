package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/intrinsic/internal/clients/yahoo"
	"github.com/aristath/intrinsic/internal/config"
	"github.com/aristath/intrinsic/internal/database"
	"github.com/aristath/intrinsic/internal/events"
	"github.com/aristath/intrinsic/internal/modules/comparison"
	"github.com/aristath/intrinsic/internal/modules/market"
	"github.com/aristath/intrinsic/internal/modules/snapshots"
	"github.com/aristath/intrinsic/internal/modules/valuation"
	"github.com/aristath/intrinsic/internal/services"
	"github.com/aristath/intrinsic/pkg/logger"
)

// app holds the fully wired service graph shared by all commands
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	db         *database.DB
	repo       *snapshots.Repository
	analysis   *services.AnalysisService
	comparison *comparison.Service
}

// newApp loads configuration and wires the services every command
// needs. The caller must Close the app when done.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  level,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	repo := snapshots.NewRepository(db.Conn(), log)
	analysis := services.NewAnalysisService(
		yahoo.NewClient(log),
		repo,
		market.NewService(log),
		valuation.NewService(log),
		events.NewManager(log),
		services.AnalysisOptions{
			IndexSymbol:  cfg.IndexSymbol,
			RiskFreeRate: cfg.RiskFreeRate,
		},
		log,
	)

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		repo:       repo,
		analysis:   analysis,
		comparison: comparison.NewService(analysis, log),
	}, nil
}

// simConfig builds the simulation configuration from app defaults and
// the shared command-line flags.
func (a *app) simConfig(cmd *cobra.Command) valuation.SimulationConfig {
	cfg := valuation.DefaultConfig()
	cfg.Trials = a.cfg.Trials
	cfg.HorizonYears = a.cfg.HorizonYears
	cfg.Workers = a.cfg.Workers

	if flagTrials > 0 {
		cfg.Trials = flagTrials
	}
	if flagHorizon > 0 {
		cfg.HorizonYears = flagHorizon
	}
	if cmd.Flags().Changed("seed") {
		seed := flagSeed
		cfg.Seed = &seed
	}
	return cfg
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close database")
	}
}
