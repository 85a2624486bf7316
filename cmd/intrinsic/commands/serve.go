package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/intrinsic/internal/modules/snapshots/jobs"
	"github.com/aristath/intrinsic/internal/scheduler"
	"github.com/aristath/intrinsic/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with background revaluation",
	Long: `Starts the HTTP server and the background scheduler. Tracked
symbols (TRACKED_SYMBOLS) are re-synced and revalued on the
REFRESH_SCHEDULE cron expression.

Example:
  intrinsic serve
  PORT=9000 TRACKED_SYMBOLS=AAPL,MSFT intrinsic serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.Info().Msg("Starting intrinsic")

	// Register tracked symbols so the refresh job sees them
	for _, symbol := range a.cfg.Symbols {
		if err := a.repo.UpsertCompany(symbol, symbol); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to register tracked symbol")
		}
	}

	sched := scheduler.New(log)

	refresh := jobs.NewRefreshJob(a.repo, a.analysis, a.simConfig(cmd), 0, log)
	if err := sched.AddJob(a.cfg.RefreshSchedule, refresh); err != nil {
		return err
	}
	if err := sched.AddJob("0 0 */6 * * *", scheduler.NewHealthCheckJob(a.db.Conn(), log)); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:       a.cfg.Port,
		Log:        log,
		Config:     a.cfg,
		Analysis:   a.analysis,
		Comparison: a.comparison,
		Repo:       a.repo,
		DevMode:    a.cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info().Int("port", a.cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
