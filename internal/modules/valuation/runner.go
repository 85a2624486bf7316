package valuation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cancelCheckInterval is how many trials a worker runs between
// cooperative cancellation checks.
const cancelCheckInterval = 256

// RunResult holds one completed simulation run. Outcomes always has
// length == config.Trials; a cancelled or failed run returns an error
// and no partial slice.
type RunResult struct {
	RunID      string             `json:"run_id"`
	Outcomes   []float64          `json:"outcomes"`
	GuardCount int                `json:"guard_count"`
	Seed       uint64             `json:"seed"`
	Elapsed    time.Duration      `json:"elapsed"`
	Baseline   BaselineParameters `json:"baseline"`
	Config     SimulationConfig   `json:"config"`
}

// Runner orchestrates the trial loop: sample, project, discount,
// collect. Trials share the immutable baseline and config and nothing
// else; each worker writes to a disjoint index range of the outcome
// slice, so no locking is needed.
type Runner struct {
	log zerolog.Logger
}

// NewRunner creates a simulation runner
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log.With().Str("component", "runner").Logger()}
}

// Run executes cfg.Trials independent trials. The run is a pure
// function of (baseline, config, seed): a fixed seed reproduces the
// outcome sequence bit for bit regardless of worker count, because
// every trial derives its own stream from (seed, trial index).
//
// Configuration errors (invalid settings, non-positive share count)
// abort before any trial runs. Cancellation via ctx discards partial
// work and returns the context error.
func (r *Runner) Run(ctx context.Context, baseline BaselineParameters, cfg SimulationConfig) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseline.SharesOutstanding <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidShareCount, baseline.SharesOutstanding)
	}

	seed := uint64(time.Now().UnixNano())
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	start := time.Now()
	outcomes := make([]float64, cfg.Trials)
	var guardCount atomic.Int64

	var wg sync.WaitGroup
	chunk := (cfg.Trials + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, cfg.Trials)

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			guards := 0
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckInterval == 0 && ctx.Err() != nil {
					return
				}

				draw := SampleDraw(trialSource(seed, i), baseline, cfg)
				path, terminalValue := ProjectCashFlows(baseline.FreeCashFlow, draw, cfg.HorizonYears)
				fairValue, err := DiscountToFairValue(path, terminalValue, draw.DiscountRate, baseline.NetDebt, baseline.SharesOutstanding)
				if err != nil {
					// Shares were validated before the loop; per-trial
					// numerics never escape a trial.
					return
				}

				outcomes[i] = fairValue
				if draw.Guarded {
					guards++
				}
			}
			guardCount.Add(int64(guards))
		}(lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		r.log.Warn().Str("symbol", baseline.Symbol).Msg("Simulation cancelled, discarding partial run")
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	result := &RunResult{
		RunID:      uuid.NewString(),
		Outcomes:   outcomes,
		GuardCount: int(guardCount.Load()),
		Seed:       seed,
		Elapsed:    time.Since(start),
		Baseline:   baseline,
		Config:     cfg,
	}

	r.log.Info().
		Str("symbol", baseline.Symbol).
		Str("run_id", result.RunID).
		Int("trials", cfg.Trials).
		Int("workers", workers).
		Int("guard_count", result.GuardCount).
		Dur("elapsed", result.Elapsed).
		Msg("Simulation complete")

	return result, nil
}
