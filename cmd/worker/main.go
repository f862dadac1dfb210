package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/runner"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := newJobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure job store")
	}
	defer cleanup()

	run := runner.New(st, buildHandlers(cfg, st, logger), logger)

	logger.Info().Msg("worker: started")
	if err := loop(ctx, run, cfg.WorkerPollInterval, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

// loop processes jobs one at a time, sleeping between polls while the queue
// is empty. Store errors back off the same way instead of spinning.
func loop(ctx context.Context, run *runner.Runner, pollInterval time.Duration, logger infra.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outcome, err := run.ProcessOne(ctx, "")
		if err != nil {
			if !errors.Is(err, domain.ErrNoQueuedJobs) {
				logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}
		logger.Info().
			Str("job_id", outcome.JobID).
			Str("status", string(outcome.Status)).
			Msg("worker: job finished")
	}
}
