package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/internal/engine"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

const syncEvery = 64

func newHeadlessCommand(opts *options) *cobra.Command {
	var ticks uint64
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the simulation without a window",
		Long: "Run the simulation without a window, paced at ticksPerSecond " +
			"(0 runs as fast as possible), until --ticks is reached or the process is interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			eng, logger, closer, err := opts.start(cmd, cfg)
			if err != nil || eng == nil {
				return err
			}
			defer closer.Close()

			ran, runErr := runHeadless(cmd.Context(), eng, cfg, ticks)
			stopCtx := context.WithoutCancel(cmd.Context())
			if stats, err := eng.Stats(stopCtx); err == nil {
				logger.Infof("🏁 %d ticks sent, world at tick %d: %d agents, %d emitters, %d indexed, %d dropped, last step %.2fms",
					ran, stats.Tick, stats.Agents, stats.Emitters, stats.Indexed, stats.Dropped, stats.StepMs)
			} else {
				logger.Warnf("final stats: %v", err)
			}
			if err := eng.Stop(stopCtx); err != nil {
				logger.Warnf("stopping engine: %v", err)
			}
			if errors.Is(runErr, context.Canceled) {
				return nil
			}
			return runErr
		},
	}
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	return cmd
}

// runHeadless sends ticks to the engine and returns how many were sent.
func runHeadless(ctx context.Context, eng *engine.Engine, cfg *simulation.Config, ticks uint64) (uint64, error) {
	limit := rate.Inf
	dt := time.Second / 60
	if cfg.TicksPerSecond > 0 {
		limit = rate.Limit(cfg.TicksPerSecond)
		dt = time.Second / time.Duration(cfg.TicksPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	var sent uint64
	for ticks == 0 || sent < ticks {
		if err := limiter.Wait(ctx); err != nil {
			return sent, err
		}
		if err := eng.Tick(ctx, dt); err != nil {
			return sent, err
		}
		sent++
		// Tell does not wait; an Ask now and then keeps the mailbox short
		if sent%syncEvery == 0 {
			if _, err := eng.Stats(ctx); err != nil {
				return sent, err
			}
		}
	}
	return sent, nil
}
