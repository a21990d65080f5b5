package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/internal/engine"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/internal/render"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

// options holds the command line overrides applied on top of the config file
type options struct {
	configFile   string
	agents       int
	workers      int
	seed         uint64
	telemetryDir string
	logLevel     string
	logFile      string
	dumpConfig   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "boids",
		Short:         "Flocking simulation backed by a quadtree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return opts.runWindow(cmd, cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (.json, .yaml or .toml)")
	flags.IntVarP(&opts.agents, "agents", "n", 0, "number of agents")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "goroutines computing forces")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one")
	flags.StringVar(&opts.telemetryDir, "telemetry-dir", "", "directory for config.yaml and telemetry.csv")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "also log to this rotated file")
	flags.StringVar(&opts.dumpConfig, "dump-config", "", "write the effective config as YAML and exit")

	cmd.AddCommand(newHeadlessCommand(opts))
	return cmd
}

// load reads the config file, if any, then applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if o.configFile != "" {
		loaded, err := simulation.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("agents") {
		cfg.NumAgents = o.agents
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("telemetry-dir") {
		cfg.TelemetryDir = o.telemetryDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// start builds the logger and the engine. With --dump-config it only writes
// the config and returns a nil engine.
func (o *options) start(cmd *cobra.Command, cfg *simulation.Config) (*engine.Engine, log.Logger, io.Closer, error) {
	if o.dumpConfig != "" {
		if err := cfg.WriteYAML(o.dumpConfig); err != nil {
			return nil, nil, nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", o.dumpConfig)
		return nil, nil, nil, nil
	}

	logger, closer := engine.NewLogger(cfg.LogLevel, cfg.LogFile)
	eng, err := engine.NewEngine(cmd.Context(), cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, err
	}
	return eng, logger, closer, nil
}

func (o *options) runWindow(cmd *cobra.Command, cfg *simulation.Config) error {
	eng, logger, closer, err := o.start(cmd, cfg)
	if err != nil || eng == nil {
		return err
	}
	defer closer.Close()
	defer func() {
		if err := eng.Stop(context.WithoutCancel(cmd.Context())); err != nil {
			logger.Warnf("stopping engine: %v", err)
		}
	}()

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids (quadtree)")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TicksPerSecond > 0 {
		ebiten.SetTPS(cfg.TicksPerSecond)
	}

	game := render.NewGame(cmd.Context(), eng, cfg, logger)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
