// Package engine hosts the simulation inside a goakt actor system.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/telemetry"
)

const askTimeout = 5 * time.Second

// Engine is the handle the renderer and the CLI use to drive the world actor.
type Engine struct {
	system     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
}

// NewEngine starts an actor system and spawns the world actor in it.
func NewEngine(ctx context.Context, cfg *simulation.Config, logger log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	output, err := telemetry.NewOutput(cfg.TelemetryDir)
	if err != nil {
		return nil, err
	}

	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		_ = output.Close()
		return nil, fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		_ = output.Close()
		return nil, fmt.Errorf("starting actor system: %w", err)
	}

	// Buffer to avoid blocking the world when the renderer lags
	snapshotCh := make(chan *simulation.Snapshot, 10)
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(cfg, snapshotCh, output))
	if err != nil {
		// PostStop never runs for an actor that failed to start
		_ = output.Close()
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("spawning world: %w", err)
	}

	return &Engine{
		system:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
	}, nil
}

// Tick asks the world to advance one step.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) error {
	return actor.Tell(ctx, e.worldPID, TickMessage(dt))
}

func (e *Engine) SpawnEmitter(ctx context.Context, x, y float64) error {
	return e.send(ctx, SpawnEmitterCommand(x, y))
}

func (e *Engine) Resize(ctx context.Context, width, height float64) error {
	return e.send(ctx, ResizeCommand(width, height))
}

func (e *Engine) SetEmitterDefaults(ctx context.Context, radius, shrinkRate float64) error {
	return e.send(ctx, EmitterDefaultsCommand(radius, shrinkRate))
}

func (e *Engine) ClearEmitters(ctx context.Context) error {
	return e.send(ctx, ClearEmittersCommand())
}

func (e *Engine) SetOverlay(ctx context.Context, enabled bool) error {
	return e.send(ctx, OverlayCommand(enabled))
}

func (e *Engine) send(ctx context.Context, cmd *structpb.Struct) error {
	if err := actor.Tell(ctx, e.worldPID, cmd); err != nil {
		return fmt.Errorf("sending %s: %w", cmd.GetFields()["kind"].GetStringValue(), err)
	}
	return nil
}

// Stats asks the world for its counters. Messages sent before the call are processed first.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	resp, err := actor.Ask(ctx, e.worldPID, &emptypb.Empty{}, askTimeout)
	if err != nil {
		return Stats{}, fmt.Errorf("asking world stats: %w", err)
	}
	s, ok := resp.(*structpb.Struct)
	if !ok {
		return Stats{}, fmt.Errorf("unexpected stats reply %T", resp)
	}
	return decodeStats(s), nil
}

// Snapshots delivers the world state after each tick or command. Frames are dropped
// when the reader falls behind.
func (e *Engine) Snapshots() <-chan *simulation.Snapshot {
	return e.snapshotCh
}

// Stop shuts the actor system down; the world actor closes its telemetry output.
func (e *Engine) Stop(ctx context.Context) error {
	return e.system.Stop(ctx)
}
