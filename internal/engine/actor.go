package engine

import (
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/telemetry"
)

// WorldActor owns the simulation. Ticks, commands and stats requests all arrive as
// messages, so the world is only ever touched from the actor's goroutine.
type WorldActor struct {
	cfg   *simulation.Config
	world *simulation.World

	// Communication with UI
	snapshotCh chan<- *simulation.Snapshot
	overlay    bool

	collector *telemetry.Collector
	output    *telemetry.Output
}

// NewWorldActor creates the world logic unit. snapshotCh may be nil when nobody renders.
func NewWorldActor(cfg *simulation.Config, snapshotCh chan<- *simulation.Snapshot, output *telemetry.Output) *WorldActor {
	return &WorldActor{
		cfg:        cfg,
		snapshotCh: snapshotCh,
		collector:  telemetry.NewCollector(cfg.TelemetryWindow),
		output:     output,
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	logger.Info("World is spawning the flock...")
	w.world = simulation.NewWorld(w.cfg, logger)
	return w.output.WriteConfig(w.cfg)
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		width, height := w.world.Size()
		ctx.Logger().Infof("World Started: %d agents in %vx%v", len(w.world.Agents()), width, height)
		w.pushSnapshot()

	// The main simulation step, driven by the game loop or the headless runner
	case *durationpb.Duration:
		if err := w.world.Step(ctx.Context()); err != nil {
			ctx.Logger().Errorf("tick skipped: %v", err)
			return
		}
		w.observe(ctx)
		w.pushSnapshot()

	case *structpb.Struct:
		if err := w.apply(msg); err != nil {
			ctx.Logger().Warnf("command rejected: %v", err)
		}

	case *emptypb.Empty:
		ctx.Response(statsMessage(w.world))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) apply(msg *structpb.Struct) error {
	cmd, err := decodeCommand(msg)
	if err != nil {
		return err
	}
	switch cmd.kind {
	case KindSpawnEmitter:
		w.world.SpawnEmitter(cmd.a, cmd.b)
	case KindResize:
		if err := w.world.Resize(cmd.a, cmd.b); err != nil {
			return err
		}
	case KindEmitterDefaults:
		if err := w.world.SetEmitterDefaults(cmd.a, cmd.b); err != nil {
			return err
		}
	case KindClearEmitters:
		w.world.ClearEmitters()
	case KindOverlay:
		w.overlay = cmd.enabled
	}
	// reflect the change even while the renderer is paused
	w.pushSnapshot()
	return nil
}

func (w *WorldActor) observe(ctx *actor.ReceiveContext) {
	stats, ok := w.collector.Record(w.world)
	if !ok {
		return
	}
	ctx.Logger().Infof("📊 %s", stats)
	if err := w.output.WriteWindow(stats); err != nil {
		ctx.Logger().Warnf("telemetry: %v", err)
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.world.Snapshot(w.overlay):
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return w.output.Close()
}

// Stats is the answer to a stats request.
type Stats struct {
	Tick      uint64
	Agents    int
	Emitters  int
	Indexed   int
	Dropped   int
	Neighbors int
	StepMs    float64
	Width     float64
	Height    float64
}

func statsMessage(world *simulation.World) *structpb.Struct {
	last := world.LastStats()
	width, height := world.Size()
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":      structpb.NewNumberValue(float64(world.Tick())),
		"agents":    structpb.NewNumberValue(float64(len(world.Agents()))),
		"emitters":  structpb.NewNumberValue(float64(len(world.Emitters()))),
		"indexed":   structpb.NewNumberValue(float64(last.Indexed)),
		"dropped":   structpb.NewNumberValue(float64(last.Dropped)),
		"neighbors": structpb.NewNumberValue(float64(last.Neighbors)),
		"stepMs":    structpb.NewNumberValue(float64(last.Duration.Microseconds()) / 1000),
		"width":     structpb.NewNumberValue(width),
		"height":    structpb.NewNumberValue(height),
	}}
}

func decodeStats(s *structpb.Struct) Stats {
	f := s.GetFields()
	num := func(key string) float64 { return f[key].GetNumberValue() }
	return Stats{
		Tick:      uint64(num("tick")),
		Agents:    int(num("agents")),
		Emitters:  int(num("emitters")),
		Indexed:   int(num("indexed")),
		Dropped:   int(num("dropped")),
		Neighbors: int(num("neighbors")),
		StepMs:    num("stepMs"),
		Width:     num("width"),
		Height:    num("height"),
	}
}
