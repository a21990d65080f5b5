package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

// minChunk is the smallest slice of agents handed to one force worker.
const minChunk = 64

// StepStats describes the last completed tick.
type StepStats struct {
	Tick     uint64
	Agents   int
	Emitters int
	Indexed  int // agents stored in the index this tick
	Dropped  int // agents outside the world boundary at rebuild time
	// Neighbors is the sum over all agents of the flockmates they saw, self excluded.
	Neighbors int
	Duration  time.Duration
}

// World owns the flock, the live emitters and the per-tick spatial index.
// It is not safe for concurrent use; the engine serializes access through an actor.
type World struct {
	cfg      *Config
	settings behavior.Settings
	logger   log.Logger
	rng      *rand.Rand

	width, height float64
	agents        []*behavior.Boid
	emitters      []*behavior.Blackhole
	tree          *quadtree.Tree[*behavior.Boid]

	emitterRadius float64
	emitterShrink float64

	tick uint64
	last StepStats
	// one query accumulator per force worker, reused across ticks
	buffers [][]behavior.Neighbor
}

// NewWorld populates a world with cfg.NumAgents agents at random positions.
// A nil logger discards everything.
func NewWorld(cfg *Config, logger log.Logger) *World {
	if logger == nil {
		logger = log.DiscardLogger
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	w := &World{
		cfg:           cfg,
		settings:      cfg.Settings(),
		logger:        logger,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		width:         cfg.WorldWidth,
		height:        cfg.WorldHeight,
		agents:        make([]*behavior.Boid, 0, cfg.NumAgents),
		emitterRadius: cfg.EmitterRadius,
		emitterShrink: cfg.EmitterShrinkRate,
		buffers:       make([][]behavior.Neighbor, max(cfg.Workers, 1)),
	}
	for i := 0; i < cfg.NumAgents; i++ {
		w.agents = append(w.agents, behavior.Spawn(w.rng, w.width, w.height, w.settings))
	}
	w.rebuild()
	logger.Infof("world %vx%v populated with %d agents (seed %d)", w.width, w.height, len(w.agents), seed)
	return w
}

// AddAgent inserts an existing agent. It takes part from the next tick on.
func (w *World) AddAgent(b *behavior.Boid) {
	w.agents = append(w.agents, b)
}

// Step advances the simulation by one tick:
// rebuild the index, compute every agent's forces, integrate and wrap, then age emitters.
// A cancelled ctx abandons the tick: accumulated forces are discarded and nothing moves.
func (w *World) Step(ctx context.Context) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return err
	}

	indexed, dropped := w.rebuild()

	neighbors, err := w.applyForces(ctx)
	if err != nil {
		for _, a := range w.agents {
			a.Acceleration.Zero()
		}
		return fmt.Errorf("force phase of tick %d: %w", w.tick+1, err)
	}

	for _, a := range w.agents {
		a.Update()
		a.Edges(w.width, w.height)
	}

	w.ageEmitters()

	w.tick++
	w.last = StepStats{
		Tick:      w.tick,
		Agents:    len(w.agents),
		Emitters:  len(w.emitters),
		Indexed:   indexed,
		Dropped:   dropped,
		Neighbors: neighbors,
		Duration:  time.Since(start),
	}
	return nil
}

// rebuild discards the previous index and inserts every agent at its current position.
func (w *World) rebuild() (indexed, dropped int) {
	w.tree = quadtree.New[*behavior.Boid](
		geometry.BoxFromSize(w.width, w.height),
		w.cfg.QuadtreeCapacity,
		quadtree.WithMaxDepth(w.cfg.QuadtreeMaxDepth),
	)
	for _, a := range w.agents {
		if w.tree.Insert(a.Entry()) {
			indexed++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		w.logger.Debugf("tick %d: %d agents outside %vx%v were not indexed", w.tick, dropped, w.width, w.height)
	}
	return indexed, dropped
}

// applyForces runs Flock for every agent. Agents only write their own acceleration and
// only read positions and velocities of others, so chunks run in parallel safely.
func (w *World) applyForces(ctx context.Context) (int, error) {
	n := len(w.agents)
	workers := min(len(w.buffers), max(n/minChunk, 1))

	if workers <= 1 {
		buf, seen := w.flockRange(w.agents, w.buffers[0])
		w.buffers[0] = buf
		return seen, nil
	}

	chunk := (n + workers - 1) / workers
	seen := make([]int, workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		lo := i * chunk
		if lo >= n {
			break
		}
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w.buffers[i], seen[i] = w.flockRange(w.agents[lo:hi], w.buffers[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0
	for _, s := range seen {
		total += s
	}
	return total, nil
}

func (w *World) flockRange(agents []*behavior.Boid, buf []behavior.Neighbor) ([]behavior.Neighbor, int) {
	seen := 0
	for _, a := range agents {
		buf = a.Flock(w.tree, w.emitters, w.settings.PerceptionRadius, buf)
		for _, nb := range buf {
			if nb.ID != a.ID {
				seen++
			}
		}
	}
	return buf, seen
}

func (w *World) ageEmitters() {
	live := w.emitters[:0]
	for _, h := range w.emitters {
		h.Update()
		if h.IsExpired() {
			w.logger.Debugf("tick %d: emitter at %v expired", w.tick, h.Position)
			continue
		}
		live = append(live, h)
	}
	clear(w.emitters[len(live):])
	w.emitters = live
}

// SpawnEmitter adds an emitter at (x, y) with the current emitter defaults.
func (w *World) SpawnEmitter(x, y float64) *behavior.Blackhole {
	h := behavior.NewBlackhole(x, y, w.emitterRadius, w.emitterShrink)
	w.emitters = append(w.emitters, h)
	w.logger.Debugf("tick %d: emitter spawned at %v radius %v", w.tick, h.Position, h.Radius)
	return h
}

// SetEmitterDefaults changes the radius and shrink rate of emitters spawned from now on.
func (w *World) SetEmitterDefaults(radius, shrinkRate float64) error {
	if radius <= 0 || shrinkRate < 0 {
		return fmt.Errorf("%w: emitter radius %v / shrink rate %v", ErrInvalidConfig, radius, shrinkRate)
	}
	w.emitterRadius = radius
	w.emitterShrink = shrinkRate
	return nil
}

// EmitterDefaults returns the radius and shrink rate used by SpawnEmitter.
func (w *World) EmitterDefaults() (radius, shrinkRate float64) {
	return w.emitterRadius, w.emitterShrink
}

// ClearEmitters removes every live emitter.
func (w *World) ClearEmitters() {
	clear(w.emitters)
	w.emitters = w.emitters[:0]
}

// Resize changes the wrap bounds and the index boundary. Agents left outside the new
// bounds are wrapped by the next integration and are not indexed until then.
func (w *World) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: world size %vx%v must be positive", ErrInvalidConfig, width, height)
	}
	w.logger.Infof("world resized from %vx%v to %vx%v", w.width, w.height, width, height)
	w.width, w.height = width, height
	return nil
}

func (w *World) Tick() uint64 { return w.tick }

func (w *World) Size() (width, height float64) { return w.width, w.height }

func (w *World) Agents() []*behavior.Boid { return w.agents }

func (w *World) Emitters() []*behavior.Blackhole { return w.emitters }

// Tree returns the index built at the start of the last tick.
func (w *World) Tree() *quadtree.Tree[*behavior.Boid] { return w.tree }

func (w *World) LastStats() StepStats { return w.last }
