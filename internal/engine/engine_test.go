package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

func testConfig() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.WorldWidth, cfg.WorldHeight = 320, 240
	cfg.NumAgents = 60
	cfg.Seed = 7
	cfg.TelemetryWindow = 5
	return cfg
}

func startEngine(t *testing.T, cfg *simulation.Config) *Engine {
	t.Helper()
	ctx := context.Background()
	e, err := NewEngine(ctx, cfg, log.DiscardLogger)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, e.Stop(ctx))
	})
	return e
}

func TestEngine_TicksAdvanceTheWorld(t *testing.T) {
	e := startEngine(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, e.Tick(ctx, time.Second/60))
	}
	stats, err := e.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), stats.Tick)
	assert.Equal(t, 60, stats.Agents)
	assert.Equal(t, 60, stats.Indexed+stats.Dropped)
	assert.Equal(t, 320.0, stats.Width)
}

func TestEngine_Commands(t *testing.T) {
	e := startEngine(t, testConfig())
	ctx := context.Background()

	require.NoError(t, e.SetEmitterDefaults(ctx, 10, 5))
	require.NoError(t, e.SpawnEmitter(ctx, 100, 100))
	require.NoError(t, e.SpawnEmitter(ctx, 200, 100))
	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Emitters)

	// radius 10 shrinking by 5 is gone after two ticks
	require.NoError(t, e.Tick(ctx, 0))
	require.NoError(t, e.Tick(ctx, 0))
	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Emitters)

	require.NoError(t, e.SpawnEmitter(ctx, 50, 50))
	require.NoError(t, e.ClearEmitters(ctx))
	require.NoError(t, e.Resize(ctx, 640, 480))
	require.NoError(t, e.Resize(ctx, -1, 480)) // rejected by the actor, not the sender
	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Emitters)
	assert.Equal(t, 640.0, stats.Width)
	assert.Equal(t, 480.0, stats.Height)
}

func TestEngine_PublishesSnapshots(t *testing.T) {
	e := startEngine(t, testConfig())
	ctx := context.Background()

	require.NoError(t, e.SetOverlay(ctx, true))
	require.NoError(t, e.Tick(ctx, 0))
	_, err := e.Stats(ctx)
	require.NoError(t, err)

	var last *simulation.Snapshot
	timeout := time.After(2 * time.Second)
	for last == nil || last.Tick < 1 {
		select {
		case snap := <-e.Snapshots():
			last = snap
		case <-timeout:
			t.Fatal("no snapshot for tick 1")
		}
	}
	assert.Len(t, last.Agents, 60)
	assert.NotEmpty(t, last.Regions, "overlay was enabled")
}

func TestEngine_WritesTelemetry(t *testing.T) {
	cfg := testConfig()
	cfg.TelemetryDir = filepath.Join(t.TempDir(), "run")
	ctx := context.Background()

	e, err := NewEngine(ctx, cfg, log.DiscardLogger)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Tick(ctx, 0))
	}
	_, err = e.Stats(ctx)
	require.NoError(t, err)
	require.NoError(t, e.Stop(ctx))

	raw, err := os.ReadFile(filepath.Join(cfg.TelemetryDir, "telemetry.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tick,agents")
	assert.FileExists(t, filepath.Join(cfg.TelemetryDir, "config.yaml"))
}

// openDescriptors counts the descriptors of this process that point at path.
func openDescriptors(t *testing.T, path string) int {
	t.Helper()
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("cannot list open files: %v", err)
	}
	n := 0
	for _, fd := range fds {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", fd.Name())); err == nil && target == path {
			n++
		}
	}
	return n
}

func TestNewEngine_SpawnFailureClosesTelemetry(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	cfg := testConfig()
	cfg.TelemetryDir = dir
	// a directory where config.yaml should go makes the world fail to start
	require.NoError(t, os.Mkdir(filepath.Join(cfg.TelemetryDir, "config.yaml"), 0755))

	e, err := NewEngine(context.Background(), cfg, log.DiscardLogger)
	require.Error(t, err)
	assert.Nil(t, e)
	assert.Zero(t, openDescriptors(t, filepath.Join(cfg.TelemetryDir, "telemetry.csv")))
}
