package telemetry

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	Tick     uint64 `csv:"tick"`
	Agents   int    `csv:"agents"`
	Emitters int    `csv:"emitters"`

	// Spatial index at window end
	Indexed   int `csv:"indexed"`
	Dropped   int `csv:"dropped"`
	TreeNodes int `csv:"tree_nodes"`
	TreeDepth int `csv:"tree_depth"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Averaged over the window
	MeanNeighbors float64 `csv:"mean_neighbors"`
	MeanStepMs    float64 `csv:"mean_step_ms"`
}

func (s WindowStats) String() string {
	return fmt.Sprintf("tick=%d agents=%d emitters=%d indexed=%d dropped=%d nodes=%d depth=%d speed=%.2f±%.2f p90=%.2f neighbors=%.1f step=%.3fms",
		s.Tick, s.Agents, s.Emitters, s.Indexed, s.Dropped, s.TreeNodes, s.TreeDepth,
		s.SpeedMean, s.SpeedStd, s.SpeedP90, s.MeanNeighbors, s.MeanStepMs)
}

// SpeedStats returns the mean, standard deviation and 90th percentile of values.
// It returns zeros for an empty slice and a zero deviation for a single value.
func SpeedStats(values []float64) (mean, std, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std = stat.MeanStdDev(sorted, nil)
	if n < 2 {
		std = 0
	}
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, std, p90
}

// Collector accumulates per-tick figures and emits a WindowStats every window ticks.
type Collector struct {
	window int

	ticks        int
	stepMsSum    float64
	neighborSum  float64
	agentTickSum float64

	speeds []float64
}

func NewCollector(window int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{window: window}
}

// Record adds the last completed tick of w. When the window is full it returns the
// window statistics and true, and starts a new window.
func (c *Collector) Record(w *simulation.World) (WindowStats, bool) {
	last := w.LastStats()
	c.ticks++
	c.stepMsSum += float64(last.Duration.Microseconds()) / 1000
	c.neighborSum += float64(last.Neighbors)
	c.agentTickSum += float64(last.Agents)

	if c.ticks < c.window {
		return WindowStats{}, false
	}

	c.speeds = c.speeds[:0]
	for _, a := range w.Agents() {
		c.speeds = append(c.speeds, a.Velocity.Len())
	}
	mean, std, p90 := SpeedStats(c.speeds)

	out := WindowStats{
		Tick:       last.Tick,
		Agents:     last.Agents,
		Emitters:   last.Emitters,
		Indexed:    last.Indexed,
		Dropped:    last.Dropped,
		SpeedMean:  mean,
		SpeedStd:   std,
		SpeedP90:   p90,
		MeanStepMs: c.stepMsSum / float64(c.ticks),
	}
	if tree := w.Tree(); tree != nil {
		ts := tree.Stats()
		out.TreeNodes = ts.Nodes
		out.TreeDepth = ts.MaxDepth
	}
	if c.agentTickSum > 0 {
		out.MeanNeighbors = c.neighborSum / c.agentTickSum
	}

	c.ticks = 0
	c.stepMsSum = 0
	c.neighborSum = 0
	c.agentTickSum = 0
	return out, true
}
