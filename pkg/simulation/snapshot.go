package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

// AgentView is what a renderer needs to draw one agent.
type AgentView struct {
	Position geometry.Vector2D
	Heading  float64
	Size     float64
}

// Triangle returns the three corners of the agent glyph: the tip at Size ahead of the
// position, and two tail corners at (-Size/2, ±Size/2) in the agent's frame.
func (a AgentView) Triangle() [3]geometry.Vector2D {
	half := a.Size / 2
	local := [3]geometry.Vector2D{
		{X: a.Size, Y: 0},
		{X: -half, Y: -half},
		{X: -half, Y: half},
	}
	var out [3]geometry.Vector2D
	for i, p := range local {
		out[i] = a.Position.Add(p.Rotate(a.Heading))
	}
	return out
}

type EmitterView struct {
	Position geometry.Vector2D
	Radius   float64
}

// Snapshot is an immutable copy of the world state, safe to hand to another goroutine.
type Snapshot struct {
	Tick     uint64
	Width    float64
	Height   float64
	Agents   []AgentView
	Emitters []EmitterView
	// Regions holds the quadtree node boundaries when requested.
	Regions []geometry.Box
	Stats   StepStats
}

// Snapshot copies the current state. Emitters too small to draw are left out.
func (w *World) Snapshot(withRegions bool) *Snapshot {
	s := &Snapshot{
		Tick:     w.tick,
		Width:    w.width,
		Height:   w.height,
		Agents:   make([]AgentView, 0, len(w.agents)),
		Emitters: make([]EmitterView, 0, len(w.emitters)),
		Stats:    w.last,
	}
	size := w.cfg.AgentSize
	for _, a := range w.agents {
		s.Agents = append(s.Agents, AgentView{Position: a.Position, Heading: a.Heading(), Size: size})
	}
	for _, h := range w.emitters {
		if h.Visible() {
			s.Emitters = append(s.Emitters, EmitterView{Position: h.Position, Radius: h.Radius})
		}
	}
	if withRegions && w.tree != nil {
		w.tree.Walk(func(node *quadtree.Tree[*behavior.Boid], _ int) bool {
			s.Regions = append(s.Regions, node.Boundary())
			return true
		})
	}
	return s
}
