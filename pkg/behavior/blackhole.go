package behavior

import "github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"

const (
	// DefaultBlackholeRadius is the radius of a freshly spawned blackhole.
	DefaultBlackholeRadius = 100.0
	// DefaultShrinkRate is how much the radius shrinks per tick.
	DefaultShrinkRate = 1.0
)

// Blackhole is a transient attractor. Its radius shrinks every tick and it is
// removed by the driver once the radius reaches zero.
type Blackhole struct {
	Position   geometry.Vector2D
	Radius     float64
	ShrinkRate float64
}

// NewBlackhole creates a blackhole centered on (x, y).
func NewBlackhole(x, y, radius, shrinkRate float64) *Blackhole {
	return &Blackhole{
		Position:   geometry.Vector2D{X: x, Y: y},
		Radius:     radius,
		ShrinkRate: shrinkRate,
	}
}

// Update shrinks the radius by ShrinkRate.
func (h *Blackhole) Update() {
	h.Radius -= h.ShrinkRate
}

// IsExpired reports whether the radius has reached zero.
func (h *Blackhole) IsExpired() bool {
	return h.Radius <= 0
}

// Visible reports whether the blackhole is still large enough to draw.
func (h *Blackhole) Visible() bool {
	return h.Radius >= 1
}
