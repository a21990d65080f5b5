package behavior

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

const (
	// DefaultPerceptionRadius is how far a boid sees its flockmates.
	DefaultPerceptionRadius = 50.0
	// DefaultMaxForce caps each steering force.
	DefaultMaxForce = 0.2
	// DefaultMaxSpeed is the speed cap of a boid built without Settings.
	DefaultMaxSpeed = 4.0
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
//
// ID is minted once and carried unchanged into every tick's index entry;
// it is the only way a boid recognizes itself in neighbor queries.
type Boid struct {
	ID           string
	Position     geometry.Vector2D
	Velocity     geometry.Vector2D
	Acceleration geometry.Vector2D
	MaxForce     float64
	MaxSpeed     float64
}

// Neighbor is the index entry a boid publishes for one tick.
type Neighbor = quadtree.Entry[*Boid]

// Settings controls the physics constants used when spawning and steering boids.
type Settings struct {
	PerceptionRadius float64
	MaxForce         float64
	// MaxSpeed of each spawned boid is drawn uniformly from [MinMaxSpeed, MaxMaxSpeed].
	MinMaxSpeed float64
	MaxMaxSpeed float64
}

// DefaultSettings returns the classic flocking constants.
func DefaultSettings() Settings {
	return Settings{
		PerceptionRadius: DefaultPerceptionRadius,
		MaxForce:         DefaultMaxForce,
		MinMaxSpeed:      DefaultMaxSpeed,
		MaxMaxSpeed:      DefaultMaxSpeed,
	}
}

// New creates a boid at rest at (x, y) with a fresh id.
func New(x, y float64) *Boid {
	return &Boid{
		ID:       uuid.NewString(),
		Position: geometry.Vector2D{X: x, Y: y},
		MaxForce: DefaultMaxForce,
		MaxSpeed: DefaultMaxSpeed,
	}
}

// Spawn creates a boid with random position inside width x height, random velocity
// in [-1, 1]² and a max speed drawn from the settings range.
func Spawn(rng *rand.Rand, width, height float64, s Settings) *Boid {
	b := New(rng.Float64()*width, rng.Float64()*height)
	b.Velocity = geometry.Random(rng)
	b.MaxForce = s.MaxForce
	b.MaxSpeed = s.MinMaxSpeed
	if spread := s.MaxMaxSpeed - s.MinMaxSpeed; spread > 0 {
		b.MaxSpeed += rng.Float64() * spread
	}
	return b
}

// Entry returns the index entry for the current position.
func (b *Boid) Entry() Neighbor {
	return Neighbor{ID: b.ID, X: b.Position.X, Y: b.Position.Y, Payload: b}
}

// Heading returns the direction of travel in radians.
func (b *Boid) Heading() float64 {
	return b.Velocity.Heading()
}

// Flock queries the index once for the perception circle, then accumulates alignment,
// cohesion, separation and blackhole attraction into Acceleration.
// buf is reused as the query accumulator and returned for the next call.
func (b *Boid) Flock(tree *quadtree.Tree[*Boid], holes []*Blackhole, perceptionRadius float64, buf []Neighbor) []Neighbor {
	buf = tree.Query(geometry.NewCircle(b.Position, perceptionRadius), buf[:0])

	b.Acceleration.AddAssign(b.Align(buf))
	b.Acceleration.AddAssign(b.Cohere(buf))
	b.Acceleration.AddAssign(b.Separate(buf, perceptionRadius))
	b.Acceleration.AddAssign(b.Attract(holes))
	return buf
}

// steer turns an averaged desire into a bounded steering force.
func (b *Boid) steer(desired geometry.Vector2D) geometry.Vector2D {
	desired.SetLen(b.MaxSpeed)
	desired.SubAssign(b.Velocity)
	desired.Limit(b.MaxForce)
	return desired
}

// Align steers toward the average velocity of the neighbors.
func (b *Boid) Align(neighbors []Neighbor) geometry.Vector2D {
	var steering geometry.Vector2D
	total := 0
	for _, other := range neighbors {
		if other.ID == b.ID {
			continue
		}
		steering.AddAssign(other.Payload.Velocity)
		total++
	}
	if total == 0 {
		return steering
	}
	steering.DivAssign(float64(total))
	return b.steer(steering)
}

// Cohere steers toward the average position of the neighbors.
func (b *Boid) Cohere(neighbors []Neighbor) geometry.Vector2D {
	var steering geometry.Vector2D
	total := 0
	for _, other := range neighbors {
		if other.ID == b.ID {
			continue
		}
		steering.AddAssign(other.Pos())
		total++
	}
	if total == 0 {
		return steering
	}
	steering.DivAssign(float64(total))
	steering.SubAssign(b.Position)
	return b.steer(steering)
}

// Separate steers away from neighbors closer than perceptionRadius,
// each weighted by the inverse of its distance.
func (b *Boid) Separate(neighbors []Neighbor, perceptionRadius float64) geometry.Vector2D {
	var steering geometry.Vector2D
	total := 0
	for _, other := range neighbors {
		if other.ID == b.ID {
			continue
		}
		d2 := b.Position.DistanceSquaredTo(other.Pos())
		if d2 >= perceptionRadius*perceptionRadius {
			continue
		}
		diff := geometry.Sub(b.Position, other.Pos())
		// a coincident neighbor yields a zero diff; DivAssign(0) leaves it so
		diff.DivAssign(math.Sqrt(d2))
		steering.AddAssign(diff)
		total++
	}
	if total == 0 {
		return steering
	}
	steering.DivAssign(float64(total))
	return b.steer(steering)
}

// Attract sums the pull of every blackhole whose radius reaches the boid.
// The pull is radius/distance and is not clamped near the center; a boid on the
// center itself (within geometry.Epsilon) feels nothing.
func (b *Boid) Attract(holes []*Blackhole) geometry.Vector2D {
	var force geometry.Vector2D
	for _, h := range holes {
		if h.Position.Eq(b.Position) || b.Position.DistanceSquaredTo(h.Position) >= h.Radius*h.Radius {
			continue
		}
		pull := geometry.Sub(h.Position, b.Position)
		dist := pull.Len()
		pull.DivAssign(dist)
		pull.MulAssign(h.Radius / dist)
		force.AddAssign(pull)
	}
	return force
}

// Update integrates one step: position then velocity, clamps speed and clears the
// accumulated acceleration.
func (b *Boid) Update() {
	b.Position.AddAssign(b.Velocity)
	b.Velocity.AddAssign(b.Acceleration)
	b.Velocity.Limit(b.MaxSpeed)
	b.Acceleration.Zero()
}

// Edges wraps the boid around a width x height torus. Each axis is checked on its own.
func (b *Boid) Edges(width, height float64) {
	if b.Position.X > width {
		b.Position.X = 0
	} else if b.Position.X < 0 {
		b.Position.X = width
	}
	if b.Position.Y > height {
		b.Position.Y = 0
	} else if b.Position.Y < 0 {
		b.Position.Y = height
	}
}
