package geometry

import "fmt"

// Region is a closed set of query shapes: Box and Circle.
// Each variant answers its own point containment and box overlap test,
// so callers never inspect the concrete type.
type Region interface {
	// Contains reports whether p lies inside the region (boundary included).
	Contains(p Vector2D) bool
	// Overlaps reports whether the region touches or overlaps the box b.
	Overlaps(b Box) bool

	region()
}

// Box is an axis-aligned rectangle stored as a center and half extents.
// Subdivision and containment are simplest in this form.
type Box struct {
	CenterX    float64 `json:"centerX"`
	CenterY    float64 `json:"centerY"`
	HalfWidth  float64 `json:"halfWidth"`
	HalfHeight float64 `json:"halfHeight"`
}

// NewBox returns the box centered on (cx, cy) with the given half extents.
// Negative extents are clamped to zero.
func NewBox(cx, cy, halfWidth, halfHeight float64) Box {
	if halfWidth < 0 {
		halfWidth = 0
	}
	if halfHeight < 0 {
		halfHeight = 0
	}
	return Box{CenterX: cx, CenterY: cy, HalfWidth: halfWidth, HalfHeight: halfHeight}
}

// BoxFromSize returns the box spanning [0, width] x [0, height].
func BoxFromSize(width, height float64) Box {
	return NewBox(width/2, height/2, width/2, height/2)
}

func (Box) region() {}

func (b Box) String() string {
	return fmt.Sprintf("Box[(%.2f, %.2f) ±(%.2f, %.2f)]", b.CenterX, b.CenterY, b.HalfWidth, b.HalfHeight)
}

// MinX returns the left edge.
func (b Box) MinX() float64 { return b.CenterX - b.HalfWidth }

// MaxX returns the right edge.
func (b Box) MaxX() float64 { return b.CenterX + b.HalfWidth }

// MinY returns the top edge.
func (b Box) MinY() float64 { return b.CenterY - b.HalfHeight }

// MaxY returns the bottom edge.
func (b Box) MaxY() float64 { return b.CenterY + b.HalfHeight }

// Contains reports whether p lies within the box, all four edges inclusive.
func (b Box) Contains(p Vector2D) bool {
	return p.X >= b.MinX() && p.X <= b.MaxX() &&
		p.Y >= b.MinY() && p.Y <= b.MaxY()
}

// Intersects is the separating-axis overlap test between two boxes.
// Boxes sharing only an edge intersect.
func (b Box) Intersects(other Box) bool {
	return !(other.MinX() > b.MaxX() ||
		other.MaxX() < b.MinX() ||
		other.MinY() > b.MaxY() ||
		other.MaxY() < b.MinY())
}

// IntersectsCircle clamps the circle center onto the box to find the nearest point,
// then compares squared distances. Touching counts as intersecting.
func (b Box) IntersectsCircle(c Circle) bool {
	nearest := Vector2D{
		X: max(b.MinX(), min(c.X, b.MaxX())),
		Y: max(b.MinY(), min(c.Y, b.MaxY())),
	}
	return nearest.DistanceSquaredTo(c.Center()) <= c.Radius*c.Radius
}

// Overlaps implements Region.
func (b Box) Overlaps(other Box) bool {
	return b.Intersects(other)
}

// Quadrants splits the box into four children in NW, NE, SW, SE order.
// Each child has half the parent's half extents; together they tile the parent.
// Y grows downward, so "north" is the smaller Y.
func (b Box) Quadrants() [4]Box {
	hw := b.HalfWidth / 2
	hh := b.HalfHeight / 2
	return [4]Box{
		{CenterX: b.CenterX - hw, CenterY: b.CenterY - hh, HalfWidth: hw, HalfHeight: hh},
		{CenterX: b.CenterX + hw, CenterY: b.CenterY - hh, HalfWidth: hw, HalfHeight: hh},
		{CenterX: b.CenterX - hw, CenterY: b.CenterY + hh, HalfWidth: hw, HalfHeight: hh},
		{CenterX: b.CenterX + hw, CenterY: b.CenterY + hh, HalfWidth: hw, HalfHeight: hh},
	}
}

// Circle is a disc used as a query region.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// NewCircle returns the circle centered on c. A negative radius is clamped to zero.
func NewCircle(c Vector2D, radius float64) Circle {
	if radius < 0 {
		radius = 0
	}
	return Circle{X: c.X, Y: c.Y, Radius: radius}
}

func (Circle) region() {}

// Center returns the circle center as a vector.
func (c Circle) Center() Vector2D {
	return Vector2D{X: c.X, Y: c.Y}
}

// Contains reports whether the Euclidean distance from p to the center is at most Radius.
func (c Circle) Contains(p Vector2D) bool {
	return c.Center().DistanceSquaredTo(p) <= c.Radius*c.Radius
}

// Overlaps implements Region.
func (c Circle) Overlaps(b Box) bool {
	return b.IntersectsCircle(c)
}
