package geometry

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Epsilon is the tolerance used by Eq and Normalize.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in cartesian space.
// Fields are public because they are fundamental data, not internal state: v := Vector2D{1, 2}
//
// Two calling conventions coexist:
//   - value receivers (Add, Sub, Mul, Div, ...) and the package functions of the same name
//     return new values and never touch their operands;
//   - pointer receivers (AddAssign, SubAssign, MulAssign, DivAssign, SetLen, Limit) mutate
//     the receiver in place. Steering forces are accumulated this way.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Random returns a vector whose components are independently uniform in [-1, 1].
// A nil rng uses the global source.
func Random(rng *rand.Rand) Vector2D {
	if rng == nil {
		return Vector2D{X: rand.Float64()*2 - 1, Y: rand.Float64()*2 - 1}
	}
	return Vector2D{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Pure arithmetic
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar.
// Dividing by zero returns v unchanged instead of producing Inf or NaN components.
func (v Vector2D) Div(scalar float64) Vector2D {
	if scalar == 0 {
		return v
	}
	return Vector2D{v.X / scalar, v.Y / scalar}
}

// Add returns a + b.
func Add(a, b Vector2D) Vector2D { return a.Add(b) }

// Sub returns a - b.
func Sub(a, b Vector2D) Vector2D { return a.Sub(b) }

// Mul returns v * scalar.
func Mul(v Vector2D, scalar float64) Vector2D { return v.Mul(scalar) }

// Div returns v / scalar, or v when scalar is zero.
func Div(v Vector2D, scalar float64) Vector2D { return v.Div(scalar) }

// ---------------------------------------------------------------------
// In-place arithmetic
// ---------------------------------------------------------------------

// AddAssign adds other to v.
func (v *Vector2D) AddAssign(other Vector2D) {
	v.X += other.X
	v.Y += other.Y
}

// SubAssign subtracts other from v.
func (v *Vector2D) SubAssign(other Vector2D) {
	v.X -= other.X
	v.Y -= other.Y
}

// MulAssign scales v by scalar.
func (v *Vector2D) MulAssign(scalar float64) {
	v.X *= scalar
	v.Y *= scalar
}

// DivAssign scales v by 1/scalar. It is a no-op when scalar is zero.
func (v *Vector2D) DivAssign(scalar float64) {
	if scalar == 0 {
		return
	}
	v.X /= scalar
	v.Y /= scalar
}

// SetLen rescales v so that its magnitude equals target.
// The zero vector has no direction and is left untouched.
func (v *Vector2D) SetLen(target float64) {
	l := v.Len()
	if l == 0 {
		return
	}
	v.MulAssign(target / l)
}

// Limit clamps the magnitude of v to max.
func (v *Vector2D) Limit(max float64) {
	if v.Len() > max {
		v.SetLen(max)
	}
}

// Zero resets v to the origin.
func (v *Vector2D) Zero() {
	v.X, v.Y = 0, 0
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Use it for comparisons to avoid the square root.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{0, 0}
	}
	return v.Mul(1 / l)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Heading returns the angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate rotates the vector by angle (in radians) around the origin (0,0).
func (v Vector2D) Rotate(angle float64) Vector2D {
	cosTheta := math.Cos(angle)
	sinTheta := math.Sin(angle)
	return Vector2D{
		X: v.X*cosTheta - v.Y*sinTheta,
		Y: v.X*sinTheta + v.Y*cosTheta,
	}
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
