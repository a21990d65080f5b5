package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestVector_String(t *testing.T) {
	v := Vector2D{1.234, 5.678}
	want := "(1.23, 5.68)"
	if got := v.String(); got != want {
		t.Errorf("Vector2D.String() = %q; want %q", got, want)
	}
}

func TestVector_PureArithmetic(t *testing.T) {
	v1 := Vector2D{1, 2}
	v2 := Vector2D{3, 4}

	tests := []struct {
		name string
		got  Vector2D
		want Vector2D
	}{
		{"Add", v1.Add(v2), Vector2D{4, 6}},
		{"Sub", v1.Sub(v2), Vector2D{-2, -2}},
		{"Mul", v1.Mul(2), Vector2D{2, 4}},
		{"Div", v1.Div(2), Vector2D{0.5, 1}},
		{"DivByZero", v1.Div(0), v1},
		{"FuncAdd", Add(v1, v2), Vector2D{4, 6}},
		{"FuncSub", Sub(v1, v2), Vector2D{-2, -2}},
		{"FuncMul", Mul(v1, 2), Vector2D{2, 4}},
		{"FuncDiv", Div(v1, 2), Vector2D{0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Eq(tt.want) {
				t.Errorf("%s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if v1 != (Vector2D{1, 2}) || v2 != (Vector2D{3, 4}) {
		t.Errorf("pure operations mutated their operands: v1=%v v2=%v", v1, v2)
	}
}

func TestVector_InPlaceMatchesPure(t *testing.T) {
	a := Vector2D{1.5, -2.25}
	b := Vector2D{-0.75, 4}

	sum := a
	sum.AddAssign(b)
	if sum != Add(a, b) {
		t.Errorf("AddAssign = %v; want %v", sum, Add(a, b))
	}

	diff := a
	diff.SubAssign(b)
	if diff != Sub(a, b) {
		t.Errorf("SubAssign = %v; want %v", diff, Sub(a, b))
	}

	scaled := a
	scaled.MulAssign(3)
	if scaled != Mul(a, 3) {
		t.Errorf("MulAssign = %v; want %v", scaled, Mul(a, 3))
	}

	divided := a
	divided.DivAssign(4)
	if divided != Div(a, 4) {
		t.Errorf("DivAssign = %v; want %v", divided, Div(a, 4))
	}

	unchanged := a
	unchanged.DivAssign(0)
	if unchanged != a {
		t.Errorf("DivAssign(0) = %v; want %v", unchanged, a)
	}
}

func TestVector_AddThenSubIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		v := Vector2D{rng.Float64()*2000 - 1000, rng.Float64()*2000 - 1000}
		w := Vector2D{rng.Float64()*2000 - 1000, rng.Float64()*2000 - 1000}
		got := v
		got.AddAssign(w)
		got.SubAssign(w)
		if math.Abs(got.X-v.X) > 1e-9 || math.Abs(got.Y-v.Y) > 1e-9 {
			t.Fatalf("(%v + %v) - %v = %v; want %v", v, w, w, got, v)
		}
	}
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector2D{3, 4} // 3-4-5 triangle

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); got != 5 {
			t.Errorf("Len = %v; want 5", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 25 {
			t.Errorf("LenSqr = %v; want 25", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		got := v.Normalize()
		want := Vector2D{0.6, 0.8}
		if !got.Eq(want) {
			t.Errorf("Normalize = %v; want %v", got, want)
		}
		if !floatEquals(got.Len(), 1.0) {
			t.Errorf("Normalize length = %v; want 1", got.Len())
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		zero := Vector2D{0, 0}
		if got := zero.Normalize(); !got.Eq(zero) {
			t.Errorf("Normalize(0,0) = %v; want (0,0)", got)
		}
	})

	t.Run("SetLen", func(t *testing.T) {
		got := v
		got.SetLen(10)
		if !got.Eq(Vector2D{6, 8}) {
			t.Errorf("SetLen(10) = %v; want (6, 8)", got)
		}
	})

	t.Run("SetLenZero", func(t *testing.T) {
		var zero Vector2D
		zero.SetLen(4)
		if zero != (Vector2D{}) || math.IsNaN(zero.X) || math.IsNaN(zero.Y) {
			t.Errorf("SetLen on zero vector = %v; want (0, 0)", zero)
		}
	})
}

func TestVector_Limit(t *testing.T) {
	tests := []struct {
		name string
		v    Vector2D
		max  float64
		want Vector2D
	}{
		{"Below max is untouched", Vector2D{0.3, 0.4}, 1, Vector2D{0.3, 0.4}},
		{"Exactly max is untouched", Vector2D{3, 4}, 5, Vector2D{3, 4}},
		{"Above max is clamped", Vector2D{30, 40}, 5, Vector2D{3, 4}},
		{"Zero stays zero", Vector2D{}, 1, Vector2D{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.v.Len()
			got := tt.v
			got.Limit(tt.max)
			if !got.Eq(tt.want) {
				t.Errorf("%v.Limit(%v) = %v; want %v", tt.v, tt.max, got, tt.want)
			}
			if got.Len() > before+Epsilon {
				t.Errorf("Limit increased magnitude from %v to %v", before, got.Len())
			}
		})
	}
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector2D{1, 1}
	v2 := Vector2D{4, 5} // dx=3, dy=4

	if got := v1.DistanceSquaredTo(v2); got != 25 {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}
}

func TestVector_Heading(t *testing.T) {
	tests := []struct {
		v    Vector2D
		want float64
	}{
		{Vector2D{1, 0}, 0},
		{Vector2D{0, 1}, math.Pi / 2},
		{Vector2D{-1, 0}, math.Pi},
		{Vector2D{0, -1}, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := tt.v.Heading(); !floatEquals(got, tt.want) {
			t.Errorf("%v.Heading() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_Rotate(t *testing.T) {
	got := Vector2D{1, 0}.Rotate(math.Pi / 2)
	if want := (Vector2D{0, 1}); !got.Eq(want) {
		t.Errorf("Rotate(90) = %v; want %v", got, want)
	}
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 1000; i++ {
		v := Random(rng)
		if v.X < -1 || v.X > 1 || v.Y < -1 || v.Y > 1 {
			t.Fatalf("Random() = %v; components must lie in [-1, 1]", v)
		}
	}
	if v := Random(nil); v.X < -1 || v.X > 1 || v.Y < -1 || v.Y > 1 {
		t.Errorf("Random(nil) = %v; components must lie in [-1, 1]", v)
	}
}

func TestVector_Eq(t *testing.T) {
	v := Vector2D{1, 2}

	if !v.Eq(Vector2D{1, 2}) {
		t.Error("Eq exact match failed")
	}

	vClose := Vector2D{1 + Epsilon/2, 2 - Epsilon/2}
	if !v.Eq(vClose) {
		t.Error("Eq epsilon match failed")
	}

	if v.Eq(Vector2D{1.1, 2}) {
		t.Error("Eq mismatch failed")
	}
}
