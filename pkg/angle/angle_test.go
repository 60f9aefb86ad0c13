package angle

import (
	"math"
	"testing"
)

func TestFromFloat(t *testing.T) {
	expectHeading(t, 0, 0)
	expectHeading(t, 90, 90)
	expectHeading(t, 359, 359)
	expectHeading(t, 360, 0)
	expectHeading(t, 361, 1)
	expectHeading(t, 720, 0)
	expectHeading(t, 720+180, 180)
	expectHeading(t, -1, 359)
	expectHeading(t, -90, 270)
	expectHeading(t, -360, 0)
	expectHeading(t, -720-45, 315)
	expectHeading(t, -1e-14, 0)
}

func expectHeading(t *testing.T, in, expected float64) {
	h := FromFloat(in)
	if h.Float() < 0 || h.Float() >= 360 {
		t.Errorf("Out of range for %f: %f", in, h.Float())
	}
	if math.Signbit(h.Float()) {
		t.Errorf("Negative zero for %f", in)
	}
	if h.Float() != expected {
		t.Errorf("Not equal to expected value: %f -> %f, expected %f", in, h.Float(), expected)
	}
}

func TestFromRadians(t *testing.T) {
	if h := FromRadians(math.Atan2(1, 0)); math.Abs(h.Float()-90) > 1e-9 {
		t.Fatalf("Straight ahead should be 90, not %f", h.Float())
	}
	if h := FromRadians(math.Atan2(-1, 0)); math.Abs(h.Float()-270) > 1e-9 {
		t.Fatalf("Backwards should be 270, not %f", h.Float())
	}
	if h := FromRadians(math.Atan2(0, -1)); math.Abs(h.Float()-180) > 1e-9 {
		t.Fatalf("Left should be 180, not %f", h.Float())
	}
}

func TestUnitAxisAligned(t *testing.T) {
	for _, tc := range []struct {
		deg  float64
		x, y float64
	}{
		{0, 1, 0},
		{90, 0, 1},
		{180, -1, 0},
		{270, 0, -1},
		{360, 1, 0},
		{-90, 0, -1},
	} {
		x, y := FromFloat(tc.deg).Unit()
		if x != tc.x || y != tc.y {
			t.Errorf("Unit(%v) = (%v, %v), expected (%v, %v)", tc.deg, x, y, tc.x, tc.y)
		}
	}
}

func TestUnitDiagonal(t *testing.T) {
	x, y := FromFloat(45).Unit()
	if math.Abs(x-math.Sqrt2/2) > 1e-12 || math.Abs(y-math.Sqrt2/2) > 1e-12 {
		t.Fatalf("Unit(45) = (%v, %v)", x, y)
	}
}
