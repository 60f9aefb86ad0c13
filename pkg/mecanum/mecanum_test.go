package mecanum

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestVectorToWheelsZero(t *testing.T) {
	w := VectorToWheels(0, 0, 0)
	if !w.IsZero() {
		t.Fatalf("Input of 0s should return 0s, not %v", w)
	}
}

func TestVectorToWheelsSingleAxis(t *testing.T) {
	expectWheels(t, VectorToWheels(100, 0, 0), 100, 100, 100, 100)
	expectWheels(t, VectorToWheels(-100, 0, 0), -100, -100, -100, -100)
	expectWheels(t, VectorToWheels(0, 100, 0), 100, -100, -100, 100)
	expectWheels(t, VectorToWheels(0, -100, 0), -100, 100, 100, -100)
	expectWheels(t, VectorToWheels(0, 0, 100), -100, 100, -100, 100)
	expectWheels(t, VectorToWheels(0, 0, -100), 100, -100, 100, -100)
	expectWheels(t, VectorToWheels(60, 0, 0), 60, 60, 60, 60)
}

func TestVectorToWheelsDiagonal(t *testing.T) {
	// Forward-right at 60: raw (120, 0, 0, 120) scales to (100, 0, 0, 100).
	expectWheels(t, VectorToWheels(60, 60, 0), 100, 0, 0, 100)
	// Unscaled when nothing exceeds full speed.
	expectWheels(t, VectorToWheels(30, 20, 10), 40, 20, 0, 60)
}

func TestVectorToWheelsOutOfRangeInputs(t *testing.T) {
	expectWheels(t, VectorToWheels(1000, 0, 0), 100, 100, 100, 100)
	expectWheels(t, VectorToWheels(-300, 0, 0), -100, -100, -100, -100)
	w := VectorToWheels(1<<20, -(1 << 20), 1<<20)
	if err := w.Validate(); err != nil {
		t.Fatalf("Huge inputs produced out of range speeds %v", w)
	}
}

func TestVectorToWheelsAlwaysInRange(t *testing.T) {
	for f := -100; f <= 100; f += 5 {
		for s := -100; s <= 100; s += 5 {
			for r := -100; r <= 100; r += 5 {
				w := VectorToWheels(f, s, r)
				if err := w.Validate(); err != nil {
					t.Fatalf("(%d, %d, %d) produced %v", f, s, r, w)
				}
			}
		}
	}
}

func TestNormalisePreservesRatios(t *testing.T) {
	w := normalise([4]float64{150, -150, 50, 50})
	// 50 * 100 / 150 = 33.3
	expectWheels(t, w, 100, -100, 33, 33)
}

func TestNormaliseScalesSmallValues(t *testing.T) {
	w := normalise([4]float64{250, 125, 5, -5})
	expectWheels(t, w, 100, 50, 2, -2)
	w = normalise([4]float64{300, 0, 2, -2})
	expectWheels(t, w, 100, 0, 0, 0)
}

func TestPolarToWheels(t *testing.T) {
	w, err := PolarToWheels(100, 90)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 100, 100, 100, 100)

	w, err = PolarToWheels(100, 0)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 100, -100, -100, 100)

	w, err = PolarToWheels(100, 180)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, -100, 100, 100, -100)

	w, err = PolarToWheels(100, 270)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, -100, -100, -100, -100)

	w, err = PolarToWheels(0, 123)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 0, 0, 0, 0)
}

func TestPolarToWheelsPeriodic(t *testing.T) {
	for _, heading := range []float64{0, 30, 45, 90, 135, 200, 271.5} {
		a, err := PolarToWheels(80, heading)
		if err != nil {
			t.Fatal(err)
		}
		for _, offset := range []float64{360, -360, 720, 3600} {
			b, err := PolarToWheels(80, heading+offset)
			if err != nil {
				t.Fatal(err)
			}
			if a != b {
				t.Errorf("Heading %v gave %v but %v gave %v", heading, a, heading+offset, b)
			}
		}
	}
}

func TestPolarToWheelsMatchesVector(t *testing.T) {
	// 45 degrees at full speed is forward-right; same shape as VectorToWheels(60, 60, 0).
	w, err := PolarToWheels(100, 45)
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 100, 0, 0, 100)
}

func TestPolarToWheelsInvalidSpeed(t *testing.T) {
	for _, speed := range []int{101, -101, 255} {
		_, err := PolarToWheels(speed, 0)
		if !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("Speed %d should be rejected, got %v", speed, err)
		}
	}
	if _, err := PolarToWheels(-100, 0); err != nil {
		t.Errorf("-100 should be accepted: %v", err)
	}
}

func TestPolarToWheelsInvalidHeading(t *testing.T) {
	for _, heading := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		w, err := PolarToWheels(50, heading)
		if !errors.Is(err, ErrInvalidHeading) {
			t.Errorf("Heading %v should be rejected, got %v, %v", heading, w, err)
		}
		if w != (WheelSpeeds{}) {
			t.Errorf("Heading %v gave non-zero wheels %v", heading, w)
		}
	}
}

func TestNormaliseNaN(t *testing.T) {
	nan := math.NaN()
	w := normalise([4]float64{nan, 50, nan, -50})
	expectWheels(t, w, 0, 50, 0, -50)
	w = normalise([4]float64{nan, 200, -100, 0})
	expectWheels(t, w, 0, 100, -50, 0)
	if err := w.Validate(); err != nil {
		t.Errorf("NaN should never produce out of range wheels: %v", err)
	}
}

func TestPolarWithRotation(t *testing.T) {
	w, err := Polar{Speed: 50, Heading: 90, Rotation: 50}.Wheels()
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 0, 100, 0, 100)

	if _, err := (Polar{Speed: 50, Rotation: 101}).Wheels(); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("Rotation out of range should be rejected, got %v", err)
	}
}

func TestVectorWheelsValidates(t *testing.T) {
	if _, err := (Vector{Forward: 101}).Wheels(); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("Forward 101 should be rejected, got %v", err)
	}
	if _, err := (Vector{Rotation: -101}).Wheels(); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("Rotation -101 should be rejected, got %v", err)
	}
	w, err := Vector{Forward: 60}.Wheels()
	if err != nil {
		t.Fatal(err)
	}
	expectWheels(t, w, 60, 60, 60, 60)
}

func TestVectorClamped(t *testing.T) {
	v := Vector{Forward: 120, Strafe: -150, Rotation: 40}.Clamped()
	if v != (Vector{Forward: 100, Strafe: -100, Rotation: 40}) {
		t.Fatalf("Unexpected clamp result %v", v)
	}
}

func expectWheels(t *testing.T, w WheelSpeeds, fl, fr, bl, br int) {
	t.Helper()
	expected := WheelSpeeds{FrontLeft: fl, FrontRight: fr, BackLeft: bl, BackRight: br}
	if w != expected {
		t.Errorf("Got %v, expected %v", w, expected)
	}
}
