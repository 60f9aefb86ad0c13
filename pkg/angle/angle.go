package angle

import "math"

// Heading is a direction of travel in degrees, stored as a value in range [0, 360).
// 0 points to the right of the chassis and angles increase anticlockwise, so 90 is
// straight ahead, 180 is left and 270 is backwards.
type Heading struct {
	float64
}

// FromFloat converts a float of any magnitude to a Heading by calculating f mod 360
// and shifting into range.
func FromFloat(f float64) Heading {
	d := math.Mod(f, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 || d == 0 {
		// Tiny negative inputs round up to exactly 360; also folds -0 into 0.
		d = 0
	}
	return Heading{d}
}

// FromRadians converts math.Atan2 style output to a Heading.
func FromRadians(r float64) Heading {
	return FromFloat(r * 180 / math.Pi)
}

// Float returns the heading in degrees, range [0, 360).
func (h Heading) Float() float64 {
	return h.float64
}

func (h Heading) Radians() float64 {
	return h.float64 * math.Pi / 180
}

// Unit returns the x (right) and y (forward) components of a unit vector pointing
// along the heading.  Components closer to zero than 1e-9 are returned as exactly 0 so
// that the four axis-aligned headings produce exact results.
func (h Heading) Unit() (x, y float64) {
	y, x = math.Sincos(h.Radians())
	return snap(x), snap(y)
}

func snap(v float64) float64 {
	const epsilon = 1e-9
	if math.Abs(v) < epsilon {
		return 0
	}
	if math.Abs(v-1) < epsilon {
		return 1
	}
	if math.Abs(v+1) < epsilon {
		return -1
	}
	return v
}
