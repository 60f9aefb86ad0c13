package mecanum

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/mecabot/go-controller/pkg/angle"
)

const (
	MaxSpeed = 100
	MinSpeed = -MaxSpeed
)

var (
	ErrInvalidSpeed   = errors.New("speed must be between -100 and 100")
	ErrInvalidHeading = errors.New("heading must be a finite number of degrees")
)

// WheelSpeeds holds one speed per wheel as a percentage of full speed.  Values produced
// by this package are always in [-100, 100].
type WheelSpeeds struct {
	FrontLeft, FrontRight, BackLeft, BackRight int
}

func (w WheelSpeeds) String() string {
	return fmt.Sprintf("fl=%d fr=%d bl=%d br=%d", w.FrontLeft, w.FrontRight, w.BackLeft, w.BackRight)
}

// Array returns the speeds in front-left, front-right, back-left, back-right order.
func (w WheelSpeeds) Array() [4]int {
	return [4]int{w.FrontLeft, w.FrontRight, w.BackLeft, w.BackRight}
}

func (w WheelSpeeds) Validate() error {
	for _, s := range w.Array() {
		if err := checkSpeed(s); err != nil {
			return err
		}
	}
	return nil
}

func (w WheelSpeeds) IsZero() bool {
	return w == WheelSpeeds{}
}

// Command is anything that can be turned into wheel speeds: a Vector or a Polar.
type Command interface {
	Wheels() (WheelSpeeds, error)
}

// Vector is a motion intent in percent of full speed.  Positive forward drives ahead and
// positive strafe moves right; rotation spins the chassis on the spot.
type Vector struct {
	Forward, Strafe, Rotation int
}

var _ Command = Vector{}

func (v Vector) Wheels() (WheelSpeeds, error) {
	for _, s := range []int{v.Forward, v.Strafe, v.Rotation} {
		if err := checkSpeed(s); err != nil {
			return WheelSpeeds{}, err
		}
	}
	return VectorToWheels(v.Forward, v.Strafe, v.Rotation), nil
}

func (v Vector) IsZero() bool {
	return v == Vector{}
}

func (v Vector) String() string {
	return fmt.Sprintf("fwd=%d strafe=%d rot=%d", v.Forward, v.Strafe, v.Rotation)
}

// Clamped returns the vector with each axis forced into [-100, 100].
func (v Vector) Clamped() Vector {
	return Vector{
		Forward:  clampInt(v.Forward),
		Strafe:   clampInt(v.Strafe),
		Rotation: clampInt(v.Rotation),
	}
}

// Polar is a translation at Speed along Heading (degrees, see angle.Heading), with an
// optional rotation mixed in.
type Polar struct {
	Speed    int
	Heading  float64
	Rotation int
}

var _ Command = Polar{}

func (p Polar) Wheels() (WheelSpeeds, error) {
	if err := checkSpeed(p.Speed); err != nil {
		return WheelSpeeds{}, err
	}
	if err := checkSpeed(p.Rotation); err != nil {
		return WheelSpeeds{}, err
	}
	if math.IsNaN(p.Heading) || math.IsInf(p.Heading, 0) {
		return WheelSpeeds{}, errors.Wrapf(ErrInvalidHeading, "got %v", p.Heading)
	}
	x, y := angle.FromFloat(p.Heading).Unit()
	speed := float64(p.Speed)
	return mix(speed*y, speed*x, float64(p.Rotation)), nil
}

func (p Polar) String() string {
	return fmt.Sprintf("speed=%d heading=%.1f rot=%d", p.Speed, p.Heading, p.Rotation)
}

// VectorToWheels maps a motion vector onto the four wheels.  The inputs don't need to
// be in range: if any wheel would exceed full speed, all four are scaled down together
// so the direction of travel is preserved.
func VectorToWheels(forward, strafe, rotation int) WheelSpeeds {
	return mix(float64(forward), float64(strafe), float64(rotation))
}

// PolarToWheels moves at speed along the given heading without rotating.
func PolarToWheels(speed int, headingDegrees float64) (WheelSpeeds, error) {
	return Polar{Speed: speed, Heading: headingDegrees}.Wheels()
}

func mix(forward, strafe, rotation float64) WheelSpeeds {
	return normalise([4]float64{
		forward + strafe - rotation,
		forward - strafe + rotation,
		forward - strafe - rotation,
		forward + strafe + rotation,
	})
}

// normalise scales raw wheel values down so the largest magnitude is at most 100, then
// truncates.  Truncation has to come last, otherwise small values collapse to 0 before
// scaling and the direction of travel drifts.
func normalise(raw [4]float64) WheelSpeeds {
	m := 0.0
	for _, v := range raw {
		if !math.IsNaN(v) {
			m = math.Max(m, math.Abs(v))
		}
	}
	var out [4]int
	for i, v := range raw {
		if m > MaxSpeed {
			if math.Abs(v) == m {
				// The largest entries land exactly on full speed.
				v = math.Copysign(MaxSpeed, v)
			} else {
				v = v * MaxSpeed / m
			}
		}
		out[i] = clampAndTruncate(v)
	}
	return WheelSpeeds{
		FrontLeft:  out[0],
		FrontRight: out[1],
		BackLeft:   out[2],
		BackRight:  out[3],
	}
}

func clampAndTruncate(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v <= MinSpeed {
		return MinSpeed
	}
	if v >= MaxSpeed {
		return MaxSpeed
	}
	return int(v)
}

func clampInt(v int) int {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}

func checkSpeed(s int) error {
	if s < MinSpeed || s > MaxSpeed {
		return errors.Wrapf(ErrInvalidSpeed, "got %d", s)
	}
	return nil
}
