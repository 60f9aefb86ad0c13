package teleop

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mecabot/go-controller/pkg/keyboard"
	"github.com/mecabot/go-controller/pkg/mecanum"
)

type Axis string

const (
	AxisForward  Axis = "forward"
	AxisStrafe   Axis = "strafe"
	AxisRotation Axis = "rotation"
)

// Binding is what holding a key contributes: Sign times the drive speed (forward and
// strafe) or the turn speed (rotation).
type Binding struct {
	Axis Axis `yaml:"axis"`
	Sign int  `yaml:"sign"`
}

type KeyMap map[keyboard.Key]Binding

var ErrBadKeyMap = errors.New("invalid key map")

const DefaultScheme = "wasd"

// Schemes are the stock control layouts.  "sideways" is for a chassis built with the
// board facing the side, where W/S move along the strafe axis.
var Schemes = map[string]KeyMap{
	"wasd": {
		"w":               {AxisForward, 1},
		"s":               {AxisForward, -1},
		"a":               {AxisStrafe, -1},
		"d":               {AxisStrafe, 1},
		keyboard.KeyLeft:  {AxisRotation, -1},
		keyboard.KeyRight: {AxisRotation, 1},
		"q":               {AxisRotation, -1},
		"e":               {AxisRotation, 1},
	},
	"sideways": {
		"w":               {AxisStrafe, 1},
		"s":               {AxisStrafe, -1},
		"a":               {AxisForward, 1},
		"d":               {AxisForward, -1},
		keyboard.KeyLeft:  {AxisRotation, -1},
		keyboard.KeyRight: {AxisRotation, 1},
		"q":               {AxisRotation, -1},
		"e":               {AxisRotation, 1},
	},
	"arrows": {
		keyboard.KeyUp:    {AxisForward, 1},
		keyboard.KeyDown:  {AxisForward, -1},
		keyboard.KeyLeft:  {AxisStrafe, -1},
		keyboard.KeyRight: {AxisStrafe, 1},
		"q":               {AxisRotation, -1},
		"e":               {AxisRotation, 1},
	},
}

// Scheme returns a copy of the named stock layout with overrides applied on top.
func Scheme(name string, overrides KeyMap) (KeyMap, error) {
	if name == "" {
		name = DefaultScheme
	}
	base, ok := Schemes[name]
	if !ok {
		return nil, errors.Wrapf(ErrBadKeyMap, "unknown scheme %q", name)
	}
	m := base.Merge(overrides)
	return m, m.Validate()
}

func (m KeyMap) Merge(overrides KeyMap) KeyMap {
	out := make(KeyMap, len(m)+len(overrides))
	for k, b := range m {
		out[k] = b
	}
	for k, b := range overrides {
		out[k] = b
	}
	return out
}

func (m KeyMap) Validate() error {
	for k, b := range m {
		switch b.Axis {
		case AxisForward, AxisStrafe, AxisRotation:
		default:
			return errors.Wrapf(ErrBadKeyMap, "key %v: unknown axis %q", k, b.Axis)
		}
		if b.Sign != 1 && b.Sign != -1 {
			return errors.Wrapf(ErrBadKeyMap, "key %v: sign must be 1 or -1, not %d", k, b.Sign)
		}
		if _, clash := reservedKeys[k]; clash {
			return errors.Wrapf(ErrBadKeyMap, "key %v is reserved for tuning", k)
		}
	}
	return nil
}

// Keys returns the bound keys in a stable order.
func (m KeyMap) Keys() []keyboard.Key {
	keys := make([]keyboard.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Vector sums the contributions of every key that is currently held.  Opposing keys
// cancel and keys on different axes combine, so W+D drives diagonally.
func (m KeyMap) Vector(held *KeyState, now time.Time, driveSpeed, turnSpeed int) mecanum.Vector {
	var v mecanum.Vector
	for k, b := range m {
		if !held.IsHeld(k, now) {
			continue
		}
		switch b.Axis {
		case AxisForward:
			v.Forward += b.Sign * driveSpeed
		case AxisStrafe:
			v.Strafe += b.Sign * driveSpeed
		case AxisRotation:
			v.Rotation += b.Sign * turnSpeed
		}
	}
	return v.Clamped()
}
