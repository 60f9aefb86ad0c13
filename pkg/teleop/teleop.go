package teleop

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/mecabot/go-controller/pkg/angle"
	"github.com/mecabot/go-controller/pkg/keyboard"
	"github.com/mecabot/go-controller/pkg/mecanum"
	"github.com/mecabot/go-controller/pkg/tunable"
)

const (
	DefaultTickInterval  = 50 * time.Millisecond
	DefaultKeyTimeout    = 500 * time.Millisecond
	DefaultDriveSpeed    = 60
	DefaultTurnSpeed     = 50
	DefaultEventsPerTick = 1
	TuneStep             = 5
)

type Mode string

const (
	ModeVector Mode = "vector"
	ModePolar  Mode = "polar"
)

type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

var ErrBadConfig = errors.New("invalid teleop config")

// Keys that adjust the tunables instead of driving.
var reservedKeys = map[keyboard.Key]struct{}{
	keyboard.KeyTab:     {},
	keyboard.KeyBackTab: {},
	"+":                 {},
	"=":                 {},
	"-":                 {},
}

// Input is a key source that has put the terminal into a state that needs undoing.
type Input interface {
	keyboard.Source
	Restore() error
}

// Dispatcher receives one wheel command per tick.  *chassis.Chassis satisfies it.
type Dispatcher interface {
	SetWheelSpeeds(w mecanum.WheelSpeeds) error
	Stop() error
	Close() error
}

type Config struct {
	TickInterval  time.Duration
	KeyTimeout    time.Duration
	EventsPerTick int
	DriveSpeed    int
	TurnSpeed     int
	Mode          Mode
	KeyMap        KeyMap
}

func DefaultConfig() Config {
	return Config{
		TickInterval:  DefaultTickInterval,
		KeyTimeout:    DefaultKeyTimeout,
		EventsPerTick: DefaultEventsPerTick,
		DriveSpeed:    DefaultDriveSpeed,
		TurnSpeed:     DefaultTurnSpeed,
		Mode:          ModeVector,
		KeyMap:        Schemes[DefaultScheme],
	}
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.Wrapf(ErrBadConfig, "tick interval %v", c.TickInterval)
	}
	if c.KeyTimeout <= 0 {
		return errors.Wrapf(ErrBadConfig, "key timeout %v", c.KeyTimeout)
	}
	if c.EventsPerTick < 1 {
		return errors.Wrapf(ErrBadConfig, "events per tick %d", c.EventsPerTick)
	}
	if c.DriveSpeed < 0 || c.DriveSpeed > mecanum.MaxSpeed {
		return errors.Wrapf(ErrBadConfig, "drive speed %d", c.DriveSpeed)
	}
	if c.TurnSpeed < 0 || c.TurnSpeed > mecanum.MaxSpeed {
		return errors.Wrapf(ErrBadConfig, "turn speed %d", c.TurnSpeed)
	}
	if c.Mode != ModeVector && c.Mode != ModePolar {
		return errors.Wrapf(ErrBadConfig, "mode %q", c.Mode)
	}
	return c.KeyMap.Validate()
}

// Loop is the keyboard teleop control loop.  Everything apart from the key reader
// runs on the goroutine that calls Run (or Step), so no locking is needed.
type Loop struct {
	cfg        Config
	input      Input
	dispatcher Dispatcher
	clock      clock.Clock
	log        logrus.FieldLogger

	keys       *KeyState
	tunables   tunable.Tunables
	driveSpeed *tunable.Tunable
	turnSpeed  *tunable.Tunable

	state      State
	last       mecanum.WheelSpeeds
	haveLast   bool
	stopReason string

	cleanupOnce sync.Once
	cleanupErr  error
}

func New(cfg Config, input Input, dispatcher Dispatcher, clk clock.Clock, log logrus.FieldLogger) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	l := &Loop{
		cfg:        cfg,
		input:      input,
		dispatcher: dispatcher,
		clock:      clk,
		log:        log,
		keys:       NewKeyState(cfg.KeyTimeout),
	}
	l.tunables.Log = log
	l.driveSpeed = l.tunables.Create("drive-speed", cfg.DriveSpeed, 0, mecanum.MaxSpeed)
	l.turnSpeed = l.tunables.Create("turn-speed", cfg.TurnSpeed, 0, mecanum.MaxSpeed)
	return l, nil
}

func (l *Loop) State() State {
	return l.state
}

func (l *Loop) StopReason() string {
	return l.stopReason
}

func (l *Loop) DriveSpeed() int { return l.driveSpeed.Get() }
func (l *Loop) TurnSpeed() int  { return l.turnSpeed.Get() }

// Run ticks until the loop stops or ctx is cancelled, then cleans up.  Cleanup also
// runs if a tick panics; the panic is re-raised afterwards.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.stop("panic")
			_ = l.Cleanup()
			panic(r)
		}
		err = l.Cleanup()
	}()

	l.log.WithFields(logrus.Fields{
		"tick":       l.cfg.TickInterval,
		"keyTimeout": l.cfg.KeyTimeout,
		"mode":       l.cfg.Mode,
	}).Info("Teleop running, press Esc to stop")

	ticker := l.clock.Ticker(l.cfg.TickInterval)
	defer ticker.Stop()

	for l.state == Running {
		select {
		case <-ctx.Done():
			l.stop("interrupted")
		case <-ticker.C:
			l.Step(l.clock.Now())
		}
	}
	return nil
}

// Step runs one tick: drain up to EventsPerTick keys, work out what is held and send
// the resulting wheel speeds.  A zero command is still sent when nothing is held.
func (l *Loop) Step(now time.Time) State {
	if l.state != Running {
		return l.state
	}
	for i := 0; i < l.cfg.EventsPerTick; i++ {
		key, ok, err := l.input.Poll()
		if err != nil {
			l.log.WithError(err).Warn("Lost keyboard input")
			l.stop("input lost")
			return l.state
		}
		if !ok {
			break
		}
		if !l.handleKey(key, now) {
			return l.state
		}
	}

	v := l.cfg.KeyMap.Vector(l.keys, now, l.driveSpeed.Get(), l.turnSpeed.Get())
	wheels := l.wheelsFor(v)
	if !l.haveLast || wheels != l.last {
		l.log.WithField("wheels", wheels).Debug("New wheel speeds")
	}
	l.last, l.haveLast = wheels, true
	if err := l.dispatcher.SetWheelSpeeds(wheels); err != nil {
		l.log.WithError(err).Warn("Failed to dispatch wheel speeds")
	}
	return l.state
}

// LastDispatched returns the most recent wheel command.
func (l *Loop) LastDispatched() mecanum.WheelSpeeds {
	return l.last
}

func (l *Loop) handleKey(key keyboard.Key, now time.Time) bool {
	if _, ok := l.cfg.KeyMap[key]; ok {
		l.keys.Touch(key, now)
		return true
	}
	switch key {
	case keyboard.KeyTab:
		l.tunables.SelectNext()
		return true
	case keyboard.KeyBackTab:
		l.tunables.SelectPrev()
		return true
	case "+", "=":
		l.tunables.Current().Add(TuneStep)
		return true
	case "-":
		l.tunables.Current().Add(-TuneStep)
		return true
	}
	l.stop("key " + key.String())
	return false
}

func (l *Loop) wheelsFor(v mecanum.Vector) mecanum.WheelSpeeds {
	if l.cfg.Mode != ModePolar {
		return mecanum.VectorToWheels(v.Forward, v.Strafe, v.Rotation)
	}
	p := mecanum.Polar{Rotation: v.Rotation}
	if v.Forward != 0 || v.Strafe != 0 {
		f, s := float64(v.Forward), float64(v.Strafe)
		p.Speed = int(math.Min(mecanum.MaxSpeed, math.Hypot(f, s)))
		p.Heading = angle.FromRadians(math.Atan2(f, s)).Float()
	}
	wheels, err := p.Wheels()
	if err != nil {
		l.log.WithError(err).Warn("Bad polar command, stopping wheels")
		return mecanum.WheelSpeeds{}
	}
	return wheels
}

func (l *Loop) stop(reason string) {
	if l.state == Stopped {
		return
	}
	l.state = Stopped
	l.stopReason = reason
	l.log.WithField("reason", reason).Info("Teleop stopping")
}

// Cleanup restores the terminal and stops and releases the motors.  Only the first
// call does anything; later calls return the same result.
func (l *Loop) Cleanup() error {
	l.cleanupOnce.Do(func() {
		l.stop("cleanup")
		err := multierr.Combine(
			errors.Wrap(l.input.Restore(), "restoring terminal"),
			errors.Wrap(l.dispatcher.Stop(), "stopping motors"),
			errors.Wrap(l.dispatcher.Close(), "closing motor board"),
		)
		if err != nil {
			l.log.WithError(err).Error("Teleop cleanup failed")
		}
		l.cleanupErr = err
	})
	return l.cleanupErr
}
