package chassis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mecabot/go-controller/pkg/mecanum"
	"github.com/mecabot/go-controller/pkg/motorboard"
)

var (
	ErrNotInitialized = errors.New("chassis not initialised")
	ErrClosed         = errors.New("chassis closed")
	ErrBadLayout      = errors.New("invalid wheel layout")
)

// Layout describes how the logical wheels (front-left, front-right, back-left,
// back-right) are wired to the board's motor channels.
type Layout struct {
	// Channels[i] is the zero-based motor channel driving wheel i.
	Channels [4]int
	// Invert[i] flips the direction of wheel i, for motors mounted mirrored.
	Invert [4]bool
}

func DefaultLayout() Layout {
	return Layout{Channels: [4]int{0, 1, 2, 3}}
}

func (l Layout) Validate() error {
	var seen [4]bool
	for i, c := range l.Channels {
		if c < 0 || c > 3 || seen[c] {
			return errors.Wrapf(ErrBadLayout, "wheel %d mapped to channel %d", i, c)
		}
		seen[c] = true
	}
	return nil
}

func (l Layout) apply(w mecanum.WheelSpeeds) [4]int8 {
	var out [4]int8
	for i, s := range w.Array() {
		if l.Invert[i] {
			s = -s
		}
		out[l.Channels[i]] = motorboard.ToInt8(s)
	}
	return out
}

// Chassis is the only thing that writes motion commands to the motor board.  It is
// not safe for concurrent use.
type Chassis struct {
	board     motorboard.Interface
	layout    Layout
	motorType byte
	log       logrus.FieldLogger

	initialised bool
	closed      bool
	dropped     int
	last        mecanum.WheelSpeeds
}

func New(board motorboard.Interface, layout Layout, motorType byte, log logrus.FieldLogger) (*Chassis, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if motorType == 0 {
		motorType = motorboard.MotorTypeJGB37
	}
	return &Chassis{
		board:     board,
		layout:    layout,
		motorType: motorType,
		log:       log,
	}, nil
}

// Initialize selects the motor type.  It must be called before any speeds are accepted
// and may be called again at any time.
func (c *Chassis) Initialize() error {
	if c.closed {
		return ErrClosed
	}
	if c.board == nil {
		return ErrNotInitialized
	}
	if err := c.board.SetMotorType(c.motorType); err != nil {
		return err
	}
	if !c.initialised {
		c.log.WithField("motorType", c.motorType).Info("Motor board configured")
	}
	c.initialised = true
	return nil
}

// SetWheelSpeeds sends one speed command.  Out of range speeds are rejected before
// anything is written.  A failed write is logged and dropped: the next command will
// supersede it anyway and teleop must keep running.
func (c *Chassis) SetWheelSpeeds(w mecanum.WheelSpeeds) error {
	if c.closed {
		return ErrClosed
	}
	if !c.initialised {
		return ErrNotInitialized
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if err := c.board.SetMotorSpeeds(c.layout.apply(w)); err != nil {
		c.dropped++
		c.log.WithError(err).WithField("dropped", c.dropped).Warn("Failed to set motor speeds")
		return nil
	}
	if w != c.last {
		c.log.WithField("wheels", w.String()).Debug("Wheel speeds changed")
		c.last = w
	}
	return nil
}

func (c *Chassis) Stop() error {
	return c.SetWheelSpeeds(mecanum.WheelSpeeds{})
}

// DriveFor applies cmd for d and then stops.  The stop happens however the hold ends,
// including cancellation of ctx.
func (c *Chassis) DriveFor(ctx context.Context, cmd mecanum.Command, d time.Duration) (err error) {
	wheels, err := cmd.Wheels()
	if err != nil {
		return err
	}
	if err := c.SetWheelSpeeds(wheels); err != nil {
		return err
	}
	defer func() {
		c.log.Info("Stopping...")
		if stopErr := c.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	c.log.WithField("command", cmd).Infof("Driving for %v", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns the number of speed commands lost to bus errors.
func (c *Chassis) Dropped() int {
	return c.dropped
}

// Close releases the motor board and its bus.  Safe to call more than once and on a
// chassis that was never initialised.
func (c *Chassis) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.initialised = false
	if c.board == nil {
		return nil
	}
	if c.dropped > 0 {
		c.log.WithField("dropped", c.dropped).Warn("Some motor commands were dropped")
	}
	return c.board.Close()
}
