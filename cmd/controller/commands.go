package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mecabot/go-controller/pkg/chassis"
	"github.com/mecabot/go-controller/pkg/config"
	"github.com/mecabot/go-controller/pkg/hardware"
	"github.com/mecabot/go-controller/pkg/keyboard"
	"github.com/mecabot/go-controller/pkg/mecanum"
	"github.com/mecabot/go-controller/pkg/motorboard"
	"github.com/mecabot/go-controller/pkg/mux"
	"github.com/mecabot/go-controller/pkg/sound"
	"github.com/mecabot/go-controller/pkg/teleop"
)

type Context struct {
	ctx    context.Context
	cfg    *config.Config
	log    *logrus.Logger
	sounds sound.Interface
}

// openChassis opens the bus, motor board and chassis and selects the motor type.  With
// IgnoreMissingBoard set, a board we can't reach is replaced by a dummy so the rest of
// the stack can still be exercised.
func (c *Context) openChassis() (*chassis.Chassis, error) {
	layout, err := c.cfg.Layout()
	if err != nil {
		return nil, err
	}

	board, err := c.openBoard()
	if err == nil {
		var ch *chassis.Chassis
		ch, err = chassis.New(board, layout, c.cfg.Board.MotorType, c.log)
		if err == nil {
			if err = ch.Initialize(); err == nil {
				return ch, nil
			}
			_ = ch.Close()
		} else {
			_ = board.Close()
		}
	}
	if !c.cfg.Bus.IgnoreMissingBoard {
		return nil, errors.Wrap(err, "no motor board (set IGNORE_MISSING_BOARD to carry on without one)")
	}

	c.log.WithError(err).Warn("Motor board missing, IGNORE_MISSING_BOARD set: using a dummy board")
	ch, err := chassis.New(motorboard.Dummy(c.log), layout, c.cfg.Board.MotorType, c.log)
	if err != nil {
		return nil, err
	}
	return ch, ch.Initialize()
}

func (c *Context) openBoard() (motorboard.Interface, error) {
	bus, err := hardware.Open(c.cfg.Hardware(), c.log)
	if err != nil {
		return nil, err
	}
	if c.cfg.Bus.MuxPort != config.MuxDisabled {
		m, err := mux.New(bus, c.cfg.Bus.MuxAddr, c.cfg.Bus.MuxPort)
		if err != nil {
			_ = bus.Close()
			return nil, err
		}
		c.log.WithField("mux", m).Info("Motor board is behind a mux")
		bus = m
	}
	return motorboard.New(bus, c.cfg.Board.Address), nil
}

type TeleopCmd struct{}

func (t *TeleopCmd) Run(c *Context) error {
	tc, err := c.cfg.TeleopConfig()
	if err != nil {
		return err
	}

	// The keyboard comes first: without it there is nothing to do, and we don't want to
	// have touched the motors.
	term, err := keyboard.Open(os.Stdin, c.cfg.Teleop.EscapeWait)
	if errors.Cause(err) == keyboard.ErrInputUnavailable {
		return errors.Wrap(err, "teleop needs to be run from an interactive terminal; use the drive command for scripted moves")
	} else if err != nil {
		return err
	}
	c.log.SetOutput(keyboard.CRLFWriter(os.Stderr))
	defer c.log.SetOutput(os.Stderr)

	ch, err := c.openChassis()
	if err != nil {
		_ = term.Restore()
		return err
	}
	loop, err := teleop.New(tc, term, ch, clock.New(), c.log)
	if err != nil {
		_ = term.Restore()
		_ = ch.Close()
		return err
	}

	printHelp(c.log, tc)
	c.sounds.Play(c.cfg.Sound.Start)
	defer c.sounds.Play(c.cfg.Sound.Stop)
	return loop.Run(c.ctx)
}

func printHelp(log logrus.FieldLogger, tc teleop.Config) {
	for _, k := range tc.KeyMap.Keys() {
		b := tc.KeyMap[k]
		log.Infof("  %-6s %s %+d", k, b.Axis, b.Sign)
	}
	log.Info("  tab    next tunable, shift-tab previous, +/- adjust it")
	log.Info("  esc    stop")
}

type DriveCmd struct {
	Forward  int           `help:"Forward speed, -100 to 100." default:"60"`
	Strafe   int           `help:"Strafe speed, -100 (left) to 100 (right)."`
	Rotation int           `help:"Rotation speed, -100 to 100."`
	Polar    bool          `help:"Move at --speed along --heading instead of using forward/strafe."`
	Speed    int           `help:"Speed for --polar, 0 to 100." default:"60"`
	Heading  float64       `help:"Heading for --polar in degrees: 0 right, 90 forward, 180 left, 270 back." default:"90"`
	Duration time.Duration `help:"How long to drive for." default:"2s"`
}

func (d *DriveCmd) command() mecanum.Command {
	if d.Polar {
		return mecanum.Polar{Speed: d.Speed, Heading: d.Heading, Rotation: d.Rotation}
	}
	return mecanum.Vector{Forward: d.Forward, Strafe: d.Strafe, Rotation: d.Rotation}
}

func (d *DriveCmd) Run(c *Context) error {
	cmd := d.command()
	if _, err := cmd.Wheels(); err != nil {
		return err
	}
	ch, err := c.openChassis()
	if err != nil {
		return err
	}
	defer ch.Close()
	c.sounds.Play(c.cfg.Sound.Start)
	return ch.DriveFor(c.ctx, cmd, d.Duration)
}

type StopCmd struct{}

func (s *StopCmd) Run(c *Context) error {
	ch, err := c.openChassis()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.Stop()
}

type ShowConfigCmd struct{}

func (s *ShowConfigCmd) Run(c *Context) error {
	data, err := c.cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
