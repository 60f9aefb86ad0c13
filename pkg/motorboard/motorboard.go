package motorboard

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mecabot/go-controller/pkg/hardware"
)

// Encoder motor driver module (four DC motors with encoders).  Both the motor type
// selection and the speed block go to the same register.
const (
	BoardAddr = 0x34

	RegMotor byte = 51

	// MotorTypeJGB37 is the 520 geared motor shipped with the mecanum chassis.
	MotorTypeJGB37 byte = 3

	MaxSpeed = 100
)

var ErrSpeedOutOfRange = errors.New("motor speed out of range")

type Interface interface {
	SetMotorType(motorType byte) error
	SetMotorSpeeds(speeds [4]int8) error
	Close() error
}

type Board struct {
	bus  hardware.Bus
	addr uint16
}

var _ Interface = (*Board)(nil)

func New(bus hardware.Bus, addr uint16) *Board {
	if addr == 0 {
		addr = BoardAddr
	}
	return &Board{
		bus:  bus,
		addr: addr,
	}
}

func (b *Board) SetMotorType(motorType byte) error {
	return errors.Wrap(b.bus.WriteBlock(b.addr, RegMotor, []byte{motorType}), "failed to set motor type")
}

// SetMotorSpeeds writes all four channels in one block so the motors change together.
func (b *Board) SetMotorSpeeds(speeds [4]int8) error {
	var data [4]byte
	for i, s := range speeds {
		if s > MaxSpeed || s < -MaxSpeed {
			return errors.Wrapf(ErrSpeedOutOfRange, "motor %d: %d", i+1, s)
		}
		data[i] = byte(s)
	}
	return errors.Wrap(b.bus.WriteBlock(b.addr, RegMotor, data[:]), "failed to set motor speeds")
}

func (b *Board) Close() error {
	return b.bus.Close()
}

func (b *Board) String() string {
	return fmt.Sprintf("motorboard(0x%02x on %v)", b.addr, b.bus)
}

// ToInt8 converts a wheel speed that has already been range checked.
func ToInt8(v int) int8 {
	if v > math.MaxInt8 {
		return math.MaxInt8
	}
	if v < math.MinInt8 {
		return math.MinInt8
	}
	return int8(v)
}

func Dummy(log logrus.FieldLogger) Interface {
	return &dummyBoard{log: log.WithField("board", "dummy")}
}

type dummyBoard struct {
	log logrus.FieldLogger
}

func (d *dummyBoard) SetMotorType(motorType byte) error {
	d.log.Infof("Dummy motor board setting motor type %d", motorType)
	return nil
}

func (d *dummyBoard) SetMotorSpeeds(speeds [4]int8) error {
	d.log.Infof("Dummy motor board setting motors: %v", speeds)
	return nil
}

func (d *dummyBoard) Close() error {
	return nil
}
