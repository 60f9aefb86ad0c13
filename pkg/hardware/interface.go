package hardware

import "github.com/pkg/errors"

// Bus is a register-addressed I2C bus.  Implementations are not safe for concurrent use;
// the owner must serialise writes.
type Bus interface {
	// WriteBlock writes reg followed by data to the device at addr in a single transaction.
	WriteBlock(addr uint16, reg byte, data []byte) error
	Close() error
}

const (
	DriverPeriph = "periph"
	DriverDevfs  = "devfs"
	DriverDummy  = "dummy"
)

var (
	ErrUnknownDriver = errors.New("unknown bus driver")
	ErrBusClosed     = errors.New("bus closed")
)
