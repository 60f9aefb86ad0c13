package hardware

import (
	"io"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// Periph drives the bus through periph.io's host drivers.
type Periph struct {
	bus    i2c.Bus
	closed bool
}

var _ Bus = (*Periph)(nil)

func OpenPeriph(name string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph host drivers")
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open I2C bus %q", name)
	}
	return NewPeriph(b), nil
}

// NewPeriph wraps an already-open periph bus.  If the bus implements io.Closer it is
// closed along with the returned Periph.
func NewPeriph(b i2c.Bus) *Periph {
	return &Periph{bus: b}
}

func (p *Periph) WriteBlock(addr uint16, reg byte, data []byte) error {
	if p.closed {
		return ErrBusClosed
	}
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := p.bus.Tx(addr, w, nil); err != nil {
		return errors.Wrapf(err, "write to 0x%02x reg %d failed", addr, reg)
	}
	return nil
}

func (p *Periph) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if c, ok := p.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Periph) String() string {
	return p.bus.String()
}
