package mux

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/mecabot/go-controller/pkg/hardware"
)

const (
	MuxAddr = 0x70

	NumPorts = 8
)

var ErrBadPort = errors.New("mux port out of range")

// Mux routes writes through one port of a TCA9548A I2C multiplexer.  The port is
// selected before every write since other users of the mux may have changed it.
type Mux struct {
	bus  hardware.Bus
	addr uint16
	port int
}

var _ hardware.Bus = (*Mux)(nil)

func New(bus hardware.Bus, addr uint16, port int) (*Mux, error) {
	if port < 0 || port >= NumPorts {
		return nil, errors.Wrapf(ErrBadPort, "port %d", port)
	}
	if addr == 0 {
		addr = MuxAddr
	}
	return &Mux{
		bus:  bus,
		addr: addr,
		port: port,
	}, nil
}

func (m *Mux) SelectSinglePort(num int) error {
	// The mux has no registers; its control byte goes where a register would.
	return m.bus.WriteBlock(m.addr, 1<<uint(num), nil)
}

func (m *Mux) DisableAllPorts() error {
	return m.bus.WriteBlock(m.addr, 0, nil)
}

func (m *Mux) WriteBlock(addr uint16, reg byte, data []byte) error {
	if err := m.SelectSinglePort(m.port); err != nil {
		return errors.Wrap(err, "failed to select mux port")
	}
	return m.bus.WriteBlock(addr, reg, data)
}

// Close disables all ports and closes the underlying bus.  The bus is closed even if
// the ports couldn't be disabled.
func (m *Mux) Close() error {
	return multierr.Combine(
		errors.Wrap(m.DisableAllPorts(), "failed to disable mux ports"),
		m.bus.Close(),
	)
}

func (m *Mux) String() string {
	return fmt.Sprintf("mux(0x%02x port %d)", m.addr, m.port)
}
