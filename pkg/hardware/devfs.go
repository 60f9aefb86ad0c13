package hardware

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

// Devfs talks to /dev/i2c-N directly.  The kernel binds a file handle to one slave
// address, so we keep a device per address and open each one on first use.
type Devfs struct {
	bus     *i2c.Devfs
	devices map[uint16]*i2c.Device
	closed  bool
}

var _ Bus = (*Devfs)(nil)

func OpenDevfs(deviceFile string) *Devfs {
	if deviceFile == "" {
		deviceFile = "/dev/i2c-1"
	}
	return &Devfs{
		bus:     &i2c.Devfs{Dev: deviceFile},
		devices: map[uint16]*i2c.Device{},
	}
}

func (d *Devfs) WriteBlock(addr uint16, reg byte, data []byte) error {
	if d.closed {
		return ErrBusClosed
	}
	dev, err := d.device(addr)
	if err != nil {
		return err
	}
	if err := dev.WriteReg(reg, data); err != nil {
		// Drop the handle so the next write reopens it.
		_ = dev.Close()
		delete(d.devices, addr)
		return errors.Wrapf(err, "write to 0x%02x reg %d failed", addr, reg)
	}
	return nil
}

func (d *Devfs) device(addr uint16) (*i2c.Device, error) {
	if dev, ok := d.devices[addr]; ok {
		return dev, nil
	}
	dev, err := i2c.Open(d.bus, int(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s addr 0x%02x", d.bus.Dev, addr)
	}
	d.devices[addr] = dev
	return dev, nil
}

func (d *Devfs) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var firstErr error
	for addr, dev := range d.devices {
		if err := dev.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to close addr 0x%02x", addr)
		}
		delete(d.devices, addr)
	}
	return firstErr
}

func (d *Devfs) String() string {
	return fmt.Sprintf("devfs(%s)", d.bus.Dev)
}
