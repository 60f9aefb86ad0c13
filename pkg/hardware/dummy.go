package hardware

import (
	"github.com/sirupsen/logrus"
)

// Dummy logs writes instead of performing them.  Useful for running the controller on
// a machine with no motor board attached.
type Dummy struct {
	log    logrus.FieldLogger
	Writes int
}

func NewDummy(log logrus.FieldLogger) *Dummy {
	return &Dummy{log: log.WithField("bus", "dummy")}
}

var _ Bus = (*Dummy)(nil)

func (d *Dummy) WriteBlock(addr uint16, reg byte, data []byte) error {
	d.Writes++
	d.log.WithFields(logrus.Fields{
		"addr": addr,
		"reg":  reg,
	}).Debugf("DHW: WriteBlock % x", data)
	return nil
}

func (d *Dummy) Close() error {
	d.log.Debug("DHW: Close")
	return nil
}

func (d *Dummy) String() string {
	return "dummy"
}
