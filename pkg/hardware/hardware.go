package hardware

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Driver is one of "periph", "devfs" or "dummy".
	Driver string
	// Name is the periph bus name ("1", "I2C1") or, for devfs, the device file.
	Name string
}

// Open opens the configured bus.  The bus stays open for the whole run and is released
// by closing whatever ends up owning it.
func Open(cfg Config, log logrus.FieldLogger) (Bus, error) {
	switch cfg.Driver {
	case DriverPeriph, "":
		return OpenPeriph(cfg.Name)
	case DriverDevfs:
		return OpenDevfs(cfg.Name), nil
	case DriverDummy:
		return NewDummy(log), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", cfg.Driver)
	}
}
