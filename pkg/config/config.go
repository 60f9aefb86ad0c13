package config

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/mecabot/go-controller/pkg/chassis"
	"github.com/mecabot/go-controller/pkg/hardware"
	"github.com/mecabot/go-controller/pkg/keyboard"
	"github.com/mecabot/go-controller/pkg/motorboard"
	"github.com/mecabot/go-controller/pkg/mux"
	"github.com/mecabot/go-controller/pkg/teleop"
)

const (
	DefaultPath  = "/etc/mecabot/config.yaml"
	InUsePath    = "/etc/mecabot/config-in-use.yaml"
	MuxDisabled  = -1
	defaultLevel = "info"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel string        `yaml:"log-level" env:"MECABOT_LOG_LEVEL"`
	Bus      BusConfig     `yaml:"bus"`
	Board    BoardConfig   `yaml:"board"`
	Chassis  ChassisConfig `yaml:"chassis"`
	Teleop   TeleopConfig  `yaml:"teleop"`
	Sound    SoundConfig   `yaml:"sound"`
}

type BusConfig struct {
	Driver string `yaml:"driver" env:"MECABOT_BUS_DRIVER"`
	Name   string `yaml:"name" env:"MECABOT_BUS"`
	// IgnoreMissingBoard carries on with a dummy bus if the real one can't be opened.
	IgnoreMissingBoard bool   `yaml:"ignore-missing-board" env:"IGNORE_MISSING_BOARD"`
	MuxAddr            uint16 `yaml:"mux-addr"`
	// MuxPort is the multiplexer port the motor board hangs off, or -1 for no mux.
	MuxPort int `yaml:"mux-port" env:"MECABOT_MUX_PORT"`
}

type BoardConfig struct {
	Address   uint16 `yaml:"address" env:"MECABOT_BOARD_ADDR"`
	MotorType uint8  `yaml:"motor-type" env:"MECABOT_MOTOR_TYPE"`
}

type ChassisConfig struct {
	// Channels maps front-left, front-right, back-left, back-right to motor channels.
	Channels []int  `yaml:"channels"`
	Invert   []bool `yaml:"invert"`
}

type TeleopConfig struct {
	TickInterval  time.Duration `yaml:"tick-interval" env:"MECABOT_TICK"`
	KeyTimeout    time.Duration `yaml:"key-timeout" env:"MECABOT_KEY_TIMEOUT"`
	EscapeWait    time.Duration `yaml:"escape-wait"`
	EventsPerTick int           `yaml:"events-per-tick"`
	DriveSpeed    int           `yaml:"drive-speed" env:"MECABOT_DRIVE_SPEED"`
	TurnSpeed     int           `yaml:"turn-speed" env:"MECABOT_TURN_SPEED"`
	Mode          teleop.Mode   `yaml:"mode" env:"MECABOT_TELEOP_MODE"`
	Scheme        string        `yaml:"scheme" env:"MECABOT_KEY_SCHEME"`
	Keys          teleop.KeyMap `yaml:"keys,omitempty"`
}

type SoundConfig struct {
	Start string `yaml:"start"`
	Stop  string `yaml:"stop"`
}

func Default() *Config {
	layout := chassis.DefaultLayout()
	return &Config{
		LogLevel: defaultLevel,
		Bus: BusConfig{
			Driver:  hardware.DriverPeriph,
			MuxAddr: mux.MuxAddr,
			MuxPort: MuxDisabled,
		},
		Board: BoardConfig{
			Address:   motorboard.BoardAddr,
			MotorType: motorboard.MotorTypeJGB37,
		},
		Chassis: ChassisConfig{
			Channels: layout.Channels[:],
			Invert:   layout.Invert[:],
		},
		Teleop: TeleopConfig{
			TickInterval:  teleop.DefaultTickInterval,
			KeyTimeout:    teleop.DefaultKeyTimeout,
			EscapeWait:    keyboard.DefaultEscapeWait,
			EventsPerTick: teleop.DefaultEventsPerTick,
			DriveSpeed:    teleop.DefaultDriveSpeed,
			TurnSpeed:     teleop.DefaultTurnSpeed,
			Mode:          teleop.ModeVector,
			Scheme:        teleop.DefaultScheme,
		},
	}
}

// Load starts from the defaults, overlays the YAML file at path if there is one, then
// applies environment overrides.  A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := ioutil.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "reading config")
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, errors.Wrapf(err, "parsing %s", path)
			}
		}
	}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalid, "log level %q", c.LogLevel)
	}
	switch c.Bus.Driver {
	case hardware.DriverPeriph, hardware.DriverDevfs, hardware.DriverDummy:
	default:
		return errors.Wrapf(ErrInvalid, "bus driver %q", c.Bus.Driver)
	}
	if c.Bus.MuxPort < MuxDisabled || c.Bus.MuxPort >= mux.NumPorts {
		return errors.Wrapf(ErrInvalid, "mux port %d", c.Bus.MuxPort)
	}
	if c.Board.Address < 0x03 || c.Board.Address > 0x77 {
		return errors.Wrapf(ErrInvalid, "board address %#x", c.Board.Address)
	}
	if c.Board.MotorType == 0 {
		return errors.Wrap(ErrInvalid, "motor type must be set")
	}
	if _, err := c.Layout(); err != nil {
		return errors.Wrapf(ErrInvalid, "chassis: %v", err)
	}
	if c.Teleop.EscapeWait <= 0 {
		return errors.Wrapf(ErrInvalid, "escape wait %v", c.Teleop.EscapeWait)
	}
	tc, err := c.TeleopConfig()
	if err != nil {
		return errors.Wrapf(ErrInvalid, "teleop: %v", err)
	}
	if err := tc.Validate(); err != nil {
		return errors.Wrapf(ErrInvalid, "teleop: %v", err)
	}
	return nil
}

func (c *Config) Hardware() hardware.Config {
	return hardware.Config{Driver: c.Bus.Driver, Name: c.Bus.Name}
}

func (c *Config) Layout() (chassis.Layout, error) {
	var l chassis.Layout
	if len(c.Chassis.Channels) != 4 {
		return l, errors.Errorf("need 4 channels, got %d", len(c.Chassis.Channels))
	}
	if len(c.Chassis.Invert) != 0 && len(c.Chassis.Invert) != 4 {
		return l, errors.Errorf("need 4 invert flags, got %d", len(c.Chassis.Invert))
	}
	copy(l.Channels[:], c.Chassis.Channels)
	copy(l.Invert[:], c.Chassis.Invert)
	return l, l.Validate()
}

func (c *Config) TeleopConfig() (teleop.Config, error) {
	keys, err := teleop.Scheme(c.Teleop.Scheme, c.Teleop.Keys)
	if err != nil {
		return teleop.Config{}, err
	}
	return teleop.Config{
		TickInterval:  c.Teleop.TickInterval,
		KeyTimeout:    c.Teleop.KeyTimeout,
		EventsPerTick: c.Teleop.EventsPerTick,
		DriveSpeed:    c.Teleop.DriveSpeed,
		TurnSpeed:     c.Teleop.TurnSpeed,
		Mode:          c.Teleop.Mode,
		KeyMap:        keys,
	}, nil
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteInUse records the effective config next to the real one so it's easy to see
// what the robot actually ran with.
func (c *Config) WriteInUse(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return errors.Wrap(ioutil.WriteFile(path, data, 0666), "writing in-use config")
}
