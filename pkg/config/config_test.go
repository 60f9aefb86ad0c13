package config

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/mecabot/go-controller/pkg/chassis"
	"github.com/mecabot/go-controller/pkg/teleop"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Board.Address != 0x34 || c.Teleop.KeyTimeout != 500*time.Millisecond || c.Bus.MuxPort != MuxDisabled {
		t.Errorf("Unexpected defaults: %+v", c)
	}
}

func TestFileOverlay(t *testing.T) {
	path := writeFile(t, `
log-level: debug
bus:
  driver: devfs
  name: /dev/i2c-3
  mux-port: 2
chassis:
  channels: [1, 0, 3, 2]
  invert: [false, true, false, true]
teleop:
  tick-interval: 20ms
  drive-speed: 80
  scheme: sideways
  mode: polar
  keys:
    i: {axis: forward, sign: 1}
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.LogLevel != "debug" || c.Bus.Driver != "devfs" || c.Bus.Name != "/dev/i2c-3" || c.Bus.MuxPort != 2 {
		t.Errorf("Bus/log not overlaid: %+v", c)
	}
	// Fields the file doesn't mention keep their defaults.
	if c.Board.Address != 0x34 || c.Teleop.TurnSpeed != teleop.DefaultTurnSpeed {
		t.Errorf("Defaults lost: %+v", c)
	}
	l, err := c.Layout()
	if err != nil {
		t.Fatal(err)
	}
	expected := chassis.Layout{Channels: [4]int{1, 0, 3, 2}, Invert: [4]bool{false, true, false, true}}
	if l != expected {
		t.Errorf("Layout %+v, expected %+v", l, expected)
	}
	tc, err := c.TeleopConfig()
	if err != nil {
		t.Fatal(err)
	}
	if tc.TickInterval != 20*time.Millisecond || tc.DriveSpeed != 80 || tc.Mode != teleop.ModePolar {
		t.Errorf("Teleop config not overlaid: %+v", tc)
	}
	if tc.KeyMap["i"] != (teleop.Binding{Axis: teleop.AxisForward, Sign: 1}) {
		t.Errorf("Extra key missing: %v", tc.KeyMap)
	}
	if tc.KeyMap["w"].Axis != teleop.AxisStrafe {
		t.Errorf("Scheme not applied: %v", tc.KeyMap["w"])
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "teleop:\n  drive-speed: 80\n")
	t.Setenv("IGNORE_MISSING_BOARD", "true")
	t.Setenv("MECABOT_DRIVE_SPEED", "40")
	t.Setenv("MECABOT_KEY_TIMEOUT", "300ms")
	t.Setenv("MECABOT_BUS_DRIVER", "dummy")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Bus.IgnoreMissingBoard {
		t.Error("IGNORE_MISSING_BOARD not applied")
	}
	if c.Teleop.DriveSpeed != 40 {
		t.Errorf("Environment should beat the file, got drive speed %d", c.Teleop.DriveSpeed)
	}
	if c.Teleop.KeyTimeout != 300*time.Millisecond {
		t.Errorf("Key timeout %v", c.Teleop.KeyTimeout)
	}
	if c.Bus.Driver != "dummy" {
		t.Errorf("Driver %q", c.Bus.Driver)
	}
}

func TestBadFile(t *testing.T) {
	if _, err := Load(writeFile(t, "bus: [not, a, map]\n")); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestValidation(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"driver", func(c *Config) { c.Bus.Driver = "spi" }},
		{"mux port high", func(c *Config) { c.Bus.MuxPort = 8 }},
		{"mux port low", func(c *Config) { c.Bus.MuxPort = -2 }},
		{"address", func(c *Config) { c.Board.Address = 0x80 }},
		{"motor type", func(c *Config) { c.Board.MotorType = 0 }},
		{"channel count", func(c *Config) { c.Chassis.Channels = []int{0, 1, 2} }},
		{"duplicate channel", func(c *Config) { c.Chassis.Channels = []int{0, 0, 2, 3} }},
		{"invert count", func(c *Config) { c.Chassis.Invert = []bool{true} }},
		{"escape wait", func(c *Config) { c.Teleop.EscapeWait = 0 }},
		{"tick", func(c *Config) { c.Teleop.TickInterval = 0 }},
		{"drive speed", func(c *Config) { c.Teleop.DriveSpeed = 150 }},
		{"mode", func(c *Config) { c.Teleop.Mode = "tank" }},
		{"scheme", func(c *Config) { c.Teleop.Scheme = "dvorak" }},
		{"bad key", func(c *Config) { c.Teleop.Keys = teleop.KeyMap{"x": {Axis: "up", Sign: 1}} }},
	} {
		c := Default()
		tc.mutate(c)
		if err := c.Validate(); errors.Cause(err) != ErrInvalid {
			t.Errorf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Teleop.Keys = teleop.KeyMap{"i": {Axis: teleop.AxisForward, Sign: 1}}
	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "key-timeout: 500ms") {
		t.Errorf("Durations should be written readably:\n%s", data)
	}
	back := &Config{}
	if err := yaml.Unmarshal(data, back); err != nil {
		t.Fatal(err)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("Round-tripped config invalid: %v\n%s", err, data)
	}

	path := filepath.Join(t.TempDir(), "in-use.yaml")
	if err := c.WriteInUse(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Teleop.Keys["i"].Axis != teleop.AxisForward {
		t.Errorf("Key override lost: %v", loaded.Teleop.Keys)
	}
}
