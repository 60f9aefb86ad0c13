package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/mecabot/go-controller/pkg/config"
	"github.com/mecabot/go-controller/pkg/sound"
)

var CLI struct {
	Config     string `help:"YAML config file; defaults are used if it doesn't exist." default:"/etc/mecabot/config.yaml" type:"path"`
	LogLevel   string `help:"Override the configured log level." name:"log-level"`
	WriteInUse bool   `help:"Write the effective config to /etc/mecabot/config-in-use.yaml." name:"write-in-use"`

	Teleop     TeleopCmd     `cmd:"" default:"1" help:"Drive the robot from the keyboard (default)."`
	Drive      DriveCmd      `cmd:"" help:"Drive with a fixed command for a while, then stop."`
	Stop       StopCmd       `cmd:"" help:"Zero all four motors."`
	ShowConfig ShowConfigCmd `cmd:"" name:"show-config" help:"Print the effective config as YAML."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("controller"),
		kong.Description("Mecanum robot controller."),
		kong.UsageOnError(),
	)

	log := newLogger()
	log.WithField("GOMAXPROCS", runtime.GOMAXPROCS(0)).Debug("---- mecabot ----")

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("Bad log level")
	}
	log.SetLevel(level)

	if CLI.WriteInUse {
		if err := cfg.WriteInUse(config.InUsePath); err != nil {
			log.WithError(err).Warn("Failed to write in-use config")
		}
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registerSignalHandlers(cancel, log)

	var sounds sound.Interface = sound.Silent{}
	if cfg.Sound.Start != "" || cfg.Sound.Stop != "" {
		sounds = sound.NewPlayer(log)
	}

	err = kctx.Run(&Context{
		ctx:    ctx,
		cfg:    cfg,
		log:    log,
		sounds: sounds,
	})
	sounds.Close()
	if err != nil {
		log.WithError(err).Error("Failed")
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	})
	return log
}

func registerSignalHandlers(cancelFunc context.CancelFunc, log logrus.FieldLogger) {
	// Hook Ctrl-C to cause shut down.  In raw mode the terminal sends Ctrl-C to us as a
	// key instead, so this mostly catches SIGTERM and signals from other shells.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.WithField("signal", s).Info("Signal received, shutting down")
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
