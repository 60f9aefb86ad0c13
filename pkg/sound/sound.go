package sound

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

// DrainTimeout bounds how long Close waits for the last sound to finish.
const DrainTimeout = 5 * time.Second

type Interface interface {
	// Play queues a WAV file, interrupting whatever is playing.  An empty path is a no-op.
	Play(path string)
	Close()
}

// Player owns the speaker.  Sounds are played from a background goroutine so a slow or
// missing sound device never holds up the motors.
type Player struct {
	log          logrus.FieldLogger
	soundsToPlay chan string
	done         chan struct{}

	initSpeaker  func() error
	open         func(path string) (beep.StreamSeekCloser, error)
	play         func(s beep.Streamer)
	drainTimeout time.Duration
}

var _ Interface = (*Player)(nil)

func NewPlayer(log logrus.FieldLogger) *Player {
	p := newPlayer(log)
	go p.loop()
	return p
}

func newPlayer(log logrus.FieldLogger) *Player {
	return &Player{
		log:          log,
		soundsToPlay: make(chan string, 4),
		done:         make(chan struct{}),
		initSpeaker:  initSpeaker,
		open:         openWAV,
		play:         func(s beep.Streamer) { speaker.Play(s) },
		drainTimeout: DrainTimeout,
	}
}

func initSpeaker() error {
	sampleRate := beep.SampleRate(44100)
	return speaker.Init(sampleRate, sampleRate.N(time.Second/5))
}

func openWAV(path string) (beep.StreamSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, _, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (p *Player) Play(path string) {
	if path == "" {
		return
	}
	select {
	case p.soundsToPlay <- path:
	default:
		p.log.WithField("sound", path).Warn("Sound queue full, dropping")
	}
}

// Close stops accepting sounds, lets the last one finish (up to the drain timeout) and
// waits for the player goroutine to exit.  Play must not be called afterwards.
func (p *Player) Close() {
	close(p.soundsToPlay)
	<-p.done
}

func (p *Player) loop() {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("Sound player crashed")
			p.drain()
		}
	}()

	if err := p.initSpeaker(); err != nil {
		p.log.WithError(err).Warn("Failed to open speaker")
		p.drain()
		return
	}

	var ctrl *beep.Ctrl
	var current beep.StreamSeekCloser
	var finished chan struct{}
	stopCurrent := func() {
		if ctrl != nil {
			speaker.Lock()
			ctrl.Paused = true
			ctrl.Streamer = nil
			speaker.Unlock()
			ctrl = nil
		}
		if current != nil {
			_ = current.Close()
			current = nil
		}
	}
	defer stopCurrent()

	for soundToPlay := range p.soundsToPlay {
		stopCurrent()

		s, err := p.open(soundToPlay)
		if err != nil {
			p.log.WithError(err).WithField("sound", soundToPlay).Warn("Failed to open sound")
			continue
		}
		current = s
		ctrl = &beep.Ctrl{Streamer: s}
		finished = make(chan struct{})
		f := finished
		p.play(beep.Seq(ctrl, beep.Callback(func() { close(f) })))
	}

	if current == nil {
		return
	}
	timeout := time.NewTimer(p.drainTimeout)
	defer timeout.Stop()
	select {
	case <-finished:
	case <-timeout.C:
		p.log.Warn("Timed out waiting for the last sound to finish")
	}
}

func (p *Player) drain() {
	for s := range p.soundsToPlay {
		p.log.WithField("sound", s).Info("Unable to play")
	}
}

// Silent is an Interface that plays nothing.
type Silent struct{}

func (Silent) Play(string) {}
func (Silent) Close()      {}
