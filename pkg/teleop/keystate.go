package teleop

import (
	"time"

	"github.com/mecabot/go-controller/pkg/keyboard"
)

// KeyState tracks when each key was last seen.  Terminals never report a key release,
// only a stream of repeats while the key is held, so a key counts as held until it has
// been quiet for the timeout.
type KeyState struct {
	timeout  time.Duration
	lastSeen map[keyboard.Key]time.Time
}

func NewKeyState(timeout time.Duration) *KeyState {
	return &KeyState{
		timeout:  timeout,
		lastSeen: map[keyboard.Key]time.Time{},
	}
}

func (s *KeyState) Touch(k keyboard.Key, now time.Time) {
	s.lastSeen[k] = now
}

func (s *KeyState) IsHeld(k keyboard.Key, now time.Time) bool {
	t, ok := s.lastSeen[k]
	if !ok {
		return false
	}
	return now.Sub(t) < s.timeout
}

func (s *KeyState) Timeout() time.Duration {
	return s.timeout
}
