package keyboard

import (
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultEscapeWait = 20 * time.Millisecond

	// Longest run of parameter bytes we accept before giving up on a sequence.
	maxSequenceParams = 16
)

// Decoder turns raw terminal bytes into keys.  Arrow keys arrive as ESC [ A (or ESC O A
// in application mode); a lone ESC is only distinguishable by the rest of the sequence
// failing to turn up, so after an ESC we wait up to escapeWait for each further byte.
type Decoder struct {
	bytes      <-chan byte
	escapeWait time.Duration
	clock      clock.Clock

	// A byte read while looking for an escape sequence that turned out not to belong
	// to it.
	pending    byte
	hasPending bool
}

var _ Source = (*Decoder)(nil)

func NewDecoder(bytes <-chan byte, escapeWait time.Duration, clk clock.Clock) *Decoder {
	if escapeWait <= 0 {
		escapeWait = DefaultEscapeWait
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Decoder{
		bytes:      bytes,
		escapeWait: escapeWait,
		clock:      clk,
	}
}

// Poll returns the next key if one is ready.  It never blocks except for the bounded
// wait after an ESC.  ErrInputClosed is returned once the byte stream has ended and
// everything has been consumed.
func (d *Decoder) Poll() (Key, bool, error) {
	b, ok, err := d.next()
	if !ok || err != nil {
		return KeyNone, false, err
	}
	if b != byteEscape {
		return keyForByte(b), true, nil
	}
	return d.decodeEscape(), true, nil
}

func (d *Decoder) next() (byte, bool, error) {
	if d.hasPending {
		d.hasPending = false
		return d.pending, true, nil
	}
	select {
	case b, ok := <-d.bytes:
		if !ok {
			return 0, false, ErrInputClosed
		}
		return b, true, nil
	default:
		return 0, false, nil
	}
}

func (d *Decoder) decodeEscape() Key {
	b, ok := d.waitForByte()
	if !ok {
		return KeyEscape
	}
	if b != '[' && b != 'O' {
		// Alt+key or a genuine ESC followed quickly by another key.
		d.unread(b)
		return KeyEscape
	}
	// Parameter and intermediate bytes run until the final byte in 0x40-0x7e.  A control
	// byte can't be part of a sequence, so it ends it and is decoded on its own.
	for i := 0; i < maxSequenceParams; i++ {
		b, ok = d.waitForByte()
		if !ok {
			return KeyUnknown
		}
		if b < 0x20 {
			d.unread(b)
			return KeyUnknown
		}
		if b >= 0x40 && b <= 0x7e {
			return keyForCSI(b)
		}
	}
	return KeyUnknown
}

func (d *Decoder) waitForByte() (byte, bool) {
	timer := d.clock.Timer(d.escapeWait)
	defer timer.Stop()
	select {
	case b, ok := <-d.bytes:
		return b, ok
	case <-timer.C:
		return 0, false
	}
}

func (d *Decoder) unread(b byte) {
	d.pending = b
	d.hasPending = true
}
