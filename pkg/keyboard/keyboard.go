package keyboard

import (
	"fmt"

	"github.com/pkg/errors"
)

// Key identifies a key press: a lower-cased character ("w", "+") or a named key.
type Key string

const (
	KeyNone      Key = ""
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyEscape    Key = "esc"
	KeyInterrupt Key = "ctrl-c"
	KeyEOF       Key = "ctrl-d"
	KeySpace     Key = "space"
	KeyTab       Key = "tab"
	KeyBackTab   Key = "shift-tab"
	KeyEnter     Key = "enter"
	KeyBackspace Key = "backspace"
	// KeyUnknown is an escape sequence we don't decode (function keys, Home, etc).
	KeyUnknown Key = "unknown"
)

const (
	byteInterrupt = 0x03
	byteEOF       = 0x04
	byteTab       = '\t'
	byteLF        = '\n'
	byteCR        = '\r'
	byteEscape    = 0x1b
	byteBackspace = 0x7f
)

var (
	ErrInputUnavailable = errors.New("no interactive terminal on stdin")
	ErrInputClosed      = errors.New("keyboard input closed")
)

// Source hands out the next key, if there is one, without blocking for long.
type Source interface {
	Poll() (Key, bool, error)
}

func (k Key) String() string {
	if k == KeyNone {
		return "none"
	}
	return string(k)
}

func keyForByte(b byte) Key {
	switch {
	case b == byteInterrupt:
		return KeyInterrupt
	case b == byteEOF:
		return KeyEOF
	case b == byteTab:
		return KeyTab
	case b == byteCR || b == byteLF:
		return KeyEnter
	case b == byteBackspace:
		return KeyBackspace
	case b == ' ':
		return KeySpace
	case b >= 'A' && b <= 'Z':
		return Key(string(rune(b - 'A' + 'a')))
	case b > ' ' && b < byteBackspace:
		return Key(string(rune(b)))
	default:
		return Key(fmt.Sprintf("0x%02x", b))
	}
}

func keyForCSI(final byte) Key {
	switch final {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	case 'Z':
		return KeyBackTab
	default:
		return KeyUnknown
	}
}
