package keyboard

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Terminal reads keys from a TTY in raw mode.  Raw mode is what lets us see each key as
// it is pressed (and key repeat while it is held) rather than a line at a time.
type Terminal struct {
	*Decoder

	file     *os.File
	oldState *term.State

	restoreOnce sync.Once
	restoreErr  error
}

// Open switches f into raw mode and starts reading it in the background.  The caller
// must call Restore on every exit path.
func Open(f *os.File, escapeWait time.Duration) (*Terminal, error) {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil, ErrInputUnavailable
	}
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to put terminal into raw mode")
	}

	bytes := make(chan byte, 64)
	go loopReadingBytes(f, bytes)

	return &Terminal{
		Decoder:  NewDecoder(bytes, escapeWait, nil),
		file:     f,
		oldState: oldState,
	}, nil
}

// Restore puts the terminal back the way we found it.  Safe to call more than once.
func (t *Terminal) Restore() error {
	t.restoreOnce.Do(func() {
		t.restoreErr = term.Restore(int(t.file.Fd()), t.oldState)
	})
	return t.restoreErr
}

func loopReadingBytes(r io.Reader, bytes chan<- byte) {
	defer close(bytes)
	var buf [16]byte
	for {
		n, err := r.Read(buf[:])
		for _, b := range buf[:n] {
			bytes <- b
		}
		if err != nil {
			return
		}
	}
}
