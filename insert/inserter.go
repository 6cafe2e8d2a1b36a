// Package insert delivers recognized text to the focused application's
// cursor by a clipboard paste, restoring the prior clipboard afterwards.
package insert

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/micmonay/keybd_event"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/clipboard"
)

// ErrInsertionFailed is returned when the OS denies input injection or no
// focused target accepts the paste.
var ErrInsertionFailed = errors.New("text insertion failed")

// Config holds inserter timing. Zero values are replaced with defaults.
type Config struct {
	SettleDelay time.Duration // clipboard write to paste chord, default 80ms
	PasteDelay  time.Duration // paste chord to clipboard restore, default 120ms
}

// DefaultConfig returns the default inserter configuration.
func DefaultConfig() Config {
	return Config{
		SettleDelay: 80 * time.Millisecond,
		PasteDelay:  120 * time.Millisecond,
	}
}

// Inserter pastes text at the cursor. The clipboard is borrowed for the
// duration of one insertion and restored on every exit path.
type Inserter struct {
	settleDelay time.Duration
	pasteDelay  time.Duration

	// injectable for tests
	readClipboard  func() (string, error)
	writeClipboard func(string) error
	pasteChord     func() error
}

// New creates an inserter.
func New(cfg Config) *Inserter {
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 80 * time.Millisecond
	}
	if cfg.PasteDelay == 0 {
		cfg.PasteDelay = 120 * time.Millisecond
	}
	return &Inserter{
		settleDelay:    cfg.SettleDelay,
		pasteDelay:     cfg.PasteDelay,
		readClipboard:  clipboard.Read,
		writeClipboard: clipboard.Write,
		pasteChord:     pressPaste,
	}
}

// Insert places text at the current cursor position. Insertion is
// all-or-nothing: either the full text is pasted or an error returns with
// nothing inserted. The previous clipboard content is restored before
// Insert returns, on success and failure alike.
func (ins *Inserter) Insert(text string) error {
	if text == "" {
		return nil
	}

	orig, err := ins.readClipboard()
	if err != nil {
		// Non-text clipboard content reads as an error; restore then
		// writes the empty string, which is the closest we can get.
		slog.Debug("clipboard read failed", "error", err)
		orig = ""
	}
	defer func() {
		if rerr := ins.writeClipboard(orig); rerr != nil {
			slog.Warn("clipboard restore failed", "error", rerr)
		}
	}()

	if err := ins.writeClipboard(text); err != nil {
		return fmt.Errorf("%w: set clipboard: %v", ErrInsertionFailed, err)
	}
	time.Sleep(ins.settleDelay)

	if err := ins.pasteChord(); err != nil {
		return fmt.Errorf("%w: paste keystroke: %v", ErrInsertionFailed, err)
	}
	time.Sleep(ins.pasteDelay)

	return nil
}

// pressPaste synthesizes the platform paste chord: Cmd+V on macOS, Ctrl+V
// elsewhere.
func pressPaste() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	return kb.Launching()
}
