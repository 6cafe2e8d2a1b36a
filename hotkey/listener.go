// Package hotkey watches global keyboard events and invokes start and stop
// callbacks when the configured chords are pressed.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// ErrPermissionDenied is returned when the OS refuses global keyboard
// capture, typically a missing accessibility or input-monitoring grant.
var ErrPermissionDenied = errors.New("global keyboard capture not permitted")

// Config configures a Listener.
type Config struct {
	Start   string // chord that begins a recording, e.g. "ctrl+r"
	Stop    string // chord that ends a recording, e.g. "ctrl+s"
	OnStart func()
	OnStop  func()
}

type bindingSet struct {
	start Combo
	stop  Combo
}

// Listener owns the global event hook. The binding pair is swapped as one
// unit, so a rebind never exposes a half-updated mix of old and new chords.
type Listener struct {
	mu       sync.Mutex
	bindings *bindingSet
	running  bool
	quit     chan struct{}
	done     chan struct{}

	onStart func()
	onStop  func()

	// replaceable in tests
	events  func() chan hook.Event
	endHook func()
	probe   func() error
}

// New parses the configured chords and returns a stopped listener. Both
// chords must parse, and they must differ.
func New(cfg Config) (*Listener, error) {
	if cfg.OnStart == nil || cfg.OnStop == nil {
		return nil, errors.New("hotkey: OnStart and OnStop are required")
	}
	start, err := ParseCombo(cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("start hotkey: %w", err)
	}
	stop, err := ParseCombo(cfg.Stop)
	if err != nil {
		return nil, fmt.Errorf("stop hotkey: %w", err)
	}
	if start == stop {
		return nil, fmt.Errorf("start and stop hotkeys are both %s", start)
	}
	return &Listener{
		bindings: &bindingSet{start: start, stop: stop},
		onStart:  cfg.OnStart,
		onStop:   cfg.OnStop,
		events:   hook.Start,
		endHook:  hook.End,
		// No portable way to detect a capture denial up front; platforms
		// that can report one do it here.
		probe: func() error { return nil },
	}, nil
}

// Start begins delivering callbacks. Callbacks run on the event goroutine
// and must not block.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("hotkey: listener already started")
	}
	if err := l.probe(); err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	ch := l.events()
	l.quit = make(chan struct{})
	l.done = make(chan struct{})
	l.running = true
	go l.loop(ch, l.quit, l.done)
	slog.Info("hotkey listener started", "start", l.bindings.start, "stop", l.bindings.stop)
	return nil
}

// loop evaluates chords on gohook's KeyHold events. gohook numbers its
// kinds after libuiohook: KeyHold is the physical key-pressed event and
// carries the keycode, KeyDown is the typed-character event and does not.
func (l *Listener) loop(events chan hook.Event, quit, done chan struct{}) {
	defer close(done)
	pressed := make(map[uint16]bool)
	for {
		select {
		case <-quit:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case hook.KeyHold:
				if pressed[ev.Keycode] {
					continue // auto-repeat
				}
				pressed[ev.Keycode] = true
				b := l.current()
				switch {
				case b.start.matches(ev.Keycode, pressed):
					l.onStart()
				case b.stop.matches(ev.Keycode, pressed):
					l.onStop()
				}
			case hook.KeyUp:
				delete(pressed, ev.Keycode)
			}
		}
	}
}

func (l *Listener) current() *bindingSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bindings
}

// Rebind replaces both chords. On any parse failure the previous pair stays
// in effect.
func (l *Listener) Rebind(startKey, stopKey string) error {
	start, err := ParseCombo(startKey)
	if err != nil {
		return fmt.Errorf("start hotkey: %w", err)
	}
	stop, err := ParseCombo(stopKey)
	if err != nil {
		return fmt.Errorf("stop hotkey: %w", err)
	}
	if start == stop {
		return fmt.Errorf("start and stop hotkeys are both %s", start)
	}
	l.mu.Lock()
	l.bindings = &bindingSet{start: start, stop: stop}
	l.mu.Unlock()
	slog.Info("hotkeys rebound", "start", start, "stop", stop)
	return nil
}

// Bindings returns the chords currently in effect.
func (l *Listener) Bindings() (start, stop string) {
	b := l.current()
	return b.start.String(), b.stop.String()
}

// Stop ends the global hook and waits for the event loop to exit. Stopping
// a listener that never started is a no-op.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	quit, done := l.quit, l.done
	l.mu.Unlock()

	close(quit)
	l.endHook()
	<-done
}
