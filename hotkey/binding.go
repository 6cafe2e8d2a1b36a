package hotkey

import (
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"
)

// Combo is one parsed hotkey chord: a main key plus required modifiers.
// The zero Combo matches nothing.
type Combo struct {
	ctrl  bool
	shift bool
	alt   bool
	cmd   bool
	key   uint16
	name  string
}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"cmd":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"win":     "cmd",
}

// ParseCombo parses a textual hotkey such as "ctrl+shift+r". Every token
// before the last must be a modifier (ctrl, shift, alt, cmd or an alias);
// the last token names the main key using gohook's key names ("r", "5",
// "space", "f6", ...).
func ParseCombo(s string) (Combo, error) {
	var c Combo
	tokens := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Combo{}, fmt.Errorf("hotkey %q: empty token", s)
		}
		if i < len(tokens)-1 {
			switch modifierAliases[tok] {
			case "ctrl":
				c.ctrl = true
			case "shift":
				c.shift = true
			case "alt":
				c.alt = true
			case "cmd":
				c.cmd = true
			default:
				return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, tok)
			}
			continue
		}
		if _, isMod := modifierAliases[tok]; isMod {
			return Combo{}, fmt.Errorf("hotkey %q: missing main key", s)
		}
		code, ok := hook.Keycode[tok]
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, tok)
		}
		c.key = code
		c.name = canonicalName(c, tok)
	}
	return c, nil
}

func canonicalName(c Combo, key string) string {
	var parts []string
	if c.ctrl {
		parts = append(parts, "ctrl")
	}
	if c.shift {
		parts = append(parts, "shift")
	}
	if c.alt {
		parts = append(parts, "alt")
	}
	if c.cmd {
		parts = append(parts, "cmd")
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// String returns the canonical text form of the combo.
func (c Combo) String() string { return c.name }

// matches reports whether a key press for keycode completes the combo given
// the currently pressed keys. Modifier state must match exactly so that
// overlapping chords like "ctrl+r" and "ctrl+shift+r" stay distinct.
func (c Combo) matches(keycode uint16, pressed map[uint16]bool) bool {
	if c.key == 0 || keycode != c.key {
		return false
	}
	return c.ctrl == anyPressed(pressed, "ctrl", "rctrl") &&
		c.shift == anyPressed(pressed, "shift", "rshift") &&
		c.alt == anyPressed(pressed, "alt", "ralt") &&
		c.cmd == anyPressed(pressed, "cmd", "rcmd")
}

func anyPressed(pressed map[uint16]bool, names ...string) bool {
	for _, name := range names {
		if pressed[hook.Keycode[name]] {
			return true
		}
	}
	return false
}
