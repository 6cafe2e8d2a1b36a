// Package notify raises desktop notifications for dictation milestones.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/session"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/stt"
)

const appTitle = "Whisperkey"

// Notifier surfaces session progress as desktop notifications. A muted
// notifier stays silent; the log still records everything.
type Notifier struct {
	muted bool
}

// New creates a notifier.
func New(muted bool) *Notifier {
	return &Notifier{muted: muted}
}

// Welcome introduces the hotkeys on first run.
func (n *Notifier) Welcome(startKey, stopKey string) {
	n.post(fmt.Sprintf("Press %s to start dictating and %s to stop", startKey, stopKey))
}

// HandleStatus reports the transitions worth interrupting the user for.
func (n *Notifier) HandleStatus(st session.Status) {
	switch st.State {
	case session.Recording:
		n.post("Recording started")
	case session.Transcribing:
		n.post("Transcribing...")
	case session.Idle:
		if st.Message == session.NoSpeechMessage {
			n.post("No speech detected, nothing inserted")
		}
	case session.Failed:
		n.alert("Dictation failed: " + st.Message)
	}
}

// HandleResult announces inserted text with a short preview.
func (n *Notifier) HandleResult(res stt.Result) {
	n.post("Inserted: " + preview(res.Text))
}

// Problem reports a fault outside the session lifecycle, such as a failed
// model preload.
func (n *Notifier) Problem(msg string) {
	n.alert(msg)
}

func (n *Notifier) post(msg string) {
	if n.muted {
		return
	}
	if err := beeep.Notify(appTitle, msg, ""); err != nil {
		slog.Debug("notification failed", "error", err)
	}
}

func (n *Notifier) alert(msg string) {
	if n.muted {
		return
	}
	if err := beeep.Alert(appTitle, msg, ""); err != nil {
		slog.Debug("notification failed", "error", err)
	}
}

func preview(text string) string {
	const max = 80
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
