// Package session drives one dictation at a time through capture,
// segmentation, transcription and insertion.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/stt"
)

// State is the session lifecycle position. Exactly one state is active at
// any time.
type State int

const (
	Idle State = iota
	Recording
	Finalizing
	Transcribing
	Inserting
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	case Transcribing:
		return "transcribing"
	case Inserting:
		return "inserting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Intent is a user request delivered by the hotkey listener.
type Intent int

const (
	IntentStart Intent = iota
	IntentStop
)

func (i Intent) String() string {
	if i == IntentStart {
		return "start"
	}
	return "stop"
}

// Recorder produces an audio buffer between Start and Stop. Stop transfers
// buffer ownership to the caller.
type Recorder interface {
	Start() error
	Stop() (*audiocapture.Buffer, error)
}

// Segmenter trims a finished recording to its speech span. ok is false when
// no speech was found.
type Segmenter interface {
	Segment(buf *audiocapture.Buffer) (speech *audiocapture.Buffer, ok bool)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error)
}

// Inserter delivers text to the focused application.
type Inserter interface {
	Insert(text string) error
}

// Settings are the per-session knobs, read once when recording starts.
// Changes made while a session is in flight apply from the next session.
type Settings struct {
	Model  string
	Prompt string
}

// Messages attached to Idle statuses that end a session.
const (
	NoSpeechMessage = "no speech detected"
	InsertedMessage = "inserted"
)

// Status is a state transition notification.
type Status struct {
	State   State
	Message string
	Err     error
}

// Config wires a session's collaborators. OnStatus and OnResult run on the
// session goroutine and must return promptly.
type Config struct {
	Recorder    Recorder
	Segmenter   Segmenter
	Transcriber Transcriber
	Inserter    Inserter

	// Settings is called once per session at start; nil means defaults.
	Settings func() Settings

	OnStatus func(Status)
	OnResult func(stt.Result)
}

// Session owns the dictation state machine. All transitions happen on the
// Run goroutine; Dispatch is the only cross-goroutine entry point.
type Session struct {
	cfg     Config
	intents chan Intent

	mu    sync.Mutex
	state State

	settings Settings
	id       string
}

// New validates the wiring and returns an idle session.
func New(cfg Config) (*Session, error) {
	if cfg.Recorder == nil || cfg.Segmenter == nil || cfg.Transcriber == nil || cfg.Inserter == nil {
		return nil, errors.New("session: recorder, segmenter, transcriber and inserter are all required")
	}
	if cfg.Settings == nil {
		cfg.Settings = func() Settings { return Settings{} }
	}
	return &Session{
		cfg:     cfg,
		intents: make(chan Intent),
		state:   Idle,
	}, nil
}

// Dispatch hands an intent to the session without blocking. Intents that
// arrive while an earlier one is still being processed are dropped, not
// queued.
func (s *Session) Dispatch(intent Intent) {
	select {
	case s.intents <- intent:
	default:
		slog.Debug("intent dropped", "intent", intent, "state", s.State())
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run processes intents until ctx is cancelled. A recording still open at
// cancellation is stopped and its audio discarded.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case intent := <-s.intents:
			switch intent {
			case IntentStart:
				s.handleStart()
			case IntentStop:
				s.handleStop(ctx)
			}
		}
	}
}

func (s *Session) handleStart() {
	if s.State() != Idle {
		slog.Debug("start ignored", "state", s.State())
		return
	}
	s.settings = s.cfg.Settings()
	s.id = uuid.NewString()
	if err := s.cfg.Recorder.Start(); err != nil {
		slog.Error("recording failed to start", "session", s.id, "error", err)
		s.fail(err)
		return
	}
	slog.Info("recording started", "session", s.id, "model", s.settings.Model)
	s.setState(Recording, "recording", nil)
}

// handleStop runs the pipeline to completion. The session receives no
// intents while it runs, which is what makes insertion single-flight.
func (s *Session) handleStop(ctx context.Context) {
	if s.State() != Recording {
		slog.Debug("stop ignored", "state", s.State())
		return
	}

	buf, err := s.cfg.Recorder.Stop()
	if err != nil {
		if buf != nil {
			buf.Release()
		}
		s.fail(err)
		return
	}
	s.setState(Finalizing, "finalizing", nil)
	if buf.Degraded() {
		slog.Warn("capture dropped frames", "session", s.id)
	}
	slog.Info("recording stopped", "session", s.id, "audio", buf.Duration())

	speech, ok := s.cfg.Segmenter.Segment(buf)
	if !ok {
		buf.Release()
		slog.Info("no speech detected", "session", s.id)
		s.setState(Idle, NoSpeechMessage, nil)
		return
	}

	s.setState(Transcribing, "transcribing", nil)
	res, err := s.cfg.Transcriber.Transcribe(ctx, stt.Request{
		Audio:  speech,
		Model:  s.settings.Model,
		Prompt: s.settings.Prompt,
	})
	// Releasing the capture buffer also clears the speech view, which
	// shares its backing memory.
	buf.Release()
	if err != nil {
		s.fail(err)
		return
	}
	if res.Text == "" {
		slog.Info("transcription produced no text", "session", s.id)
		s.setState(Idle, NoSpeechMessage, nil)
		return
	}

	s.setState(Inserting, "inserting", nil)
	if err := s.cfg.Inserter.Insert(res.Text); err != nil {
		s.fail(err)
		return
	}

	slog.Info("text inserted", "session", s.id, "chars", len(res.Text), "elapsed", res.Elapsed)
	if s.cfg.OnResult != nil {
		s.cfg.OnResult(*res)
	}
	s.setState(Idle, InsertedMessage, nil)
}

// fail reports a Failed status and immediately returns to Idle. Failure is
// always transient: the next start intent begins a fresh session.
func (s *Session) fail(err error) {
	s.setState(Failed, err.Error(), err)
	s.setState(Idle, "", nil)
}

// shutdown stops a live recording and discards its audio.
func (s *Session) shutdown() {
	if s.State() != Recording {
		return
	}
	buf, err := s.cfg.Recorder.Stop()
	if err == nil && buf != nil {
		buf.Release()
	}
	slog.Info("recording discarded on shutdown", "session", s.id)
	s.setState(Idle, "", nil)
}

func (s *Session) setState(state State, msg string, err error) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(Status{State: state, Message: msg, Err: err})
	}
}
