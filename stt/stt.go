// Package stt provides the speech-to-text engine interface and its local
// and API-backed implementations.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
)

// ErrModelUnavailable is returned when the selected model cannot be
// loaded: missing weights, an unknown identifier, or a missing API key.
var ErrModelUnavailable = errors.New("transcription model unavailable")

// TranscribeError reports an inference failure with its diagnostic cause.
type TranscribeError struct {
	Engine string
	Cause  error
}

func (e *TranscribeError) Error() string {
	return fmt.Sprintf("%s transcription failed: %v", e.Engine, e.Cause)
}

func (e *TranscribeError) Unwrap() error {
	return e.Cause
}

// Request carries one finished audio buffer to an engine. It is built
// once per session and consumed exactly once.
type Request struct {
	Audio  *audiocapture.Buffer
	Model  string // model identifier the session was configured with
	Prompt string // optional initial context, passed through unmodified
}

// Result is the outcome of a transcription. Empty text is a valid result,
// distinct from failure: silence that slipped past segmentation.
type Result struct {
	Text     string
	Language string        // detected language code, empty if unreported
	Duration time.Duration // duration of the transcribed audio
	Elapsed  time.Duration // inference wall time
}

// Engine converts recorded audio to text. Transcribe blocks, potentially
// for several seconds, and is never invoked concurrently by the session;
// engines still serialize internally because the underlying contexts are
// not reentrant.
type Engine interface {
	// Name returns the engine identifier.
	Name() string

	// Transcribe converts the request's audio to text.
	Transcribe(ctx context.Context, req Request) (*Result, error)

	// Close releases resources held by the engine.
	Close() error
}

// Engine identifiers accepted by New.
const (
	LocalEngine = "whisper-local"
	APIEngine   = "whisper-api"
)

// Config selects and configures an engine. The engine and model choice is
// a construction-time decision, not a per-call one.
type Config struct {
	Engine    string // LocalEngine (default) or APIEngine
	ModelSize string // tiny, base, small, medium, large-v2; default base
	ModelDir  string // directory holding ggml weights, required for LocalEngine
	APIKey    string // required for APIEngine
	BaseURL   string // optional API endpoint override
}

// New builds the configured engine.
func New(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "", LocalEngine:
		return NewWhisperLocal(cfg)
	case APIEngine:
		return NewWhisperAPI(cfg)
	default:
		return nil, fmt.Errorf("unknown engine: %q", cfg.Engine)
	}
}

// blankMarkers are tokens whisper emits for silent or non-speech audio.
var blankMarkers = []string{"[BLANK_AUDIO]", "[ Silence ]", "(silence)"}

// normalizeText trims whitespace and maps whisper's blank-audio markers
// to the empty string.
func normalizeText(text string) string {
	text = strings.TrimSpace(text)
	for _, m := range blankMarkers {
		if strings.EqualFold(text, m) {
			return ""
		}
	}
	return text
}
