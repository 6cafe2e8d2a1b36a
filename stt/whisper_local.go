package stt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperLocal runs inference in-process through the whisper.cpp bindings.
// One model instance is held for the process lifetime and reused across
// sessions; it is read-only during inference.
type WhisperLocal struct {
	modelSize string
	modelPath string

	loadOnce sync.Once
	loadErr  error
	model    whisper.Model

	// inference is serialized: whisper contexts share backend state that
	// is not safe for concurrent Process calls.
	mu sync.Mutex
}

// NewWhisperLocal creates the local engine. The model is loaded lazily on
// first use (or via Preload); a missing weights file surfaces as
// ErrModelUnavailable at that point, not here.
func NewWhisperLocal(cfg Config) (*WhisperLocal, error) {
	size := cfg.ModelSize
	if size == "" {
		size = "base"
	}
	if !ValidSize(size) {
		return nil, fmt.Errorf("invalid model size: %s", size)
	}
	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("model dir required")
	}
	return &WhisperLocal{
		modelSize: size,
		modelPath: ModelPath(cfg.ModelDir, size),
	}, nil
}

// Name returns the engine identifier.
func (w *WhisperLocal) Name() string { return LocalEngine }

// Preload loads the model now instead of on the first transcription.
// Intended to be called from a background goroutine at startup.
func (w *WhisperLocal) Preload() error {
	return w.load()
}

func (w *WhisperLocal) load() error {
	w.loadOnce.Do(func() {
		if _, err := os.Stat(w.modelPath); err != nil {
			w.loadErr = fmt.Errorf("%w: model %s not installed at %s", ErrModelUnavailable, w.modelSize, w.modelPath)
			return
		}
		start := time.Now()
		model, err := whisper.New(w.modelPath)
		if err != nil {
			w.loadErr = fmt.Errorf("%w: load %s: %v", ErrModelUnavailable, w.modelSize, err)
			return
		}
		w.model = model
		slog.Info("whisper model loaded", "size", w.modelSize, "elapsed", time.Since(start))
	})
	return w.loadErr
}

// Transcribe runs whisper over the request audio. The context is accepted
// for interface symmetry; inference is not cancellable once started.
func (w *WhisperLocal) Transcribe(_ context.Context, req Request) (*Result, error) {
	if err := w.load(); err != nil {
		return nil, err
	}
	if req.Model != "" && req.Model != w.modelSize {
		slog.Warn("request names a different model, using the loaded one", "requested", req.Model, "loaded", w.modelSize)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, &TranscribeError{Engine: w.Name(), Cause: fmt.Errorf("new context: %w", err)}
	}

	wctx.SetTranslate(false)
	if w.model.IsMultilingual() {
		if err := wctx.SetLanguage("auto"); err != nil {
			return nil, &TranscribeError{Engine: w.Name(), Cause: fmt.Errorf("set language: %w", err)}
		}
	}
	if req.Prompt != "" {
		wctx.SetInitialPrompt(req.Prompt)
	}

	var sb strings.Builder
	start := time.Now()
	err = wctx.Process(req.Audio.Samples(), nil, func(seg whisper.Segment) {
		sb.WriteString(seg.Text)
	}, nil)
	if err != nil {
		return nil, &TranscribeError{Engine: w.Name(), Cause: err}
	}

	res := &Result{
		Text:     normalizeText(sb.String()),
		Language: wctx.DetectedLanguage(),
		Duration: req.Audio.Duration(),
		Elapsed:  time.Since(start),
	}
	slog.Debug("transcription complete", "engine", w.Name(), "audio", res.Duration, "elapsed", res.Elapsed, "chars", len(res.Text))
	return res, nil
}

// Close releases the model.
func (w *WhisperLocal) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model != nil {
		return w.model.Close()
	}
	return nil
}
