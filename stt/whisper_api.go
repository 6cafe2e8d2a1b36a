package stt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// WhisperAPI transcribes through the OpenAI audio transcription API. The
// buffer is uploaded as an in-memory WAV; no audio touches disk.
type WhisperAPI struct {
	client openai.Client
	model  string
}

// NewWhisperAPI creates the API engine. A missing key is a model
// availability failure: the engine can never produce text without it.
func NewWhisperAPI(cfg Config) (*WhisperAPI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key required for %s", ErrModelUnavailable, APIEngine)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &WhisperAPI{
		client: openai.NewClient(opts...),
		model:  string(openai.AudioModelWhisper1),
	}, nil
}

// Name returns the engine identifier.
func (w *WhisperAPI) Name() string { return APIEngine }

// Transcribe uploads the request audio and returns the recognized text.
// The API does not report a detected language in its plain response, so
// Result.Language is left empty for the caller to fill.
func (w *WhisperAPI) Transcribe(ctx context.Context, req Request) (*Result, error) {
	wavData, err := encodeWAV(req.Audio)
	if err != nil {
		return nil, &TranscribeError{Engine: w.Name(), Cause: err}
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(w.model),
	}
	if req.Prompt != "" {
		params.Prompt = openai.String(req.Prompt)
	}

	start := time.Now()
	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, &TranscribeError{Engine: w.Name(), Cause: err}
	}

	res := &Result{
		Text:     normalizeText(resp.Text),
		Duration: req.Audio.Duration(),
		Elapsed:  time.Since(start),
	}
	slog.Debug("transcription complete", "engine", w.Name(), "audio", res.Duration, "elapsed", res.Elapsed, "chars", len(res.Text))
	return res, nil
}

// Close is a no-op; the HTTP client holds no resources needing release.
func (w *WhisperAPI) Close() error {
	return nil
}
