// Package vad implements energy-based voice activity detection over a
// finished audio buffer.
package vad

import (
	"math"
	"time"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
)

// Segmenter trims a buffer down to its speech-bearing region using an RMS
// energy heuristic over fixed-size analysis windows. Segment is a pure
// function of its input; a Segmenter holds no mutable state and is safe
// for reuse.
type Segmenter struct {
	threshold float32
	window    time.Duration
	padding   time.Duration
	enabled   bool
}

// Config holds segmenter tuning. Zero values are replaced with defaults.
type Config struct {
	Threshold float32       // RMS threshold for speech, default 0.01
	Window    time.Duration // analysis window size, default 30ms
	Padding   time.Duration // margin kept around speech, default 300ms
	Enabled   bool          // when false, Segment passes buffers through
}

// DefaultConfig returns the default segmenter configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.01,
		Window:    30 * time.Millisecond,
		Padding:   300 * time.Millisecond,
		Enabled:   true,
	}
}

// New creates a segmenter.
func New(cfg Config) *Segmenter {
	if cfg.Threshold == 0 {
		cfg.Threshold = 0.01
	}
	if cfg.Window == 0 {
		cfg.Window = 30 * time.Millisecond
	}
	if cfg.Padding == 0 {
		cfg.Padding = 300 * time.Millisecond
	}
	return &Segmenter{
		threshold: cfg.Threshold,
		window:    cfg.Window,
		padding:   cfg.Padding,
		enabled:   cfg.Enabled,
	}
}

// Segment returns the speech-bearing region of buf with a padding margin
// on both sides. The second return value is false when no window rises
// above the threshold: the no-speech outcome, not an error. When the
// segmenter is disabled, buf is returned unchanged with true.
//
// The returned buffer is a view sharing backing memory with buf, so
// releasing buf clears the trimmed audio as well.
func (s *Segmenter) Segment(buf *audiocapture.Buffer) (*audiocapture.Buffer, bool) {
	if !s.enabled {
		return buf, true
	}

	samples := buf.Samples()
	if len(samples) == 0 {
		return nil, false
	}

	win := int(s.window.Seconds() * float64(buf.SampleRate()))
	if win < 1 {
		win = 1
	}

	first, last := -1, -1
	for i := 0; i < len(samples); i += win {
		end := i + win
		if end > len(samples) {
			end = len(samples)
		}
		if rms(samples[i:end]) > s.threshold {
			if first < 0 {
				first = i
			}
			last = end
		}
	}
	if first < 0 {
		return nil, false
	}

	pad := int(s.padding.Seconds() * float64(buf.SampleRate()))
	return buf.Slice(first-pad, last+pad), true
}

// rms returns the root mean square of the samples.
func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
