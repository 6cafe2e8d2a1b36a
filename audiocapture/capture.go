// Package audiocapture records microphone audio into an in-memory buffer
// using PortAudio.
package audiocapture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrNotCapturing is returned when stopping while no capture is open.
var ErrNotCapturing = errors.New("not capturing audio")

// ErrAlreadyCapturing is returned when starting while a capture is open.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// ErrDeviceUnavailable is returned when no usable input device exists or
// the OS denied microphone access.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

const (
	// SampleRate is the capture rate in Hz. Whisper expects 16 kHz.
	SampleRate = 16000
	// Channels is the capture channel count. The pipeline is mono.
	Channels = 1
)

// Config holds configuration for the recorder.
type Config struct {
	SampleRate      int // default 16000 Hz
	Channels        int // default 1
	FramesPerBuffer int // device read size in frames, default 1024
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:      SampleRate,
		Channels:        Channels,
		FramesPerBuffer: 1024,
	}
}

// Recorder captures microphone audio between Start and Stop. One capture
// may be open at a time; frames stream into a fresh Buffer owned by the
// recorder until Stop hands it to the caller.
type Recorder struct {
	mu sync.Mutex

	cfg       Config
	capturing bool
	stream    *portaudio.Stream
	in        []int16
	buf       *Buffer
	startTime time.Time
	stop      chan struct{}
	done      chan struct{}
}

// NewRecorder creates a recorder. Zero config fields take defaults.
func NewRecorder(cfg Config) *Recorder {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = SampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = Channels
	}
	if cfg.FramesPerBuffer == 0 {
		cfg.FramesPerBuffer = 1024
	}
	return &Recorder{cfg: cfg}
}

// Start opens the default input device and begins appending frames to a
// new buffer. It fails with ErrDeviceUnavailable when the device cannot
// be opened, leaving the recorder idle.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capturing {
		return ErrAlreadyCapturing
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize: %v", ErrDeviceUnavailable, err)
	}

	in := make([]int16, r.cfg.FramesPerBuffer*r.cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(r.cfg.Channels, 0, float64(r.cfg.SampleRate), r.cfg.FramesPerBuffer, in)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: open input stream: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: start input stream: %v", ErrDeviceUnavailable, err)
	}

	r.stream = stream
	r.in = in
	r.buf = NewBuffer(r.cfg.SampleRate, r.cfg.Channels)
	r.startTime = time.Now()
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.capturing = true

	go r.readLoop(stream, in, r.buf, r.stop, r.done)

	slog.Debug("capture started", "rate", r.cfg.SampleRate, "channels", r.cfg.Channels)
	return nil
}

// readLoop drains the device into buf until the stop channel closes.
// It is the only writer of buf while it runs.
func (r *Recorder) readLoop(stream *portaudio.Stream, in []int16, buf *Buffer, stop, done chan struct{}) {
	defer close(done)

	frame := make([]float32, len(in))
	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				// Overflow loses device-side frames but what arrived is
				// still valid; keep it and flag the session.
				buf.MarkDegraded()
			} else {
				slog.Warn("input stream read failed", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
		}

		for i, v := range in {
			frame[i] = float32(v) / 32768.0
		}
		buf.Append(frame)
	}
}

// Stop ends the capture and returns the finished buffer, transferring
// ownership to the caller. It fails with ErrNotCapturing when no capture
// is open.
func (r *Recorder) Stop() (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.capturing {
		return nil, ErrNotCapturing
	}

	close(r.stop)
	<-r.done

	if err := r.stream.Stop(); err != nil {
		slog.Warn("input stream stop failed", "error", err)
	}
	if err := r.stream.Close(); err != nil {
		slog.Warn("input stream close failed", "error", err)
	}
	if err := portaudio.Terminate(); err != nil {
		slog.Warn("portaudio terminate failed", "error", err)
	}

	buf := r.buf
	r.buf = nil
	r.stream = nil
	r.in = nil
	r.capturing = false

	slog.Debug("capture stopped", "duration", buf.Duration(), "samples", buf.Len(), "degraded", buf.Degraded())
	return buf, nil
}

// IsCapturing returns true while a capture is open.
func (r *Recorder) IsCapturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}

// Duration returns how long the open capture has been running.
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.capturing {
		return 0
	}
	return time.Since(r.startTime)
}
