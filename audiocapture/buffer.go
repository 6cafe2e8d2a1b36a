package audiocapture

import "time"

// Buffer accumulates the PCM samples of one recording session.
// Samples are float32 in the range [-1, 1], appended in arrival order.
//
// A Buffer is not safe for concurrent use. The Recorder appends from its
// reader goroutine only; ownership transfers to the caller when Stop
// returns, after that goroutine has exited.
type Buffer struct {
	samples    []float32
	sampleRate int
	channels   int
	degraded   bool
	released   bool
}

// NewBuffer creates an empty buffer for the given format.
func NewBuffer(sampleRate, channels int) *Buffer {
	return &Buffer{
		samples:    make([]float32, 0, sampleRate*30), // 30 second initial capacity
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Append adds samples to the end of the buffer.
func (b *Buffer) Append(samples []float32) {
	if b.released {
		return
	}
	b.samples = append(b.samples, samples...)
}

// Samples returns the buffered samples. The slice is owned by the buffer;
// callers must not retain it past Release.
func (b *Buffer) Samples() []float32 {
	return b.samples
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return b.channels
}

// Duration returns the duration of the buffered audio.
func (b *Buffer) Duration() time.Duration {
	if len(b.samples) == 0 || b.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(b.samples)) / float64(b.sampleRate) * float64(time.Second))
}

// MarkDegraded records that the device reported an overflow or underflow
// while this buffer was being filled. The audio is kept either way.
func (b *Buffer) MarkDegraded() {
	b.degraded = true
}

// Degraded reports whether capture quality was degraded by the device.
func (b *Buffer) Degraded() bool {
	return b.degraded
}

// Slice returns a view of the sample range [from, to). The view shares
// backing memory with its parent, so releasing the parent clears the
// view's samples as well. Degraded status carries over.
func (b *Buffer) Slice(from, to int) *Buffer {
	if from < 0 {
		from = 0
	}
	if to > len(b.samples) {
		to = len(b.samples)
	}
	if from > to {
		from = to
	}
	return &Buffer{
		samples:    b.samples[from:to:to],
		sampleRate: b.sampleRate,
		channels:   b.channels,
		degraded:   b.degraded,
	}
}

// Release zeroes every sample and drops the backing slice. Audio is held
// only in memory, so this is how a session discards it. Release is
// idempotent; the buffer accepts no appends afterwards.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	for i := range b.samples {
		b.samples[i] = 0
	}
	b.samples = nil
	b.released = true
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b.released
}
