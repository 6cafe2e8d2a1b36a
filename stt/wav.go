package stt

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
)

// encodeWAV renders a buffer as a 16-bit PCM WAV file in memory. Audio is
// never written to disk, so the encoder runs over a seekable byte slice
// instead of a file.
func encodeWAV(buf *audiocapture.Buffer) ([]byte, error) {
	sb := &seekBuffer{}
	enc := wav.NewEncoder(sb, buf.SampleRate(), 16, buf.Channels(), 1)

	samples := buf.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buf.Channels(), SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return sb.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker. The wav encoder seeks back
// over the header to patch chunk sizes on Close.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		if need > cap(b.data) {
			grown := make([]byte, need, need*2)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:need]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if pos < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(pos)
	return pos, nil
}
