package stt

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
)

func TestEncodeWAVHeader(t *testing.T) {
	buf := audiocapture.NewBuffer(16000, 1)
	buf.Append([]float32{0, 0.5, -0.5, 1})

	data, err := encodeWAV(buf)
	if err != nil {
		t.Fatalf("encodeWAV: %v", err)
	}

	// 44-byte PCM header plus two bytes per sample
	if want := 44 + 2*buf.Len(); len(data) != want {
		t.Fatalf("len(data) = %d, want %d", len(data), want)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("container magic = %q %q, want RIFF WAVE", data[0:4], data[8:12])
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(len(data)-8) {
		t.Errorf("RIFF chunk size = %d, want %d", got, len(data)-8)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bit depth = %d, want 16", got)
	}
}

func TestEncodeWAVClampsSamples(t *testing.T) {
	buf := audiocapture.NewBuffer(16000, 1)
	buf.Append([]float32{2.0, -2.0})

	data, err := encodeWAV(buf)
	if err != nil {
		t.Fatalf("encodeWAV: %v", err)
	}

	if got := int16(binary.LittleEndian.Uint16(data[44:46])); got != 32767 {
		t.Errorf("clamped high sample = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[46:48])); got != -32767 {
		t.Errorf("clamped low sample = %d, want -32767", got)
	}
}

func TestSeekBuffer(t *testing.T) {
	sb := &seekBuffer{}

	if _, err := sb.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Seek back and overwrite, the way the encoder patches chunk sizes
	if _, err := sb.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := sb.Write([]byte("H")); err != nil {
		t.Fatalf("Write after Seek: %v", err)
	}

	if got := string(sb.data); got != "Hello world" {
		t.Errorf("data = %q, want %q", got, "Hello world")
	}

	pos, err := sb.Seek(-5, io.SeekEnd)
	if err != nil {
		t.Fatalf("Seek from end: %v", err)
	}
	if pos != 6 {
		t.Errorf("Seek(-5, SeekEnd) = %d, want 6", pos)
	}

	if _, err := sb.Seek(-1, io.SeekStart); err == nil {
		t.Error("expected error for negative position")
	}
}
