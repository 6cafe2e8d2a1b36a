package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.StartHotkey != "ctrl+r" || cfg.StopHotkey != "ctrl+s" {
		t.Errorf("default hotkeys = %q, %q, want ctrl+r, ctrl+s", cfg.StartHotkey, cfg.StopHotkey)
	}
	if cfg.WhisperModel != "base" {
		t.Errorf("default model = %q, want base", cfg.WhisperModel)
	}
	if cfg.Engine != "whisper-local" {
		t.Errorf("default engine = %q, want whisper-local", cfg.Engine)
	}
	if cfg.FirstRunDone {
		t.Error("FirstRunDone = true for a fresh config")
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.StartHotkey != "ctrl+r" || cfg.WhisperModel != "base" {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg.WhisperModel = "small"
	cfg.InitialPrompt = "Go, gohook, badger"
	cfg.RetainTranscripts = true
	cfg.FirstRunDone = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile after Save: %v", err)
	}
	if loaded.WhisperModel != "small" {
		t.Errorf("WhisperModel = %q, want small", loaded.WhisperModel)
	}
	if loaded.InitialPrompt != "Go, gohook, badger" {
		t.Errorf("InitialPrompt = %q", loaded.InitialPrompt)
	}
	if !loaded.RetainTranscripts {
		t.Error("RetainTranscripts lost in roundtrip")
	}
	if !loaded.FirstRunDone {
		t.Error("FirstRunDone lost in roundtrip")
	}
	// fields that were never written keep their defaults
	if loaded.StartHotkey != "ctrl+r" {
		t.Errorf("StartHotkey = %q, want ctrl+r", loaded.StartHotkey)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"whisper_model": "small"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WhisperModel != "small" {
		t.Errorf("WhisperModel = %q, want small", cfg.WhisperModel)
	}
	if cfg.StartHotkey != "ctrl+r" {
		t.Errorf("absent key lost its default: StartHotkey = %q", cfg.StartHotkey)
	}
}

func TestLoadFileMigratesLegacyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	legacy := `{
  "start_recording_hotkey": "Control-R",
  "stop_recording_hotkey": "Control-Shift-S",
  "whisper_model": "base",
  "first_run": false,
  "delete_recordings": true
}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.StartHotkey != "ctrl+r" {
		t.Errorf("StartHotkey = %q, want ctrl+r", cfg.StartHotkey)
	}
	if cfg.StopHotkey != "ctrl+shift+s" {
		t.Errorf("StopHotkey = %q, want ctrl+shift+s", cfg.StopHotkey)
	}
	if !cfg.FirstRunDone {
		t.Error(`"first_run": false did not mark the first run done`)
	}

	// saving writes the new form and drops the legacy keys
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}
	if _, ok := raw["first_run"]; ok {
		t.Error("first_run survived the re-save")
	}
	if _, ok := raw["delete_recordings"]; ok {
		t.Error("delete_recordings survived the re-save")
	}
	if got := raw["start_recording_hotkey"]; got != "ctrl+r" {
		t.Errorf("saved start hotkey = %v, want ctrl+r", got)
	}
}

func TestLoadFileFreshLegacyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"first_run": true}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.FirstRunDone {
		t.Error(`"first_run": true marked the first run done`)
	}
}

func TestTranslateLegacyCombo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tk control", "Control-R", "ctrl+r"},
		{"tk multi modifier", "Command-Shift-S", "cmd+shift+s"},
		{"tk option", "Option-Space", "alt+space"},
		{"already new form", "ctrl+r", "ctrl+r"},
		{"plain key", "r", "r"},
		{"unknown modifier passes through", "Hyper-R", "Hyper-R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateLegacyCombo(tt.in); got != tt.want {
				t.Errorf("translateLegacyCombo(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirLayout(t *testing.T) {
	base, err := os.UserConfigDir()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if dir != filepath.Join(base, "whisperkey") {
		t.Errorf("Dir() = %q, want %q", dir, filepath.Join(base, "whisperkey"))
	}

	models, err := ModelsDir()
	if err != nil {
		t.Fatalf("ModelsDir: %v", err)
	}
	if models != filepath.Join(dir, "models") {
		t.Errorf("ModelsDir() = %q, want models under %q", models, dir)
	}

	journal, err := JournalDir()
	if err != nil {
		t.Fatalf("JournalDir: %v", err)
	}
	if journal != filepath.Join(dir, "journal") {
		t.Errorf("JournalDir() = %q, want journal under %q", journal, dir)
	}
}
