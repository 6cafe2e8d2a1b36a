// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appName        = "whisperkey"
	oldAppName     = "Whisper Hotkey"
	configFileName = "config.json"
)

// Config is the persisted application configuration.
type Config struct {
	// Legacy fields (deprecated, kept for migration)
	LegacyFirstRun         *bool `json:"first_run,omitempty"`
	LegacyDeleteRecordings *bool `json:"delete_recordings,omitempty"`

	StartHotkey       string `json:"start_recording_hotkey"`
	StopHotkey        string `json:"stop_recording_hotkey"`
	WhisperModel      string `json:"whisper_model"`
	Engine            string `json:"engine"`
	APIKey            string `json:"api_key,omitempty"`
	InitialPrompt     string `json:"initial_prompt,omitempty"`
	DisableVAD        bool   `json:"disable_vad,omitempty"`
	RetainTranscripts bool   `json:"retain_transcripts,omitempty"`
	MuteNotifications bool   `json:"mute_notifications,omitempty"`
	FirstRunDone      bool   `json:"first_run_done"`

	path string
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		StartHotkey:  "ctrl+r",
		StopHotkey:   "ctrl+s",
		WhisperModel: "base",
		Engine:       "whisper-local",
	}
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	// Ensure migration from old app name to new app name
	if err := migrateLegacyDir(); err != nil {
		return nil, fmt.Errorf("migrate legacy config: %w", err)
	}

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile reads configuration from an explicit path. A missing file yields
// the defaults; Save writes back to the same path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Unmarshal over the defaults so keys absent from the file keep them.
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path
	cfg.migrateLegacyFields()
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Dir returns the application configuration directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// ModelsDir returns the directory holding downloaded model weights.
func ModelsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models"), nil
}

// JournalDir returns the directory backing the transcript journal.
func JournalDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal"), nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// migrateLegacyFields rewrites settings written by earlier releases:
// Tk-style hotkey names like "Control-R" and the first_run and
// delete_recordings flags.
func (c *Config) migrateLegacyFields() {
	c.StartHotkey = translateLegacyCombo(c.StartHotkey)
	c.StopHotkey = translateLegacyCombo(c.StopHotkey)
	if c.LegacyFirstRun != nil {
		c.FirstRunDone = !*c.LegacyFirstRun
		c.LegacyFirstRun = nil
	}
	// delete_recordings governed on-disk WAV cleanup; recordings are no
	// longer written to disk, so the flag has nothing to govern.
	c.LegacyDeleteRecordings = nil
}

var legacyModifiers = map[string]string{
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"command": "cmd",
	"cmd":     "cmd",
	"super":   "cmd",
}

// translateLegacyCombo converts Tk-style combos ("Control-R",
// "Control-Shift-R") to the "+" form. Values already in the new form, and
// values that do not parse as legacy combos, pass through unchanged.
func translateLegacyCombo(s string) string {
	if !strings.Contains(s, "-") || strings.Contains(s, "+") {
		return s
	}
	parts := strings.Split(s, "-")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if i < len(parts)-1 {
			m, ok := legacyModifiers[p]
			if !ok {
				return s
			}
			p = m
		}
		out = append(out, p)
	}
	return strings.Join(out, "+")
}

// migrateLegacyDir links the old per-app directory to the new name so
// settings and downloaded models survive the rename.
func migrateLegacyDir() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("get user config dir: %w", err)
	}

	oldDir := filepath.Join(configDir, oldAppName)
	newDir := filepath.Join(configDir, appName)

	oldInfo, err := os.Stat(oldDir)
	if err != nil {
		if os.IsNotExist(err) {
			// No old directory, nothing to migrate
			return nil
		}
		return fmt.Errorf("stat old config dir: %w", err)
	}

	if !oldInfo.IsDir() {
		// Old path exists but is not a directory
		return nil
	}

	_, err = os.Stat(newDir)
	if err == nil {
		// New directory already exists, no migration needed
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat new config dir: %w", err)
	}

	if err := os.Symlink(oldDir, newDir); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	return nil
}
