// Package app wires the dictation pipeline together and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/audiocapture"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/config"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/hotkey"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/insert"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/journal"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/langdetect"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/notify"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/session"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/stt"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/vad"
)

// Options are command-line overrides applied on top of the stored
// configuration for this run only. They are never saved.
type Options struct {
	ConfigPath string
	Model      string
	Engine     string
	Quiet      bool
}

// App owns the assembled pipeline.
type App struct {
	opts Options
	cfg  *config.Config

	engine   stt.Engine
	sess     *session.Session
	listener *hotkey.Listener
	notifier *notify.Notifier
	journal  *journal.Journal // nil when transcript retention is off
}

// New loads configuration, applies overrides and wires every component.
func New(opts Options) (*App, error) {
	a := &App{opts: opts}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.notifier = notify.New(cfg.MuteNotifications)

	modelsDir, err := config.ModelsDir()
	if err != nil {
		return nil, err
	}

	a.engine, err = stt.New(stt.Config{
		Engine:    cfg.Engine,
		ModelSize: cfg.WhisperModel,
		ModelDir:  modelsDir,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if cfg.Engine == stt.LocalEngine && !stt.ModelInstalled(modelsDir, cfg.WhisperModel) {
		slog.Warn("model not installed", "model", cfg.WhisperModel,
			"hint", "whisperkey models download "+cfg.WhisperModel)
	}

	if cfg.RetainTranscripts {
		dir, err := config.JournalDir()
		if err != nil {
			return nil, err
		}
		a.journal, err = journal.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	segCfg := vad.DefaultConfig()
	segCfg.Enabled = !cfg.DisableVAD

	a.sess, err = session.New(session.Config{
		Recorder:    audiocapture.NewRecorder(audiocapture.DefaultConfig()),
		Segmenter:   vad.New(segCfg),
		Transcriber: a.engine,
		Inserter:    insert.New(insert.DefaultConfig()),
		Settings:    a.sessionSettings,
		OnStatus:    a.notifier.HandleStatus,
		OnResult:    a.handleResult,
	})
	if err != nil {
		return nil, err
	}

	a.listener, err = hotkey.New(hotkey.Config{
		Start:   cfg.StartHotkey,
		Stop:    cfg.StopHotkey,
		OnStart: func() { a.sess.Dispatch(session.IntentStart) },
		OnStop:  func() { a.sess.Dispatch(session.IntentStop) },
	})
	if err != nil {
		return nil, fmt.Errorf("bind hotkeys: %w", err)
	}

	return a, nil
}

// Run starts the hotkey listener and processes dictations until ctx is
// cancelled, then tears the pipeline down in reverse order.
func (a *App) Run(ctx context.Context) error {
	if pre, ok := a.engine.(interface{ Preload() error }); ok {
		go func() {
			if err := pre.Preload(); err != nil {
				slog.Error("model preload failed", "error", err)
				a.notifier.Problem(err.Error())
			}
		}()
	}

	if !a.cfg.FirstRunDone {
		start, stop := a.listener.Bindings()
		a.notifier.Welcome(start, stop)
		a.cfg.FirstRunDone = true
		if err := a.cfg.Save(); err != nil {
			slog.Warn("config save failed", "error", err)
		}
	}

	if err := a.listener.Start(); err != nil {
		return fmt.Errorf("start hotkey listener: %w", err)
	}
	slog.Info("ready", "start", a.cfg.StartHotkey, "stop", a.cfg.StopHotkey, "engine", a.engine.Name())

	a.sess.Run(ctx)

	a.listener.Stop()
	if err := a.engine.Close(); err != nil {
		slog.Warn("engine close failed", "error", err)
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			slog.Warn("journal close failed", "error", err)
		}
	}
	slog.Info("stopped")
	return nil
}

func (a *App) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if a.opts.ConfigPath != "" {
		cfg, err = config.LoadFile(a.opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if a.opts.Model != "" {
		cfg.WhisperModel = a.opts.Model
	}
	if a.opts.Engine != "" {
		cfg.Engine = a.opts.Engine
	}
	if a.opts.Quiet {
		cfg.MuteNotifications = true
	}
	normalize(cfg)
	return cfg, nil
}

// sessionSettings re-reads the stored configuration so edits apply from the
// next session: the prompt takes effect directly, edited hotkeys are
// rebound, and a changed model or engine only logs until restart.
func (a *App) sessionSettings() session.Settings {
	cfg, err := a.loadConfig()
	if err != nil {
		slog.Warn("config reload failed, keeping current settings", "error", err)
		cfg = a.cfg
	} else if cfg.StartHotkey != a.cfg.StartHotkey || cfg.StopHotkey != a.cfg.StopHotkey {
		if err := a.listener.Rebind(cfg.StartHotkey, cfg.StopHotkey); err != nil {
			slog.Warn("hotkey rebind failed, keeping previous chords", "error", err)
			cfg.StartHotkey = a.cfg.StartHotkey
			cfg.StopHotkey = a.cfg.StopHotkey
		}
	}
	a.cfg = cfg
	return session.Settings{
		Model:  cfg.WhisperModel,
		Prompt: cfg.InitialPrompt,
	}
}

// handleResult runs after each successful insertion: fill in the language,
// journal the transcript when retention is on, then notify.
func (a *App) handleResult(res stt.Result) {
	if res.Language == "" {
		code, name := langdetect.Detect(res.Text)
		res.Language = code
		if code != "" {
			slog.Debug("language detected", "code", code, "name", name)
		}
	}
	if a.journal != nil {
		if _, err := a.journal.Append(journal.Entry{
			Text:     res.Text,
			Language: res.Language,
			Duration: res.Duration,
		}); err != nil {
			slog.Warn("journal append failed", "error", err)
		}
	}
	a.notifier.HandleResult(res)
}

// normalize falls back to defaults for unknown model and engine names.
func normalize(cfg *config.Config) {
	if !stt.ValidSize(cfg.WhisperModel) {
		slog.Warn("unknown model size, using base", "model", cfg.WhisperModel)
		cfg.WhisperModel = "base"
	}
	switch cfg.Engine {
	case stt.LocalEngine, stt.APIEngine:
	case "":
		cfg.Engine = stt.LocalEngine
	default:
		slog.Warn("unknown engine, using local", "engine", cfg.Engine)
		cfg.Engine = stt.LocalEngine
	}
}
