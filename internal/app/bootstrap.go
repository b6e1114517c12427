package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/brackets/internal/autopair"
	"github.com/dshills/brackets/internal/config"
	"github.com/dshills/brackets/internal/engine/buffer"
	"github.com/dshills/brackets/internal/event"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/session"
	"github.com/dshills/brackets/internal/watcher"
)

// bootstrap initializes all components in dependency order.
// On failure, everything started so far is torn down.
func (app *Application) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		// 1. Config - every other component reads it
		{"config", app.initConfig},
		// 2. Logger
		{"logger", app.initLogger},
		// 3. Event bus and document buffer
		{"buffer", app.initBuffer},
		// 4. Highlight session subscribed to the buffer
		{"session", app.initSession},
		// 5. Auto-pair key handling
		{"autopair", app.initAutoPair},
		// 6. File watcher (optional)
		{"watcher", app.initWatcher},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			_ = app.Close()
			return &InitError{Component: step.name, Err: err}
		}
	}

	app.log.Info("started: file=%q pairs=%d", app.opts.File, app.session.Index().Len())
	return nil
}

func (app *Application) initConfig() error {
	fsys := app.opts.FS
	if fsys == nil {
		fsys = config.OSFS{}
	}
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(fsys, path)
	if err != nil {
		return err
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	app.config = cfg
	return nil
}

func (app *Application) initLogger() error {
	var out io.Writer = os.Stderr
	switch {
	case app.opts.LogOutput != nil:
		out = app.opts.LogOutput
	case app.config.Log.File != "":
		if err := os.MkdirAll(filepath.Dir(app.config.Log.File), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(app.config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		app.logFile = f
		out = f
	}

	cfg := logging.DefaultConfig()
	cfg.Level = app.config.LogLevel()
	cfg.Output = out
	app.log = logging.New(cfg)
	return nil
}

func (app *Application) initBuffer() error {
	busLog := app.log.WithComponent("event")
	app.bus = event.NewBus(event.WithErrorHandler(func(err error) {
		busLog.Error("%v", err)
	}))

	text := ""
	if app.opts.File != "" {
		var err error
		text, err = app.readDocument(app.opts.File)
		if err != nil {
			return &FileError{Op: "read", Path: app.opts.File, Err: err}
		}
	}

	app.buf = buffer.NewBufferFromString(text,
		buffer.WithBus(app.bus),
		buffer.WithTabWidth(app.config.Editor.TabWidth),
		buffer.WithSource("buffer"),
	)
	return nil
}

func (app *Application) initSession() error {
	kind, err := app.config.Kind()
	if err != nil {
		return err
	}

	app.session = session.New(app.buf,
		session.WithKind(kind),
		session.WithPalette(app.config.Palette()),
		session.WithLogger(app.log),
	)

	detach, err := app.session.Attach(app.bus)
	if err != nil {
		return err
	}
	app.detach = detach
	return nil
}

func (app *Application) initAutoPair() error {
	kind, err := app.config.Kind()
	if err != nil {
		return err
	}
	app.keys = autopair.New(app.buf, app.session, kind, app.config.Palette())
	app.keys.SetEnabled(app.config.Brackets.AutoPair)
	return nil
}

func (app *Application) initWatcher() error {
	if !app.opts.Watch {
		return nil
	}
	if app.opts.File == "" {
		return fmt.Errorf("watch: %w", ErrNoFile)
	}

	w, err := watcher.New(app.opts.File, func(string) {
		if err := app.Reload(); err != nil {
			app.log.Warn("%v", err)
		}
	}, watcher.WithLogger(app.log))
	if err != nil {
		return err
	}
	app.watcher = w
	return nil
}
