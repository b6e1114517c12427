// Package app wires the bracket highlighter together: configuration,
// logging, the event bus, the document buffer, the highlight session, the
// auto-pair handler, the file watcher and the terminal front end.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/brackets/internal/autopair"
	"github.com/dshills/brackets/internal/config"
	"github.com/dshills/brackets/internal/engine/buffer"
	"github.com/dshills/brackets/internal/event"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/report"
	"github.com/dshills/brackets/internal/session"
	"github.com/dshills/brackets/internal/tui"
	"github.com/dshills/brackets/internal/watcher"
)

// Application owns every component for one open document.
type Application struct {
	mu sync.Mutex

	// Core infrastructure
	config  *config.Config
	log     *logging.Logger
	logFile io.Closer
	bus     event.Bus

	// Document
	buf     *buffer.Buffer
	session *session.Session
	detach  func()
	keys    *autopair.Handler
	watcher *watcher.Watcher

	// refresh redraws the front end after an external reload.
	refresh func()

	// State
	running atomic.Bool
	closed  bool

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means the per-user default.
	ConfigPath string

	// File is the document to open. A missing file opens an empty document.
	File string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Watch reloads File when it changes on disk.
	Watch bool

	// FS reads the configuration file. Defaults to the OS file system.
	FS config.FileSystem

	// LogOutput overrides the log destination. When nil, logs go to the
	// configured log file or stderr.
	LogOutput io.Writer
}

// New creates an Application and starts its components.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		refresh: func() {},
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Buffer returns the document buffer.
func (app *Application) Buffer() *buffer.Buffer {
	return app.buf
}

// Session returns the highlight session.
func (app *Application) Session() *session.Session {
	return app.session
}

// Keys returns the auto-pair handler.
func (app *Application) Keys() *autopair.Handler {
	return app.keys
}

// Dump writes the JSON bracket report for the current document to w.
func (app *Application) Dump(w io.Writer) error {
	text := app.buf.String()
	doc, err := report.JSON(app.session.Index(), text)
	if err != nil {
		return err
	}
	doc = append(doc, '\n')
	_, err = w.Write(doc)
	return err
}

// Run drives the terminal front end on screen until the user quits or ctx
// is done. The screen must be initialized; Run does not finalize it.
// Without a log file, logging is silenced while the screen is active.
func (app *Application) Run(ctx context.Context, screen tcell.Screen) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return ErrClosed
	}
	app.mu.Unlock()

	if app.logFile == nil && app.opts.LogOutput == nil {
		app.log.SetOutput(io.Discard)
		defer app.log.SetOutput(os.Stderr)
	}

	theme, err := app.theme()
	if err != nil {
		return err
	}

	view := tui.New(screen, app.buf, app.keys,
		tui.WithTheme(theme),
		tui.WithLogger(app.log),
		tui.WithStatus(app.status),
	)

	app.mu.Lock()
	app.refresh = view.Refresh
	app.mu.Unlock()
	defer func() {
		app.mu.Lock()
		app.refresh = func() {}
		app.mu.Unlock()
	}()

	app.log.Info("running")
	err = view.Run(ctx)
	app.log.Info("stopped")
	return err
}

// Reload replaces the buffer content with the file on disk.
func (app *Application) Reload() error {
	if app.opts.File == "" {
		return ErrNoFile
	}
	text, err := app.readDocument(app.opts.File)
	if err != nil {
		return &FileError{Op: "reload", Path: app.opts.File, Err: err}
	}
	if text == app.buf.String() {
		return nil
	}

	app.buf.SetText(text)
	app.log.Info("reloaded %s", app.opts.File)

	app.mu.Lock()
	refresh := app.refresh
	app.mu.Unlock()
	refresh()
	return nil
}

// Close stops the watcher, detaches the session and closes the log file.
func (app *Application) Close() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	app.mu.Unlock()

	var firstErr error
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			firstErr = err
		}
	}
	if app.detach != nil {
		app.detach()
	}
	if app.logFile != nil {
		if err := app.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// status is shown on the front end's status line.
func (app *Application) status() string {
	p, ok := app.session.Active()
	if !ok {
		return app.session.State().String()
	}
	return fmt.Sprintf("%s %s", app.session.State(), p)
}

// theme builds the front end colours from the configuration.
func (app *Application) theme() (tui.Theme, error) {
	parse := func(hex string) (*colorful.Color, error) {
		if hex == "" {
			return nil, nil
		}
		c, err := config.ParseColor(hex)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	fg, err := parse(app.config.Style.MatchForeground)
	if err != nil {
		return tui.Theme{}, err
	}
	bg, err := parse(app.config.Style.MatchBackground)
	if err != nil {
		return tui.Theme{}, err
	}
	return tui.NewTheme(app.config.Palette(), fg, bg), nil
}

// readDocument reads path, treating a missing file as empty.
func (app *Application) readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	text := string(data)
	if app.config.Editor.Normalize {
		text = norm.NFC.String(text)
	}
	return text, nil
}
