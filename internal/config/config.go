// Package config loads the bracket highlighter's settings.
//
// Settings come from built-in defaults, then an optional TOML file, then
// BRACKETS_* environment variables, each layer overriding the previous one.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/brackets/internal/bracket"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/style"
)

// Config is the complete configuration.
type Config struct {
	Brackets BracketsConfig `toml:"brackets"`
	Style    StyleConfig    `toml:"style"`
	Editor   EditorConfig   `toml:"editor"`
	Log      LogConfig      `toml:"log"`
}

// BracketsConfig selects the bracket characters.
type BracketsConfig struct {
	Open     string `toml:"open"`
	Close    string `toml:"close"`
	AutoPair bool   `toml:"auto_pair"`
}

// StyleConfig names the decoration tags and the colours of a matched bracket.
type StyleConfig struct {
	Base            string `toml:"base"`
	Matched         string `toml:"matched"`
	MatchForeground string `toml:"match_foreground"`
	MatchBackground string `toml:"match_background"`
}

// EditorConfig holds buffer settings.
type EditorConfig struct {
	Normalize bool `toml:"normalize"`
	TabWidth  int  `toml:"tab_width"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Brackets: BracketsConfig{
			Open:     string(bracket.DefaultKind.Open),
			Close:    string(bracket.DefaultKind.Close),
			AutoPair: true,
		},
		Style: StyleConfig{
			Base:            string(style.DefaultBase),
			Matched:         string(style.DefaultMatched),
			MatchForeground: "#000000",
			MatchBackground: "#ffd75f",
		},
		Editor: EditorConfig{
			Normalize: true,
			TabWidth:  4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "brackets", "config.toml")
}

// FileSystem is the file access Load needs.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Load reads defaults, the TOML file at path (if it exists) and the
// environment. An empty path skips the file.
func Load(fsys FileSystem, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := fsys.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Missing file is not an error.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := cfg.decode(path, bytes.NewReader(data)); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader reads a TOML document over the defaults without consulting
// the environment.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode("<reader>", r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(source string, r io.Reader) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvOpen     = "BRACKETS_OPEN"
	EnvClose    = "BRACKETS_CLOSE"
	EnvLogLevel = "BRACKETS_LOG_LEVEL"
	EnvLogFile  = "BRACKETS_LOG_FILE"
)

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOpen); ok {
		c.Brackets.Open = v
	}
	if v, ok := lookup(EnvClose); ok {
		c.Brackets.Close = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := c.Kind(); err != nil {
		return &ValidationError{Setting: "brackets", Err: err}
	}
	if c.Style.Base == "" || c.Style.Matched == "" || c.Style.Base == c.Style.Matched {
		return &ValidationError{Setting: "style", Err: errors.New("base and matched tags must be distinct and non-empty")}
	}
	for _, color := range []struct{ name, hex string }{
		{"style.match_foreground", c.Style.MatchForeground},
		{"style.match_background", c.Style.MatchBackground},
	} {
		if _, err := ParseColor(color.hex); err != nil {
			return &ValidationError{Setting: color.name, Err: err}
		}
	}
	if c.Editor.TabWidth < 1 {
		return &ValidationError{Setting: "editor.tab_width", Err: fmt.Errorf("must be positive, got %d", c.Editor.TabWidth)}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return &ValidationError{Setting: "log.level", Err: fmt.Errorf("unknown level %q", c.Log.Level)}
	}
	return nil
}

// Kind returns the configured bracket characters.
func (c *Config) Kind() (bracket.Kind, error) {
	return bracket.ParseKind(c.Brackets.Open, c.Brackets.Close)
}

// Palette returns the configured decoration tags.
func (c *Config) Palette() style.Palette {
	return style.Palette{Base: style.Tag(c.Style.Base), Matched: style.Tag(c.Style.Matched)}
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// ParseColor parses a #rrggbb or #rgb colour. An empty string means the
// terminal default and parses to the zero colour.
func ParseColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return c, nil
}
