package config

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dshills/brackets/internal/bracket"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/style"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	kind, err := cfg.Kind()
	if err != nil || kind != bracket.DefaultKind {
		t.Errorf("Kind() = %v, %v", kind, err)
	}
	if cfg.Palette() != style.DefaultPalette() {
		t.Errorf("Palette() = %v", cfg.Palette())
	}
	if cfg.LogLevel() != logging.LevelInfo {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoadFromFile(t *testing.T) {
	fsys := fstest.MapFS{
		"brackets.toml": {Data: []byte(`
[brackets]
open = "("
close = ")"
auto_pair = false

[style]
matched = "hot"
match_background = "#336699"

[log]
level = "debug"
`)},
	}

	t.Setenv(EnvLogLevel, "")
	if _, err := Load(fsys, "brackets.toml"); err == nil {
		t.Fatal("empty BRACKETS_LOG_LEVEL should fail validation")
	}

	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load(fsys, "brackets.toml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	kind, _ := cfg.Kind()
	if kind != (bracket.Kind{Open: '(', Close: ')'}) {
		t.Errorf("Kind() = %v", kind)
	}
	if cfg.Brackets.AutoPair {
		t.Error("auto_pair should be false")
	}
	if cfg.Style.Base != "loop" || cfg.Style.Matched != "hot" {
		t.Errorf("Style = %+v", cfg.Style)
	}
	if cfg.Style.MatchBackground != "#336699" || cfg.Style.MatchForeground != "#000000" {
		t.Errorf("colours = %+v", cfg.Style)
	}
	if cfg.LogLevel() != logging.LevelWarn {
		t.Errorf("environment should override file level, got %v", cfg.LogLevel())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(fstest.MapFS{}, "absent.toml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brackets.Open != "[" {
		t.Errorf("Open = %q", cfg.Brackets.Open)
	}
}

func TestLoadParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": {Data: []byte("[brackets]\nopen = \n")},
	}
	_, err := Load(fsys, "bad.toml")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), "bad.toml at line 2") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[brackets]\nkinds = 3\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		setting string
	}{
		{"same brackets", func(c *Config) { c.Brackets.Close = "[" }, "brackets"},
		{"multi rune open", func(c *Config) { c.Brackets.Open = "<<" }, "brackets"},
		{"empty matched tag", func(c *Config) { c.Style.Matched = "" }, "style"},
		{"same tags", func(c *Config) { c.Style.Matched = c.Style.Base }, "style"},
		{"bad colour", func(c *Config) { c.Style.MatchBackground = "yellow" }, "style.match_background"},
		{"zero tab width", func(c *Config) { c.Editor.TabWidth = 0 }, "editor.tab_width"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want validation failure", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Setting != tt.setting {
				t.Errorf("setting = %v, want %q", err, tt.setting)
			}
		})
	}
}

func TestValidateReportsFirstBadColour(t *testing.T) {
	cfg := Default()
	cfg.Style.MatchForeground = "red"
	cfg.Style.MatchBackground = "yellow"

	// Settings are checked in a fixed order, so the same one is always named.
	for i := 0; i < 20; i++ {
		var verr *ValidationError
		if err := cfg.Validate(); !errors.As(err, &verr) || verr.Setting != "style.match_foreground" {
			t.Fatalf("run %d: Validate() = %v, want style.match_foreground", i, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvOpen:    "{",
		EnvClose:   "}",
		EnvLogFile: "/tmp/brackets.log",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	kind, err := cfg.Kind()
	if err != nil || kind != (bracket.Kind{Open: '{', Close: '}'}) {
		t.Errorf("Kind() = %v, %v", kind, err)
	}
	if cfg.Log.File != "/tmp/brackets.log" {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unset variable changed level to %q", cfg.Log.Level)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	r, g, b := c.RGB255()
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("RGB255() = %d,%d,%d", r, g, b)
	}

	if _, err := ParseColor(""); err != nil {
		t.Errorf("empty colour should be accepted: %v", err)
	}
	if _, err := ParseColor("red"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("ParseColor(red) error = %v", err)
	}
}
