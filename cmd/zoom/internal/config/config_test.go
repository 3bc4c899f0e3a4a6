package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Zoom.Offset != 80 || cfg.Build.Compiler != "go" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlText := `server:
  port: 9000
gallery:
  dir: photos
zoom:
  offset: 40
  debug: true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(yamlText), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "localhost" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Gallery.Dir != "photos" || cfg.Gallery.MaxWidth != 1600 {
		t.Errorf("gallery = %+v", cfg.Gallery)
	}

	opts := cfg.Options()
	if opts.Offset != 40 || opts.ScrollThreshold != 40 || opts.TouchThreshold != 10 || !opts.Debug {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "normal" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("sever:\n  port: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Expected error for misspelled section")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.Port = 7000
	cfg.Gallery.CacheDir = "/tmp/zoom-cache"
	cfg.Zoom.ScrollThreshold = 25

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   int
		substr string
	}{
		{"valid", func(*Config) {}, 0, ""},
		{"port", func(c *Config) { c.Server.Port = 70000 }, 1, "server.port"},
		{"widths", func(c *Config) { c.Gallery.MaxWidth = 100 }, 1, "maxWidth"},
		{"compiler", func(c *Config) { c.Build.Compiler = "gccgo" }, 1, "build.compiler"},
		{"thresholds", func(c *Config) { c.Zoom.TouchThreshold = -1 }, 1, "thresholds"},
		{"several", func(c *Config) {
			c.Server.Port = 0
			c.Logging.Level = "loud"
		}, 2, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if got := len(multierr.Errors(err)); got != tt.errs {
				t.Fatalf("Validate() returned %d errors (%v), want %d", got, err, tt.errs)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	none := (&LoggingConfig{Level: "none"}).Logger()
	if none.Core().Enabled(0) {
		t.Error("none level should disable logging")
	}

	normal := (&LoggingConfig{Level: "normal"}).Logger()
	if normal.Core().Enabled(-1) {
		t.Error("normal level should not log debug")
	}
	if !normal.Core().Enabled(0) {
		t.Error("normal level should log info")
	}

	debug := (&LoggingConfig{Level: "debug"}).Logger()
	if !debug.Core().Enabled(-1) {
		t.Error("debug level should log debug")
	}
}
