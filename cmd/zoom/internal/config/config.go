package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/recera/zoom/pkg/zoom"
)

// FileName is the configuration file looked up in the project directory
const FileName = "zoom.yaml"

// Config represents the zoom.yaml configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Gallery GalleryConfig `yaml:"gallery"`
	Zoom    ZoomConfig    `yaml:"zoom"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// GalleryConfig describes the image directory served by the demo page
type GalleryConfig struct {
	// Directory scanned for images
	Dir string `yaml:"dir,omitempty"`

	// Width the images are laid out at on the page, in CSS pixels
	DisplayWidth int `yaml:"displayWidth,omitempty"`

	// Widest display rendition generated; originals stay untouched
	MaxWidth int `yaml:"maxWidth,omitempty"`

	// Rendition cache directory; empty uses the user cache directory
	CacheDir string `yaml:"cacheDir,omitempty"`

	Title string `yaml:"title,omitempty"`
}

// ZoomConfig is passed to the client through body data attributes
type ZoomConfig struct {
	Offset          float64 `yaml:"offset,omitempty"`
	ScrollThreshold float64 `yaml:"scrollThreshold,omitempty"`
	TouchThreshold  float64 `yaml:"touchThreshold,omitempty"`
	Debug           bool    `yaml:"debug,omitempty"`
}

// BuildConfig controls how the WASM client is compiled
type BuildConfig struct {
	// "go" or "tinygo"
	Compiler string `yaml:"compiler,omitempty"`

	// Output directory
	Output string `yaml:"output,omitempty"`

	// Client main package
	Client string `yaml:"client,omitempty"`
}

// LoggingConfig selects the console verbosity: none, normal or debug
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Load loads configuration from zoom.yaml in projectPath. A missing file
// yields the defaults.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Save saves configuration to zoom.yaml in projectPath
func Save(config *Config, projectPath string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), buf.Bytes(), 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	opts := zoom.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Gallery: GalleryConfig{
			Dir:          "images",
			DisplayWidth: 640,
			MaxWidth:     1600,
			Title:        "Gallery",
		},
		Zoom: ZoomConfig{
			Offset:          opts.Offset,
			ScrollThreshold: opts.ScrollThreshold,
			TouchThreshold:  opts.TouchThreshold,
		},
		Build: BuildConfig{
			Compiler: "go",
			Output:   "dist",
			Client:   "./app/client",
		},
		Logging: LoggingConfig{
			Level: "normal",
		},
	}
}

// applyDefaults fills every zero field from DefaultConfig
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}

	if config.Gallery.Dir == "" {
		config.Gallery.Dir = defaults.Gallery.Dir
	}
	if config.Gallery.DisplayWidth == 0 {
		config.Gallery.DisplayWidth = defaults.Gallery.DisplayWidth
	}
	if config.Gallery.MaxWidth == 0 {
		config.Gallery.MaxWidth = defaults.Gallery.MaxWidth
	}
	if config.Gallery.Title == "" {
		config.Gallery.Title = defaults.Gallery.Title
	}

	if config.Zoom.Offset == 0 {
		config.Zoom.Offset = defaults.Zoom.Offset
	}
	if config.Zoom.ScrollThreshold == 0 {
		config.Zoom.ScrollThreshold = defaults.Zoom.ScrollThreshold
	}
	if config.Zoom.TouchThreshold == 0 {
		config.Zoom.TouchThreshold = defaults.Zoom.TouchThreshold
	}

	if config.Build.Compiler == "" {
		config.Build.Compiler = defaults.Build.Compiler
	}
	if config.Build.Output == "" {
		config.Build.Output = defaults.Build.Output
	}
	if config.Build.Client == "" {
		config.Build.Client = defaults.Build.Client
	}

	if config.Logging.Level == "" {
		config.Logging.Level = defaults.Logging.Level
	}
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var err error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Gallery.DisplayWidth <= 0 {
		err = multierr.Append(err, fmt.Errorf("gallery.displayWidth must be positive, got %d", c.Gallery.DisplayWidth))
	}
	if c.Gallery.MaxWidth < c.Gallery.DisplayWidth {
		err = multierr.Append(err, fmt.Errorf("gallery.maxWidth %d is smaller than displayWidth %d", c.Gallery.MaxWidth, c.Gallery.DisplayWidth))
	}
	if c.Zoom.Offset < 0 || c.Zoom.ScrollThreshold < 0 || c.Zoom.TouchThreshold < 0 {
		err = multierr.Append(err, errors.New("zoom offset and thresholds must not be negative"))
	}
	switch c.Build.Compiler {
	case "go", "tinygo":
	default:
		err = multierr.Append(err, fmt.Errorf("build.compiler must be go or tinygo, got %q", c.Build.Compiler))
	}
	switch c.Logging.Level {
	case "none", "normal", "debug":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level must be none, normal or debug, got %q", c.Logging.Level))
	}
	return err
}

// Options converts the zoom section into controller options
func (c *Config) Options() zoom.Options {
	return zoom.Options{
		Offset:          c.Zoom.Offset,
		ScrollThreshold: c.Zoom.ScrollThreshold,
		TouchThreshold:  c.Zoom.TouchThreshold,
		Debug:           c.Zoom.Debug,
	}
}

// Addr returns host:port
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
