package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/endpoint"
)

// Config is crux's bundled configuration.
type Config struct {
	Backend  Backend
	Capture  capture.Settings
	Cameras  Cameras
	Timeouts Timeouts
}

// Backend holds the bundled endpoint settings.
type Backend struct {
	URL  string
	Host string
	Port string
	Key  string
}

// Cameras names the still sources. Empty directories mean a file camera is
// used instead.
type Cameras struct {
	BackDir  string
	FrontDir string
}

// Timeouts are per-operation limits. Zero means the client default.
type Timeouts struct {
	Request time.Duration
	Upload  time.Duration
	Probe   time.Duration
}

const (
	defaultConfigPath = "~/.config/crux/config.toml"
	defaultPrefsPath  = "~/.config/crux/prefs.toml"
	defaultOutputDir  = "~/.local/share/crux/routes"
)

// Layers returns the bundled endpoint layers, highest precedence first:
// base_url with the api key, then host and port. A base_url that does not
// parse falls through to host and port.
func (b Backend) Layers() []endpoint.Layer {
	return []endpoint.Layer{
		endpoint.Static{URL: b.URL, Key: b.Key},
		endpoint.Static{URL: endpoint.HostPort(b.Host, b.Port)},
	}
}

// Load locates and parses the crux config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Capture: capture.DefaultSettings()}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Backend struct {
			BaseURL string `toml:"base_url"`
			Host    string `toml:"host"`
			Port    any    `toml:"port"`
			APIKey  string `toml:"api_key"`
		} `toml:"backend"`
		Capture struct {
			MaxWidth       int    `toml:"max_width"`
			MaxBytes       int    `toml:"max_bytes"`
			InitialQuality int    `toml:"initial_quality"`
			FloorQuality   int    `toml:"floor_quality"`
			QualityStep    int    `toml:"quality_step"`
			CameraDir      string `toml:"camera_dir"`
			FrontDir       string `toml:"front_dir"`
		} `toml:"capture"`
		Timeouts struct {
			Request string `toml:"request"`
			Upload  string `toml:"upload"`
			Probe   string `toml:"probe"`
		} `toml:"timeouts"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Backend = Backend{
		URL:  strings.TrimSpace(raw.Backend.BaseURL),
		Host: strings.TrimSpace(raw.Backend.Host),
		Port: portString(raw.Backend.Port),
		Key:  strings.TrimSpace(raw.Backend.APIKey),
	}

	cfg.Capture = capture.Settings{
		MaxWidth:       raw.Capture.MaxWidth,
		MaxBytes:       raw.Capture.MaxBytes,
		InitialQuality: raw.Capture.InitialQuality,
		FloorQuality:   raw.Capture.FloorQuality,
		QualityStep:    raw.Capture.QualityStep,
	}.WithDefaults()
	if err := cfg.Capture.Validate(); err != nil {
		return Config{}, fmt.Errorf("capture settings: %w", err)
	}

	if dir := strings.TrimSpace(raw.Capture.CameraDir); dir != "" {
		cfg.Cameras.BackDir = mustExpand(dir)
	}
	if dir := strings.TrimSpace(raw.Capture.FrontDir); dir != "" {
		cfg.Cameras.FrontDir = mustExpand(dir)
	}

	if cfg.Timeouts.Request, err = parseDuration("timeouts.request", raw.Timeouts.Request); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.Upload, err = parseDuration("timeouts.upload", raw.Timeouts.Upload); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.Probe, err = parseDuration("timeouts.probe", raw.Timeouts.Probe); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultPrefsPath returns the expanded location of the override store.
func DefaultPrefsPath() string {
	return mustExpand(defaultPrefsPath)
}

// DefaultOutputDir returns where generated route images are saved.
func DefaultOutputDir() string {
	return mustExpand(defaultOutputDir)
}

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func portString(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(p)
	case int64:
		return fmt.Sprintf("%d", p)
	case float64:
		return fmt.Sprintf("%d", int64(p))
	default:
		return strings.TrimSpace(fmt.Sprint(p))
	}
}

func parseDuration(key, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: must not be negative", key)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
