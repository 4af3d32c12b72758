package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/config"
	"github.com/five82/crux/internal/endpoint"
	"github.com/five82/crux/internal/gateway"
	"github.com/five82/crux/internal/prefs"
)

// Environment layer of endpoint resolution.
const (
	EnvBackendURL = "CRUX_BACKEND_URL"
	EnvAPIKey     = "CRUX_API_KEY"
)

const defaultEnvFile = ".env"

// Options configure the crux runtime.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/crux/prefs.toml
	EnvFile    string // empty uses ./.env; a missing file is ignored
	Backend    string // --backend flag, highest precedence
	APIKey     string
	Logger     *zap.Logger
}

// Runtime holds the wired components every command needs.
type Runtime struct {
	Config   config.Config
	Prefs    *prefs.Store
	Resolver *endpoint.Resolver
	Client   *gateway.Client
	Logger   *zap.Logger
}

// Build loads configuration and wires the endpoint resolver and API client.
// Resolution order, highest first: flag, environment, prefs override,
// config base_url, config host/port, built-in default.
func Build(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := loadEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store := prefs.Open(opts.PrefsPath)

	layers := []endpoint.Layer{
		endpoint.Static{URL: opts.Backend, Key: opts.APIKey},
		endpoint.Static{URL: os.Getenv(EnvBackendURL), Key: os.Getenv(EnvAPIKey)},
		store,
	}
	layers = append(layers, cfg.Backend.Layers()...)
	resolver := endpoint.NewResolver(layers...)

	client := gateway.NewClient(resolver,
		gateway.WithLogger(logger.Named("gateway")),
		gateway.WithTimeouts(cfg.Timeouts.Request, cfg.Timeouts.Upload, cfg.Timeouts.Probe),
	)

	logger.Debug("runtime ready",
		zap.String("endpoint", resolver.Resolve().BaseURL()),
		zap.Int("max_width", cfg.Capture.MaxWidth),
		zap.Int("max_bytes", cfg.Capture.MaxBytes),
	)

	return &Runtime{
		Config:   cfg,
		Prefs:    store,
		Resolver: resolver,
		Client:   client,
		Logger:   logger,
	}, nil
}

// CameraSource selects where stills come from. Image paths take precedence
// over directories; empty directories fall back to the config.
type CameraSource struct {
	Image      string
	FrontImage string
	Dir        string
	FrontDir   string
}

// Camera builds the camera for src.
func (r *Runtime) Camera(src CameraSource) (capture.Camera, error) {
	if strings.TrimSpace(src.Image) != "" {
		return capture.NewFileCamera(src.Image, src.FrontImage), nil
	}
	back := endpoint.FirstNonEmpty(src.Dir, r.Config.Cameras.BackDir)
	front := endpoint.FirstNonEmpty(src.FrontDir, r.Config.Cameras.FrontDir)
	if back == "" {
		return nil, fmt.Errorf("no camera source: pass an image or set capture.camera_dir")
	}
	return capture.NewFolderCamera(back, front, r.Logger.Named("camera")), nil
}

// Pipeline binds cam to the configured capture settings.
func (r *Runtime) Pipeline(cam capture.Camera) (*capture.Pipeline, error) {
	return capture.NewPipeline(cam, r.Config.Capture, r.Logger.Named("capture"))
}

func loadEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
