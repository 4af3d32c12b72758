package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/crux/internal/app"
	"github.com/five82/crux/internal/config"
)

var (
	// Global flags
	configPath string
	prefsPath  string
	envFile    string
	backendURL string
	apiKey     string
	verbose    bool
	logFile    string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crux",
	Short: "Capture a wall photo and generate a boulder route from it",
	Long: `crux captures a still of a climbing wall, fits it to the upload budget
and sends it to the route-analysis backend. The generated route image is
saved locally.

Backend resolution, highest first: --backend, CRUX_BACKEND_URL, the saved
override (crux set-backend), config base_url, config host/port, and
http://127.0.0.1:8000.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		output := logFile
		if output == "" && cmd.Name() == "shoot" {
			// stderr would corrupt the TUI
			output = defaultShootLog()
		}
		var err error
		logger, err = newLogger(verbose, output)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.config/crux/config.toml)")
	flags.StringVar(&prefsPath, "prefs", "", "prefs file (default ~/.config/crux/prefs.toml)")
	flags.StringVar(&envFile, "env-file", "", "dotenv file to load (default ./.env)")
	flags.StringVar(&backendURL, "backend", "", "backend address, overrides every other source")
	flags.StringVar(&apiKey, "api-key", "", "API key sent as x-api-key")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(generateCmd, shootCmd)
	rootCmd.AddCommand(probeCmd, testConnectionCmd, setBackendCmd, endpointCmd)
	rootCmd.AddCommand(routesCmd, climbsCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "crux: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds a production zap logger. Debug level with verbose; output
// goes to path when set.
func newLogger(verbose bool, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if path != "" {
		resolved, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		if err := ensureDir(resolved); err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{resolved}
		cfg.ErrorOutputPaths = []string{resolved}
	}
	return cfg.Build()
}

// buildRuntime wires the runtime from the global flags.
func buildRuntime() (*app.Runtime, error) {
	return app.Build(app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		EnvFile:    envFile,
		Backend:    backendURL,
		APIKey:     apiKey,
		Logger:     logger,
	})
}
