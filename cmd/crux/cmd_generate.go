package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/crux/internal/app"
	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/config"
	"github.com/five82/crux/internal/state"
	"github.com/five82/crux/internal/ui"
)

var (
	outputDir   string
	frontImage  string
	cameraDir   string
	frontDir    string
	noSave      bool
	healthEvery time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <image>",
	Short: "Generate a route from a wall photo on disk",
	Long: `Runs one capture, probe, upload and save sequence using the given image
as the camera. The upload is skipped when the backend does not answer the
reachability check.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var shootCmd = &cobra.Command{
	Use:   "shoot",
	Short: "Interactive capture view",
	Long: `Opens the terminal shoot view. Stills come from a tethered folder
(--camera-dir or capture.camera_dir); press space to capture the next photo
that lands there and generate a route from it.`,
	Args: cobra.NoArgs,
	RunE: runShoot,
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, shootCmd} {
		cmd.Flags().StringVarP(&outputDir, "out", "o", config.DefaultOutputDir(), "directory for generated route images")
		cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the generated image")
	}
	generateCmd.Flags().StringVar(&frontImage, "front", "", "image used after switching to the front camera")

	shootCmd.Flags().StringVar(&cameraDir, "camera-dir", "", "tethered folder for the back camera")
	shootCmd.Flags().StringVar(&frontDir, "front-dir", "", "tethered folder for the front camera")
	shootCmd.Flags().DurationVar(&healthEvery, "health-interval", 10*time.Second, "backend health check interval")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	pipeline, stop, err := startPipeline(ctx, rt, app.CameraSource{Image: args[0], FrontImage: frontImage})
	if err != nil {
		return err
	}
	defer stop()

	flow := app.NewFlow(pipeline, rt.Client, nil, saveDir(), rt.Logger.Named("flow"))
	result, err := flow.Run(ctx)
	if err != nil {
		rt.Logger.Debug("generate failed", zap.Error(err))
		return errors.New(app.FailureMessage(err))
	}

	if result.Path != "" {
		fmt.Println(result.Path)
		return nil
	}
	_, err = os.Stdout.Write(result.Image)
	return err
}

func runShoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	pipeline, stop, err := startPipeline(ctx, rt, app.CameraSource{Dir: cameraDir, FrontDir: frontDir})
	if err != nil {
		return err
	}
	defer stop()

	store := &state.Store{}
	flow := app.NewFlow(pipeline, rt.Client, store, saveDir(), rt.Logger.Named("flow"))

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.StartHealthPoller(pollCtx, store, rt.Client, healthEvery, rt.Logger.Named("health"))

	return ui.Run(ui.Options{
		Context:   ctx,
		Runner:    flow,
		Switcher:  pipeline,
		Store:     store,
		Prefs:     rt.Prefs,
		Endpoint:  func() string { return rt.Resolver.Resolve().BaseURL() },
		ThemeName: rt.Prefs.Prefs().Theme,
	})
}

func startPipeline(ctx context.Context, rt *app.Runtime, src app.CameraSource) (*capture.Pipeline, func(), error) {
	cam, err := rt.Camera(src)
	if err != nil {
		return nil, nil, err
	}
	pipeline, err := rt.Pipeline(cam)
	if err != nil {
		return nil, nil, err
	}
	if err := pipeline.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start camera: %w", err)
	}
	stop := func() {
		if err := pipeline.Stop(context.Background()); err != nil {
			rt.Logger.Warn("stop camera", zap.Error(err))
		}
	}
	return pipeline, stop, nil
}

func saveDir() string {
	if noSave {
		return ""
	}
	return outputDir
}

func defaultShootLog() string {
	return filepath.Join(filepath.Dir(config.DefaultOutputDir()), "crux.log")
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return nil
}
