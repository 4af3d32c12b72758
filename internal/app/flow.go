package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/endpoint"
	"github.com/five82/crux/internal/gateway"
	"github.com/five82/crux/internal/state"
)

// FailurePrefix starts every user-facing failure of a run.
const FailurePrefix = "Route generation failed: "

// Capturer produces one upload-ready payload per call.
type Capturer interface {
	Capture(ctx context.Context) (capture.Payload, error)
	Preview() image.Image
}

// Prober checks that the backend is reachable.
type Prober interface {
	Probe(ctx context.Context) error
	Endpoint() endpoint.Endpoint
}

// Generator is the backend side of a run.
type Generator interface {
	Prober
	GenerateBoulder(ctx context.Context, img gateway.Image) ([]byte, error)
}

var (
	_ Capturer  = (*capture.Pipeline)(nil)
	_ Generator = (*gateway.Client)(nil)
)

// Result is what a successful run produced.
type Result struct {
	Payload capture.Payload
	Image   []byte // image/png from the backend
	Path    string // where Image was saved; empty when saving is disabled
}

// Flow runs capture, probe, upload and save strictly in sequence. Progress
// and failures are written to the store.
type Flow struct {
	capturer  Capturer
	backend   Generator
	store     *state.Store
	outputDir string
	logger    *zap.Logger

	running atomic.Bool
}

// NewFlow builds a Flow. An empty outputDir disables saving. A nil store
// gets a private one.
func NewFlow(c Capturer, g Generator, store *state.Store, outputDir string, logger *zap.Logger) *Flow {
	if store == nil {
		store = &state.Store{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{capturer: c, backend: g, store: store, outputDir: outputDir, logger: logger}
}

// Store returns the store the flow reports into.
func (f *Flow) Store() *state.Store { return f.store }

// Run performs one route generation. The upload is never attempted when the
// probe fails. A second Run while one is in flight is rejected without
// touching the store.
func (f *Flow) Run(ctx context.Context) (Result, error) {
	if !f.running.CompareAndSwap(false, true) {
		return Result{}, &capture.Error{Kind: capture.KindBusy, Err: capture.ErrBusy}
	}
	defer f.running.Store(false)

	f.store.Begin()

	payload, err := f.capturer.Capture(ctx)
	if err != nil {
		return Result{}, f.fail("capture", err)
	}
	f.store.SetPayload(state.PayloadInfo{
		Filename: payload.Filename,
		Width:    payload.Width,
		Height:   payload.Height,
		Quality:  payload.Quality,
		Bytes:    len(payload.Data),
	}, f.capturer.Preview())

	f.store.SetPhase(state.PhaseProbing)
	base := f.backend.Endpoint().BaseURL()
	if err := f.backend.Probe(ctx); err != nil {
		f.store.SetBackend(base, false, Describe(err))
		return Result{}, f.fail("probe", err)
	}
	f.store.SetBackend(base, true, "")

	f.store.SetPhase(state.PhaseUploading)
	data, err := f.backend.GenerateBoulder(ctx, gateway.Image{
		Data:     payload.Data,
		Filename: payload.Filename,
		MIMEType: payload.MIMEType,
	})
	if err != nil {
		return Result{}, f.fail("upload", err)
	}

	f.store.SetPhase(state.PhaseSaving)
	path, err := f.save(data, payload.Filename)
	if err != nil {
		return Result{}, f.fail("save", err)
	}

	f.store.Complete(data, path)
	f.logger.Info("route generated",
		zap.String("endpoint", base),
		zap.String("filename", payload.Filename),
		zap.Int("upload_bytes", len(payload.Data)),
		zap.Int("result_bytes", len(data)),
		zap.String("path", path),
	)
	return Result{Payload: payload, Image: data, Path: path}, nil
}

func (f *Flow) fail(stage string, err error) error {
	f.store.Fail(FailureMessage(err), err)
	f.logger.Warn("route generation failed", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%s: %w", stage, err)
}

func (f *Flow) save(data []byte, uploadName string) (string, error) {
	if strings.TrimSpace(f.outputDir) == "" {
		return "", nil
	}
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(uploadName), filepath.Ext(uploadName)) + ".png"
	path := filepath.Join(f.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save route image: %w", err)
	}
	return path, nil
}

// Describe returns the user-facing text for any error a run can produce.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var ce *capture.Error
	if errors.As(err, &ce) {
		return ce.Kind.Message()
	}
	return gateway.Message(err)
}

// FailureMessage formats err the way failed runs are reported.
func FailureMessage(err error) string {
	return FailurePrefix + Describe(err)
}
