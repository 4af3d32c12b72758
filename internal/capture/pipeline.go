package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the pipeline's position in the per-capture state machine.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateProcessing
	StateEncoding
	StateDone
	StateFailed
	// StateSwitching holds the camera while it flips position.
	StateSwitching
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StateProcessing:
		return "processing"
	case StateEncoding:
		return "encoding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateSwitching:
		return "switching"
	default:
		return "idle"
	}
}

// InFlight reports whether a capture or a camera switch currently owns the
// camera.
func (s State) InFlight() bool {
	return s == StateCapturing || s == StateProcessing || s == StateEncoding || s == StateSwitching
}

// Payload is the upload-ready result of one capture.
type Payload struct {
	Data     []byte
	MIMEType string
	Filename string
	Width    int
	Height   int
	Quality  int
}

// Pipeline turns one camera still into a size-bounded JPEG payload.
// Only one capture may be in flight at a time.
type Pipeline struct {
	cam      Camera
	settings Settings
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	preview image.Image
}

// NewPipeline validates settings and binds them to cam.
func NewPipeline(cam Camera, settings Settings, logger *zap.Logger) (*Pipeline, error) {
	if cam == nil {
		return nil, fmt.Errorf("camera is nil")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capture settings: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cam: cam, settings: settings, logger: logger}, nil
}

// Settings returns the constraints every capture is held to.
func (p *Pipeline) Settings() Settings { return p.settings }

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Preview returns the decoded form of the last successful payload, or nil.
func (p *Pipeline) Preview() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preview
}

// Start starts the camera session.
func (p *Pipeline) Start(ctx context.Context) error {
	if err := p.cam.StartSession(ctx); err != nil {
		return asError(err, KindInput)
	}
	p.logger.Debug("camera session started")
	return nil
}

// Stop stops the camera session.
func (p *Pipeline) Stop(ctx context.Context) error {
	if err := p.cam.StopSession(ctx); err != nil {
		return asError(err, KindInput)
	}
	p.logger.Debug("camera session stopped")
	return nil
}

// SwitchCamera flips between back and front cameras. It is rejected while a
// capture is in flight, and captures are rejected until it returns.
func (p *Pipeline) SwitchCamera(ctx context.Context) error {
	p.mu.Lock()
	if p.state.InFlight() {
		p.mu.Unlock()
		return newError(KindBusy, ErrBusy)
	}
	prev := p.state
	p.state = StateSwitching
	p.mu.Unlock()
	defer p.setState(prev)

	if err := p.cam.SwitchCamera(ctx); err != nil {
		return asError(err, KindInput)
	}
	return nil
}

// Capture takes one still and prepares it for upload. A failed capture is
// never retried; callers invoke Capture again.
func (p *Pipeline) Capture(ctx context.Context) (Payload, error) {
	if err := p.begin(); err != nil {
		return Payload{}, err
	}

	started := time.Now()
	payload, preview, err := p.run(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateFailed
		p.logger.Warn("capture failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return Payload{}, err
	}
	p.state = StateDone
	p.preview = preview
	p.logger.Info("capture prepared",
		zap.String("filename", payload.Filename),
		zap.Int("bytes", len(payload.Data)),
		zap.Int("width", payload.Width),
		zap.Int("height", payload.Height),
		zap.Int("quality", payload.Quality),
		zap.Duration("elapsed", time.Since(started)),
	)
	return payload, nil
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.InFlight() {
		return newError(KindBusy, ErrBusy)
	}
	p.state = StateCapturing
	return nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) run(ctx context.Context) (Payload, image.Image, error) {
	raw, err := p.cam.CaptureStill(ctx)
	if err != nil {
		return Payload{}, nil, asError(err, KindCapture)
	}

	p.setState(StateProcessing)
	img, err := decode(raw)
	if err != nil {
		return Payload{}, nil, newError(KindProcessing, err)
	}
	img = fitWidth(img, p.settings.MaxWidth)

	p.setState(StateEncoding)
	data, quality, err := encodeToBudget(img, p.settings)
	if err != nil {
		return Payload{}, nil, newError(KindProcessing, err)
	}

	preview, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Payload{}, nil, newError(KindProcessing, fmt.Errorf("decode preview: %w", err))
	}

	b := img.Bounds()
	return Payload{
		Data:     data,
		MIMEType: MIMEType,
		Filename: NewFilename(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Quality:  quality,
	}, preview, nil
}

// NewFilename returns a unique upload filename for a JPEG still.
func NewFilename() string {
	return "route-" + uuid.NewString() + ".jpg"
}
