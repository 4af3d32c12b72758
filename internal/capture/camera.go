package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Camera is the capability the pipeline needs from a capture device.
// CaptureStill blocks until the device delivers one still or fails.
type Camera interface {
	StartSession(ctx context.Context) error
	StopSession(ctx context.Context) error
	SwitchCamera(ctx context.Context) error
	CaptureStill(ctx context.Context) ([]byte, error)
}

// Position selects the back or front camera.
type Position int

const (
	Back Position = iota
	Front
)

func (p Position) String() string {
	if p == Front {
		return "front"
	}
	return "back"
}

func (p Position) opposite() Position {
	if p == Front {
		return Back
	}
	return Front
}

var (
	_ Camera = (*FileCamera)(nil)
	_ Camera = (*FolderCamera)(nil)
)

// FileCamera serves a fixed image file per position. It backs one-shot
// uploads of photos already on disk.
type FileCamera struct {
	mu      sync.Mutex
	paths   map[Position]string
	pos     Position
	running bool
}

// NewFileCamera builds a FileCamera. front may be empty.
func NewFileCamera(back, front string) *FileCamera {
	paths := map[Position]string{}
	if p := strings.TrimSpace(back); p != "" {
		paths[Back] = p
	}
	if p := strings.TrimSpace(front); p != "" {
		paths[Front] = p
	}
	return &FileCamera{paths: paths}
}

func (c *FileCamera) StartSession(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.paths[c.pos]
	if !ok {
		return newError(KindInput, fmt.Errorf("%w: no %s image configured", ErrNoInput, c.pos))
	}
	if err := checkReadable(path); err != nil {
		return err
	}
	c.running = true
	return nil
}

func (c *FileCamera) StopSession(context.Context) error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	return nil
}

func (c *FileCamera) SwitchCamera(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.pos.opposite()
	path, ok := c.paths[next]
	if !ok {
		return newError(KindInput, fmt.Errorf("%w: no %s image configured", ErrNoInput, next))
	}
	if c.running {
		if err := checkReadable(path); err != nil {
			return err
		}
	}
	c.pos = next
	return nil
}

func (c *FileCamera) CaptureStill(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	running, path := c.running, c.paths[c.pos]
	c.mu.Unlock()
	if !running {
		return nil, newError(KindInput, ErrNotRunning)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCapture, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyFSError(path, err)
	}
	return data, nil
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return classifyFSError(path, err)
	}
	_ = f.Close()
	return nil
}

func classifyFSError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return newError(KindUnauthorized, fmt.Errorf("%w: %s", ErrUnauthorized, path))
	case errors.Is(err, fs.ErrNotExist):
		return newError(KindInput, fmt.Errorf("%w: %s does not exist", ErrNoInput, path))
	default:
		return newError(KindCapture, fmt.Errorf("read %s: %w", path, err))
	}
}

var stillExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

func isStill(path string) bool {
	_, ok := stillExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
