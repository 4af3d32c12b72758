package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay is how long a new frame's size must stay unchanged before it
// is read.
var settleDelay = 100 * time.Millisecond

// FolderCamera treats a directory as a tethered camera: each capture waits
// for the next still written into the active directory. Tethering tools
// should write frames atomically (write then rename) where they can.
type FolderCamera struct {
	logger *zap.Logger

	mu      sync.Mutex
	dirs    map[Position]string
	pos     Position
	watcher *fsnotify.Watcher
	frames  chan string
}

// NewFolderCamera builds a FolderCamera. front may be empty.
func NewFolderCamera(back, front string, logger *zap.Logger) *FolderCamera {
	if logger == nil {
		logger = zap.NewNop()
	}
	dirs := map[Position]string{}
	if d := strings.TrimSpace(back); d != "" {
		dirs[Back] = d
	}
	if d := strings.TrimSpace(front); d != "" {
		dirs[Front] = d
	}
	return &FolderCamera{logger: logger, dirs: dirs}
}

func (c *FolderCamera) StartSession(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}
	dir, ok := c.dirs[c.pos]
	if !ok {
		return newError(KindInput, fmt.Errorf("%w: no %s directory configured", ErrNoInput, c.pos))
	}
	if err := checkDir(dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return newError(KindInput, fmt.Errorf("create watcher: %w", err))
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return classifyFSError(dir, err)
	}
	c.watcher = watcher
	c.frames = make(chan string, 1)
	go c.watch(watcher, c.frames)
	c.logger.Info("watching for frames", zap.String("dir", dir), zap.Stringer("camera", c.pos))
	return nil
}

func (c *FolderCamera) StopSession(context.Context) error {
	c.mu.Lock()
	watcher := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if watcher == nil {
		return nil
	}
	if err := watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (c *FolderCamera) SwitchCamera(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.pos.opposite()
	dir, ok := c.dirs[next]
	if !ok {
		return newError(KindInput, fmt.Errorf("%w: no %s directory configured", ErrNoInput, next))
	}
	current := c.dirs[c.pos]
	// Both positions may share one folder; its watch must stay.
	if c.watcher != nil && filepath.Clean(dir) != filepath.Clean(current) {
		if err := checkDir(dir); err != nil {
			return err
		}
		if err := c.watcher.Add(dir); err != nil {
			return classifyFSError(dir, err)
		}
		if err := c.watcher.Remove(current); err != nil {
			_ = c.watcher.Remove(dir)
			return newError(KindInput, fmt.Errorf("stop watching %s: %w", current, err))
		}
	}
	c.pos = next
	return nil
}

// CaptureStill waits for the next frame written after the call begins.
func (c *FolderCamera) CaptureStill(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	frames := c.frames
	running := c.watcher != nil
	c.mu.Unlock()
	if !running {
		return nil, newError(KindInput, ErrNotRunning)
	}

	// Drop frames that landed before this capture was requested.
	select {
	case <-frames:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil, newError(KindCapture, fmt.Errorf("waiting for frame: %w", ctx.Err()))
		case path, ok := <-frames:
			if !ok {
				return nil, newError(KindInput, ErrNotRunning)
			}
			if err := settle(ctx, path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, classifyFSError(path, err)
			}
			c.logger.Debug("frame captured", zap.String("path", path), zap.Int("bytes", len(data)))
			return data, nil
		}
	}
}

func (c *FolderCamera) watch(w *fsnotify.Watcher, frames chan string) {
	defer close(frames)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isStill(ev.Name) || !c.inActiveDir(ev.Name) {
				continue
			}
			// Keep only the newest pending frame.
			select {
			case <-frames:
			default:
			}
			frames <- ev.Name
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("frame watcher error", zap.Error(err))
		}
	}
}

func (c *FolderCamera) inActiveDir(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filepath.Dir(path) == filepath.Clean(c.dirs[c.pos])
}

// settle waits until the file size stops changing.
func settle(ctx context.Context, path string) error {
	prev := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() > 0 && info.Size() == prev {
			return nil
		}
		prev = info.Size()
		select {
		case <-ctx.Done():
			return newError(KindCapture, fmt.Errorf("waiting for frame: %w", ctx.Err()))
		case <-time.After(settleDelay):
		}
	}
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return classifyFSError(dir, err)
	}
	if !info.IsDir() {
		return newError(KindInput, fmt.Errorf("%w: %s is not a directory", ErrNoInput, dir))
	}
	return nil
}
