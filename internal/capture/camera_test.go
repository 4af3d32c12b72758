package capture

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileCamera_ServesActivePosition(t *testing.T) {
	dir := t.TempDir()
	back := filepath.Join(dir, "back.png")
	front := filepath.Join(dir, "front.png")
	require.NoError(t, os.WriteFile(back, []byte("back"), 0o600))
	require.NoError(t, os.WriteFile(front, []byte("front"), 0o600))

	cam := NewFileCamera(back, front)
	ctx := context.Background()

	_, err := cam.CaptureStill(ctx)
	require.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, cam.StartSession(ctx))
	data, err := cam.CaptureStill(ctx)
	require.NoError(t, err)
	assert.Equal(t, "back", string(data))

	require.NoError(t, cam.SwitchCamera(ctx))
	data, err = cam.CaptureStill(ctx)
	require.NoError(t, err)
	assert.Equal(t, "front", string(data))

	require.NoError(t, cam.StopSession(ctx))
	_, err = cam.CaptureStill(ctx)
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestFileCamera_MissingFileIsWiringError(t *testing.T) {
	cam := NewFileCamera(filepath.Join(t.TempDir(), "missing.jpg"), "")

	err := cam.StartSession(context.Background())
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindInput, ce.Kind)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestFileCamera_SwitchWithoutFrontFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "back.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	cam := NewFileCamera(path, "")

	require.NoError(t, cam.StartSession(context.Background()))
	err := cam.SwitchCamera(context.Background())
	require.ErrorIs(t, err, ErrNoInput)

	data, err := cam.CaptureStill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestFolderCamera_WaitsForNextFrame(t *testing.T) {
	old := settleDelay
	settleDelay = 10 * time.Millisecond
	t.Cleanup(func() { settleDelay = old })

	dir := t.TempDir()
	staging := t.TempDir()
	cam := NewFolderCamera(dir, "", zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, cam.StartSession(ctx))
	t.Cleanup(func() { _ = cam.StopSession(context.Background()) })

	want := encodePNG(t, solidImage(8, 8, color.White))
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600)
		tmp := filepath.Join(staging, "frame.png")
		_ = os.WriteFile(tmp, want, 0o600)
		_ = os.Rename(tmp, filepath.Join(dir, "frame.png"))
	}()

	got, err := cam.CaptureStill(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFolderCamera_CaptureHonoursContext(t *testing.T) {
	cam := NewFolderCamera(t.TempDir(), "", nil)
	require.NoError(t, cam.StartSession(context.Background()))
	t.Cleanup(func() { _ = cam.StopSession(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cam.CaptureStill(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindCapture, ce.Kind)
}

func TestFolderCamera_RejectsMissingDirectory(t *testing.T) {
	cam := NewFolderCamera(filepath.Join(t.TempDir(), "nope"), "", nil)
	err := cam.StartSession(context.Background())
	require.ErrorIs(t, err, ErrNoInput)

	_, err = cam.CaptureStill(context.Background())
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestFolderCamera_SwitchWatchesOtherDirectory(t *testing.T) {
	old := settleDelay
	settleDelay = 10 * time.Millisecond
	t.Cleanup(func() { settleDelay = old })

	tests := []struct {
		name     string
		sameDir  bool
		switches int
	}{
		{name: "separate directories", switches: 1},
		{name: "shared directory", sameDir: true, switches: 1},
		{name: "shared directory switched back", sameDir: true, switches: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back, front, staging := t.TempDir(), t.TempDir(), t.TempDir()
			if tt.sameDir {
				front = back
			}
			target := front
			if tt.switches%2 == 0 {
				target = back
			}
			cam := NewFolderCamera(back, front, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			t.Cleanup(cancel)
			require.NoError(t, cam.StartSession(ctx))
			t.Cleanup(func() { _ = cam.StopSession(context.Background()) })
			for i := 0; i < tt.switches; i++ {
				require.NoError(t, cam.SwitchCamera(ctx))
			}

			go func() {
				time.Sleep(200 * time.Millisecond)
				tmp := filepath.Join(staging, "f.jpg")
				_ = os.WriteFile(tmp, []byte("switched-frame"), 0o600)
				_ = os.Rename(tmp, filepath.Join(target, "f.jpg"))
			}()

			got, err := cam.CaptureStill(ctx)
			require.NoError(t, err)
			assert.Equal(t, "switched-frame", string(got))
		})
	}
}
