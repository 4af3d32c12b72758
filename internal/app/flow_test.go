package app

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/endpoint"
	"github.com/five82/crux/internal/gateway"
	"github.com/five82/crux/internal/state"
)

const stubEndpoint = "http://10.0.0.2:8000"

type stubCapturer struct {
	payload capture.Payload
	err     error
	preview image.Image
	entered chan struct{}
	release chan struct{}
}

func (s *stubCapturer) Capture(ctx context.Context) (capture.Payload, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return capture.Payload{}, ctx.Err()
		}
	}
	return s.payload, s.err
}

func (s *stubCapturer) Preview() image.Image { return s.preview }

type stubBackend struct {
	mu       sync.Mutex
	probeErr error
	genErr   error
	result   []byte
	calls    []string
}

func (s *stubBackend) Endpoint() endpoint.Endpoint {
	u, _ := endpoint.Parse(stubEndpoint)
	return endpoint.Endpoint{URL: u}
}

func (s *stubBackend) Probe(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "probe")
	return s.probeErr
}

func (s *stubBackend) GenerateBoulder(_ context.Context, img gateway.Image) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "generate:"+img.Filename)
	return s.result, s.genErr
}

func (s *stubBackend) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func samplePayload() capture.Payload {
	return capture.Payload{
		Data:     []byte("jpeg"),
		MIMEType: capture.MIMEType,
		Filename: "route-abc.jpg",
		Width:    1216,
		Height:   608,
		Quality:  85,
	}
}

func TestFlow_RunSavesGeneratedRoute(t *testing.T) {
	out := filepath.Join(t.TempDir(), "routes")
	preview := image.NewRGBA(image.Rect(0, 0, 2, 1))
	capt := &stubCapturer{payload: samplePayload(), preview: preview}
	backend := &stubBackend{result: []byte("\x89PNG")}
	store := &state.Store{}

	flow := NewFlow(capt, backend, store, out, zaptest.NewLogger(t))
	res, err := flow.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := backend.callLog(); len(got) != 2 || got[0] != "probe" || got[1] != "generate:route-abc.jpg" {
		t.Fatalf("calls = %v, want probe then generate", got)
	}
	wantPath := filepath.Join(out, "route-abc.png")
	if res.Path != wantPath {
		t.Fatalf("Path = %q, want %q", res.Path, wantPath)
	}
	saved, err := os.ReadFile(wantPath)
	if err != nil || string(saved) != "\x89PNG" {
		t.Fatalf("saved = %q, %v", saved, err)
	}

	snap := store.Snapshot()
	if snap.Phase != state.PhaseDone || snap.ResultPath != wantPath || string(snap.Result) != "\x89PNG" {
		t.Fatalf("snapshot = %#v", snap)
	}
	if snap.Payload.Width != 1216 || snap.Payload.Bytes != 4 || snap.Preview != preview {
		t.Fatalf("payload info = %#v", snap.Payload)
	}
	if !snap.Backend.Reachable || snap.Backend.Endpoint != stubEndpoint {
		t.Fatalf("backend = %#v", snap.Backend)
	}
}

func TestFlow_ProbeFailureSkipsUpload(t *testing.T) {
	backend := &stubBackend{probeErr: &gateway.Error{Kind: gateway.KindTimeout, Message: "Timed out reaching 10.0.0.2:8000."}}
	store := &state.Store{}
	flow := NewFlow(&stubCapturer{payload: samplePayload()}, backend, store, "", zaptest.NewLogger(t))

	_, err := flow.Run(context.Background())
	if kind, ok := gateway.KindOf(err); !ok || kind != gateway.KindTimeout {
		t.Fatalf("err = %v, want gateway timeout", err)
	}
	if got := backend.callLog(); len(got) != 1 || got[0] != "probe" {
		t.Fatalf("calls = %v, want probe only", got)
	}
	snap := store.Snapshot()
	if snap.Phase != state.PhaseFailed || snap.Message != "Route generation failed: Timed out reaching 10.0.0.2:8000." {
		t.Fatalf("snapshot phase=%v message=%q", snap.Phase, snap.Message)
	}
	if snap.Backend.Reachable || snap.Backend.Failures != 1 {
		t.Fatalf("backend = %#v, want one failed check", snap.Backend)
	}
}

func TestFlow_UnreachableBackendNeverUploads(t *testing.T) {
	var uploads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == gateway.GenerateBoulderPath {
			uploads.Add(1)
		}
	}))
	addr := server.URL
	server.Close()

	client := gateway.NewClient(endpoint.NewResolver(endpoint.Static{URL: addr}), gateway.WithTimeouts(0, 0, time.Second))
	store := &state.Store{}
	flow := NewFlow(&stubCapturer{payload: samplePayload()}, client, store, t.TempDir(), zaptest.NewLogger(t))

	_, err := flow.Run(context.Background())
	if kind, ok := gateway.KindOf(err); !ok || !kind.Connectivity() {
		t.Fatalf("err = %v, want connectivity failure", err)
	}
	if uploads.Load() != 0 {
		t.Fatalf("uploads = %d, want 0", uploads.Load())
	}
	if msg := store.Snapshot().Message; !strings.HasPrefix(msg, FailurePrefix) || !strings.Contains(msg, "refused") {
		t.Fatalf("Message = %q, want refused failure", msg)
	}
}

func TestFlow_UploadStatusErrorSurfacesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case gateway.HealthPath:
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case gateway.GenerateBoulderPath:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"No marker found in image"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := gateway.NewClient(endpoint.NewResolver(endpoint.Static{URL: server.URL}))
	store := &state.Store{}
	out := t.TempDir()
	flow := NewFlow(&stubCapturer{payload: samplePayload()}, client, store, out, zaptest.NewLogger(t))

	if _, err := flow.Run(context.Background()); err == nil {
		t.Fatalf("Run returned nil error")
	}
	if msg := store.Snapshot().Message; msg != "Route generation failed: No marker found in image" {
		t.Fatalf("Message = %q", msg)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("output dir has %d entries, want none", len(entries))
	}
}

func TestFlow_CaptureFailureNeverContactsBackend(t *testing.T) {
	backend := &stubBackend{}
	store := &state.Store{}
	capt := &stubCapturer{err: &capture.Error{Kind: capture.KindUnauthorized, Err: capture.ErrUnauthorized}}
	flow := NewFlow(capt, backend, store, "", zaptest.NewLogger(t))

	_, err := flow.Run(context.Background())
	if !errors.Is(err, capture.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if got := backend.callLog(); len(got) != 0 {
		t.Fatalf("calls = %v, want none", got)
	}
	if msg := store.Snapshot().Message; msg != "Route generation failed: Camera access is not authorized" {
		t.Fatalf("Message = %q", msg)
	}
}

func TestFlow_RejectsConcurrentRun(t *testing.T) {
	capt := &stubCapturer{
		payload: samplePayload(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	backend := &stubBackend{result: []byte("png")}
	store := &state.Store{}
	flow := NewFlow(capt, backend, store, "", zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		_, err := flow.Run(context.Background())
		done <- err
	}()
	<-capt.entered

	_, err := flow.Run(context.Background())
	if !errors.Is(err, capture.ErrBusy) {
		t.Fatalf("second Run err = %v, want busy", err)
	}
	if got := store.Snapshot().Phase; got != state.PhaseCapturing {
		t.Fatalf("Phase = %v, want in-flight run untouched", got)
	}

	close(capt.release)
	if err := <-done; err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if got := store.Snapshot().Phase; got != state.PhaseDone {
		t.Fatalf("Phase = %v, want done", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"capture", &capture.Error{Kind: capture.KindProcessing, Err: capture.ErrBudgetExceeded}, "Failed to process photo"},
		{"wrapped gateway", errors.Join(errors.New("ctx"), &gateway.Error{Kind: gateway.KindStatus, Status: 422, Message: "invalid grade"}), "invalid grade"},
		{"plain", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Fatalf("Describe = %q, want %q", got, tt.want)
			}
		})
	}
}
