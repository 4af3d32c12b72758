package state

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// Phase is where the current route generation stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseProbing
	PhaseUploading
	PhaseSaving
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseProbing:
		return "checking backend"
	case PhaseUploading:
		return "uploading"
	case PhaseSaving:
		return "saving"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Busy reports whether a generation is in flight.
func (p Phase) Busy() bool {
	return p > PhaseIdle && p < PhaseDone
}

// PayloadInfo describes the image that was (or is being) uploaded.
type PayloadInfo struct {
	Filename string
	Width    int
	Height   int
	Quality  int
	Bytes    int
}

// BackendStatus is the result of the most recent reachability check.
type BackendStatus struct {
	Endpoint  string
	Checked   bool
	Reachable bool
	Message   string
	CheckedAt time.Time
	Failures  int // consecutive failed checks
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Phase               Phase
	Backend             BackendStatus
	Payload             PayloadInfo
	HasPayload          bool
	Preview             image.Image // shared, never mutated
	Result              []byte
	ResultPath          string
	Message             string // user-facing text for the last failure
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has failed several runs in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin starts a new run. The previous result and payload are kept until
// replaced so the UI can keep showing them.
func (s *Store) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Phase = PhaseCapturing
	s.snapshot.Message = ""
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
}

// SetPhase records progress.
func (s *Store) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Phase = p
	s.snapshot.LastUpdated = time.Now()
}

// SetPayload records the captured image.
func (s *Store) SetPayload(info PayloadInfo, preview image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Payload = info
	s.snapshot.HasPayload = true
	s.snapshot.Preview = preview
	s.snapshot.LastUpdated = time.Now()
}

// Complete records a successful run.
func (s *Store) Complete(result []byte, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Phase = PhaseDone
	s.snapshot.Result = cloneBytes(result)
	s.snapshot.ResultPath = path
	s.snapshot.Message = ""
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a failed run. Previous results are kept but the error is
// recorded for visibility.
func (s *Store) Fail(message string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Phase = PhaseFailed
	s.snapshot.Message = message
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// SetBackend records a reachability check. message is ignored when the
// backend was reachable.
func (s *Store) SetBackend(endpoint string, reachable bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &s.snapshot.Backend
	b.Endpoint = endpoint
	b.Checked = true
	b.Reachable = reachable
	b.CheckedAt = time.Now()
	if reachable {
		b.Message = ""
		b.Failures = 0
		return
	}
	b.Message = message
	b.Failures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Result = cloneBytes(s.snapshot.Result)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	return dup
}
