// Package state provides thread-safe state shared between a route
// generation run and whatever is displaying it.
//
// # Overview
//
// A run (see the app package) writes progress into a Store as it goes. The
// terminal UI and the headless command read Snapshots. Neither side holds
// the lock during I/O or rendering.
//
//	Flow goroutine:                 UI:
//	┌──────────────────┐           ┌──────────────────┐
//	│ store.Begin()    │           │                  │
//	│ store.SetPhase() │──────────→│ store.Snapshot() │
//	│ store.Complete() │  (mutex)  │      ↓           │
//	│   or Fail()      │           │  render          │
//	└──────────────────┘           └──────────────────┘
//
// # Update Semantics
//
//   - Begin: phase capturing, previous failure cleared, previous result kept
//   - SetPhase / SetPayload: progress
//   - Complete: phase done, result replaced, failure counter reset
//   - Fail: phase failed, message and error recorded, result kept
//
// Keeping the last result on failure lets the UI go on showing the most
// recent route while reporting why the latest attempt failed.
//
// # Defensive Copying
//
// Snapshot clones the result bytes and wraps the stored error so callers
// cannot mutate shared state. The preview image is shared; nothing writes
// to it after it is decoded.
//
// # Offline Detection
//
// IsOffline reports two or more consecutive failed runs. The UI uses it to
// suggest checking the backend address rather than retrying.
//
// The zero Store is ready to use.
package state
