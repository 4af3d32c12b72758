// Package ui provides the Bubble Tea shoot view for crux.
//
// # Overview
//
// The shoot view is a single screen: a header with the resolved backend
// endpoint and its reachability, a status panel with the current phase,
// the captured payload and the outcome of the last run, and a half-block
// thumbnail of the last captured still.
//
// # Files
//
//   - model.go: Model, Options, Update and the Bubble Tea commands
//   - view.go: rendering of the header, status panel, preview and help
//   - keys.go: key bindings for bubbles/help
//   - theme.go: color themes and phase badge styles
//   - style_helpers.go: background-preserving render helpers and the thumbnail
//
// # Event Flow
//
//  1. Run() starts the program with the alternate screen.
//  2. A tick re-reads state.Store so progress from app.Flow shows up live.
//  3. Space starts a run in a command goroutine. Presses while a run is in
//     flight are ignored.
//  4. runDoneMsg clears the running flag; the store already holds the
//     outcome and failure message.
//  5. Context cancellation stops the program cleanly.
//
// # Themes
//
// T cycles themes. The chosen name is persisted through the prefs store
// so it survives restarts without touching the backend override.
package ui
