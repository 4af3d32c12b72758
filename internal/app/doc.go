// Package app provides the orchestration layer for crux.
//
// # Overview
//
// This package wires configuration, the endpoint resolver, the API client
// and the capture pipeline together, and runs route generation as one
// sequenced flow. It is the composition root used by every command.
//
// # Components
//
//   - app.go: Options, Build and the Runtime it returns
//   - flow.go: Flow.Run and failure descriptions
//   - poller.go: background backend health checks for the interactive view
//
// # Endpoint Layers
//
// Build stacks the resolver layers highest first:
//
//  1. --backend / --api-key flags
//  2. CRUX_BACKEND_URL / CRUX_API_KEY (a .env file is loaded first if present)
//  3. prefs override (~/.config/crux/prefs.toml)
//  4. config [backend] base_url and api_key
//  5. config [backend] host and port
//  6. http://127.0.0.1:8000
//
// Layers are read on every request, so `crux set-backend` or a prefs write
// from the UI applies to the next call without rebuilding anything.
//
// # Run Sequence
//
//	┌──────────────┐
//	│  Flow.Run()  │
//	└──────┬───────┘
//	       ├─────> Capture()          still → JPEG within budget
//	       ├─────> Probe()            GET /health, 5s
//	       │         └─ failure: stop here, nothing is uploaded
//	       ├─────> GenerateBoulder()  multipart POST, 120s
//	       └─────> save               <output_dir>/<name>.png
//
// Each step writes its phase to the state.Store. A failure at any step is
// recorded as "Route generation failed: <message>", where the message is
// the capture or gateway error's user-facing text.
//
// # Concurrency
//
// Only one run may be in flight per Flow. A second Run returns a busy
// capture error and leaves the store untouched. The pipeline keeps its own
// guard as well.
//
// # Health Polling
//
// StartHealthPoller probes the backend in the background so the
// interactive view can show whether it is reachable before the user
// shoots. The interval doubles per consecutive failure, capped at one
// minute. It only reports status; it never retries a run.
package app
