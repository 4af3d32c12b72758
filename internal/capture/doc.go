// Package capture turns a camera still into an upload-ready JPEG.
//
// # Overview
//
// A Pipeline owns one Camera and walks each capture through a small state
// machine:
//
//	Idle → Capturing → Processing → Encoding → Done
//	                 ↘           ↘          ↘ Failed
//
// Capturing waits on Camera.CaptureStill. Processing decodes the still,
// applies its EXIF orientation and downscales it to Settings.MaxWidth
// (aspect ratio kept, never upscaled). Encoding writes JPEG starting at
// Settings.InitialQuality and steps down by Settings.QualityStep until the
// payload fits Settings.MaxBytes. If it still does not fit at
// Settings.FloorQuality the capture fails with ErrBudgetExceeded; an
// oversized or partial payload is never returned.
//
// # Concurrency
//
// Only one capture may be in flight. A second Capture call while one is
// running fails immediately with a KindBusy error. Done and Failed are
// terminal for that attempt only; the next Capture call starts over.
// Nothing is retried automatically.
//
// # Cameras
//
//   - FileCamera: serves an image already on disk (one per position)
//   - FolderCamera: waits for the next still written into a watched
//     directory, for tethered shooting
//
// Tests substitute their own Camera implementation.
package capture
