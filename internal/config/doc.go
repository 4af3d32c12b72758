// Package config loads crux's bundled TOML configuration.
//
// # Overview
//
// The bundled config is the lowest configured layer of endpoint resolution.
// It also carries capture constraints, tethered camera directories and
// per-operation timeouts.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/crux/config.toml
//  3. If the file doesn't exist, use defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	[backend]
//	base_url = "http://192.168.1.20:8000"  # wins over host/port
//	host = "192.168.1.20"
//	port = 8000                            # string or integer
//	api_key = ""
//
//	[capture]
//	max_width = 1216
//	max_bytes = 4194304
//	initial_quality = 85
//	floor_quality = 25
//	quality_step = 10
//	camera_dir = "~/Pictures/tether"       # enables the folder camera
//	front_dir = ""
//
//	[timeouts]
//	request = "30s"
//	upload = "2m"
//	probe = "5s"
//
// Every key is optional. Tilde expansion is applied to the config path and
// to camera directories.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Invalid durations or capture settings
//
// Missing config files are NOT an error.
//
// # Design
//
// Config is read once at startup and returned by value. Runtime overrides
// live in the prefs package, not here.
package config
