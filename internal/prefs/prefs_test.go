package prefs

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/five82/crux/internal/endpoint"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != (Prefs{}) {
		t.Fatalf("Prefs = %#v, want empty", p)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "crux")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("backend_url = \" 192.168.1.5:9000 \"\napi_key = \"k\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.BackendURL != "192.168.1.5:9000" || p.APIKey != "k" {
		t.Fatalf("Prefs = %#v", p)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(prefsFile, Prefs{BackendURL: "http://10.0.0.2:8000"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.BackendURL != "http://10.0.0.2:8000" {
		t.Fatalf("BackendURL = %q", loaded.BackendURL)
	}

	info, err := os.Stat(prefsFile)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != (Prefs{}) {
		t.Fatalf("Prefs = %#v, want empty", p)
	}
}

func TestStore_OverrideAppliesOnNextResolve(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	store := Open(prefsFile)
	resolver := endpoint.NewResolver(store, endpoint.Static{URL: "10.0.0.1"})

	if got := resolver.Resolve().BaseURL(); got != "http://10.0.0.1" {
		t.Fatalf("before override = %q", got)
	}

	if err := store.SetBackend("192.168.1.5:9000"); err != nil {
		t.Fatalf("SetBackend returned error: %v", err)
	}
	if got := resolver.Resolve().BaseURL(); got != "http://192.168.1.5:9000" {
		t.Fatalf("after override = %q, want http://192.168.1.5:9000", got)
	}

	reopened := Open(prefsFile)
	if reopened.BaseURL() != "192.168.1.5:9000" {
		t.Fatalf("persisted BaseURL = %q", reopened.BaseURL())
	}

	if err := store.SetBackend(""); err != nil {
		t.Fatalf("SetBackend(\"\") returned error: %v", err)
	}
	if got := resolver.Resolve().BaseURL(); got != "http://10.0.0.1" {
		t.Fatalf("after clear = %q", got)
	}
}

func TestStore_RejectsUnresolvableBackend(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "prefs.toml"))
	if err := store.SetBackend("http://"); err == nil {
		t.Fatalf("SetBackend returned nil error for address without host")
	}
	if store.BaseURL() != "" {
		t.Fatalf("BaseURL = %q, want unchanged", store.BaseURL())
	}
}

func TestStore_SaveFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	store := Open(filepath.Join(blocker, "prefs.toml"))
	if err := store.SetAPIKey("k"); err == nil {
		t.Fatalf("SetAPIKey returned nil error with unwritable path")
	}
	if store.APIKey() != "" {
		t.Fatalf("APIKey = %q, want unchanged after failed save", store.APIKey())
	}
}

func TestStore_ConcurrentReadsAndWrites(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "prefs.toml"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = store.BaseURL()
				_ = store.APIKey()
			}
		}()
	}
	for _, addr := range []string{"10.0.0.1", "10.0.0.2", ""} {
		if err := store.SetBackend(addr); err != nil {
			t.Fatalf("SetBackend(%q): %v", addr, err)
		}
	}
	wg.Wait()

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Prefs() != (Prefs{}) {
		t.Fatalf("Prefs = %#v, want empty after Clear", store.Prefs())
	}
}

func TestStore_SetThemeKeepsOverrides(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	store := Open(prefsFile)
	if err := store.SetBackend("10.0.0.3"); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}
	if err := store.SetTheme(" Slate "); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" || loaded.BackendURL != "10.0.0.3" {
		t.Fatalf("Prefs = %#v, want theme and backend persisted", loaded)
	}
}
