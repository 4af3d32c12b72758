package ui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/crux/internal/app"
	"github.com/five82/crux/internal/state"
)

type stubRunner struct {
	calls atomic.Int32
	err   error
}

func (r *stubRunner) Run(context.Context) (app.Result, error) {
	r.calls.Add(1)
	return app.Result{Path: "/tmp/route.png"}, r.err
}

type stubSwitcher struct{ err error }

func (s stubSwitcher) SwitchCamera(context.Context) error { return s.err }

type recordingSaver struct {
	names []string
	err   error
}

func (s *recordingSaver) SetTheme(name string) error {
	s.names = append(s.names, name)
	return s.err
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyModel(t *testing.T, opts Options) Model {
	t.Helper()
	updated, _ := New(opts).Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := New(Options{}).Update(msg)
		if cmd == nil {
			t.Fatalf("%q returned nil cmd", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q did not quit", msg.String())
		}
	}
}

func TestShootStartsRunAndIgnoresRepeat(t *testing.T) {
	runner := &stubRunner{}
	m := New(Options{Runner: runner})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	if cmd == nil || !m.running {
		t.Fatalf("space did not start a run: running=%v cmd=%v", m.running, cmd != nil)
	}

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	if cmd != nil {
		t.Fatalf("second press while running returned a cmd")
	}

	msg := runCmd(context.Background(), runner)()
	done, ok := msg.(runDoneMsg)
	if !ok {
		t.Fatalf("runCmd returned %T", msg)
	}
	if done.result.Path != "/tmp/route.png" {
		t.Fatalf("result path = %q", done.result.Path)
	}

	updated, _ = m.Update(done)
	m = updated.(Model)
	if m.running {
		t.Fatalf("running still set after runDoneMsg")
	}
	if got := runner.calls.Load(); got != 1 {
		t.Fatalf("runner called %d times, want 1", got)
	}
}

func TestShootIgnoredWhileStoreBusy(t *testing.T) {
	store := &state.Store{}
	store.Begin()
	m := New(Options{Runner: &stubRunner{}, Store: store})

	updated, _ := m.Update(snapshotMsg(store.Snapshot()))
	m = updated.(Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("enter while capturing returned a cmd")
	}
}

func TestRunDoneKeepsError(t *testing.T) {
	m := New(Options{Runner: &stubRunner{}})
	m.running = true

	boom := errors.New("boom")
	updated, _ := m.Update(runDoneMsg{err: boom})
	m = updated.(Model)
	if m.running || !errors.Is(m.lastError, boom) {
		t.Fatalf("running=%v lastError=%v", m.running, m.lastError)
	}
}

func TestSwitchCamera(t *testing.T) {
	m := New(Options{Switcher: stubSwitcher{}})
	_, cmd := m.Update(keyRunes("c"))
	if cmd == nil {
		t.Fatalf("c returned nil cmd")
	}
	updated, _ := m.Update(cmd())
	if got := updated.(Model).notice; got != "Switched camera" {
		t.Fatalf("notice = %q", got)
	}

	m = New(Options{})
	if _, cmd := m.Update(keyRunes("c")); cmd != nil {
		t.Fatalf("c without switcher returned a cmd")
	}
}

func TestCycleThemePersists(t *testing.T) {
	saver := &recordingSaver{}
	m := New(Options{Prefs: saver, ThemeName: "Nightfox"})

	updated, _ := m.Update(keyRunes("T"))
	m = updated.(Model)
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	if len(saver.names) != 1 || saver.names[0] != "Slate" {
		t.Fatalf("saved themes = %v", saver.names)
	}
}

func TestCycleThemeReportsSaveFailure(t *testing.T) {
	saver := &recordingSaver{err: errors.New("write prefs: read-only file system")}
	m := New(Options{Prefs: saver, ThemeName: "Nightfox"})

	updated, _ := m.Update(keyRunes("T"))
	m = updated.(Model)
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate applied even when saving fails", m.theme.Name)
	}
	if !strings.Contains(m.notice, "read-only file system") {
		t.Fatalf("notice = %q, want save error", m.notice)
	}
}

func TestHelpToggle(t *testing.T) {
	m := readyModel(t, Options{})

	updated, _ := m.Update(keyRunes("?"))
	m = updated.(Model)
	if !m.showHelp {
		t.Fatalf("? did not open help")
	}
	if !strings.Contains(m.View(), "Capture and generate") {
		t.Fatalf("help view missing bindings")
	}

	updated, cmd := m.Update(keyRunes("q"))
	m = updated.(Model)
	if m.showHelp || cmd != nil {
		t.Fatalf("key while help open should only close help")
	}
}

func TestViewShowsEndpointAndFailure(t *testing.T) {
	store := &state.Store{}
	store.Begin()
	store.Fail("Route generation failed: No marker found in image", errors.New("400"))

	m := New(Options{Store: store, Endpoint: func() string { return "http://10.0.0.5:8000" }})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated, _ = updated.Update(snapshotMsg(store.Snapshot()))
	view := updated.View()

	for _, want := range []string{"CRUX", "http://10.0.0.5:8000", "failed", "No marker found in image"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderThumbnail(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}

	out := renderThumbnail(img, 20)
	if lines := strings.Count(out, "\n") + 1; lines != 5 {
		t.Fatalf("thumbnail lines = %d, want 5", lines)
	}
	if renderThumbnail(nil, 20) != "" || renderThumbnail(img, 1) != "" {
		t.Fatalf("expected empty thumbnail for nil image or tiny width")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		3 * 1024 * 1024: "3.00 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
