package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/crux/internal/app"
	"github.com/five82/crux/internal/state"
)

// Runner performs one route generation.
type Runner interface {
	Run(ctx context.Context) (app.Result, error)
}

// Switcher toggles between back and front cameras.
type Switcher interface {
	SwitchCamera(ctx context.Context) error
}

// ThemeSaver persists the chosen theme.
type ThemeSaver interface {
	SetTheme(name string) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Runner    Runner
	Switcher  Switcher // optional
	Store     *state.Store
	Prefs     ThemeSaver // optional
	Endpoint  func() string
	ThemeName string
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	runner   Runner
	switcher Switcher
	store    *state.Store
	prefs    ThemeSaver
	endpoint func() string
	pollTick time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot  state.Snapshot
	running   bool
	notice    string // transient message from the last key action
	lastError error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 250 * time.Millisecond
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	endpointFn := opts.Endpoint
	if endpointFn == nil {
		endpointFn = func() string { return "" }
	}

	theme := GetTheme(opts.ThemeName)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Styles().AccentText

	return Model{
		ctx:      ctx,
		runner:   opts.Runner,
		switcher: opts.Switcher,
		store:    store,
		prefs:    opts.Prefs,
		endpoint: endpointFn,
		pollTick: pollTick,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case runDoneMsg:
		m.running = false
		m.lastError = msg.err
		if msg.err == nil {
			m.notice = ""
		}
		return m, fetchSnapshotCmd(m.store)

	case switchDoneMsg:
		if msg.err != nil {
			m.notice = app.Describe(msg.err)
		} else {
			m.notice = "Switched camera"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = m.theme.Styles().AccentText
		if m.prefs != nil {
			if err := m.prefs.SetTheme(m.theme.Name); err != nil {
				m.notice = "Theme not saved: " + err.Error()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Shoot):
		// Presses while a run is in flight are dropped, not queued.
		if m.running || m.runner == nil || m.snapshot.Phase.Busy() {
			return m, nil
		}
		m.running = true
		m.notice = ""
		return m, tea.Batch(runCmd(m.ctx, m.runner), fetchSnapshotCmd(m.store))

	case key.Matches(msg, m.keys.Switch):
		if m.switcher == nil || m.running {
			return m, nil
		}
		return m, switchCmd(m.ctx, m.switcher)
	}

	return m, nil
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type runDoneMsg struct {
	result app.Result
	err    error
}

type switchDoneMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func runCmd(ctx context.Context, r Runner) tea.Cmd {
	return func() tea.Msg {
		result, err := r.Run(ctx)
		return runDoneMsg{result: result, err: err}
	}
}

func switchCmd(ctx context.Context, s Switcher) tea.Cmd {
	return func() tea.Msg {
		return switchDoneMsg{err: s.SwitchCamera(ctx)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
