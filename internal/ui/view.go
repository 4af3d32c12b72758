package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/crux/internal/state"
)

const (
	logoText       = "CRUX"
	maxThumbWidth  = 48
	minPanelWidth  = 40
	previewPadding = 6
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if preview := m.renderPreview(); preview != "" {
		b.WriteString(preview)
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderHeader renders the logo, endpoint and backend reachability line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render(logoText, styles.Logo),
		bg.Render(m.endpoint(), styles.MutedText),
		m.renderBackend(bg, styles),
	}
	line := bg.Join(parts, "  ")
	if m.width <= 0 {
		return line
	}
	return bg.FillLine(line, m.width)
}

func (m Model) renderBackend(bg BgStyle, styles Styles) string {
	backend := m.snapshot.Backend
	switch {
	case !backend.Checked:
		return bg.Render("backend unchecked", styles.FaintText)
	case backend.Reachable:
		return bg.Render("● online", styles.SuccessText)
	case backend.Failures >= 2:
		return bg.Render(fmt.Sprintf("● offline (%d checks)", backend.Failures), styles.DangerText)
	default:
		return bg.Render("● unreachable", styles.WarningText)
	}
}

// renderStatus renders the phase badge with the payload and outcome.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var lines []string

	badge := styles.PhaseStyle(snap.Phase).Render(snap.Phase.String())
	if snap.Phase.Busy() || m.running {
		badge += " " + m.spinner.View()
	}
	lines = append(lines, badge)

	if snap.HasPayload {
		p := snap.Payload
		lines = append(lines, styles.Text.Render(fmt.Sprintf("%s  %dx%d  q%d  %s",
			p.Filename, p.Width, p.Height, p.Quality, formatBytes(p.Bytes))))
	}

	switch snap.Phase {
	case state.PhaseDone:
		if snap.ResultPath != "" {
			lines = append(lines, styles.SuccessText.Render("Saved "+snap.ResultPath))
		} else {
			lines = append(lines, styles.SuccessText.Render(fmt.Sprintf("Route image received (%s)", formatBytes(len(snap.Result)))))
		}
	case state.PhaseFailed:
		lines = append(lines, styles.DangerText.Render(snap.Message))
	case state.PhaseIdle:
		lines = append(lines, styles.MutedText.Render("Press space to capture a wall photo"))
	}

	if !snap.Backend.Reachable && snap.Backend.Message != "" {
		lines = append(lines, styles.WarningText.Render(snap.Backend.Message))
	}
	if m.notice != "" {
		lines = append(lines, styles.AccentText.Render(m.notice))
	}
	if !snap.LastUpdated.IsZero() {
		lines = append(lines, styles.FaintText.Render("Updated "+snap.LastUpdated.Format(time.Kitchen)))
	}

	width := max(minPanelWidth, m.width-2)
	return styles.Panel.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderPreview draws the last captured image, if any.
func (m Model) renderPreview() string {
	if m.snapshot.Preview == nil {
		return ""
	}
	width := min(maxThumbWidth, m.width-previewPadding)
	thumb := renderThumbnail(m.snapshot.Preview, width)
	if thumb == "" {
		return ""
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(thumb)
}

// renderHelp renders the full key binding overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true

	var b strings.Builder
	b.WriteString(styles.Logo.Render(logoText))
	b.WriteString(styles.MutedText.Render("  theme: " + m.theme.Name))
	b.WriteString("\n\n")
	b.WriteString(h.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))
	return styles.Panel.Render(b.String())
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	if n < unit*unit {
		return fmt.Sprintf("%.1f KiB", float64(n)/unit)
	}
	return fmt.Sprintf("%.2f MiB", float64(n)/(unit*unit))
}
