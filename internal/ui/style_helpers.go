package ui

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// BgStyle renders segments on a shared background. lipgloss resets between
// styled segments, which otherwise leaves gaps in the background color.
type BgStyle struct {
	bg    lipgloss.Color
	space string
}

// NewBgStyle creates a background helper for the given color.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render renders text with style, keeping the background under spaces.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wordStyle.Render(w))
	}
	return strings.Join(out, b.space)
}

// Join joins parts with a styled separator.
func (b BgStyle) Join(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}

// renderThumbnail draws img with half-block cells, two pixel rows per line.
// It returns "" for a nil image or a width under 2.
func renderThumbnail(img image.Image, width int) string {
	if img == nil || width < 2 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	// Terminal cells are roughly twice as tall as wide; one cell holds two rows.
	height := max(2, b.Dy()*width/b.Dx())
	if height%2 == 1 {
		height++
	}
	small := imaging.Resize(img, width, height, imaging.Box)

	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := hexColor(small.NRGBAAt(x, y).R, small.NRGBAAt(x, y).G, small.NRGBAAt(x, y).B)
			bottom := hexColor(small.NRGBAAt(x, y+1).R, small.NRGBAAt(x, y+1).G, small.NRGBAAt(x, y+1).B)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		if y+2 < height {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(r, g, b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[r>>4], digits[r&0x0f],
		digits[g>>4], digits[g&0x0f],
		digits[b>>4], digits[b&0x0f],
	})
}
