package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/theme"
)

// HelpBinding is one row of the help table.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpOverlay renders the key reference as markdown.
type HelpOverlay struct {
	bindings []HelpBinding
	visible  bool
	width    int
	height   int
	rendered string
	style    string // glamour style the cache was rendered with
}

// NewHelpOverlay creates a help overlay for the given bindings.
func NewHelpOverlay(bindings []HelpBinding) HelpOverlay {
	return HelpOverlay{bindings: bindings}
}

// SetSize updates the overlay dimensions.
func (h *HelpOverlay) SetSize(w, height int) {
	if w != h.width {
		h.rendered = ""
	}
	h.width = w
	h.height = height
}

// Toggle switches visibility.
func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

// Hide closes the overlay.
func (h *HelpOverlay) Hide() {
	h.visible = false
}

// IsVisible reports whether the overlay is shown.
func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

// Markdown returns the help text as markdown.
func (h *HelpOverlay) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Frame Hop\n\n")
	sb.WriteString("Selecting a frame, component or section records it in history. ")
	sb.WriteString("Hops and jumps move through history without adding to it.\n\n")
	sb.WriteString("| Keys | Action |\n|---|---|\n")
	for _, b := range h.bindings {
		sb.WriteString("| `" + b.Keys + "` | " + b.Desc + " |\n")
	}
	return sb.String()
}

// View renders the overlay, caching the glamour output per width and theme.
func (h *HelpOverlay) View() string {
	t := theme.Current
	width := max(min(h.width-8, 80), 30)
	if h.rendered == "" || h.style != t.Markdown {
		h.rendered = h.Markdown()
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(t.Markdown),
			glamour.WithWordWrap(width-4),
		)
		if err == nil {
			if out, err := r.Render(h.rendered); err == nil {
				h.rendered = out
			}
		}
		h.style = t.Markdown
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Background(t.Surface).
		Width(width).
		Padding(0, 1)
	return box.Render(strings.TrimSpace(h.rendered))
}
