package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/theme"
)

// StatusBar shows the selection and navigation state at the bottom of the screen.
type StatusBar struct {
	selection string
	page      string
	position  string
	policy    string
	mode      string
	width     int
	message   string // temporary status message
	isError   bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{
		mode: "OUTLINE",
	}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetSelection updates the displayed selection and its page.
func (s *StatusBar) SetSelection(name, page string) {
	s.selection = name
	s.page = page
}

// SetPosition sets the history position, e.g. "3/8".
func (s *StatusBar) SetPosition(pos string) {
	s.position = pos
}

// SetPolicy sets the dedup policy label.
func (s *StatusBar) SetPolicy(policy string) {
	s.policy = policy
}

// SetMode sets the current mode indicator (OUTLINE, PANEL, HELP).
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// SetMessage sets a temporary status message.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError sets a temporary error message.
func (s *StatusBar) SetError(msg string) {
	s.message = msg
	s.isError = true
}

// ClearMessage removes the temporary message.
func (s *StatusBar) ClearMessage() {
	s.message = ""
	s.isError = false
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background)

	switch s.mode {
	case "OUTLINE":
		modeStyle = modeStyle.Background(t.Primary)
	case "PANEL":
		modeStyle = modeStyle.Background(t.Secondary)
	default:
		modeStyle = modeStyle.Background(t.Accent)
	}
	mode := modeStyle.Render(s.mode)

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface)

	var left string
	switch {
	case s.message != "":
		color := t.Info
		if s.isError {
			color = t.Error
		}
		left = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Padding(0, 1).Render(s.message)
	case s.selection != "":
		text := s.selection
		if s.page != "" {
			text += "  ·  " + s.page
		}
		left = lipgloss.NewStyle().Foreground(t.Text).Background(t.Surface).Padding(0, 1).Render(text)
	}

	rightStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)
	right := rightStyle.Render(s.policy)

	posStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		Background(t.Surface).
		Padding(0, 1)
	right += posStyle.Render("↺ " + s.position)

	modeWidth := lipgloss.Width(mode)
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	spacerWidth := s.width - modeWidth - leftWidth - rightWidth
	if spacerWidth < 0 {
		spacerWidth = 0
	}

	spacer := lipgloss.NewStyle().
		Background(t.Surface).
		Render(fmt.Sprintf("%*s", spacerWidth, ""))

	return barStyle.Render(mode + left + spacer + right)
}
