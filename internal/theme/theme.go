package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/nav"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name nav.Theme

	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	Text       lipgloss.Color
	TextDim    lipgloss.Color
	TextBright lipgloss.Color

	// UI element colors
	Background  lipgloss.Color
	Surface     lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Highlight   lipgloss.Color // current history entry / selection row

	// Semantic colors
	Favorite lipgloss.Color
	Section  lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Info     lipgloss.Color

	// Glamour style used for markdown overlays
	Markdown string
}

var themes = map[nav.Theme]Theme{
	nav.ThemeDark:  Dark,
	nav.ThemeLight: Light,
}

var Dark = Theme{
	Name:        nav.ThemeDark,
	Primary:     lipgloss.Color("#7C3AED"),
	Secondary:   lipgloss.Color("#06B6D4"),
	Accent:      lipgloss.Color("#F59E0B"),
	Text:        lipgloss.Color("#E2E8F0"),
	TextDim:     lipgloss.Color("#64748B"),
	TextBright:  lipgloss.Color("#F8FAFC"),
	Background:  lipgloss.Color("#0F172A"),
	Surface:     lipgloss.Color("#1E293B"),
	Border:      lipgloss.Color("#334155"),
	BorderFocus: lipgloss.Color("#7C3AED"),
	Highlight:   lipgloss.Color("#7C3AED"),
	Favorite:    lipgloss.Color("#F59E0B"),
	Section:     lipgloss.Color("#A78BFA"),
	Error:       lipgloss.Color("#EF4444"),
	Success:     lipgloss.Color("#22C55E"),
	Warning:     lipgloss.Color("#F59E0B"),
	Info:        lipgloss.Color("#3B82F6"),
	Markdown:    "dark",
}

var Light = Theme{
	Name:        nav.ThemeLight,
	Primary:     lipgloss.Color("#6D28D9"),
	Secondary:   lipgloss.Color("#0E7490"),
	Accent:      lipgloss.Color("#B45309"),
	Text:        lipgloss.Color("#1E293B"),
	TextDim:     lipgloss.Color("#64748B"),
	TextBright:  lipgloss.Color("#0F172A"),
	Background:  lipgloss.Color("#F8FAFC"),
	Surface:     lipgloss.Color("#E2E8F0"),
	Border:      lipgloss.Color("#CBD5E1"),
	BorderFocus: lipgloss.Color("#6D28D9"),
	Highlight:   lipgloss.Color("#DDD6FE"),
	Favorite:    lipgloss.Color("#B45309"),
	Section:     lipgloss.Color("#7C3AED"),
	Error:       lipgloss.Color("#DC2626"),
	Success:     lipgloss.Color("#15803D"),
	Warning:     lipgloss.Color("#B45309"),
	Info:        lipgloss.Color("#1D4ED8"),
	Markdown:    "light",
}

// Current is the active theme.
var Current = Dark

// Set changes the active theme. Returns false for unknown themes.
func Set(name nav.Theme) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}
