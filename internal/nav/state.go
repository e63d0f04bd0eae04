package nav

import (
	"fmt"
	"slices"
	"strings"
)

// Capacities lists the supported history capacities in cycling order.
var Capacities = []int{4, 8, 16, 20}

// DefaultCapacity is the history capacity used when none is configured.
const DefaultCapacity = 16

// ValidCapacity reports whether c is one of Capacities.
func ValidCapacity(c int) bool {
	return slices.Contains(Capacities, c)
}

// NextCapacity returns the capacity after c in Capacities, wrapping around.
// Unknown values restart at the first capacity.
func NextCapacity(c int) int {
	i := slices.Index(Capacities, c)
	if i < 0 {
		return Capacities[0]
	}
	return Capacities[(i+1)%len(Capacities)]
}

// Theme is the panel color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme converts a theme name, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Policy decides what happens when an element already in history is selected again.
type Policy int

const (
	// PolicyAppend keeps the entry where it is and only moves the pointer.
	PolicyAppend Policy = iota
	// PolicyMoveToFront moves the entry to the most-recent end.
	PolicyMoveToFront
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyMoveToFront {
		return "move-to-front"
	}
	return "append"
}

// ParsePolicy converts a policy name as written in config files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append", "append-only":
		return PolicyAppend, nil
	case "move-to-front", "mtf":
		return PolicyMoveToFront, nil
	}
	return PolicyAppend, fmt.Errorf("unknown dedup policy %q", s)
}

// Settings is the user-tunable panel configuration.
type Settings struct {
	ShowPageLabels  bool  `json:"showPageLabels"`
	HistoryCapacity int   `json:"historyCapacity"`
	Theme           Theme `json:"theme"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() Settings {
	return Settings{
		ShowPageLabels:  false,
		HistoryCapacity: DefaultCapacity,
		Theme:           ThemeDark,
	}
}

// normalize replaces invalid fields with the matching field of defaults.
func (s Settings) normalize(defaults Settings) Settings {
	if !ValidCapacity(s.HistoryCapacity) {
		s.HistoryCapacity = defaults.HistoryCapacity
		if !ValidCapacity(s.HistoryCapacity) {
			s.HistoryCapacity = DefaultCapacity
		}
	}
	if _, err := ParseTheme(string(s.Theme)); err != nil {
		s.Theme = defaults.Theme
		if _, err := ParseTheme(string(s.Theme)); err != nil {
			s.Theme = ThemeDark
		}
	}
	return s
}

// PersistedState is the full serializable snapshot of a session.
type PersistedState struct {
	History      []HistoryEntry  `json:"history"`
	CurrentIndex int             `json:"currentIndex"`
	Favorites    []FavoriteEntry `json:"favorites"`
	Settings     Settings        `json:"settings"`
}

// DefaultState returns an empty state with the given settings.
func DefaultState(settings Settings) PersistedState {
	return PersistedState{
		History:      []HistoryEntry{},
		CurrentIndex: -1,
		Favorites:    []FavoriteEntry{},
		Settings:     settings,
	}
}
