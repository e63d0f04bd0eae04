package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/nav"
	"github.com/vidyasagar/framehop/internal/theme"
)

// PanelSection identifies which list a panel row belongs to.
type PanelSection int

const (
	SectionFavorites PanelSection = iota
	SectionHistory
)

// PanelItem is the row under the panel cursor.
type PanelItem struct {
	Section   PanelSection
	ElementID string
	Name      string
}

// HopPanel displays favorites above the recent history, with a cursor
// spanning both lists.
type HopPanel struct {
	snap    nav.Snapshot
	cursor  int
	offset  int // scroll offset for visible window
	width   int
	height  int
	focused bool
}

// NewHopPanel creates an empty panel.
func NewHopPanel() HopPanel {
	return HopPanel{}
}

// SetSnapshot updates the displayed state, keeping the cursor in range.
func (hp *HopPanel) SetSnapshot(s nav.Snapshot) {
	hp.snap = s
	if n := hp.itemCount(); hp.cursor >= n {
		hp.cursor = max(n-1, 0)
	}
	hp.ensureVisible()
}

// Reset clears the panel after a clear-all.
func (hp *HopPanel) Reset() {
	hp.snap = nav.Snapshot{CurrentFavoriteIndex: -1, Settings: hp.snap.Settings}
	hp.cursor = 0
	hp.offset = 0
}

// SetSize updates the panel dimensions.
func (hp *HopPanel) SetSize(w, h int) {
	hp.width = w
	hp.height = h
	hp.ensureVisible()
}

// Focus gives the panel keyboard focus.
func (hp *HopPanel) Focus() {
	hp.focused = true
}

// Blur removes keyboard focus.
func (hp *HopPanel) Blur() {
	hp.focused = false
}

// CursorUp moves the cursor up one row.
func (hp *HopPanel) CursorUp() {
	if hp.cursor > 0 {
		hp.cursor--
		hp.ensureVisible()
	}
}

// CursorDown moves the cursor down one row.
func (hp *HopPanel) CursorDown() {
	if hp.cursor < hp.itemCount()-1 {
		hp.cursor++
		hp.ensureVisible()
	}
}

// FollowFavorite keeps the cursor on a favorite after it was moved.
func (hp *HopPanel) FollowFavorite(elementID string) {
	for i, f := range hp.snap.Favorites {
		if f.ElementID == elementID {
			hp.cursor = i
			hp.ensureVisible()
			return
		}
	}
}

// Selected returns the row under the cursor.
func (hp *HopPanel) Selected() (PanelItem, bool) {
	favs := hp.snap.Favorites
	switch {
	case hp.cursor < 0 || hp.cursor >= hp.itemCount():
		return PanelItem{}, false
	case hp.cursor < len(favs):
		f := favs[hp.cursor]
		return PanelItem{Section: SectionFavorites, ElementID: f.ElementID, Name: f.Name}, true
	default:
		h := hp.snap.History[hp.cursor-len(favs)]
		return PanelItem{Section: SectionHistory, ElementID: h.ElementID, Name: h.Name}, true
	}
}

func (hp *HopPanel) itemCount() int {
	return len(hp.snap.Favorites) + len(hp.snap.History)
}

// visibleCount returns how many rows fit below the two section headers.
func (hp *HopPanel) visibleCount() int {
	available := hp.height - 6
	if available < 1 {
		return 1
	}
	return available
}

// ensureVisible adjusts offset so the cursor is within the visible window.
func (hp *HopPanel) ensureVisible() {
	visible := hp.visibleCount()
	if hp.cursor < hp.offset {
		hp.offset = hp.cursor
	}
	if hp.cursor >= hp.offset+visible {
		hp.offset = hp.cursor - visible + 1
	}
	if hp.offset < 0 {
		hp.offset = 0
	}
}

// View renders the panel.
func (hp *HopPanel) View() string {
	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(hp.width).
		Height(hp.height).
		Background(t.Background)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(t.Surface).
		Width(hp.width).
		Padding(0, 1)
	if hp.focused {
		titleStyle = titleStyle.Foreground(t.TextBright).Background(t.BorderFocus)
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		Padding(0, 1)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Frame Hop  %d/%d", len(hp.snap.History), hp.snap.Settings.HistoryCapacity)))
	sb.WriteString("\n")

	rows := hp.rows()
	visible := hp.visibleCount()
	end := min(hp.offset+visible, len(rows))

	sb.WriteString(headerStyle.Render("★ Favorites"))
	sb.WriteString("\n")
	if len(hp.snap.Favorites) == 0 {
		sb.WriteString(dimStyle.Render("No favorites. Press f on a frame."))
		sb.WriteString("\n")
	}
	historyHeaderDone := false
	for i := hp.offset; i < end; i++ {
		if i >= len(hp.snap.Favorites) && !historyHeaderDone {
			sb.WriteString(headerStyle.Render("↺ Recent"))
			sb.WriteString("\n")
			historyHeaderDone = true
		}
		sb.WriteString(rows[i])
		sb.WriteString("\n")
	}
	if !historyHeaderDone {
		sb.WriteString(headerStyle.Render("↺ Recent"))
		sb.WriteString("\n")
	}
	if len(hp.snap.History) == 0 {
		sb.WriteString(dimStyle.Render("No history yet."))
		sb.WriteString("\n")
	}

	return panelStyle.Render(sb.String())
}

// rows renders every item, favorites first.
func (hp *HopPanel) rows() []string {
	t := theme.Current
	maxLen := max(hp.width-6, 10)

	normal := lipgloss.NewStyle().Foreground(t.Text).Width(hp.width).Padding(0, 1)
	current := normal.Foreground(t.TextBright).Background(t.Highlight).Bold(true)
	cursor := normal.Foreground(t.Accent).Bold(true)
	page := lipgloss.NewStyle().Foreground(t.TextDim)

	var rows []string
	for i, f := range hp.snap.Favorites {
		label := truncate(f.Name, maxLen)
		style := normal
		if i == hp.snap.CurrentFavoriteIndex {
			style = current
		}
		if hp.focused && i == hp.cursor {
			style = cursor
		}
		rows = append(rows, style.Render(marker(hp.focused && i == hp.cursor)+sectionIcon(f.IsSection)+label))
	}
	for j, h := range hp.snap.History {
		i := len(hp.snap.Favorites) + j
		label := truncate(h.Name, maxLen)
		if h.PageName != "" {
			label += page.Render("  · " + truncate(h.PageName, 16))
		}
		style := normal
		if h.Current {
			style = current
		}
		if hp.focused && i == hp.cursor {
			style = cursor
		}
		rows = append(rows, style.Render(marker(hp.focused && i == hp.cursor)+sectionIcon(h.IsSection)+label))
	}
	return rows
}

func marker(on bool) string {
	if on {
		return "▸ "
	}
	return "  "
}

func sectionIcon(isSection bool) string {
	if isSection {
		return "§ "
	}
	return "# "
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
