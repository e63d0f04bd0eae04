package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/document"
	"github.com/vidyasagar/framehop/internal/nav"
	"github.com/vidyasagar/framehop/internal/theme"
)

// Outline shows the document tree as a scrollable list with vim navigation.
type Outline struct {
	rows      []document.Row
	cursor    int
	offset    int
	width     int
	height    int
	selected  string
	favorites map[string]bool
	focused   bool
}

// NewOutline creates an outline panel.
func NewOutline() Outline {
	return Outline{focused: true}
}

// SetRows replaces the rows, keeping the cursor in range.
func (o *Outline) SetRows(rows []document.Row) {
	o.rows = rows
	if o.cursor >= len(rows) {
		o.cursor = max(len(rows)-1, 0)
	}
	o.ensureVisible()
}

// SetSelected marks the host's selected element and the current favorites.
func (o *Outline) SetSelected(id string, favorites []string) {
	o.selected = id
	o.favorites = make(map[string]bool, len(favorites))
	for _, f := range favorites {
		o.favorites[f] = true
	}
}

// RevealSelected moves the cursor onto the selected element.
func (o *Outline) RevealSelected() {
	for i, r := range o.rows {
		if r.Node != nil && r.Node.ID == o.selected {
			o.cursor = i
			o.ensureVisible()
			return
		}
	}
}

// SetSize updates the panel dimensions.
func (o *Outline) SetSize(w, h int) {
	o.width = w
	o.height = h
	o.ensureVisible()
}

// Focus gives the outline keyboard focus.
func (o *Outline) Focus() { o.focused = true }

// Blur removes keyboard focus.
func (o *Outline) Blur() { o.focused = false }

// CursorUp moves the cursor up one row.
func (o *Outline) CursorUp() {
	if o.cursor > 0 {
		o.cursor--
		o.ensureVisible()
	}
}

// CursorDown moves the cursor down one row.
func (o *Outline) CursorDown() {
	if o.cursor < len(o.rows)-1 {
		o.cursor++
		o.ensureVisible()
	}
}

// GotoTop moves to the first row.
func (o *Outline) GotoTop() {
	o.cursor = 0
	o.offset = 0
}

// GotoBottom moves to the last row.
func (o *Outline) GotoBottom() {
	if len(o.rows) > 0 {
		o.cursor = len(o.rows) - 1
		o.ensureVisible()
	}
}

// Current returns the row under the cursor.
func (o *Outline) Current() (document.Row, bool) {
	if o.cursor < 0 || o.cursor >= len(o.rows) {
		return document.Row{}, false
	}
	return o.rows[o.cursor], true
}

func (o *Outline) visibleCount() int {
	return max(o.height-1, 1)
}

func (o *Outline) ensureVisible() {
	visible := o.visibleCount()
	if o.cursor < o.offset {
		o.offset = o.cursor
	}
	if o.cursor >= o.offset+visible {
		o.offset = o.cursor - visible + 1
	}
	if o.offset < 0 {
		o.offset = 0
	}
}

// View renders the outline.
func (o *Outline) View(activePage string) string {
	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(o.width).
		Height(o.height).
		Background(t.Background)

	pageStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Width(o.width).Padding(0, 1)
	activePageStyle := pageStyle.Foreground(t.Primary).Underline(true)
	normal := lipgloss.NewStyle().Foreground(t.Text).Width(o.width).Padding(0, 1)
	dim := normal.Foreground(t.TextDim)
	selected := normal.Foreground(t.TextBright).Background(t.Highlight).Bold(true)
	cursor := normal.Foreground(t.Accent).Bold(true)
	star := lipgloss.NewStyle().Foreground(t.Favorite)

	var sb strings.Builder
	end := min(o.offset+o.visibleCount(), len(o.rows))
	for i := o.offset; i < end; i++ {
		r := o.rows[i]
		if r.Node == nil {
			style := pageStyle
			if r.PageID == activePage {
				style = activePageStyle
			}
			sb.WriteString(style.Render("▤ " + r.PageName))
			sb.WriteString("\n")
			continue
		}

		label := strings.Repeat("  ", r.Depth-1) + kindIcon(r.Node) + r.Node.Name
		if o.favorites[r.Node.ID] {
			label += star.Render(" ★")
		}
		style := normal
		if !r.Node.Kind.Eligible() {
			style = dim
		}
		if r.Node.ID == o.selected {
			style = selected
		}
		if o.focused && i == o.cursor {
			style = cursor
		}
		sb.WriteString(style.Render(marker(o.focused && i == o.cursor) + label))
		sb.WriteString("\n")
	}

	return panelStyle.Render(sb.String())
}

func kindIcon(n *document.Node) string {
	switch n.Kind {
	case nav.KindSection:
		return "§ "
	case nav.KindComponent, nav.KindComponentSet:
		return "◆ "
	case nav.KindFrame:
		return "# "
	case nav.KindText:
		return "T "
	}
	return "· "
}
