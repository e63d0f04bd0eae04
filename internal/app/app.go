package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/framehop/internal/document"
	"github.com/vidyasagar/framehop/internal/nav"
	"github.com/vidyasagar/framehop/internal/theme"
	"github.com/vidyasagar/framehop/internal/ui"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeOutline Mode = iota // document outline focused
	ModePanel               // hop panel focused
	ModeHelp                // help overlay visible
)

func (m Mode) String() string {
	switch m {
	case ModePanel:
		return "PANEL"
	case ModeHelp:
		return "HELP"
	default:
		return "OUTLINE"
	}
}

const messageTimeout = 3 * time.Second

// Options configures the model.
type Options struct {
	Document *document.Document
	Store    nav.StateStore // nil keeps state in memory only
	Policy   nav.Policy
	Defaults nav.Settings
	Logger   *slog.Logger
}

// feed receives tracker snapshots. The model drains it after every action.
type feed struct {
	snap    nav.Snapshot
	cleared bool
}

func (f *feed) Update(s nav.Snapshot) { f.snap = s }
func (f *feed) Cleared()              { f.cleared = true }

func (f *feed) take() (nav.Snapshot, bool) {
	cleared := f.cleared
	f.cleared = false
	return f.snap, cleared
}

// Model is the top-level bubbletea model for framehop.
type Model struct {
	// UI components
	outline   ui.Outline
	panel     ui.HopPanel
	statusBar ui.StatusBar
	help      *ui.HelpOverlay

	doc     *document.Document
	tracker *nav.Tracker
	feed    *feed
	log     *slog.Logger

	keys   KeyMap
	mode   Mode
	width  int
	height int
	ready  bool
	msgSeq int // bumps on every status message so stale timeouts are ignored
}

// clearMessageMsg expires the status message with the given sequence.
type clearMessageMsg struct{ seq int }

// New creates the model and starts a tracker bound to the document.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f := &feed{}
	tr := nav.NewTracker(nav.Options{
		Resolver:  opts.Document,
		Selection: opts.Document,
		Store:     opts.Store,
		Publisher: f,
		Policy:    opts.Policy,
		Defaults:  opts.Defaults,
		Logger:    log,
	})

	keys := DefaultKeyMap()
	help := ui.NewHelpOverlay(keys.HelpBindings())
	m := Model{
		outline:   ui.NewOutline(),
		panel:     ui.NewHopPanel(),
		statusBar: ui.NewStatusBar(),
		help:      &help,
		doc:       opts.Document,
		tracker:   tr,
		feed:      f,
		log:       log,
		keys:      keys,
		mode:      ModeOutline,
	}
	tr.Start()
	m.sync()
	m.outline.RevealSelected()
	return m
}

// Tracker exposes the model's tracker.
func (m Model) Tracker() *nav.Tracker {
	return m.tracker
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case clearMessageMsg:
		if msg.seq == m.msgSeq {
			m.statusBar.ClearMessage()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading framehop..."
	}

	if m.help.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View(),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(theme.Current.Background),
		)
	}

	t := theme.Current
	dividerStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Background)
	bodyHeight := max(m.height-1, 1)
	divider := dividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", bodyHeight), "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.outline.View(m.doc.ActivePage()),
		divider,
		m.panel.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar.View())
}

// layout recalculates dimensions for all components.
func (m *Model) layout() {
	m.statusBar.SetWidth(m.width)
	m.help.SetSize(m.width, m.height)

	statusBarHeight := 1
	bodyHeight := max(m.height-statusBarHeight, 1)

	panelWidth := max(m.width*35/100, 24)
	outlineWidth := max(m.width-panelWidth-1, 1) // -1 for divider
	m.outline.SetSize(outlineWidth, bodyHeight)
	m.panel.SetSize(panelWidth, bodyHeight)
}

// sync pulls the latest snapshot into the panel, outline and status bar.
func (m *Model) sync() {
	snap, cleared := m.feed.take()
	if cleared && snap.Empty() {
		m.panel.Reset()
	}
	m.panel.SetSnapshot(snap)
	theme.Set(snap.Settings.Theme)

	favIDs := make([]string, len(snap.Favorites))
	for i, f := range snap.Favorites {
		favIDs[i] = f.ElementID
	}
	m.outline.SetRows(m.doc.Outline())
	m.outline.SetSelected(snap.CurrentSelection, favIDs)

	if el, ok := m.doc.Resolve(snap.CurrentSelection); ok {
		m.statusBar.SetSelection(el.Name, el.PageName)
	} else {
		m.statusBar.SetSelection("", m.pageName(m.doc.ActivePage()))
	}

	state := m.tracker.State()
	if state.CurrentIndex >= 0 {
		m.statusBar.SetPosition(fmt.Sprintf("%d/%d", state.CurrentIndex+1, len(state.History)))
	} else {
		m.statusBar.SetPosition("")
	}
	m.statusBar.SetPolicy(m.tracker.Policy().String())
	m.statusBar.SetMode(m.mode.String())
}

func (m *Model) pageName(id string) string {
	for _, p := range m.doc.Pages {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	switch mode {
	case ModePanel:
		m.outline.Blur()
		m.panel.Focus()
	case ModeOutline:
		m.panel.Blur()
		m.outline.Focus()
	}
	m.statusBar.SetMode(mode.String())
}

// flash shows a temporary status message.
func (m *Model) flash(msg string) tea.Cmd {
	m.statusBar.SetMessage(msg)
	return m.expireMessage()
}

// fail shows a temporary error message.
func (m *Model) fail(err error) tea.Cmd {
	m.statusBar.SetError(describe(err))
	return m.expireMessage()
}

func (m *Model) expireMessage() tea.Cmd {
	m.msgSeq++
	seq := m.msgSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

// describe maps tracker errors to short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, nav.ErrNoSelection):
		return "Nothing selected"
	case errors.Is(err, nav.ErrNotEligible):
		return "Only frames, components and sections can be pinned"
	case nav.IsStale(err):
		return "Element no longer exists"
	}
	return err.Error()
}

// handleKeyMsg processes key events based on current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Always allow Ctrl+C to quit.
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" || msg.String() == "q" {
			m.help.Hide()
			m.setMode(ModeOutline)
		}
		return m, nil
	case ModePanel:
		if model, cmd, ok := m.handlePanelMode(msg); ok {
			return model, cmd
		}
	default:
		if model, cmd, ok := m.handleOutlineMode(msg); ok {
			return model, cmd
		}
	}
	return m.handleGlobal(msg)
}

// handleGlobal processes keys shared by the outline and the panel.
func (m Model) handleGlobal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.Toggle()
		m.setMode(ModeHelp)
		return m, nil

	case key.Matches(msg, m.keys.SwitchFocus):
		if m.mode == ModePanel {
			m.setMode(ModeOutline)
		} else {
			m.setMode(ModePanel)
		}
		return m, nil

	case key.Matches(msg, m.keys.HopBackward):
		if !m.tracker.HopBackward() {
			cmd = m.flash("Start of history")
		}

	case key.Matches(msg, m.keys.HopForward):
		if !m.tracker.HopForward() {
			cmd = m.flash("End of history")
		}

	case key.Matches(msg, m.keys.ToggleFavorite):
		added, err := m.tracker.ToggleFavorite()
		switch {
		case err != nil:
			cmd = m.fail(err)
		case added:
			cmd = m.flash("Pinned")
		default:
			cmd = m.flash("Unpinned")
		}

	case key.Matches(msg, m.keys.CycleCapacity):
		cmd = m.flash(fmt.Sprintf("History size %d", m.tracker.CycleCapacity()))

	case key.Matches(msg, m.keys.PageLabels):
		show := !m.tracker.Settings().ShowPageLabels
		m.tracker.SetShowPageLabels(show)
		if show {
			cmd = m.flash("Page labels on")
		} else {
			cmd = m.flash("Page labels off")
		}

	case key.Matches(msg, m.keys.Theme):
		next := nav.ThemeLight
		if m.tracker.Settings().Theme == nav.ThemeLight {
			next = nav.ThemeDark
		}
		if err := m.tracker.SetTheme(next); err != nil {
			cmd = m.fail(err)
		}

	case key.Matches(msg, m.keys.Policy):
		next := nav.PolicyMoveToFront
		if m.tracker.Policy() == nav.PolicyMoveToFront {
			next = nav.PolicyAppend
		}
		m.tracker.SetPolicy(next)
		cmd = m.flash("Revisit policy: " + next.String())

	case key.Matches(msg, m.keys.ClearHistory):
		m.tracker.ClearHistory()
		cmd = m.flash("Cleared history")

	case key.Matches(msg, m.keys.ClearAll):
		m.tracker.ClearAll()
		cmd = m.flash("Cleared history, favorites and settings")

	default:
		return m, nil
	}

	m.sync()
	m.outline.RevealSelected()
	return m, cmd
}

// handleOutlineMode processes keys while the outline is focused.
func (m Model) handleOutlineMode(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Up):
		m.outline.CursorUp()
		return m, nil, true

	case key.Matches(msg, m.keys.Down):
		m.outline.CursorDown()
		return m, nil, true

	case key.Matches(msg, m.keys.GotoTop):
		m.outline.GotoTop()
		return m, nil, true

	case key.Matches(msg, m.keys.GotoBottom):
		m.outline.GotoBottom()
		return m, nil, true

	case key.Matches(msg, m.keys.Select):
		row, ok := m.outline.Current()
		if !ok {
			return m, nil, true
		}
		var err error
		if row.Node == nil {
			err = m.doc.SetActivePage(row.PageID)
		} else {
			err = m.doc.Select(row.Node.ID)
		}
		if err != nil {
			cmd = m.fail(err)
		}

	case key.Matches(msg, m.keys.Deselect):
		m.doc.ClearSelection()

	case key.Matches(msg, m.keys.DeleteNode):
		row, ok := m.outline.Current()
		if !ok || row.Node == nil {
			return m, nil, true
		}
		if m.doc.Delete(row.Node.ID) {
			m.log.Info("element deleted", "id", row.Node.ID, "name", row.Node.Name)
			cmd = m.flash("Deleted " + row.Node.Name)
		}
		m.tracker.Refresh()

	default:
		return m, nil, false
	}

	m.sync()
	return m, cmd, true
}

// handlePanelMode processes keys while the hop panel is focused.
func (m Model) handlePanelMode(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Up):
		m.panel.CursorUp()
		return m, nil, true

	case key.Matches(msg, m.keys.Down):
		m.panel.CursorDown()
		return m, nil, true

	case msg.String() == "esc":
		m.setMode(ModeOutline)
		return m, nil, true

	case key.Matches(msg, m.keys.Jump):
		item, ok := m.panel.Selected()
		if !ok {
			return m, nil, true
		}
		if err := m.tracker.JumpTo(item.ElementID); err != nil {
			cmd = m.fail(err)
		}
		m.sync()
		m.outline.RevealSelected()
		return m, cmd, true

	case key.Matches(msg, m.keys.RemoveFavorite):
		item, ok := m.panel.Selected()
		if !ok || item.Section != ui.SectionFavorites {
			return m, nil, true
		}
		if m.tracker.RemoveFavorite(item.ElementID) {
			cmd = m.flash("Unpinned " + item.Name)
		}

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		item, ok := m.panel.Selected()
		if !ok || item.Section != ui.SectionFavorites {
			return m, nil, true
		}
		delta := 1
		if key.Matches(msg, m.keys.MoveUp) {
			delta = -1
		}
		if err := m.tracker.MoveFavorite(item.ElementID, delta); err != nil {
			cmd = m.fail(err)
		}
		m.sync()
		m.panel.FollowFavorite(item.ElementID)
		return m, cmd, true

	default:
		return m, nil, false
	}

	m.sync()
	return m, cmd, true
}
