package nav

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Options configures a Tracker.
type Options struct {
	Resolver  Resolver
	Selection SelectionPort
	Store     StateStore // optional; nil keeps state in memory only
	Publisher Publisher  // optional
	Policy    Policy
	Defaults  Settings // used on first run and to repair invalid settings
	Logger    *slog.Logger
}

// Tracker owns the navigation history, favorites and settings of a session.
// It is driven by host selection notifications and user commands, and must
// be used from a single goroutine.
type Tracker struct {
	resolver  Resolver
	selection SelectionPort
	store     StateStore
	publisher Publisher
	defaults  Settings
	log       *slog.Logger

	history   *History
	favorites *Favorites
	settings  Settings

	// Selections we issued that the host has not reported back yet, oldest first.
	pending []string
}

// NewTracker creates a tracker with empty default state. Call Start to load
// persisted state and subscribe to selection changes.
func NewTracker(opts Options) *Tracker {
	defaults := opts.Defaults
	if defaults == (Settings{}) {
		defaults = DefaultSettings()
	}
	defaults = defaults.normalize(DefaultSettings())

	t := &Tracker{
		resolver:  opts.Resolver,
		selection: opts.Selection,
		store:     opts.Store,
		publisher: opts.Publisher,
		defaults:  defaults,
		log:       opts.Logger,
		settings:  defaults,
		history:   NewHistory(defaults.HistoryCapacity, opts.Policy),
		favorites: NewFavorites(nil),
	}
	if t.publisher == nil {
		t.publisher = nopPublisher{}
	}
	if t.log == nil {
		t.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t
}

// Start loads persisted state, registers for selection changes and processes
// the host's current selection, if any, as a selection event.
func (t *Tracker) Start() {
	t.load()
	t.selection.OnSelectionChanged(t.HandleSelectionChanged)
	if id, ok := t.selection.CurrentSelection(); ok {
		t.HandleSelectionChanged(id)
		return
	}
	t.publish()
}

func (t *Tracker) load() {
	st := DefaultState(t.defaults)
	if t.store != nil {
		loaded, err := t.store.Load()
		switch {
		case loaded != nil:
			if err != nil {
				t.log.Warn("persisted state repaired", "err", err)
			}
			st = *loaded
		case err != nil:
			t.log.Warn("loading state failed, starting empty", "err", err)
		default:
			t.log.Info("no persisted state, writing defaults")
			defer t.save()
		}
	}

	if st.Settings == (Settings{}) {
		// Records written before settings existed.
		st.Settings = t.defaults
	}
	t.settings = st.Settings.normalize(t.defaults)
	t.history = NewHistory(t.settings.HistoryCapacity, t.history.Policy())
	t.history.Restore(t.upgradeEntries(st.History), st.CurrentIndex)
	t.favorites = NewFavorites(st.Favorites)
	t.log.Debug("state loaded",
		"history", t.history.Len(),
		"index", t.history.Index(),
		"favorites", t.favorites.Len())
}

// upgradeEntries fills in the page of entries stored without one, as older
// state records only kept element ids.
func (t *Tracker) upgradeEntries(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.PageID == "" {
			if el, ok := t.resolver.Resolve(e.ElementID); ok {
				e.PageID = el.PageID
				e.IsSection = el.Kind.IsSection()
			}
		}
		out = append(out, e)
	}
	return out
}

// HandleSelectionChanged is the host's selection-changed callback. A
// notification caused by the tracker's own navigation is consumed without
// touching history; anything else is treated as a user selection.
//
// A notification matching a pending selection consumes it along with every
// older pending one, since hosts may coalesce changes. A notification matching
// none ends all pending navigation.
func (t *Tracker) HandleSelectionChanged(id string) {
	if len(t.pending) > 0 {
		if i := slices.Index(t.pending, id); i >= 0 {
			t.pending = t.pending[i+1:]
			t.log.Debug("programmatic selection observed", "id", id, "pending", len(t.pending))
			t.publish()
			return
		}
		t.log.Debug("user selection during navigation", "id", id, "dropped", len(t.pending))
		t.endNavigation()
	}

	if id == "" {
		t.publish()
		return
	}
	el, ok := t.resolver.Resolve(id)
	if !ok || !el.Kind.Eligible() {
		t.publish()
		return
	}
	t.RecordSelection(el.ID, el.PageID, el.Kind.IsSection())
}

// RecordSelection records a visit to an element and moves the pointer to it.
func (t *Tracker) RecordSelection(elementID, pageID string, isSection bool) {
	idx := t.history.Record(HistoryEntry{
		ElementID: elementID,
		PageID:    pageID,
		IsSection: isSection,
	})
	t.log.Debug("selection recorded", "id", elementID, "page", pageID, "index", idx, "len", t.history.Len())
	t.save()
	t.publish()
}

// HopBackward selects the previous resolvable history entry. It returns
// false, leaving the state unchanged, when already at the oldest entry.
func (t *Tracker) HopBackward() bool {
	return t.hop(-1)
}

// HopForward selects the next resolvable history entry. It returns false,
// leaving the state unchanged, when already at the newest entry.
func (t *Tracker) HopForward() bool {
	return t.hop(1)
}

func (t *Tracker) hop(delta int) bool {
	prev := t.history.Index()
	entry, ok := t.history.Step(delta, t.resolvable)
	if !ok {
		t.log.Debug("hop at boundary", "delta", delta, "index", prev)
		return false
	}
	el, ok := t.resolver.Resolve(entry.ElementID)
	if !ok {
		t.history.SetIndex(prev)
		return false
	}
	if err := t.navigateTo(el); err != nil {
		t.log.Warn("hop selection failed", "id", entry.ElementID, "err", err)
		t.history.SetIndex(prev)
		t.publish()
		return false
	}
	t.log.Debug("hopped", "delta", delta, "index", t.history.Index(), "id", entry.ElementID)
	t.save()
	t.publish()
	return true
}

func (t *Tracker) resolvable(e HistoryEntry) bool {
	_, ok := t.resolver.Resolve(e.ElementID)
	return ok
}

// JumpTo selects an element directly. The history pointer moves to the
// element's entry if it has one and stays put otherwise.
func (t *Tracker) JumpTo(elementID string) error {
	el, ok := t.resolver.Resolve(elementID)
	if !ok {
		t.log.Info("jump target no longer exists", "id", elementID)
		t.publish()
		return fmt.Errorf("jump to %s: %w", elementID, ErrElementNotFound)
	}
	if err := t.navigateTo(el); err != nil {
		t.publish()
		return fmt.Errorf("jump to %s: %w", elementID, err)
	}
	if i := t.history.IndexOf(el.ID, el.PageID); i >= 0 {
		t.history.SetIndex(i)
	}
	t.save()
	t.publish()
	return nil
}

// navigateTo asks the host to select el and queues it as pending so the
// resulting notification is not recorded as a new visit.
func (t *Tracker) navigateTo(el Element) error {
	if cur, ok := t.selection.CurrentSelection(); ok && cur == el.ID {
		// Already selected: the host will not report a change.
		return nil
	}
	t.pending = append(t.pending, el.ID)
	if err := t.selection.Select(el.ID); err != nil {
		t.pending = t.pending[:len(t.pending)-1]
		return err
	}
	return nil
}

func (t *Tracker) endNavigation() {
	t.pending = nil
}

// navigating reports whether a programmatic selection is awaiting its notification.
func (t *Tracker) navigating() bool {
	return len(t.pending) > 0
}

// SetCapacity resizes the history, keeping the pointer on the same entry
// when it survives the resize.
func (t *Tracker) SetCapacity(capacity int) error {
	if err := t.history.SetCapacity(capacity); err != nil {
		return err
	}
	t.settings.HistoryCapacity = capacity
	t.log.Debug("capacity changed", "capacity", capacity, "len", t.history.Len(), "index", t.history.Index())
	t.save()
	t.publish()
	return nil
}

// CycleCapacity switches to the next supported capacity and returns it.
func (t *Tracker) CycleCapacity() int {
	next := NextCapacity(t.settings.HistoryCapacity)
	_ = t.SetCapacity(next)
	return next
}

// SetPolicy changes how revisits are handled for the rest of the session.
// Existing history order is kept.
func (t *Tracker) SetPolicy(p Policy) {
	t.history.SetPolicy(p)
	t.log.Debug("revisit policy changed", "policy", p.String())
	t.publish()
}

// Policy returns the revisit policy in effect.
func (t *Tracker) Policy() Policy {
	return t.history.Policy()
}

// SetShowPageLabels toggles page names in the history list.
func (t *Tracker) SetShowPageLabels(show bool) {
	t.settings.ShowPageLabels = show
	t.save()
	t.publish()
}

// SetTheme changes the panel theme.
func (t *Tracker) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	t.settings.Theme = theme
	t.save()
	t.publish()
	return nil
}

// AddFavorite pins an element, or refreshes the cached fields of an existing favorite.
func (t *Tracker) AddFavorite(item FavoriteEntry) {
	t.favorites.Add(item)
	t.save()
	t.publish()
}

// RemoveFavorite unpins an element. Returns false if it was not a favorite.
func (t *Tracker) RemoveFavorite(elementID string) bool {
	if !t.favorites.Remove(elementID) {
		return false
	}
	t.save()
	t.publish()
	return true
}

// ToggleFavorite pins the selected element, or unpins it if already pinned.
// Returns true when the element was added.
func (t *Tracker) ToggleFavorite() (bool, error) {
	id, ok := t.selection.CurrentSelection()
	if !ok {
		return false, ErrNoSelection
	}
	if t.RemoveFavorite(id) {
		return false, nil
	}
	el, ok := t.resolver.Resolve(id)
	if !ok {
		return false, fmt.Errorf("favorite %s: %w", id, ErrElementNotFound)
	}
	if !el.Kind.Eligible() {
		return false, fmt.Errorf("favorite %s (%s): %w", id, el.Kind, ErrNotEligible)
	}
	t.AddFavorite(FavoriteEntry{
		ElementID: el.ID,
		Name:      el.Name,
		PageID:    el.PageID,
		PageName:  el.PageName,
		IsSection: el.Kind.IsSection(),
	})
	return true, nil
}

// ReorderFavorites applies a new favorites order given as element ids.
func (t *Tracker) ReorderFavorites(ids []string) error {
	if err := t.favorites.Reorder(ids); err != nil {
		t.log.Warn("favorites reorder rejected", "err", err)
		return err
	}
	t.save()
	t.publish()
	return nil
}

// MoveFavorite shifts a favorite up (negative delta) or down.
func (t *Tracker) MoveFavorite(elementID string, delta int) error {
	ids, err := t.favorites.MoveOrder(elementID, delta)
	if err != nil {
		return err
	}
	if slices.Equal(ids, t.favorites.IDs()) {
		return nil
	}
	return t.ReorderFavorites(ids)
}

// ClearHistory empties the history and leaves favorites alone.
func (t *Tracker) ClearHistory() {
	t.history.Clear()
	t.save()
	t.publishCleared()
}

// ClearAll resets the session to the default state: no history, no
// favorites, default settings.
func (t *Tracker) ClearAll() {
	t.history.Clear()
	t.favorites.Clear()
	t.settings = t.defaults
	_ = t.history.SetCapacity(t.settings.HistoryCapacity)
	t.log.Info("all data cleared")
	t.save()
	t.publishCleared()
}

func (t *Tracker) publishCleared() {
	t.refreshFavorites()
	snap := t.Snapshot()
	if snap.Empty() {
		t.publisher.Cleared()
	}
	t.publisher.Update(snap)
}

// State returns the current serializable state.
func (t *Tracker) State() PersistedState {
	return PersistedState{
		History:      t.history.Entries(),
		CurrentIndex: t.history.Index(),
		Favorites:    t.favorites.List(),
		Settings:     t.settings,
	}
}

// Settings returns the current settings.
func (t *Tracker) Settings() Settings {
	return t.settings
}

func (t *Tracker) save() {
	if t.store == nil {
		return
	}
	if err := t.store.Save(t.State()); err != nil {
		t.log.Warn("saving state failed", "err", err)
	}
}

// Refresh republishes the current state. Hosts call it after document edits
// that produce no selection notification, so deleted favorites get pruned.
func (t *Tracker) Refresh() {
	t.publish()
}

func (t *Tracker) publish() {
	t.refreshFavorites()
	t.publisher.Update(t.Snapshot())
}

// refreshFavorites prunes favorites whose elements were deleted.
func (t *Tracker) refreshFavorites() {
	dropped := t.favorites.Refresh(t.resolver)
	if len(dropped) == 0 {
		return
	}
	for _, d := range dropped {
		t.log.Info("favorite dropped, element gone", "id", d.ElementID, "name", d.Name)
	}
	t.save()
}

// Snapshot builds the render view of the current state. Stale history
// entries are skipped but stay in history.
func (t *Tracker) Snapshot() Snapshot {
	entries := t.history.Entries()
	pos := t.history.Index()
	items := make([]HistoryItem, 0, len(entries))
	for i := len(entries) - 1; i >= 0 && len(items) < t.history.Capacity(); i-- {
		e := entries[i]
		el, ok := t.resolver.Resolve(e.ElementID)
		if !ok {
			continue
		}
		item := HistoryItem{
			ElementID: e.ElementID,
			Name:      el.Name,
			PageID:    e.PageID,
			IsSection: e.IsSection,
			Current:   i == pos,
		}
		if t.settings.ShowPageLabels {
			item.PageName = el.PageName
		}
		items = append(items, item)
	}

	selected, _ := t.selection.CurrentSelection()
	return Snapshot{
		History:              items,
		CurrentSelection:     selected,
		Favorites:            t.favorites.List(),
		CurrentFavoriteIndex: t.favorites.IndexOf(selected),
		Settings:             t.settings,
		CanHopBackward:       t.history.CanStep(-1, t.resolvable),
		CanHopForward:        t.history.CanStep(1, t.resolvable),
	}
}

// IsStale reports whether err describes an element that no longer exists.
func IsStale(err error) bool {
	return errors.Is(err, ErrElementNotFound)
}
