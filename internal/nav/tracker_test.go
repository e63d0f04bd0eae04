package nav

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost is an in-memory host document. With deferred set, selection
// notifications are queued until flush, like a host that reports on the next tick.
type fakeHost struct {
	elements  map[string]Element
	selected  string
	deferred  bool
	queue     []string
	listeners []func(string)
	selects   []string
	selectErr error
}

func newFakeHost() *fakeHost {
	h := &fakeHost{elements: map[string]Element{}}
	for _, id := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		h.elements[id] = Element{ID: id, Name: "Frame " + id, PageID: "p1", PageName: "Page 1", Kind: KindFrame}
	}
	h.elements["S"] = Element{ID: "S", Name: "Section", PageID: "p2", PageName: "Page 2", Kind: KindSection}
	h.elements["T"] = Element{ID: "T", Name: "Label", PageID: "p1", PageName: "Page 1", Kind: KindText}
	return h
}

func (h *fakeHost) Resolve(id string) (Element, bool) {
	el, ok := h.elements[id]
	return el, ok
}

func (h *fakeHost) CurrentSelection() (string, bool) {
	return h.selected, h.selected != ""
}

func (h *fakeHost) Select(id string) error {
	if h.selectErr != nil {
		return h.selectErr
	}
	h.selects = append(h.selects, id)
	h.setSelection(id)
	return nil
}

func (h *fakeHost) OnSelectionChanged(fn func(string)) {
	h.listeners = append(h.listeners, fn)
}

// userSelect simulates the user clicking an element.
func (h *fakeHost) userSelect(id string) {
	h.setSelection(id)
}

func (h *fakeHost) setSelection(id string) {
	if h.selected == id {
		return
	}
	h.selected = id
	if h.deferred {
		h.queue = append(h.queue, id)
		return
	}
	h.notify(id)
}

func (h *fakeHost) flush() {
	queue := h.queue
	h.queue = nil
	for _, id := range queue {
		h.notify(id)
	}
}

func (h *fakeHost) notify(id string) {
	for _, fn := range h.listeners {
		fn(id)
	}
}

type memStore struct {
	state   *PersistedState
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (*PersistedState, error) {
	if s.state == nil {
		return nil, s.loadErr
	}
	st := *s.state
	return &st, s.loadErr
}

func (s *memStore) Save(st PersistedState) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.state = &st
	return nil
}

type recordingPublisher struct {
	updates []Snapshot
	cleared int
}

func (p *recordingPublisher) Update(s Snapshot) { p.updates = append(p.updates, s) }
func (p *recordingPublisher) Cleared()          { p.cleared++ }

func (p *recordingPublisher) last() Snapshot {
	return p.updates[len(p.updates)-1]
}

type fixture struct {
	host  *fakeHost
	store *memStore
	pub   *recordingPublisher
	tr    *Tracker
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	f := &fixture{
		host:  newFakeHost(),
		store: &memStore{},
		pub:   &recordingPublisher{},
	}
	f.tr = NewTracker(Options{
		Resolver:  f.host,
		Selection: f.host,
		Store:     f.store,
		Publisher: f.pub,
		Policy:    policy,
	})
	f.tr.Start()
	return f
}

func (f *fixture) visit(ids ...string) {
	for _, id := range ids {
		f.host.userSelect(id)
	}
}

func historyIDs(tr *Tracker) []string {
	return ids(tr.State().History)
}

func TestTrackerStartFirstRunWritesDefaults(t *testing.T) {
	f := newFixture(t, PolicyAppend)

	require.NotNil(t, f.store.state)
	assert.Equal(t, DefaultState(DefaultSettings()), *f.store.state)
	require.NotEmpty(t, f.pub.updates)
	assert.Equal(t, -1, f.tr.State().CurrentIndex)
}

func TestTrackerRecordsEligibleSelections(t *testing.T) {
	f := newFixture(t, PolicyAppend)

	f.visit("A", "T", "S", "B")
	f.host.userSelect("")
	f.host.userSelect("missing")

	st := f.tr.State()
	assert.Equal(t, []string{"A", "S", "B"}, ids(st.History))
	assert.True(t, st.History[1].IsSection)
	assert.Equal(t, "p2", st.History[1].PageID)
	assert.Equal(t, 2, st.CurrentIndex)
	assert.Equal(t, st, *f.store.state, "every mutation is persisted")
}

func TestTrackerRevisitPolicies(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C", "A")
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
	assert.Equal(t, 0, f.tr.State().CurrentIndex)

	m := newFixture(t, PolicyMoveToFront)
	m.visit("A", "B", "C", "A")
	assert.Equal(t, []string{"B", "C", "A"}, historyIDs(m.tr))
	assert.Equal(t, 2, m.tr.State().CurrentIndex)
}

func TestTrackerSetPolicy(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C", "A")
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))

	f.tr.SetPolicy(PolicyMoveToFront)
	assert.Equal(t, PolicyMoveToFront, f.tr.Policy())
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr), "switching keeps the order")

	f.visit("B")
	assert.Equal(t, []string{"A", "C", "B"}, historyIDs(f.tr))
	assert.Equal(t, 2, f.tr.State().CurrentIndex)
}

func TestTrackerJumpToSuppressesOwnNotification(t *testing.T) {
	for _, policy := range []Policy{PolicyAppend, PolicyMoveToFront} {
		for _, deferred := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/deferred=%v", policy, deferred), func(t *testing.T) {
				f := newFixture(t, policy)
				f.visit("A", "B", "C")
				f.host.deferred = deferred

				require.NoError(t, f.tr.JumpTo("A"))
				assert.Equal(t, deferred, f.tr.navigating())
				f.host.flush()

				assert.False(t, f.tr.navigating())
				assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
				assert.Equal(t, 0, f.tr.State().CurrentIndex)
				assert.Equal(t, "A", f.host.selected)
			})
		}
	}
}

func TestTrackerJumpToElementOutsideHistory(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B")

	require.NoError(t, f.tr.JumpTo("S"))

	assert.Equal(t, []string{"A", "B"}, historyIDs(f.tr))
	assert.Equal(t, 1, f.tr.State().CurrentIndex)
	assert.Equal(t, "S", f.host.selected)
}

func TestTrackerJumpToMissingElementKeepsPendingJump(t *testing.T) {
	f := newFixture(t, PolicyMoveToFront)
	f.visit("A", "B")
	f.host.deferred = true
	require.NoError(t, f.tr.JumpTo("A"))
	require.True(t, f.tr.navigating())

	err := f.tr.JumpTo("gone")

	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.True(t, IsStale(err))
	assert.True(t, f.tr.navigating(), "the earlier jump is still in flight")
	assert.Equal(t, []string{"A"}, f.host.selects)

	f.host.flush()
	assert.False(t, f.tr.navigating())
	assert.Equal(t, []string{"A", "B"}, historyIDs(f.tr))
	assert.Equal(t, 0, f.tr.State().CurrentIndex)
}

func TestTrackerForeignNotificationEndsNavigation(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B")
	f.host.deferred = true

	require.NoError(t, f.tr.JumpTo("A"))
	// The user clicks C before the host reported A.
	f.host.queue = nil
	f.host.selected = "C"
	f.host.notify("C")

	assert.False(t, f.tr.navigating())
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
	assert.Equal(t, 2, f.tr.State().CurrentIndex)
}

func TestTrackerJumpToSelectFailure(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B")
	f.host.selectErr = errors.New("viewport locked")

	err := f.tr.JumpTo("A")

	assert.Error(t, err)
	assert.False(t, f.tr.navigating())
	assert.Equal(t, 1, f.tr.State().CurrentIndex)
}

func TestTrackerHops(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C")

	assert.False(t, f.tr.HopForward(), "already at newest entry")
	assert.Equal(t, 2, f.tr.State().CurrentIndex)

	require.True(t, f.tr.HopBackward())
	assert.Equal(t, 1, f.tr.State().CurrentIndex)
	assert.Equal(t, "B", f.host.selected)

	require.True(t, f.tr.HopBackward())
	assert.Equal(t, "A", f.host.selected)

	saves := f.store.saves
	assert.False(t, f.tr.HopBackward())
	assert.Equal(t, 0, f.tr.State().CurrentIndex)
	assert.Equal(t, saves, f.store.saves, "boundary hop does not write")

	require.True(t, f.tr.HopForward())
	assert.Equal(t, "B", f.host.selected)
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
	assert.False(t, f.tr.navigating())
}

func TestTrackerHopsDeferredNotifications(t *testing.T) {
	for _, policy := range []Policy{PolicyAppend, PolicyMoveToFront} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, policy)
			f.visit("A", "B", "C")
			f.host.deferred = true

			require.True(t, f.tr.HopBackward())
			f.host.flush()
			assert.False(t, f.tr.navigating())

			// Several hops before the host reports any of them.
			require.True(t, f.tr.HopBackward())
			require.True(t, f.tr.HopForward())
			require.True(t, f.tr.HopBackward())
			require.Equal(t, []string{"A", "B", "A"}, f.host.queue)
			saves := f.store.saves
			f.host.flush()

			assert.False(t, f.tr.navigating())
			assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
			assert.Equal(t, 0, f.tr.State().CurrentIndex)
			assert.Equal(t, "A", f.host.selected)
			assert.Equal(t, saves, f.store.saves, "reported hops are not recorded again")
		})
	}
}

func TestTrackerCoalescedNotificationConsumesOlderPending(t *testing.T) {
	f := newFixture(t, PolicyMoveToFront)
	f.visit("A", "B", "C")
	f.host.deferred = true

	require.True(t, f.tr.HopBackward())
	require.True(t, f.tr.HopBackward())
	// The host only reports the final selection.
	f.host.queue = []string{"A"}
	f.host.flush()

	assert.False(t, f.tr.navigating())
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr))
	assert.Equal(t, 0, f.tr.State().CurrentIndex)

	f.host.userSelect("B")
	f.host.flush()
	assert.Equal(t, []string{"A", "C", "B"}, historyIDs(f.tr))
	assert.Equal(t, 2, f.tr.State().CurrentIndex)
}

func TestTrackerHopSkipsDeletedElements(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C")
	delete(f.host.elements, "B")

	require.True(t, f.tr.HopBackward())
	assert.Equal(t, "A", f.host.selected)
	assert.Equal(t, 0, f.tr.State().CurrentIndex)
	assert.Equal(t, []string{"A", "B", "C"}, historyIDs(f.tr), "stale entries stay in history")

	delete(f.host.elements, "C")
	assert.False(t, f.tr.HopForward())
	assert.Equal(t, 0, f.tr.State().CurrentIndex)
}

func TestTrackerHopOnEmptyHistory(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	assert.False(t, f.tr.HopBackward())
	assert.False(t, f.tr.HopForward())
	assert.Equal(t, -1, f.tr.State().CurrentIndex)
}

func TestTrackerSetCapacityKeepsCurrentEntry(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C", "D", "E", "F", "G", "H", "I", "J")
	require.NoError(t, f.tr.JumpTo("H"))

	require.NoError(t, f.tr.SetCapacity(4))

	st := f.tr.State()
	assert.Equal(t, []string{"G", "H", "I", "J"}, ids(st.History))
	assert.Equal(t, 1, st.CurrentIndex)
	assert.Equal(t, 4, st.Settings.HistoryCapacity)

	snap := f.pub.last()
	require.Len(t, snap.History, 4)
	for _, item := range snap.History {
		assert.Equal(t, item.ElementID == "H", item.Current, item.ElementID)
	}

	assert.ErrorIs(t, f.tr.SetCapacity(3), ErrInvalidCapacity)
	assert.Equal(t, 8, f.tr.CycleCapacity())
}

func TestTrackerSnapshot(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "S", "B")
	f.tr.SetShowPageLabels(true)
	f.tr.AddFavorite(FavoriteEntry{ElementID: "A", Name: "Frame A"})
	f.tr.AddFavorite(FavoriteEntry{ElementID: "B", Name: "Frame B"})
	delete(f.host.elements, "S")

	require.NoError(t, f.tr.JumpTo("B"))
	snap := f.pub.last()

	require.Len(t, snap.History, 2)
	assert.Equal(t, "B", snap.History[0].ElementID)
	assert.Equal(t, "A", snap.History[1].ElementID)
	assert.Equal(t, "Page 1", snap.History[0].PageName)
	assert.True(t, snap.History[0].Current)
	assert.Equal(t, "B", snap.CurrentSelection)
	assert.Equal(t, 1, snap.CurrentFavoriteIndex)
	assert.True(t, snap.CanHopBackward)
	assert.False(t, snap.CanHopForward)

	f.tr.SetShowPageLabels(false)
	assert.Empty(t, f.pub.last().History[0].PageName)
}

func TestTrackerSnapshotHopFlagsSkipDeletedEntries(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B", "C")
	require.True(t, f.pub.last().CanHopBackward)

	delete(f.host.elements, "A")
	delete(f.host.elements, "B")
	f.tr.Refresh()

	assert.False(t, f.pub.last().CanHopBackward)
	assert.False(t, f.tr.HopBackward())

	g := newFixture(t, PolicyAppend)
	g.visit("A", "B", "C")
	require.NoError(t, g.tr.JumpTo("A"))
	require.True(t, g.pub.last().CanHopForward)

	delete(g.host.elements, "B")
	delete(g.host.elements, "C")
	g.tr.Refresh()

	assert.False(t, g.pub.last().CanHopForward)
	assert.False(t, g.tr.HopForward())
	assert.Equal(t, 0, g.tr.State().CurrentIndex)
}

func TestTrackerToggleFavorite(t *testing.T) {
	f := newFixture(t, PolicyAppend)

	_, err := f.tr.ToggleFavorite()
	assert.ErrorIs(t, err, ErrNoSelection)

	f.visit("S")
	added, err := f.tr.ToggleFavorite()
	require.NoError(t, err)
	assert.True(t, added)
	favs := f.tr.State().Favorites
	require.Len(t, favs, 1)
	assert.Equal(t, FavoriteEntry{ElementID: "S", Name: "Section", PageID: "p2", PageName: "Page 2", IsSection: true}, favs[0])
	assert.Equal(t, 0, f.pub.last().CurrentFavoriteIndex)

	added, err = f.tr.ToggleFavorite()
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, f.tr.State().Favorites)
	assert.Equal(t, -1, f.pub.last().CurrentFavoriteIndex)

	f.visit("T")
	_, err = f.tr.ToggleFavorite()
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestTrackerFavoritesPrunedOnPublish(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.tr.AddFavorite(FavoriteEntry{ElementID: "A"})
	f.tr.AddFavorite(FavoriteEntry{ElementID: "B"})
	delete(f.host.elements, "B")
	f.host.elements["A"] = Element{ID: "A", Name: "Renamed", PageID: "p1", PageName: "Page 1", Kind: KindFrame}

	f.visit("C")

	favs := f.store.state.Favorites
	require.Len(t, favs, 1)
	assert.Equal(t, "A", favs[0].ElementID)
	assert.Equal(t, "Renamed", favs[0].Name)
}

func TestTrackerRefreshPrunesDeletedFavorites(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.tr.AddFavorite(FavoriteEntry{ElementID: "A"})
	updates := len(f.pub.updates)
	delete(f.host.elements, "A")

	f.tr.Refresh()

	assert.Len(t, f.pub.updates, updates+1)
	assert.Empty(t, f.pub.last().Favorites)
	assert.Empty(t, f.store.state.Favorites)
}

func TestTrackerReorderFavorites(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	for _, id := range []string{"A", "B", "C"} {
		f.tr.AddFavorite(FavoriteEntry{ElementID: id})
	}

	saves := f.store.saves
	err := f.tr.ReorderFavorites([]string{"C", "A"})
	assert.ErrorIs(t, err, ErrInvalidReorder)
	assert.Equal(t, saves, f.store.saves)

	require.NoError(t, f.tr.ReorderFavorites([]string{"C", "A", "B"}))
	require.NoError(t, f.tr.MoveFavorite("B", -1))
	assert.Equal(t, []string{"C", "B", "A"}, f.tr.favorites.IDs())
}

func TestTrackerClearAll(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B")
	f.tr.AddFavorite(FavoriteEntry{ElementID: "A"})
	require.NoError(t, f.tr.SetTheme(ThemeLight))

	f.tr.ClearAll()

	st := f.tr.State()
	assert.Empty(t, st.History)
	assert.Equal(t, -1, st.CurrentIndex)
	assert.Empty(t, st.Favorites)
	assert.Equal(t, DefaultSettings(), st.Settings)
	assert.Equal(t, 1, f.pub.cleared)
	assert.Equal(t, st, *f.store.state)

	assert.False(t, f.tr.HopBackward())
	assert.False(t, f.tr.HopForward())
}

func TestTrackerClearHistoryKeepsFavorites(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.visit("A", "B")
	f.tr.AddFavorite(FavoriteEntry{ElementID: "A"})

	f.tr.ClearHistory()

	assert.Empty(t, f.tr.State().History)
	assert.Len(t, f.tr.State().Favorites, 1)
	assert.Equal(t, 0, f.pub.cleared, "snapshot is not empty")
}

func TestTrackerLoadsAndNormalizesState(t *testing.T) {
	host := newFakeHost()
	host.selected = "C"
	store := &memStore{state: &PersistedState{
		History: []HistoryEntry{
			{ElementID: "A"}, // legacy record without page
			{ElementID: "B", PageID: "p1"},
			{ElementID: "B", PageID: "p1"},
			{ElementID: "C", PageID: "p1"},
		},
		CurrentIndex: 1,
		Favorites:    []FavoriteEntry{{ElementID: "S"}},
		Settings:     Settings{HistoryCapacity: 7, Theme: "sepia", ShowPageLabels: true},
	}, loadErr: fmt.Errorf("%w: settings", ErrMalformedState)}

	tr := NewTracker(Options{Resolver: host, Selection: host, Store: store})
	tr.Start()

	st := tr.State()
	assert.Equal(t, []HistoryEntry{
		{ElementID: "A", PageID: "p1"},
		{ElementID: "B", PageID: "p1"},
		{ElementID: "C", PageID: "p1"},
	}, st.History)
	assert.Equal(t, 2, st.CurrentIndex, "startup selection C is processed")
	assert.Equal(t, Settings{HistoryCapacity: DefaultCapacity, Theme: ThemeDark, ShowPageLabels: true}, st.Settings)
	assert.Equal(t, "Section", st.Favorites[0].Name)
}

func TestTrackerLoadWithoutSettingsUsesConfiguredDefaults(t *testing.T) {
	host := newFakeHost()
	store := &memStore{state: &PersistedState{
		History:      []HistoryEntry{{ElementID: "A", PageID: "p1"}},
		CurrentIndex: 0,
	}}
	defaults := Settings{ShowPageLabels: true, HistoryCapacity: 8, Theme: ThemeLight}

	tr := NewTracker(Options{Resolver: host, Selection: host, Store: store, Defaults: defaults})
	tr.Start()

	assert.Equal(t, defaults, tr.Settings())
	assert.Equal(t, []string{"A"}, historyIDs(tr))
}

func TestTrackerSaveErrorsAreNotFatal(t *testing.T) {
	f := newFixture(t, PolicyAppend)
	f.store.saveErr = errors.New("disk full")

	f.visit("A", "B")

	assert.Equal(t, []string{"A", "B"}, historyIDs(f.tr))
	assert.Equal(t, 1, f.tr.State().CurrentIndex)
}

func TestTrackerWithoutStore(t *testing.T) {
	host := newFakeHost()
	tr := NewTracker(Options{Resolver: host, Selection: host})
	tr.Start()
	host.userSelect("A")
	assert.Equal(t, []string{"A"}, historyIDs(tr))
}
