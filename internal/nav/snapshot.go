package nav

// HistoryItem is a resolved history entry as shown in the panel.
type HistoryItem struct {
	ElementID string
	Name      string
	PageID    string
	PageName  string // empty unless page labels are shown
	IsSection bool
	Current   bool // entry under the history pointer
}

// Snapshot is the render-ready view pushed to the panel after every mutation.
type Snapshot struct {
	// History is most-recent-first, limited to the capacity, stale entries removed.
	History              []HistoryItem
	CurrentSelection     string
	Favorites            []FavoriteEntry
	CurrentFavoriteIndex int
	Settings             Settings
	CanHopBackward       bool
	CanHopForward        bool
}

// Empty reports whether the snapshot has neither history nor favorites.
func (s Snapshot) Empty() bool {
	return len(s.History) == 0 && len(s.Favorites) == 0
}

type nopPublisher struct{}

func (nopPublisher) Update(Snapshot) {}
func (nopPublisher) Cleared()        {}
