package nav

import (
	"fmt"
	"slices"
)

// FavoriteEntry is a user-pinned element. Favorites are keyed by ElementID alone.
type FavoriteEntry struct {
	ElementID string `json:"elementId"`
	Name      string `json:"name"`
	PageID    string `json:"pageId"`
	PageName  string `json:"pageName"`
	IsSection bool   `json:"isSection"`
}

// Favorites is an ordered, user-curated list of pinned elements.
type Favorites struct {
	items []FavoriteEntry
}

// NewFavorites creates a favorites list from persisted entries, dropping duplicates.
func NewFavorites(items []FavoriteEntry) *Favorites {
	f := &Favorites{}
	for _, item := range items {
		if item.ElementID == "" || f.IndexOf(item.ElementID) >= 0 {
			continue
		}
		f.items = append(f.items, item)
	}
	return f
}

// Add appends a favorite, or updates the cached fields of an existing one in place.
// Returns true if a new entry was appended.
func (f *Favorites) Add(item FavoriteEntry) bool {
	if i := f.IndexOf(item.ElementID); i >= 0 {
		f.items[i] = item
		return false
	}
	f.items = append(f.items, item)
	return true
}

// Remove deletes the favorite for elementID. Returns false if it was not a favorite.
func (f *Favorites) Remove(elementID string) bool {
	i := f.IndexOf(elementID)
	if i < 0 {
		return false
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return true
}

// IndexOf returns the position of elementID, or -1.
func (f *Favorites) IndexOf(elementID string) int {
	if elementID == "" {
		return -1
	}
	for i, item := range f.items {
		if item.ElementID == elementID {
			return i
		}
	}
	return -1
}

// Reorder replaces the order with ids, which must name every current
// favorite exactly once. The order is left untouched otherwise.
func (f *Favorites) Reorder(ids []string) error {
	if len(ids) != len(f.items) {
		return fmt.Errorf("%w: got %d ids for %d favorites", ErrInvalidReorder, len(ids), len(f.items))
	}
	byID := make(map[string]FavoriteEntry, len(f.items))
	for _, item := range f.items {
		byID[item.ElementID] = item
	}
	reordered := make([]FavoriteEntry, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %q missing or repeated", ErrInvalidReorder, id)
		}
		delete(byID, id)
		reordered = append(reordered, item)
	}
	f.items = reordered
	return nil
}

// MoveOrder returns the ids in the order that results from shifting a
// favorite by delta positions, clamped to the list bounds. The list itself
// is not changed; pass the result to Reorder.
func (f *Favorites) MoveOrder(elementID string, delta int) ([]string, error) {
	i := f.IndexOf(elementID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q is not a favorite", ErrInvalidReorder, elementID)
	}
	j := min(max(i+delta, 0), len(f.items)-1)
	ids := slices.Delete(f.IDs(), i, i+1)
	return slices.Insert(ids, j, elementID), nil
}

// Refresh re-resolves every favorite. Entries whose element is gone are
// dropped and returned; the rest get their cached names and page refreshed.
func (f *Favorites) Refresh(r Resolver) []FavoriteEntry {
	var dropped []FavoriteEntry
	kept := f.items[:0]
	for _, item := range f.items {
		el, ok := r.Resolve(item.ElementID)
		if !ok {
			dropped = append(dropped, item)
			continue
		}
		item.Name = el.Name
		item.PageID = el.PageID
		item.PageName = el.PageName
		kept = append(kept, item)
	}
	f.items = kept
	return dropped
}

// IDs returns the favorite element ids in order.
func (f *Favorites) IDs() []string {
	ids := make([]string, len(f.items))
	for i, item := range f.items {
		ids[i] = item.ElementID
	}
	return ids
}

// List returns a copy of the favorites in order.
func (f *Favorites) List() []FavoriteEntry {
	result := make([]FavoriteEntry, len(f.items))
	copy(result, f.items)
	return result
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	return len(f.items)
}

// Clear removes every favorite.
func (f *Favorites) Clear() {
	f.items = nil
}
