package nav

import "fmt"

// HistoryEntry is a recorded visit to an element within a page context.
// Two entries are the same visit when both ElementID and PageID match.
type HistoryEntry struct {
	ElementID string `json:"elementId"`
	PageID    string `json:"pageId"`
	IsSection bool   `json:"isSection"`
}

// Same reports whether e and o identify the same visit.
func (e HistoryEntry) Same(o HistoryEntry) bool {
	return e.ElementID == o.ElementID && e.PageID == o.PageID
}

// History is a bounded, deduplicated list of visited elements with a
// current-position pointer. Entries are kept oldest first.
type History struct {
	entries  []HistoryEntry
	pos      int // -1 when empty
	capacity int
	policy   Policy
}

// NewHistory creates an empty history. Unsupported capacities fall back to DefaultCapacity.
func NewHistory(capacity int, policy Policy) *History {
	if !ValidCapacity(capacity) {
		capacity = DefaultCapacity
	}
	return &History{
		pos:      -1,
		capacity: capacity,
		policy:   policy,
	}
}

// Record registers a visit and moves the pointer to it. Returns the entry's index.
func (h *History) Record(e HistoryEntry) int {
	if i := h.IndexOf(e.ElementID, e.PageID); i >= 0 {
		if h.policy == PolicyMoveToFront && i != len(h.entries)-1 {
			existing := h.entries[i]
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			h.entries = append(h.entries, existing)
			i = len(h.entries) - 1
		}
		h.pos = i
		return h.pos
	}

	h.entries = append(h.entries, e)
	h.pos = len(h.entries) - 1
	h.trim()
	return h.pos
}

// trim evicts from the oldest end until the history fits its capacity.
// The pointer keeps following the same entry; if that entry was evicted it
// moves to the newest one.
func (h *History) trim() {
	excess := len(h.entries) - h.capacity
	if excess <= 0 {
		return
	}
	kept := make([]HistoryEntry, h.capacity)
	copy(kept, h.entries[excess:])
	h.entries = kept
	h.pos -= excess
	if h.pos < 0 {
		h.pos = len(h.entries) - 1
	}
}

// SetCapacity changes the capacity, evicting the oldest entries if needed.
func (h *History) SetCapacity(capacity int) error {
	if !ValidCapacity(capacity) {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	h.capacity = capacity
	h.trim()
	return nil
}

// Capacity returns the maximum number of retained entries.
func (h *History) Capacity() int {
	return h.capacity
}

// SetPolicy changes how revisits are handled. Existing order is unchanged.
func (h *History) SetPolicy(p Policy) {
	h.policy = p
}

// Policy returns the revisit policy.
func (h *History) Policy() Policy {
	return h.policy
}

// Step moves the pointer in the direction of delta's sign to the nearest
// entry accepted by ok (nil accepts everything). The pointer is unchanged
// when no such entry exists.
func (h *History) Step(delta int, ok func(HistoryEntry) bool) (HistoryEntry, bool) {
	i := h.scan(delta, ok)
	if i < 0 {
		return HistoryEntry{}, false
	}
	h.pos = i
	return h.entries[i], true
}

// CanStep reports whether Step with the same arguments would move the pointer.
func (h *History) CanStep(delta int, ok func(HistoryEntry) bool) bool {
	return h.scan(delta, ok) >= 0
}

func (h *History) scan(delta int, ok func(HistoryEntry) bool) int {
	if delta == 0 || h.pos < 0 {
		return -1
	}
	dir := 1
	if delta < 0 {
		dir = -1
	}
	for i := h.pos + dir; i >= 0 && i < len(h.entries); i += dir {
		if ok == nil || ok(h.entries[i]) {
			return i
		}
	}
	return -1
}

// Current returns the entry at the pointer.
func (h *History) Current() (HistoryEntry, bool) {
	if h.pos < 0 || h.pos >= len(h.entries) {
		return HistoryEntry{}, false
	}
	return h.entries[h.pos], true
}

// Index returns the pointer, or -1 when the history is empty.
func (h *History) Index() int {
	return h.pos
}

// SetIndex moves the pointer to i. Returns false if i is out of range.
func (h *History) SetIndex(i int) bool {
	if i < 0 || i >= len(h.entries) {
		return false
	}
	h.pos = i
	return true
}

// IndexOf returns the position of the visit, or -1.
func (h *History) IndexOf(elementID, pageID string) int {
	visit := HistoryEntry{ElementID: elementID, PageID: pageID}
	for i, e := range h.entries {
		if e.Same(visit) {
			return i
		}
	}
	return -1
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	result := make([]HistoryEntry, len(h.entries))
	copy(result, h.entries)
	return result
}

// Restore replaces the contents with previously persisted entries.
// Duplicate visits are dropped (first occurrence wins), the list is cut down
// to capacity from the oldest end, and an out-of-range pointer is moved to
// the newest entry.
func (h *History) Restore(entries []HistoryEntry, pos int) {
	h.entries = make([]HistoryEntry, 0, len(entries))
	h.pos = -1
	var target HistoryEntry
	haveTarget := pos >= 0 && pos < len(entries)
	if haveTarget {
		target = entries[pos]
	}
	for _, e := range entries {
		if e.ElementID == "" || h.IndexOf(e.ElementID, e.PageID) >= 0 {
			continue
		}
		h.entries = append(h.entries, e)
	}
	if haveTarget {
		h.pos = h.IndexOf(target.ElementID, target.PageID)
	}
	if h.pos < 0 {
		h.pos = len(h.entries) - 1
	}
	h.trim()
}

// Clear removes every entry.
func (h *History) Clear() {
	h.entries = nil
	h.pos = -1
}
