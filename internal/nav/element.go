package nav

// Kind is the host's node type for an element.
type Kind string

const (
	KindFrame        Kind = "FRAME"
	KindComponent    Kind = "COMPONENT"
	KindComponentSet Kind = "COMPONENT_SET"
	KindSection      Kind = "SECTION"
	KindGroup        Kind = "GROUP"
	KindText         Kind = "TEXT"
	KindRectangle    Kind = "RECTANGLE"
)

// Eligible reports whether selecting an element of this kind enters history.
func (k Kind) Eligible() bool {
	switch k {
	case KindFrame, KindComponent, KindComponentSet, KindSection:
		return true
	}
	return false
}

// IsSection reports whether the kind is a section-like container.
func (k Kind) IsSection() bool {
	return k == KindSection
}

// Element is the live view of a host element returned by a Resolver.
type Element struct {
	ID       string
	Name     string
	PageID   string
	PageName string
	Kind     Kind
}

// Resolver looks up live element data by id.
type Resolver interface {
	// Resolve returns the element, or false if it no longer exists.
	Resolve(id string) (Element, bool)
}

// SelectionPort is the host's selection API.
type SelectionPort interface {
	// CurrentSelection returns the selected element id, if any.
	CurrentSelection() (string, bool)

	// Select selects the element, switching the active page when needed.
	// The host reports the change through the OnSelectionChanged callback,
	// either synchronously or later.
	Select(id string) error

	// OnSelectionChanged registers a callback for selection changes.
	// An empty id means the selection was cleared.
	OnSelectionChanged(fn func(id string))
}

// StateStore persists the serialized navigation state.
type StateStore interface {
	// Load returns the stored state, or nil on first run. A non-nil state
	// returned together with ErrMalformedState has been repaired and is usable.
	Load() (*PersistedState, error)

	// Save replaces the stored state.
	Save(st PersistedState) error
}

// Publisher receives snapshots for rendering.
type Publisher interface {
	// Update is called after every mutation with the new snapshot.
	Update(s Snapshot)

	// Cleared is called when a clear command emptied the snapshot.
	Cleared()
}
