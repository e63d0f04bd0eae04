package nav

import "errors"

// Sentinel errors for navigation and favorites operations.
var (
	// ErrElementNotFound is returned when an element id no longer resolves in the host document.
	ErrElementNotFound = errors.New("element no longer exists")

	// ErrNotEligible is returned when an element kind cannot be tracked or favorited.
	ErrNotEligible = errors.New("element kind is not navigable")

	// ErrNoSelection is returned when an operation needs a selected element and there is none.
	ErrNoSelection = errors.New("nothing selected")

	// ErrInvalidReorder is returned when a favorites ordering is not a permutation of the current list.
	ErrInvalidReorder = errors.New("favorites order is not a permutation of the current favorites")

	// ErrInvalidCapacity is returned for history capacities outside the supported set.
	ErrInvalidCapacity = errors.New("unsupported history capacity")

	// ErrInvalidTheme is returned for unknown theme names.
	ErrInvalidTheme = errors.New("unknown theme")

	// ErrMalformedState is returned alongside a repaired state when a persisted record could not be fully decoded.
	ErrMalformedState = errors.New("malformed persisted state")
)
