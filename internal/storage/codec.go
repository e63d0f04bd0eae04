package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/vidyasagar/framehop/internal/nav"
)

// EncodeState serializes a state record.
func EncodeState(st nav.PersistedState) ([]byte, error) {
	if st.History == nil {
		st.History = []nav.HistoryEntry{}
	}
	if st.Favorites == nil {
		st.Favorites = []nav.FavoriteEntry{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return data, nil
}

// DecodeState parses a state record field by field. Missing fields take
// their defaults; fields that cannot be parsed also take their defaults
// and are reported in an error wrapping nav.ErrMalformedState. The returned
// state is always usable.
//
// Settings are the exception: missing or unreadable settings fields are left
// zero so the tracker fills them from its configured defaults.
//
// History entries stored as bare element ids are accepted and come back
// with an empty page id.
func DecodeState(data []byte) (*nav.PersistedState, error) {
	st := nav.DefaultState(nav.Settings{})
	if !gjson.ValidBytes(data) {
		return &st, fmt.Errorf("%w: not valid JSON", nav.ErrMalformedState)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return &st, fmt.Errorf("%w: expected an object, got %s", nav.ErrMalformedState, root.Type)
	}

	var errs []error

	if v := root.Get("history"); v.Exists() && v.Type != gjson.Null {
		history, err := decodeHistory(v)
		if err != nil {
			errs = append(errs, err)
		}
		st.History = history
	}

	if v := root.Get("currentIndex"); v.Exists() {
		if v.Type == gjson.Number {
			st.CurrentIndex = int(v.Int())
		} else {
			errs = append(errs, fmt.Errorf("currentIndex: expected number, got %s", v.Type))
		}
	}

	if v := root.Get("favorites"); v.Exists() && v.Type != gjson.Null {
		favorites, err := decodeFavorites(v)
		if err != nil {
			errs = append(errs, err)
		}
		st.Favorites = favorites
	}

	if v := root.Get("settings"); v.Exists() && v.Type != gjson.Null {
		var settings nav.Settings
		if !v.IsObject() {
			errs = append(errs, fmt.Errorf("settings: expected object, got %s", v.Type))
		} else if err := json.Unmarshal([]byte(v.Raw), &settings); err != nil {
			errs = append(errs, fmt.Errorf("settings: %w", err))
			settings = nav.Settings{}
		}
		st.Settings = settings
	}

	if len(errs) > 0 {
		return &st, fmt.Errorf("%w: %w", nav.ErrMalformedState, errors.Join(errs...))
	}
	return &st, nil
}

func decodeHistory(v gjson.Result) ([]nav.HistoryEntry, error) {
	history := []nav.HistoryEntry{}
	if !v.IsArray() {
		return history, fmt.Errorf("history: expected array, got %s", v.Type)
	}
	var bad int
	for _, item := range v.Array() {
		switch {
		case item.Type == gjson.String && item.Str != "":
			history = append(history, nav.HistoryEntry{ElementID: item.Str})
		case item.IsObject() && item.Get("elementId").Type == gjson.String:
			history = append(history, nav.HistoryEntry{
				ElementID: item.Get("elementId").Str,
				PageID:    item.Get("pageId").String(),
				IsSection: item.Get("isSection").Bool(),
			})
		default:
			bad++
		}
	}
	if bad > 0 {
		return history, fmt.Errorf("history: skipped %d unreadable entries", bad)
	}
	return history, nil
}

func decodeFavorites(v gjson.Result) ([]nav.FavoriteEntry, error) {
	favorites := []nav.FavoriteEntry{}
	if !v.IsArray() {
		return favorites, fmt.Errorf("favorites: expected array, got %s", v.Type)
	}
	var bad int
	for _, item := range v.Array() {
		id := item.Get("elementId")
		if !item.IsObject() || id.Type != gjson.String || id.Str == "" {
			bad++
			continue
		}
		favorites = append(favorites, nav.FavoriteEntry{
			ElementID: id.Str,
			Name:      item.Get("name").String(),
			PageID:    item.Get("pageId").String(),
			PageName:  item.Get("pageName").String(),
			IsSection: item.Get("isSection").Bool(),
		})
	}
	if bad > 0 {
		return favorites, fmt.Errorf("favorites: skipped %d unreadable entries", bad)
	}
	return favorites, nil
}
