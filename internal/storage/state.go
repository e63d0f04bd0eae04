package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidyasagar/framehop/internal/nav"
)

// StateKey is the blob key the navigation state is stored under.
const StateKey = "frameHopData"

// ManagedStore is a state store that can report where it lives and wipe
// its record.
type ManagedStore interface {
	nav.StateStore

	// Path returns the file holding the state.
	Path() string

	// Reset removes the stored state, so the next Load behaves like a
	// first run. The bool is false if there was nothing to remove.
	Reset() (bool, error)
}

// SQLiteStateStore persists navigation state as a JSON blob in the database.
type SQLiteStateStore struct {
	db    *DB
	blobs *BlobStore
	key   string
}

// NewSQLiteStateStore creates a state store backed by the given database.
func NewSQLiteStateStore(db *DB) *SQLiteStateStore {
	return &SQLiteStateStore{db: db, blobs: NewBlobStore(db), key: StateKey}
}

// Path returns the database file path.
func (s *SQLiteStateStore) Path() string {
	return s.db.Path()
}

// Load implements nav.StateStore.
func (s *SQLiteStateStore) Load() (*nav.PersistedState, error) {
	value, ok, err := s.blobs.Get(s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return DecodeState([]byte(value))
}

// Save implements nav.StateStore.
func (s *SQLiteStateStore) Save(st nav.PersistedState) error {
	data, err := EncodeState(st)
	if err != nil {
		return err
	}
	return s.blobs.Put(s.key, string(data))
}

// Reset implements ManagedStore.
func (s *SQLiteStateStore) Reset() (bool, error) {
	return s.blobs.Delete(s.key)
}

// FileStateStore persists navigation state as a JSON file.
type FileStateStore struct {
	path string
}

// NewFileStateStore creates a file-backed state store in the given data directory.
func NewFileStateStore(dataDir string) (*FileStateStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStateStore{path: filepath.Join(dataDir, "state.json")}, nil
}

// Path returns the state file path.
func (fs *FileStateStore) Path() string {
	return fs.path
}

// Load implements nav.StateStore.
func (fs *FileStateStore) Load() (*nav.PersistedState, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}
	return DecodeState(data)
}

// Reset implements ManagedStore.
func (fs *FileStateStore) Reset() (bool, error) {
	err := os.Remove(fs.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing state: %w", err)
	}
	return true, nil
}

// Save implements nav.StateStore. The file is replaced atomically.
func (fs *FileStateStore) Save(st nav.PersistedState) error {
	data, err := EncodeState(st)
	if err != nil {
		return err
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}
