package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// BlobStore is a last-write-wins key/value table of opaque text blobs.
type BlobStore struct {
	db *sql.DB
}

// NewBlobStore creates a blob store using the given database.
func NewBlobStore(db *DB) *BlobStore {
	return &BlobStore{db: db.Conn()}
}

// Get returns the blob stored under key. The bool is false if the key is absent.
func (bs *BlobStore) Get(key string) (string, bool, error) {
	var value string
	err := bs.db.QueryRow(`SELECT value FROM plugin_data WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (bs *BlobStore) Put(key, value string) error {
	_, err := bs.db.Exec(
		`INSERT INTO plugin_data (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. The bool is false if the key was not present.
func (bs *BlobStore) Delete(key string) (bool, error) {
	res, err := bs.db.Exec(`DELETE FROM plugin_data WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	return n > 0, nil
}
