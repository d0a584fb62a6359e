package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// KVRepository provides get/set access to named text values in kv_entries.
type KVRepository struct {
	conn *sql.DB
}

// NewKVRepository creates a repository over an open connection.
func NewKVRepository(conn *sql.DB) *KVRepository {
	return &KVRepository{conn: conn}
}

// Get returns the stored value for key and whether it exists.
func (r *KVRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRow("SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read kv entry %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (r *KVRepository) Put(key, value string) error {
	_, err := r.conn.Exec(
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write kv entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key if present.
func (r *KVRepository) Delete(key string) error {
	if _, err := r.conn.Exec("DELETE FROM kv_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete kv entry %q: %w", key, err)
	}
	return nil
}
