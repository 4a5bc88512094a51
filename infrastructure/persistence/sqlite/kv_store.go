package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// KeyValueStore is a single-table key-value store in an SQLite file. It
// stands in for browser local storage when the service runs on one machine.
type KeyValueStore struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the schema
func Open(path string) (*KeyValueStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	store := &KeyValueStore{conn: conn}
	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *KeyValueStore) Close() error {
	return s.conn.Close()
}

func (s *KeyValueStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	_, err := s.conn.Exec(schema)
	return err
}

// Load retrieves the value stored under key
func (s *KeyValueStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %q: %w", key, err)
	}
	return value, true, nil
}

// Save stores or replaces the value under key
func (s *KeyValueStore) Save(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.conn.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}
