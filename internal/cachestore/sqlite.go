package cachestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

type sqliteCache struct {
	store *sqliteStore
	name  string
}

// NewSQLite opens a Store in the SQLite database at path. Use ":memory:"
// for a throwaway database.
func NewSQLite(ctx context.Context, path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &sqliteStore{db: db}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *sqliteStore) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		name TEXT PRIMARY KEY,
		created INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS entries (
		generation TEXT NOT NULL,
		req_key TEXT NOT NULL,
		status INTEGER NOT NULL,
		header TEXT,
		body BLOB,
		stored_at INTEGER NOT NULL,
		PRIMARY KEY (generation, req_key)
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Driver() Driver { return DriverSQLite }

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Open(ctx context.Context, name string) (Cache, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO generations (name, created) VALUES (?, ?)",
		name, time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation %s: %w", name, err)
	}
	return &sqliteCache{store: s, name: name}, nil
}

func (s *sqliteStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryStrings(ctx, s.db, "SELECT name FROM generations ORDER BY name")
}

func (s *sqliteStore) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM generations WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete generation %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE generation = ?", name); err != nil {
		return false, fmt.Errorf("delete entries of %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *sqliteStore) Match(ctx context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT e.status, e.header, e.body, e.stored_at FROM entries e
		JOIN generations g ON g.name = e.generation
		WHERE e.req_key = ? ORDER BY g.name LIMIT 1`, key)
	return scanEntry(row)
}

func (c *sqliteCache) Put(ctx context.Context, key string, entry Entry) error {
	header, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	stored := entry.StoredAt
	if stored.IsZero() {
		stored = time.Now()
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	_, err = c.store.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO entries (generation, req_key, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.name, key, entry.Status, string(header), entry.Body, stored.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (c *sqliteCache) Match(ctx context.Context, key string) (Entry, bool, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	row := c.store.db.QueryRowContext(ctx,
		"SELECT status, header, body, stored_at FROM entries WHERE generation = ? AND req_key = ?",
		c.name, key)
	return scanEntry(row)
}

func (c *sqliteCache) Keys(ctx context.Context) ([]string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return queryStrings(ctx, c.store.db, "SELECT req_key FROM entries WHERE generation = ? ORDER BY req_key", c.name)
}

func scanEntry(row *sql.Row) (Entry, bool, error) {
	var (
		e      Entry
		header sql.NullString
		stored int64
	)
	if err := row.Scan(&e.Status, &header, &e.Body, &stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("scan entry: %w", err)
	}
	if header.Valid && header.String != "" && header.String != "null" {
		e.Header = make(http.Header)
		if err := json.Unmarshal([]byte(header.String), &e.Header); err != nil {
			return Entry{}, false, fmt.Errorf("decode header: %w", err)
		}
	}
	e.StoredAt = time.Unix(0, stored)
	return e, true, nil
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
