// Package storage provides a SQLite search cache.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/richinex/shopwise/model"
)

// SqliteCache implements SearchCache using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSqlite opens or creates a SQLite cache at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string, ttl time.Duration) (*SqliteCache, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newSqliteCache(db, ttl)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory(ttl time.Duration) (*SqliteCache, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Each new connection to ":memory:" is a separate empty database.
	db.SetMaxOpenConns(1)
	return newSqliteCache(db, ttl)
}

func newSqliteCache(db *sql.DB, ttl time.Duration) (*SqliteCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cache := &SqliteCache{db: db, ttl: ttl, now: time.Now}
	if err := cache.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return cache, nil
}

// Close closes the database connection.
func (s *SqliteCache) Close() error {
	return s.db.Close()
}

func (s *SqliteCache) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS search_results (
			cache_key TEXT PRIMARY KEY,
			documents TEXT NOT NULL,
			doc_count INTEGER NOT NULL,
			stored_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_search_results_stored
		ON search_results(stored_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns cached documents for key. An expired entry is deleted.
func (s *SqliteCache) Get(ctx context.Context, key string) ([]model.Document, bool, error) {
	var raw string
	var storedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT documents, stored_at FROM search_results WHERE cache_key = ?",
		key).Scan(&raw, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	if s.now().Sub(time.Unix(storedAt, 0)) > s.ttl {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM search_results WHERE cache_key = ?", key); err != nil {
			return nil, false, fmt.Errorf("failed to evict expired entry: %w", err)
		}
		return nil, false, nil
	}

	var docs []model.Document
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached documents: %w", err)
	}
	return docs, true, nil
}

// Put stores documents for key, replacing any previous entry.
func (s *SqliteCache) Put(ctx context.Context, key string, docs []model.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO search_results (cache_key, documents, doc_count, stored_at)
		VALUES (?, ?, ?, ?)`,
		key, string(raw), len(docs), s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store search results: %w", err)
	}
	return nil
}

// Purge removes expired entries.
func (s *SqliteCache) Purge(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM search_results WHERE stored_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return int(n), nil
}

// Verify SqliteCache implements SearchCache
var _ SearchCache = (*SqliteCache)(nil)
