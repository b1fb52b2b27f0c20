// Package storage persists cache metadata and usage records in an embedded
// SQLite database, keyed by alias.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/contextkit/corpora/internal/domain"
)

// appDirName is the directory under the XDG data home that holds the
// metadata database.
const appDirName = "corpora"

// schema creates the metadata tables when they do not exist.
const schema = `
CREATE TABLE IF NOT EXISTS caches (
	alias              TEXT PRIMARY KEY,
	cache_id           TEXT NOT NULL,
	token_count        INTEGER NOT NULL,
	source             TEXT NOT NULL DEFAULT '',
	system_instruction TEXT NOT NULL DEFAULT '',
	ttl_seconds        INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMP NOT NULL,
	expires_at         TIMESTAMP
);

CREATE TABLE IF NOT EXISTS usage_log (
	id                 TEXT PRIMARY KEY,
	cache_id           TEXT NOT NULL,
	operation          TEXT NOT NULL,
	tokens_used        INTEGER NOT NULL,
	cached_tokens_used INTEGER NOT NULL,
	logged_at          TIMESTAMP NOT NULL
);
`

// CacheRecord is one persisted cache-metadata row.
type CacheRecord struct {
	Alias             string     `db:"alias"              json:"alias"`
	CacheID           string     `db:"cache_id"           json:"cache_id"`
	TokenCount        int        `db:"token_count"        json:"token_count"`
	Source            string     `db:"source"             json:"source"`
	SystemInstruction string     `db:"system_instruction" json:"system_instruction,omitempty"`
	TTLSeconds        int        `db:"ttl_seconds"        json:"ttl_seconds"`
	CreatedAt         time.Time  `db:"created_at"         json:"created_at"`
	ExpiresAt         *time.Time `db:"expires_at"         json:"expires_at,omitempty"`
}

// UsageEntry is one recorded cache operation.
type UsageEntry struct {
	ID               string    `db:"id"                 json:"id"`
	CacheID          string    `db:"cache_id"           json:"cache_id"`
	Operation        string    `db:"operation"          json:"operation"`
	TokensUsed       int       `db:"tokens_used"        json:"tokens_used"`
	CachedTokensUsed int       `db:"cached_tokens_used" json:"cached_tokens_used"`
	LoggedAt         time.Time `db:"logged_at"          json:"logged_at"`
}

// Store wraps the SQLite connection.
type Store struct {
	db *sqlx.DB
}

// DefaultPath returns the database location under the XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, appDirName, "corpora.db")
}

// Open opens (creating if needed) the metadata database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a cache record by alias.
func (s *Store) Save(ctx context.Context, record *CacheRecord) error {
	if record.Alias == "" {
		return errors.New("storage: alias is required")
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if record.TTLSeconds > 0 && record.ExpiresAt == nil {
		expires := record.CreatedAt.Add(time.Duration(record.TTLSeconds) * time.Second)
		record.ExpiresAt = &expires
	}

	query := `
		INSERT OR REPLACE INTO caches
			(alias, cache_id, token_count, source, system_instruction, ttl_seconds, created_at, expires_at)
		VALUES
			(:alias, :cache_id, :token_count, :source, :system_instruction, :ttl_seconds, :created_at, :expires_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("save cache %q: %w", record.Alias, err)
	}

	return nil
}

// Get fetches a cache record by alias. A missing alias returns a
// *domain.CacheNotFoundError.
func (s *Store) Get(ctx context.Context, alias string) (*CacheRecord, error) {
	var record CacheRecord

	err := s.db.GetContext(ctx, &record, `SELECT * FROM caches WHERE alias = ?`, alias)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.CacheNotFoundError{Alias: alias}
	}

	if err != nil {
		return nil, fmt.Errorf("get cache %q: %w", alias, err)
	}

	return &record, nil
}

// List returns all cache records, newest first.
func (s *Store) List(ctx context.Context) ([]CacheRecord, error) {
	var records []CacheRecord

	err := s.db.SelectContext(ctx, &records, `SELECT * FROM caches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}

	return records, nil
}

// Delete removes a cache record by alias. Deleting a missing alias returns a
// *domain.CacheNotFoundError.
func (s *Store) Delete(ctx context.Context, alias string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM caches WHERE alias = ?`, alias)
	if err != nil {
		return fmt.Errorf("delete cache %q: %w", alias, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cache %q: %w", alias, err)
	}

	if affected == 0 {
		return &domain.CacheNotFoundError{Alias: alias}
	}

	return nil
}

// LogUsage appends one usage record.
func (s *Store) LogUsage(ctx context.Context, cacheID, operation string, tokensUsed, cachedTokensUsed int) error {
	entry := UsageEntry{
		ID:               uuid.New().String(),
		CacheID:          cacheID,
		Operation:        operation,
		TokensUsed:       tokensUsed,
		CachedTokensUsed: cachedTokensUsed,
		LoggedAt:         time.Now().UTC(),
	}

	query := `
		INSERT INTO usage_log (id, cache_id, operation, tokens_used, cached_tokens_used, logged_at)
		VALUES (:id, :cache_id, :operation, :tokens_used, :cached_tokens_used, :logged_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("log usage for %q: %w", cacheID, err)
	}

	return nil
}

// Usage returns usage entries for one cache, newest first.
func (s *Store) Usage(ctx context.Context, cacheID string) ([]UsageEntry, error) {
	var entries []UsageEntry

	err := s.db.SelectContext(ctx, &entries,
		`SELECT * FROM usage_log WHERE cache_id = ? ORDER BY logged_at DESC`, cacheID)
	if err != nil {
		return nil, fmt.Errorf("usage for %q: %w", cacheID, err)
	}

	return entries, nil
}
