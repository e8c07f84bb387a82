package xref

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one persisted cross-reference entry.
type Record struct {
	ObjectName string
	Docname    string
	DocHash    string
	UpdatedAt  time.Time
}

// SQLiteStore persists cross-reference targets and docstring hashes across
// generation runs, enabling incremental regeneration and stable links.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the store. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS xref_targets (
		object_name TEXT PRIMARY KEY,
		docname TEXT NOT NULL,
		doc_hash TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_docname ON xref_targets(docname);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or updates a target record.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO xref_targets (object_name, docname, doc_hash, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(object_name) DO UPDATE SET
		   docname = excluded.docname,
		   doc_hash = excluded.doc_hash,
		   updated_at = excluded.updated_at`,
		rec.ObjectName, rec.Docname, rec.DocHash, updated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert xref target: %w", err)
	}
	return nil
}

// Get retrieves one target record.
func (s *SQLiteStore) Get(ctx context.Context, objectName string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT object_name, docname, doc_hash, updated_at FROM xref_targets WHERE object_name = ?",
		objectName,
	)
	var rec Record
	var updated int64
	if err := row.Scan(&rec.ObjectName, &rec.Docname, &rec.DocHash, &updated); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("query xref target: %w", err)
	}
	rec.UpdatedAt = time.Unix(updated, 0)
	return rec, true, nil
}

// Unchanged reports whether a target's docstring hash matches the stored
// one; unknown targets are never unchanged.
func (s *SQLiteStore) Unchanged(ctx context.Context, objectName, docHash string) (bool, error) {
	rec, ok, err := s.Get(ctx, objectName)
	if err != nil || !ok {
		return false, err
	}
	return rec.DocHash == docHash, nil
}

// All returns every persisted record, ordered by object name.
func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT object_name, docname, doc_hash, updated_at FROM xref_targets ORDER BY object_name",
	)
	if err != nil {
		return nil, fmt.Errorf("query xref targets: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var updated int64
		if err := rows.Scan(&rec.ObjectName, &rec.Docname, &rec.DocHash, &updated); err != nil {
			return nil, fmt.Errorf("scan xref target: %w", err)
		}
		rec.UpdatedAt = time.Unix(updated, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes targets whose pages no longer exist.
func (s *SQLiteStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM xref_targets WHERE object_name = ?", objectName)
	if err != nil {
		return fmt.Errorf("delete xref target: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
