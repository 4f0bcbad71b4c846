package embcache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the persistent cache tier: an unbounded fingerprint-to-record
// key-value table in SQLite. It is the authoritative tier; the memory tier
// is only an accelerator in front of it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the persistent tier at dbPath, creating
// parent directories as needed.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// WAL mode for concurrent readers during writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	const schema = `
	CREATE TABLE IF NOT EXISTS embeddings (
		fingerprint TEXT PRIMARY KEY,
		record      BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create embeddings table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get looks up a vector by fingerprint. A record that fails to decode is
// deleted and reported as a miss; decode failures never propagate. The
// returned error covers database access problems only.
func (s *Store) Get(fingerprint string) ([]float32, bool, error) {
	var record []byte
	err := s.db.QueryRow(
		"SELECT record FROM embeddings WHERE fingerprint = ?", fingerprint,
	).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query embedding record: %w", err)
	}

	vec, err := decodeRecord(record)
	if err != nil {
		// Self-heal: drop the corrupt row and treat as a miss.
		_ = s.Delete(fingerprint)
		return nil, false, nil
	}
	return vec, true, nil
}

// Put stores a vector under its fingerprint, overwriting any existing
// record. Overwrites are idempotent: identical text produces an identical
// record.
func (s *Store) Put(fingerprint string, vec []float32) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (fingerprint, record) VALUES (?, ?)",
		fingerprint, encodeRecord(vec),
	)
	if err != nil {
		return fmt.Errorf("store embedding record: %w", err)
	}
	return nil
}

// Delete removes a record by fingerprint.
func (s *Store) Delete(fingerprint string) error {
	_, err := s.db.Exec("DELETE FROM embeddings WHERE fingerprint = ?", fingerprint)
	return err
}

// Count returns the number of persisted records.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("count embedding records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
