package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lotas/tabwart/internal/applog"
)

// FallbackKey is the secondary storage key written alongside every
// window-keyed save. It is stable across window-identity changes, so a
// session survives the OS reassigning window identifiers between launches.
const FallbackKey = "fallback"

// migration is a numbered schema change. Migrations are applied in order
// and tracked in the schema_migrations table so each runs exactly once.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS snapshots (
    storage_key TEXT PRIMARY KEY,
    payload     BLOB NOT NULL,
    saved_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
	},
	{
		Version:     2,
		Description: "create screenshots table",
		SQL: `
CREATE TABLE screenshots (
    key        TEXT PRIMARY KEY,
    blob       BLOB NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
	},
}

// Store persists tab snapshots and screenshot blobs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path. It creates parent
// directories if needed, enables foreign keys and WAL mode, and runs any
// pending migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// DefaultDBPath returns the default database file path:
// ~/.local/share/tabwart/tabwart.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tabwart", "tabwart.db"), nil
}

// Save writes the records under windowKey and duplicates the write to
// FallbackKey, both in one transaction. Best effort from the caller's point
// of view: the registry retries on the next mutation if this fails.
func (s *Store) Save(windowKey string, records []TabRecord) error {
	doc := snapshotDoc{Version: docVersion, Records: records}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	payload, err := compress(raw)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range []string{windowKey, FallbackKey} {
		_, err := tx.Exec(`INSERT INTO snapshots (storage_key, payload, saved_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(storage_key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
			key, payload,
		)
		if err != nil {
			return fmt.Errorf("write snapshot %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Load reads the snapshot for windowKey, falling back to FallbackKey if the
// primary key is absent or unreadable. A missing or corrupted snapshot is an
// empty session, never an error: the app must start with zero tabs rather
// than crash.
func (s *Store) Load(windowKey string) ([]TabRecord, error) {
	for _, key := range []string{windowKey, FallbackKey} {
		records, ok := s.loadKey(key)
		if ok {
			return records, nil
		}
	}
	return nil, nil
}

func (s *Store) loadKey(key string) ([]TabRecord, bool) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM snapshots WHERE storage_key = ?", key).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			applog.Error("store.load", err, "key", key)
		}
		return nil, false
	}

	raw, err := decompress(payload)
	if err != nil {
		applog.Error("store.decode", err, "key", key)
		return nil, false
	}

	var doc snapshotDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		applog.Error("store.unmarshal", err, "key", key)
		return nil, false
	}

	return doc.Records, true
}

// Clear removes the snapshots for windowKey and the fallback key.
func (s *Store) Clear(windowKey string) error {
	_, err := s.db.Exec("DELETE FROM snapshots WHERE storage_key IN (?, ?)", windowKey, FallbackKey)
	if err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

// Update stores a screenshot blob. Implements types.BlobStore.
func (s *Store) Update(key string, blob []byte) error {
	_, err := s.db.Exec(`INSERT INTO screenshots (key, blob, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		key, blob,
	)
	if err != nil {
		return fmt.Errorf("write screenshot %q: %w", key, err)
	}
	return nil
}

// Get fetches a screenshot blob. Implements types.BlobStore.
func (s *Store) Get(key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT blob FROM screenshots WHERE key = ?", key).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("screenshot %q not found", key)
		}
		return nil, fmt.Errorf("read screenshot %q: %w", key, err)
	}
	return blob, nil
}
