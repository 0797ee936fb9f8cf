package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/autotag/internal/model"
)

// migrations are applied in order; migrations[i] brings the schema to
// version i+1.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY NOT NULL,
		title TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notes_path ON notes(path);
	`,
	`
	ALTER TABLE notes ADD COLUMN tagged_at TEXT;
	CREATE INDEX IF NOT EXISTS idx_notes_untagged ON notes(id) WHERE tagged_at IS NULL;
	`,
}

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// migrate applies every migration newer than the stored version, each in
// its own transaction together with the version bump.
func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Fresh database: schema_version does not exist yet.
		version = 0
	}

	for v := version; v < len(migrations); v++ {
		if err := s.applyMigration(v+1, migrations[v]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}

	return nil
}

func (s *SQLiteStorage) applyMigration(version int, ddl string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(ddl); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Store, error) {
	store := model.NewStore()

	rows, err := s.db.Query(`
		SELECT id, title, path, body, tags, created_at, tagged_at
		FROM notes
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var n model.Note
		var tagsJSON string
		var createdAtStr string
		var taggedAtStr sql.NullString

		if err := rows.Scan(&n.ID, &n.Title, &n.Path, &n.Body, &tagsJSON, &createdAtStr, &taggedAtStr); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
			n.Tags = []string{}
		}

		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)

		if taggedAtStr.Valid {
			t, err := time.Parse(time.RFC3339, taggedAtStr.String)
			if err == nil {
				n.TaggedAt = &t
			}
		}

		store.Notes = append(store.Notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store, nil
}

// Save writes the store to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(store *model.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM notes"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notes (id, title, path, body, tags, created_at, tagged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range store.Notes {
		tagsJSON, _ := json.Marshal(n.Tags)
		if n.Tags == nil {
			tagsJSON = []byte("[]")
		}
		createdAt := n.CreatedAt.Format(time.RFC3339)

		var taggedAt *string
		if n.TaggedAt != nil {
			v := n.TaggedAt.Format(time.RFC3339)
			taggedAt = &v
		}

		if _, err := stmt.Exec(n.ID, n.Title, n.Path, n.Body, string(tagsJSON), createdAt, taggedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/autotag/notes.db
func DefaultSQLitePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "notes.db"), nil
}
