package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and hands out the repositories: score
// records, the admin directory, the persisted key/value UI state and the
// advice request log.
type Store struct {
	db *sql.DB

	// admins is shared so every AdminRepo caller sees the same change
	// listeners.
	admins *adminRepo
}

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas and creates any missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{
		db:     db,
		admins: &adminRepo{db: db, listeners: &listenerSet{}},
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ScoreRepo returns the score record repository backed by this store.
func (s *Store) ScoreRepo() ScoreRepo {
	return &scoreRepo{db: s.db}
}

// AdminRepo returns the admin directory repository backed by this store.
func (s *Store) AdminRepo() AdminRepo {
	return s.admins
}

// StateRepo returns the key/value state repository backed by this store.
func (s *Store) StateRepo() StateRepo {
	return &stateRepo{db: s.db}
}

// AdviceLogRepo returns the advice request log backed by this store.
func (s *Store) AdviceLogRepo() AdviceLogRepo {
	return &adviceLogRepo{db: s.db}
}

// applyPragmas configures SQLite for single-user desktop use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates the schema. Column names are the durable snake_case
// side of the field mapping; the in-memory camelCase side lives in the
// repository structs.
func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS scores (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	full_name         TEXT NOT NULL DEFAULT '',
	chapter_id        INTEGER NOT NULL,
	chapter_title     TEXT NOT NULL,
	score             INTEGER NOT NULL,
	date              TIMESTAMP NOT NULL,
	user_answers      TEXT NOT NULL,
	correct_answers   TEXT NOT NULL,
	question_segments TEXT NOT NULL,
	choices           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_user_date ON scores (user_id, date);

CREATE TABLE IF NOT EXISTS admins (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	email        TEXT NOT NULL UNIQUE,
	display_name TEXT
);

CREATE TABLE IF NOT EXISTS app_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS advice_requests (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT ''
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. EXCELQUIZ_DB environment variable
// 2. $XDG_DATA_HOME/excelquiz/excelquiz.db
// 3. ~/.local/share/excelquiz/excelquiz.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EXCELQUIZ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "excelquiz", "excelquiz.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
