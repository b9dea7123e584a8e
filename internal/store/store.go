// Package store persists per-user preferences and per-chat listener
// registries in SQLite.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite database backing the two repositories.
type Store struct {
	db     *sql.DB
	prefs  *PrefsRepo
	groups *GroupsRepo
}

// Open opens (creating if necessary) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps in-memory databases consistent and is
	// plenty for this write volume.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS user_prefs (
			user_id INTEGER PRIMARY KEY,
			lastfm_username TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE TABLE IF NOT EXISTS group_listeners (
			chat_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			lastfm_username TEXT NOT NULL,
			display_name TEXT NOT NULL,
			handle TEXT NOT NULL DEFAULT '',
			joined_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (chat_id, user_id)
		);

		CREATE INDEX IF NOT EXISTS idx_group_listeners_chat ON group_listeners(chat_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db}
	s.prefs = &PrefsRepo{db: db}
	s.groups = &GroupsRepo{db: db}
	return s, nil
}

// Prefs returns the per-user preference repository.
func (s *Store) Prefs() *PrefsRepo {
	return s.prefs
}

// Groups returns the per-chat listener registry repository.
func (s *Store) Groups() *GroupsRepo {
	return s.groups
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
