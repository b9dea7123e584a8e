package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PrefsRepo stores each platform user's saved Last.fm username.
//
// Entries are created on first save, overwritten on later saves, and
// never deleted.
type PrefsRepo struct {
	db *sql.DB
}

// Username returns the saved Last.fm username for userID, or "" when
// none has been saved.
func (r *PrefsRepo) Username(ctx context.Context, userID int64) (string, error) {
	query := `SELECT lastfm_username FROM user_prefs WHERE user_id = ?`

	var username string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query username: %w", err)
	}

	return username, nil
}

// SetUsername saves (or replaces) the Last.fm username for userID.
func (r *PrefsRepo) SetUsername(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO user_prefs (user_id, lastfm_username)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			lastfm_username = excluded.lastfm_username,
			updated_at = strftime('%s', 'now')
	`

	if _, err := r.db.ExecContext(ctx, query, userID, username); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}
