package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Listener is one chat member opted into the aggregate listening report.
type Listener struct {
	UserID      int64
	Username    string // Last.fm username
	DisplayName string
	Handle      string // Telegram @handle, may be empty
}

// GroupsRepo stores, per chat, the members opted into the listening
// report. At most one entry exists per (chat, user); re-joining
// replaces the previous entry. There is no unsubscribe.
type GroupsRepo struct {
	db *sql.DB
}

// Upsert registers l in chatID's listener set, replacing any previous
// registration by the same user.
func (r *GroupsRepo) Upsert(ctx context.Context, chatID int64, l Listener) error {
	query := `
		INSERT INTO group_listeners (chat_id, user_id, lastfm_username, display_name, handle)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET
			lastfm_username = excluded.lastfm_username,
			display_name = excluded.display_name,
			handle = excluded.handle
	`

	if _, err := r.db.ExecContext(ctx, query, chatID, l.UserID, l.Username, l.DisplayName, l.Handle); err != nil {
		return fmt.Errorf("failed to register listener: %w", err)
	}
	return nil
}

// List returns chatID's listeners in join order. A chat nobody has
// joined yields an empty slice.
func (r *GroupsRepo) List(ctx context.Context, chatID int64) ([]Listener, error) {
	query := `
		SELECT user_id, lastfm_username, display_name, handle
		FROM group_listeners
		WHERE chat_id = ?
		ORDER BY joined_at ASC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listeners: %w", err)
	}
	defer rows.Close()

	var listeners []Listener
	for rows.Next() {
		var l Listener
		if err := rows.Scan(&l.UserID, &l.Username, &l.DisplayName, &l.Handle); err != nil {
			return nil, fmt.Errorf("failed to scan listener: %w", err)
		}
		listeners = append(listeners, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listeners: %w", err)
	}

	return listeners, nil
}
