package storage

import (
	"context"
	"fmt"

	"github.com/claude/repbot/internal/models"
)

// UpsertUser creates the user on first contact and refreshes username and
// last_seen on every subsequent one.
func (db *DB) UpsertUser(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO users (telegram_id, username)
		 VALUES ($1, NULLIF($2, ''))
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
		     last_seen = NOW()
		 RETURNING telegram_id, COALESCE(username, ''), units, created_at, last_seen`,
		telegramID, username)

	var u models.User
	if err := row.Scan(&u.TelegramID, &u.Username, &u.Units, &u.CreatedAt, &u.LastSeen); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by Telegram ID.
func (db *DB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT telegram_id, COALESCE(username, ''), units, created_at, last_seen
		 FROM users WHERE telegram_id = $1`,
		telegramID)

	var u models.User
	if err := row.Scan(&u.TelegramID, &u.Username, &u.Units, &u.CreatedAt, &u.LastSeen); err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// SetUserUnits updates the user's preferred display units ("kg" or "lb").
func (db *DB) SetUserUnits(ctx context.Context, telegramID int64, units string) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE users SET units = $2 WHERE telegram_id = $1`, telegramID, units); err != nil {
		return fmt.Errorf("updating user units: %w", err)
	}
	return nil
}
