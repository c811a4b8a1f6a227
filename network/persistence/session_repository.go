package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/dfryer1193/codeleap/shared/db"
)

var _ domain.SessionRepository = (*SQLiteSessionRepository)(nil)

const (
	keyUsername   = "username"
	keySignedInAt = "signed_in_at"
)

const upsertSessionQuery = `
	INSERT INTO session (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

// SQLiteSessionRepository keeps the signed-in username in the local session table.
type SQLiteSessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionRepository(conn *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{
		db:  conn,
		now: time.Now,
	}
}

// GetUsername reports the stored username, if there is one.
func (r *SQLiteSessionRepository) GetUsername(ctx context.Context) (string, bool, error) {
	value, ok, err := r.get(ctx, keyUsername)
	if err != nil {
		return "", false, fmt.Errorf("failed to get username: %w", err)
	}
	return value, ok, nil
}

// SignedInAt reports when the current username was stored.
func (r *SQLiteSessionRepository) SignedInAt(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := r.get(ctx, keySignedInAt)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse sign-in time %q: %w", value, err)
	}
	return t, true, nil
}

// SaveUsername stores the username and the sign-in time together.
func (r *SQLiteSessionRepository) SaveUsername(ctx context.Context, username string) error {
	if username == "" {
		return domain.ErrEmptyUsername
	}

	now := r.now().UTC()
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		if _, err := executor.ExecContext(txCtx, upsertSessionQuery, keyUsername, username, now); err != nil {
			return fmt.Errorf("failed to save username: %w", err)
		}

		if _, err := executor.ExecContext(txCtx, upsertSessionQuery, keySignedInAt, now.Format(time.RFC3339), now); err != nil {
			return fmt.Errorf("failed to save sign-in time: %w", err)
		}
		return nil
	})
}

// ClearUsername removes the stored session. Clearing an empty session is not an error.
func (r *SQLiteSessionRepository) ClearUsername(ctx context.Context) error {
	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, "DELETE FROM session WHERE key IN (?, ?)", keyUsername, keySignedInAt)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) get(ctx context.Context, key string) (string, bool, error) {
	executor := db.GetExecutor(ctx, r.db)

	var value string
	err := executor.QueryRowContext(ctx, "SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
