package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openshelf/openshelf/ports"
)

// ResetTokenStore implements ports.ResetTokenStore using SQLite.
type ResetTokenStore struct {
	db *DB
}

// NewResetTokenStore creates a new SQLite reset token store.
func NewResetTokenStore(db *DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

// Save stores a token, replacing any previous one for the user.
func (s *ResetTokenStore) Save(ctx context.Context, t ports.ResetToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reset_tokens (user_id, hash, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET hash = excluded.hash, expires_at = excluded.expires_at
	`, t.UserID, t.Hash, t.ExpiresAt)
	return err
}

// GetByHash retrieves a token by its hash.
func (s *ResetTokenStore) GetByHash(ctx context.Context, hash []byte) (ports.ResetToken, error) {
	var t ports.ResetToken
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, hash, expires_at
		FROM reset_tokens
		WHERE hash = ?
	`, hash).Scan(&t.UserID, &t.Hash, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ResetToken{}, ErrNotFound
	}
	if err != nil {
		return ports.ResetToken{}, err
	}
	return t, nil
}

// Delete removes the user's token after use.
func (s *ResetTokenStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE user_id = ?`, userID)
	return err
}

// DeleteExpired removes all expired tokens.
func (s *ResetTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Ensure interface compliance.
var _ ports.ResetTokenStore = (*ResetTokenStore)(nil)
