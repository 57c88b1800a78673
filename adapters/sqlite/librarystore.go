package sqlite

import (
	"context"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/ports"
)

// LibraryStore implements ports.LibraryStore using SQLite.
type LibraryStore struct {
	db *DB
}

// NewLibraryStore creates a new SQLite library store.
func NewLibraryStore(db *DB) *LibraryStore {
	return &LibraryStore{db: db}
}

// Add grants a user a book. Adding an owned book is a no-op.
func (s *LibraryStore) Add(ctx context.Context, userID, bookID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library (user_id, book_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, book_id) DO NOTHING
	`, userID, bookID, at)
	return err
}

// Remove revokes a user's book.
func (s *LibraryStore) Remove(ctx context.Context, userID, bookID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM library WHERE user_id = ? AND book_id = ?
	`, userID, bookID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Owns reports whether the user owns the book.
func (s *LibraryStore) Owns(ctx context.Context, userID, bookID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM library WHERE user_id = ? AND book_id = ?
	`, userID, bookID).Scan(&n)
	return n > 0, err
}

// ListByUser returns the user's owned books, most recently added first.
func (s *LibraryStore) ListByUser(ctx context.Context, userID string) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, bookSelect+`
		JOIN library l ON l.book_id = b.id
		WHERE l.user_id = ?
		GROUP BY b.id
		ORDER BY l.added_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		b, err := scanBookRows(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountByUser returns how many books the user owns.
func (s *LibraryStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM library WHERE user_id = ?
	`, userID).Scan(&n)
	return n, err
}

// Ensure interface compliance.
var _ ports.LibraryStore = (*LibraryStore)(nil)
