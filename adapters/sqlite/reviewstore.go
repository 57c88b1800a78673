package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/ports"
)

// ReviewStore implements ports.ReviewStore using SQLite.
type ReviewStore struct {
	db *DB
}

// NewReviewStore creates a new SQLite review store.
func NewReviewStore(db *DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// reviewSelect joins the reviewer's name so listings need no second query.
const reviewSelect = `
	SELECT r.id, r.book_id, r.user_id, u.full_name, r.rating, r.comment,
	       r.created_at, r.updated_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

// Get retrieves a review by ID.
func (s *ReviewStore) Get(ctx context.Context, id string) (catalog.Review, error) {
	row := s.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ?`, id)
	return scanReview(row)
}

// GetByUserAndBook retrieves a user's review of a book.
func (s *ReviewStore) GetByUserAndBook(ctx context.Context, userID, bookID string) (catalog.Review, error) {
	row := s.db.QueryRowContext(ctx, reviewSelect+` WHERE r.user_id = ? AND r.book_id = ?`, userID, bookID)
	return scanReview(row)
}

// ListByBook returns a book's reviews, newest first.
func (s *ReviewStore) ListByBook(ctx context.Context, bookID string) ([]catalog.Review, error) {
	rows, err := s.db.QueryContext(ctx, reviewSelect+`
		WHERE r.book_id = ?
		ORDER BY r.created_at DESC
	`, bookID)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// ListByUser returns a user's reviews, newest first.
func (s *ReviewStore) ListByUser(ctx context.Context, userID string) ([]catalog.Review, error) {
	rows, err := s.db.QueryContext(ctx, reviewSelect+`
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// Create stores a new review.
func (s *ReviewStore) Create(ctx context.Context, r catalog.Review) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.BookID, r.UserID, r.Rating, nullString(r.Comment), r.CreatedAt, r.UpdatedAt)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies a review.
func (s *ReviewStore) Update(ctx context.Context, r catalog.Review) error {
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?
	`, r.Rating, nullString(r.Comment), r.UpdatedAt, r.ID)
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

// Delete removes a review.
func (s *ReviewStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
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

func scanReview(row *sql.Row) (catalog.Review, error) {
	var r catalog.Review
	var comment sql.NullString

	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.UserName, &r.Rating,
		&comment, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Review{}, ErrNotFound
	}
	if err != nil {
		return catalog.Review{}, err
	}
	if comment.Valid {
		r.Comment = comment.String
	}
	return r, nil
}

func collectReviews(rows *sql.Rows) ([]catalog.Review, error) {
	defer rows.Close()

	var reviews []catalog.Review
	for rows.Next() {
		var r catalog.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserID, &r.UserName, &r.Rating,
			&comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			r.Comment = comment.String
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// Ensure interface compliance.
var _ ports.ReviewStore = (*ReviewStore)(nil)
