package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/ports"
)

// BookStore implements ports.BookStore using SQLite.
type BookStore struct {
	db *DB
}

// NewBookStore creates a new SQLite book store.
func NewBookStore(db *DB) *BookStore {
	return &BookStore{db: db}
}

// bookSelect pulls a book row with its rating aggregates. Ratings are
// averaged in SQL and rounded to one decimal to match the domain rule.
const bookSelect = `
	SELECT b.id, b.title, b.author, b.description, b.isbn, b.price,
	       b.cover_url, b.file_url, b.published_at, b.is_active,
	       b.created_at, b.updated_at,
	       COALESCE(ROUND(AVG(r.rating), 1), 0) AS avg_rating,
	       COUNT(r.id) AS review_count
	FROM books b
	LEFT JOIN reviews r ON r.book_id = b.id`

// Get retrieves a book by ID with its rating aggregates.
func (s *BookStore) Get(ctx context.Context, id string) (catalog.Book, error) {
	row := s.db.QueryRowContext(ctx, bookSelect+`
		WHERE b.id = ?
		GROUP BY b.id
	`, id)

	b, err := scanBookRow(row)
	if err != nil {
		return catalog.Book{}, err
	}
	if b.CategoryIDs, err = s.categoryIDs(ctx, b.ID); err != nil {
		return catalog.Book{}, err
	}
	return b, nil
}

// List returns a filtered page of books.
func (s *BookStore) List(ctx context.Context, opts catalog.ListOptions) (catalog.Page[catalog.Book], error) {
	opts = opts.Normalized()

	where := ` WHERE 1=1`
	var args []any
	if !opts.IncludeInactive {
		where += ` AND b.is_active = 1`
	}
	if opts.Search != "" {
		where += ` AND (b.title LIKE ? OR b.author LIKE ?)`
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}
	if opts.CategoryID != "" {
		where += ` AND b.id IN (SELECT book_id FROM book_categories WHERE category_id = ?)`
		args = append(args, opts.CategoryID)
	}

	page := catalog.Page[catalog.Book]{PageNumber: opts.Page, PerPage: opts.PerPage}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books b`+where, args...).Scan(&page.Total)
	if err != nil {
		return catalog.Page[catalog.Book]{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		bookSelect+where+`
		GROUP BY b.id
		ORDER BY b.created_at DESC
		LIMIT ? OFFSET ?`,
		append(args, opts.PerPage, opts.Offset())...)
	if err != nil {
		return catalog.Page[catalog.Book]{}, err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBookRows(rows)
		if err != nil {
			return catalog.Page[catalog.Book]{}, err
		}
		page.Items = append(page.Items, b)
	}
	if err := rows.Err(); err != nil {
		return catalog.Page[catalog.Book]{}, err
	}

	for i := range page.Items {
		if page.Items[i].CategoryIDs, err = s.categoryIDs(ctx, page.Items[i].ID); err != nil {
			return catalog.Page[catalog.Book]{}, err
		}
	}
	return page, nil
}

// Create stores a new book and its category links.
func (s *BookStore) Create(ctx context.Context, b catalog.Book) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (id, title, author, description, isbn, price,
		                   cover_url, file_url, published_at, is_active,
		                   created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, nullString(b.Description), nullString(b.ISBN),
		b.Price, nullString(b.CoverURL), nullString(b.FileURL),
		nullTime(b.PublishedAt), b.IsActive, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}

	if err := replaceCategoryLinks(ctx, tx, b.ID, b.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update modifies a book and replaces its category links.
func (s *BookStore) Update(ctx context.Context, b catalog.Book) error {
	b.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, description = ?, isbn = ?, price = ?,
		    cover_url = ?, file_url = ?, published_at = ?, is_active = ?,
		    updated_at = ?
		WHERE id = ?
	`, b.Title, b.Author, nullString(b.Description), nullString(b.ISBN),
		b.Price, nullString(b.CoverURL), nullString(b.FileURL),
		nullTime(b.PublishedAt), b.IsActive, b.UpdatedAt, b.ID)
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

	if err := replaceCategoryLinks(ctx, tx, b.ID, b.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a book.
func (s *BookStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
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

func (s *BookStore) categoryIDs(ctx context.Context, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id FROM book_categories WHERE book_id = ? ORDER BY category_id
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func replaceCategoryLinks(ctx context.Context, tx *sql.Tx, bookID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_categories WHERE book_id = ?`, bookID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO book_categories (book_id, category_id) VALUES (?, ?)
		`, bookID, cid); err != nil {
			return err
		}
	}
	return nil
}

func scanBookRow(row *sql.Row) (catalog.Book, error) {
	var b catalog.Book
	var desc, isbn, cover, file sql.NullString
	var published sql.NullTime

	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &desc, &isbn, &b.Price,
		&cover, &file, &published, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt, &b.AverageRating, &b.ReviewCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, ErrNotFound
	}
	if err != nil {
		return catalog.Book{}, err
	}
	return finishBook(b, desc, isbn, cover, file, published), nil
}

func scanBookRows(rows *sql.Rows) (catalog.Book, error) {
	var b catalog.Book
	var desc, isbn, cover, file sql.NullString
	var published sql.NullTime

	err := rows.Scan(
		&b.ID, &b.Title, &b.Author, &desc, &isbn, &b.Price,
		&cover, &file, &published, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt, &b.AverageRating, &b.ReviewCount,
	)
	if err != nil {
		return catalog.Book{}, err
	}
	return finishBook(b, desc, isbn, cover, file, published), nil
}

func finishBook(b catalog.Book, desc, isbn, cover, file sql.NullString, published sql.NullTime) catalog.Book {
	if desc.Valid {
		b.Description = desc.String
	}
	if isbn.Valid {
		b.ISBN = isbn.String
	}
	if cover.Valid {
		b.CoverURL = cover.String
	}
	if file.Valid {
		b.FileURL = file.String
	}
	if published.Valid {
		b.PublishedAt = published.Time
	}
	return b
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure interface compliance.
var _ ports.BookStore = (*BookStore)(nil)
