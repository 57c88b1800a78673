package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/ports"
)

// CategoryStore implements ports.CategoryStore using SQLite.
type CategoryStore struct {
	db *DB
}

// NewCategoryStore creates a new SQLite category store.
func NewCategoryStore(db *DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categorySelect = `
	SELECT c.id, c.name, c.description, c.created_at, c.updated_at,
	       COUNT(bc.book_id) AS book_count
	FROM categories c
	LEFT JOIN book_categories bc ON bc.category_id = c.id`

// Get retrieves a category by ID.
func (s *CategoryStore) Get(ctx context.Context, id string) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, categorySelect+`
		WHERE c.id = ?
		GROUP BY c.id
	`, id)
	return scanCategory(row)
}

// GetByName retrieves a category by its unique name.
func (s *CategoryStore) GetByName(ctx context.Context, name string) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, categorySelect+`
		WHERE c.name = ?
		GROUP BY c.id
	`, name)
	return scanCategory(row)
}

// List returns all categories with their book counts.
func (s *CategoryStore) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, categorySelect+`
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt, &c.BookCount); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = desc.String
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create stores a new category.
func (s *CategoryStore) Create(ctx context.Context, c catalog.Category) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, nullString(c.Description), c.CreatedAt, c.UpdatedAt)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies a category.
func (s *CategoryStore) Update(ctx context.Context, c catalog.Category) error {
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, nullString(c.Description), c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
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

// Delete removes a category.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
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

func scanCategory(row *sql.Row) (catalog.Category, error) {
	var c catalog.Category
	var desc sql.NullString

	err := row.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt, &c.BookCount)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, ErrNotFound
	}
	if err != nil {
		return catalog.Category{}, err
	}
	if desc.Valid {
		c.Description = desc.String
	}
	return c, nil
}

// Ensure interface compliance.
var _ ports.CategoryStore = (*CategoryStore)(nil)
