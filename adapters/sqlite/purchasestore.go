package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/ports"
)

// PurchaseStore implements ports.PurchaseStore using SQLite.
type PurchaseStore struct {
	db *DB
}

// NewPurchaseStore creates a new SQLite purchase store.
func NewPurchaseStore(db *DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

const purchaseColumns = `id, user_id, book_id, amount, status, created_at, updated_at`

// Get retrieves a purchase by ID.
func (s *PurchaseStore) Get(ctx context.Context, id string) (order.Purchase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE id = ?
	`, id)

	var p order.Purchase
	var status string
	err := row.Scan(&p.ID, &p.UserID, &p.BookID, &p.Amount, &status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Purchase{}, ErrNotFound
	}
	if err != nil {
		return order.Purchase{}, err
	}
	p.Status = order.Status(status)
	return p, nil
}

// ListByUser returns a user's purchases, newest first.
func (s *PurchaseStore) ListByUser(ctx context.Context, userID string) ([]order.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectPurchases(rows)
}

// List returns purchases with pagination, newest first. An empty
// status matches every purchase.
func (s *PurchaseStore) List(ctx context.Context, status order.Status, limit, offset int) ([]order.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectPurchases(rows)
}

// Create stores a new purchase.
func (s *PurchaseStore) Create(ctx context.Context, p order.Purchase) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.BookID, p.Amount, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateStatus moves a purchase to a new status.
func (s *PurchaseStore) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE purchases SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), at, id)
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

// ExistsActive reports whether the user already has a pending or
// completed purchase of the book.
func (s *PurchaseStore) ExistsActive(ctx context.Context, userID, bookID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchases
		WHERE user_id = ? AND book_id = ? AND status IN (?, ?)
	`, userID, bookID, string(order.StatusPending), string(order.StatusCompleted)).Scan(&n)
	return n > 0, err
}

// Stats returns purchase aggregates for reporting.
func (s *PurchaseStore) Stats(ctx context.Context) (ports.PurchaseStats, error) {
	var st ports.PurchaseStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'PENDING'), 0),
		       COALESCE(SUM(status = 'COMPLETED'), 0),
		       COALESCE(SUM(status = 'CANCELLED'), 0),
		       COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN amount ELSE 0 END), 0)
		FROM purchases
	`).Scan(&st.Total, &st.Pending, &st.Completed, &st.Cancelled, &st.Revenue)
	return st, err
}

// RevenueByDay returns daily revenue aggregates of completed purchases
// between the days of from and to, both inclusive, oldest day first.
func (s *PurchaseStore) RevenueByDay(ctx context.Context, from, to time.Time) ([]ports.RevenuePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(updated_at), COUNT(*), COALESCE(SUM(amount), 0)
		FROM purchases
		WHERE status = 'COMPLETED'
		  AND date(updated_at) >= date(?) AND date(updated_at) <= date(?)
		GROUP BY date(updated_at)
		ORDER BY date(updated_at)
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ports.RevenuePoint
	for rows.Next() {
		var p ports.RevenuePoint
		if err := rows.Scan(&p.Day, &p.Orders, &p.Revenue); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func collectPurchases(rows *sql.Rows) ([]order.Purchase, error) {
	defer rows.Close()

	var purchases []order.Purchase
	for rows.Next() {
		var p order.Purchase
		var status string
		if err := rows.Scan(&p.ID, &p.UserID, &p.BookID, &p.Amount, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = order.Status(status)
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Ensure interface compliance.
var _ ports.PurchaseStore = (*PurchaseStore)(nil)
