// Package order provides purchase value types and the status machine
// that governs them.
package order

import "time"

// Status is a purchase's lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a purchase may move from s to next.
// Only PENDING purchases move; completed and cancelled are final.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusCancelled)
}

// Purchase represents one user's order of one book (immutable value type).
type Purchase struct {
	ID        string
	UserID    string
	BookID    string
	Amount    float64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPurchase creates a pending purchase at the book's current price.
func NewPurchase(id, userID, bookID string, amount float64, now time.Time) Purchase {
	return Purchase{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithStatus returns a copy of the purchase in the new status.
func (p Purchase) WithStatus(next Status, now time.Time) Purchase {
	p.Status = next
	p.UpdatedAt = now
	return p
}
