// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/domain/order"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by stores when a unique constraint is violated.
var ErrDuplicate = errors.New("already exists")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides password hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// TokenService issues and verifies access tokens carrying an identity
// snapshot.
type TokenService interface {
	// Issue creates a signed token for the identity.
	Issue(id identity.Identity) (string, error)

	// Verify parses and validates a token, returning the identity it
	// carries.
	Verify(token string) (identity.Identity, error)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// UserStore persists user accounts.
type UserStore interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (identity.User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (identity.User, error)

	// Create stores a new user.
	Create(ctx context.Context, u identity.User) error

	// Update modifies an existing user.
	Update(ctx context.Context, u identity.User) error

	// Delete removes a user.
	Delete(ctx context.Context, id string) error

	// List returns users with pagination.
	List(ctx context.Context, limit, offset int) ([]identity.User, error)

	// Count returns total user count.
	Count(ctx context.Context) (int64, error)
}

// ResetToken is a stored password-reset grant. Only the hash of the
// raw token is persisted.
type ResetToken struct {
	UserID    string
	Hash      []byte
	ExpiresAt time.Time
}

// ResetTokenStore persists password-reset tokens.
type ResetTokenStore interface {
	// Save stores a token, replacing any previous one for the user.
	Save(ctx context.Context, t ResetToken) error

	// GetByHash retrieves a token by its hash.
	GetByHash(ctx context.Context, hash []byte) (ResetToken, error)

	// Delete removes the user's token after use.
	Delete(ctx context.Context, userID string) error

	// DeleteExpired removes all expired tokens.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BookStore persists the catalog.
type BookStore interface {
	// Get retrieves a book by ID with its rating aggregates.
	Get(ctx context.Context, id string) (catalog.Book, error)

	// List returns a filtered page of books.
	List(ctx context.Context, opts catalog.ListOptions) (catalog.Page[catalog.Book], error)

	// Create stores a new book and its category links.
	Create(ctx context.Context, b catalog.Book) error

	// Update modifies a book and replaces its category links.
	Update(ctx context.Context, b catalog.Book) error

	// Delete removes a book.
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	// Get retrieves a category by ID.
	Get(ctx context.Context, id string) (catalog.Category, error)

	// GetByName retrieves a category by its unique name.
	GetByName(ctx context.Context, name string) (catalog.Category, error)

	// List returns all categories with their book counts.
	List(ctx context.Context) ([]catalog.Category, error)

	// Create stores a new category.
	Create(ctx context.Context, c catalog.Category) error

	// Update modifies a category.
	Update(ctx context.Context, c catalog.Category) error

	// Delete removes a category.
	Delete(ctx context.Context, id string) error
}

// PurchaseStore persists purchases.
type PurchaseStore interface {
	// Get retrieves a purchase by ID.
	Get(ctx context.Context, id string) (order.Purchase, error)

	// ListByUser returns a user's purchases, newest first.
	ListByUser(ctx context.Context, userID string) ([]order.Purchase, error)

	// List returns purchases with pagination, newest first. An empty
	// status matches every purchase.
	List(ctx context.Context, status order.Status, limit, offset int) ([]order.Purchase, error)

	// Create stores a new purchase.
	Create(ctx context.Context, p order.Purchase) error

	// UpdateStatus moves a purchase to a new status.
	UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error

	// ExistsActive reports whether the user already has a pending or
	// completed purchase of the book.
	ExistsActive(ctx context.Context, userID, bookID string) (bool, error)

	// Stats returns purchase aggregates for reporting.
	Stats(ctx context.Context) (PurchaseStats, error)

	// RevenueByDay returns daily revenue aggregates of completed
	// purchases between the days of from and to, both inclusive,
	// oldest day first.
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error)
}

// PurchaseStats is the purchase aggregate used by admin reporting.
type PurchaseStats struct {
	Total     int64
	Pending   int64
	Completed int64
	Cancelled int64
	Revenue   float64 // sum of completed purchase amounts
}

// RevenuePoint is one day of completed-purchase revenue.
type RevenuePoint struct {
	Day     string // YYYY-MM-DD
	Orders  int64
	Revenue float64
}

// LibraryStore persists book ownership.
type LibraryStore interface {
	// Add grants a user a book. Adding an owned book is a no-op.
	Add(ctx context.Context, userID, bookID string, at time.Time) error

	// Remove revokes a user's book.
	Remove(ctx context.Context, userID, bookID string) error

	// Owns reports whether the user owns the book.
	Owns(ctx context.Context, userID, bookID string) (bool, error)

	// ListByUser returns the user's owned books.
	ListByUser(ctx context.Context, userID string) ([]catalog.Book, error)

	// CountByUser returns how many books the user owns.
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// ReviewStore persists reviews.
type ReviewStore interface {
	// Get retrieves a review by ID.
	Get(ctx context.Context, id string) (catalog.Review, error)

	// GetByUserAndBook retrieves a user's review of a book.
	GetByUserAndBook(ctx context.Context, userID, bookID string) (catalog.Review, error)

	// ListByBook returns a book's reviews, newest first.
	ListByBook(ctx context.Context, bookID string) ([]catalog.Review, error)

	// ListByUser returns a user's reviews, newest first.
	ListByUser(ctx context.Context, userID string) ([]catalog.Review, error)

	// Create stores a new review.
	Create(ctx context.Context, r catalog.Review) error

	// Update modifies a review.
	Update(ctx context.Context, r catalog.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id string) error
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// FileStore persists uploaded objects (covers, book files).
type FileStore interface {
	// Put stores an object and returns its public URL.
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)

	// Get retrieves an object. The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender sends emails.
type EmailSender interface {
	// Send sends an email.
	Send(ctx context.Context, msg EmailMessage) error

	// SendWelcome sends a welcome email after registration.
	SendWelcome(ctx context.Context, to, name string) error

	// SendPasswordReset sends a password reset link.
	SendPasswordReset(ctx context.Context, to, name, token string) error

	// SendPurchaseReceipt confirms a completed purchase.
	SendPurchaseReceipt(ctx context.Context, to, name, bookTitle string, amount float64) error
}
