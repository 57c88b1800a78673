package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// LibraryService exposes a user's owned books.
type LibraryService struct {
	library   ports.LibraryStore
	books     ports.BookStore
	purchases ports.PurchaseStore
	clock     ports.Clock
	logger    zerolog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	library ports.LibraryStore,
	books ports.BookStore,
	purchases ports.PurchaseStore,
	clock ports.Clock,
	logger zerolog.Logger,
) *LibraryService {
	return &LibraryService{library: library, books: books, purchases: purchases, clock: clock, logger: logger}
}

// List returns the user's owned books, most recently added first.
func (s *LibraryService) List(ctx context.Context, userID string) ([]catalog.Book, error) {
	return s.library.ListByUser(ctx, userID)
}

// Download returns the stored file URL for an owned book.
func (s *LibraryService) Download(ctx context.Context, userID, bookID string) (string, error) {
	owns, err := s.library.Owns(ctx, userID, bookID)
	if err != nil {
		return "", err
	}
	if !owns {
		return "", apperr.Forbidden("You do not own this book")
	}

	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", apperr.NotFound("Book not found")
		}
		return "", err
	}
	if book.FileURL == "" {
		return "", apperr.NotFound("Book file is not available")
	}
	return book.FileURL, nil
}

// Add puts a book into the user's library. Free books are added
// directly; paid books require a completed purchase.
func (s *LibraryService) Add(ctx context.Context, userID, bookID string) error {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return err
	}
	if !book.IsActive {
		return apperr.NotFound("Book not found")
	}

	owns, err := s.library.Owns(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if owns {
		return apperr.BadRequest("This book is already in your library")
	}

	if book.Price > 0 {
		completed, err := s.hasCompletedPurchase(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if !completed {
			return apperr.BadRequest("You need to purchase this book first")
		}
	}

	if err := s.library.Add(ctx, userID, bookID, s.clock.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("book_id", bookID).Msg("book added to library")
	return nil
}

// Remove takes a book out of the user's library.
func (s *LibraryService) Remove(ctx context.Context, userID, bookID string) error {
	err := s.library.Remove(ctx, userID, bookID)
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("This book is not in your library")
	}
	return err
}

// Count returns how many books the user owns.
func (s *LibraryService) Count(ctx context.Context, userID string) (int64, error) {
	return s.library.CountByUser(ctx, userID)
}

func (s *LibraryService) hasCompletedPurchase(ctx context.Context, userID, bookID string) (bool, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range purchases {
		if p.BookID == bookID && p.Status == order.StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}
