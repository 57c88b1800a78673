package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// ReviewService manages book reviews. A user must own a book to review
// it, and may review it only once.
type ReviewService struct {
	reviews ports.ReviewStore
	library ports.LibraryStore
	books   ports.BookStore
	ids     ports.IDGenerator
	clock   ports.Clock
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews ports.ReviewStore,
	library ports.LibraryStore,
	books ports.BookStore,
	ids ports.IDGenerator,
	clock ports.Clock,
	collector *metrics.Collector,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		library: library,
		books:   books,
		ids:     ids,
		clock:   clock,
		metrics: collector,
		logger:  logger,
	}
}

// ListByBook returns a book's reviews, newest first.
func (s *ReviewService) ListByBook(ctx context.Context, bookID string) ([]catalog.Review, error) {
	if _, err := s.books.Get(ctx, bookID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, err
	}
	return s.reviews.ListByBook(ctx, bookID)
}

// ListMine returns the user's reviews, newest first.
func (s *ReviewService) ListMine(ctx context.Context, userID string) ([]catalog.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// Create adds a review for an owned book.
func (s *ReviewService) Create(ctx context.Context, userID, bookID string, rating int, comment string) (catalog.Review, error) {
	if !catalog.RatingValid(rating) {
		return catalog.Review{}, apperr.BadRequest("Rating must be between 1 and 5")
	}

	owns, err := s.library.Owns(ctx, userID, bookID)
	if err != nil {
		return catalog.Review{}, err
	}
	if !owns {
		return catalog.Review{}, apperr.Forbidden("You can only review books you own")
	}

	if _, err := s.reviews.GetByUserAndBook(ctx, userID, bookID); err == nil {
		return catalog.Review{}, apperr.BadRequest("You have already reviewed this book")
	} else if !errors.Is(err, ports.ErrNotFound) {
		return catalog.Review{}, err
	}

	now := s.clock.Now().UTC()
	review := catalog.Review{
		ID:        s.ids.New(),
		BookID:    bookID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return catalog.Review{}, apperr.BadRequest("You have already reviewed this book")
		}
		return catalog.Review{}, err
	}

	s.metrics.ReviewsTotal.Inc()
	s.logger.Info().Str("review_id", review.ID).Str("book_id", bookID).Msg("review created")
	return review, nil
}

// Update modifies a review. Only the author or an administrator may.
func (s *ReviewService) Update(ctx context.Context, caller identity.Identity, id string, rating int, comment string) (catalog.Review, error) {
	if !catalog.RatingValid(rating) {
		return catalog.Review{}, apperr.BadRequest("Rating must be between 1 and 5")
	}

	review, err := s.get(ctx, id)
	if err != nil {
		return catalog.Review{}, err
	}
	if err := s.authorize(caller, review); err != nil {
		return catalog.Review{}, err
	}

	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = s.clock.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return catalog.Review{}, err
	}
	return review, nil
}

// Delete removes a review. Only the author or an administrator may.
func (s *ReviewService) Delete(ctx context.Context, caller identity.Identity, id string) error {
	review, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(caller, review); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("review_id", id).Msg("review deleted")
	return nil
}

func (s *ReviewService) get(ctx context.Context, id string) (catalog.Review, error) {
	review, err := s.reviews.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return catalog.Review{}, apperr.NotFound("Review not found")
		}
		return catalog.Review{}, err
	}
	return review, nil
}

func (s *ReviewService) authorize(caller identity.Identity, review catalog.Review) error {
	if caller.UserID == review.UserID || caller.Role.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("You can only modify your own reviews")
}
