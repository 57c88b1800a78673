package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/ports"
)

// UserService reports a reader's own activity.
type UserService struct {
	library   ports.LibraryStore
	purchases ports.PurchaseStore
	reviews   ports.ReviewStore
	logger    zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	library ports.LibraryStore,
	purchases ports.PurchaseStore,
	reviews ports.ReviewStore,
	logger zerolog.Logger,
) *UserService {
	return &UserService{library: library, purchases: purchases, reviews: reviews, logger: logger}
}

// UserStats is a reader's activity summary.
type UserStats struct {
	LibraryCount   int64
	PurchasesCount int64
	ReviewsCount   int64
	TotalSpent     float64
}

// Stats aggregates the user's library, purchases, and reviews.
func (s *UserService) Stats(ctx context.Context, userID string) (UserStats, error) {
	library, err := s.library.CountByUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	var spent float64
	for _, p := range purchases {
		if p.Status == order.StatusCompleted {
			spent += p.Amount
		}
	}

	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	return UserStats{
		LibraryCount:   library,
		PurchasesCount: int64(len(purchases)),
		ReviewsCount:   int64(len(reviews)),
		TotalSpent:     spent,
	}, nil
}
