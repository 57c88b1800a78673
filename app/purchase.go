package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// PurchaseService manages the purchase lifecycle and the ownership it
// grants.
type PurchaseService struct {
	purchases ports.PurchaseStore
	books     ports.BookStore
	library   ports.LibraryStore
	users     ports.UserStore
	email     ports.EmailSender
	ids       ports.IDGenerator
	clock     ports.Clock
	metrics   *metrics.Collector
	logger    zerolog.Logger
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(
	purchases ports.PurchaseStore,
	books ports.BookStore,
	library ports.LibraryStore,
	users ports.UserStore,
	email ports.EmailSender,
	ids ports.IDGenerator,
	clock ports.Clock,
	collector *metrics.Collector,
	logger zerolog.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		books:     books,
		library:   library,
		users:     users,
		email:     email,
		ids:       ids,
		clock:     clock,
		metrics:   collector,
		logger:    logger,
	}
}

// Create opens a pending purchase of a book at its current price.
func (s *PurchaseService) Create(ctx context.Context, userID, bookID string) (order.Purchase, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return order.Purchase{}, apperr.NotFound("Book not found")
		}
		return order.Purchase{}, err
	}
	if !book.IsActive {
		return order.Purchase{}, apperr.NotFound("Book not found")
	}

	owns, err := s.library.Owns(ctx, userID, bookID)
	if err != nil {
		return order.Purchase{}, err
	}
	if owns {
		return order.Purchase{}, apperr.BadRequest("You already own this book")
	}

	active, err := s.purchases.ExistsActive(ctx, userID, bookID)
	if err != nil {
		return order.Purchase{}, err
	}
	if active {
		return order.Purchase{}, apperr.BadRequest("You already have an order for this book")
	}

	now := s.clock.Now().UTC()
	p := order.NewPurchase(s.ids.New(), userID, bookID, book.Price, now)

	// Free books complete immediately and go straight into the library.
	if book.Price == 0 {
		p = p.WithStatus(order.StatusCompleted, now)
		if err := s.purchases.Create(ctx, p); err != nil {
			return order.Purchase{}, err
		}
		if err := s.library.Add(ctx, userID, bookID, now); err != nil {
			return order.Purchase{}, err
		}
		s.sendReceipt(ctx, p)
		s.metrics.PurchasesTotal.WithLabelValues(string(p.Status)).Inc()
		s.logger.Info().Str("purchase_id", p.ID).Str("user_id", userID).Str("book_id", bookID).Msg("free book claimed")
		return p, nil
	}

	if err := s.purchases.Create(ctx, p); err != nil {
		return order.Purchase{}, err
	}

	s.metrics.PurchasesTotal.WithLabelValues(string(p.Status)).Inc()
	s.logger.Info().Str("purchase_id", p.ID).Str("user_id", userID).Str("book_id", bookID).Msg("purchase created")
	return p, nil
}

// Get returns a purchase. Non-admins only see their own.
func (s *PurchaseService) Get(ctx context.Context, id string) (order.Purchase, error) {
	p, err := s.purchases.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return order.Purchase{}, apperr.NotFound("Order not found")
		}
		return order.Purchase{}, err
	}
	return p, nil
}

// ListMine returns the user's purchases, newest first.
func (s *PurchaseService) ListMine(ctx context.Context, userID string) ([]order.Purchase, error) {
	return s.purchases.ListByUser(ctx, userID)
}

// ListAll returns purchases with pagination, optionally filtered by
// status.
func (s *PurchaseService) ListAll(ctx context.Context, status order.Status, limit, offset int) ([]order.Purchase, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid order status %q", status))
	}
	return s.purchases.List(ctx, status, limit, offset)
}

// UpdateStatus moves a purchase through its lifecycle. Completing a
// purchase grants the book and mails a receipt.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id string, next order.Status) (order.Purchase, error) {
	if !next.Valid() {
		return order.Purchase{}, apperr.BadRequest(fmt.Sprintf("Invalid order status %q", next))
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return order.Purchase{}, err
	}
	if !p.Status.CanTransition(next) {
		return order.Purchase{}, apperr.BadRequest(fmt.Sprintf("Cannot move order from %s to %s", p.Status, next))
	}

	now := s.clock.Now().UTC()
	if err := s.purchases.UpdateStatus(ctx, id, next, now); err != nil {
		return order.Purchase{}, err
	}
	p = p.WithStatus(next, now)

	if next == order.StatusCompleted {
		if err := s.library.Add(ctx, p.UserID, p.BookID, now); err != nil {
			return order.Purchase{}, err
		}
		s.sendReceipt(ctx, p)
	}

	s.metrics.PurchasesTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().Str("purchase_id", id).Str("status", string(next)).Msg("purchase status updated")
	return p, nil
}

// sendReceipt mails a purchase confirmation best-effort.
func (s *PurchaseService) sendReceipt(ctx context.Context, p order.Purchase) {
	user, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("load user for receipt")
		return
	}
	book, err := s.books.Get(ctx, p.BookID)
	if err != nil {
		s.logger.Warn().Err(err).Str("book_id", p.BookID).Msg("load book for receipt")
		return
	}
	if err := s.email.SendPurchaseReceipt(ctx, user.Email, user.FullName, book.Title, p.Amount); err != nil {
		s.logger.Warn().Err(err).Str("purchase_id", p.ID).Msg("send purchase receipt")
	}
}
