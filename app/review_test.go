package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/clock"
	"github.com/openshelf/openshelf/adapters/idgen"
	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/pkg/apperr"
)

type reviewFixture struct {
	svc     *ReviewService
	reviews *mockReviewStore
	library *mockLibraryStore
	books   *mockBookStore
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	books := newMockBookStore()
	library := newMockLibraryStore(books)
	reviews := newMockReviewStore()
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	collector := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := NewReviewService(reviews, library, books, idgen.NewSequential("rev-"), clk, collector, zerolog.Nop())

	books.Create(context.Background(), catalog.Book{ID: "b1", Title: "SICP", IsActive: true})
	library.Add(context.Background(), "u1", "b1", clk.Now())

	return &reviewFixture{svc: svc, reviews: reviews, library: library, books: books}
}

func TestReviewCreate(t *testing.T) {
	f := newReviewFixture(t)

	review, err := f.svc.Create(context.Background(), "u1", "b1", 5, "A classic.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if review.Rating != 5 {
		t.Errorf("rating = %d", review.Rating)
	}

	listed, err := f.svc.ListByBook(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ListByBook: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 review, got %d", len(listed))
	}
}

func TestReviewCreateRejections(t *testing.T) {
	f := newReviewFixture(t)

	tests := []struct {
		name       string
		userID     string
		bookID     string
		rating     int
		wantStatus int
	}{
		{"rating too low", "u1", "b1", 0, 400},
		{"rating too high", "u1", "b1", 6, 400},
		{"not owned", "u2", "b1", 4, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.userID, tt.bookID, tt.rating, "")
			if apperr.StatusOf(err) != tt.wantStatus {
				t.Errorf("status = %d, want %d", apperr.StatusOf(err), tt.wantStatus)
			}
		})
	}
}

func TestReviewOnePerUserPerBook(t *testing.T) {
	f := newReviewFixture(t)

	if _, err := f.svc.Create(context.Background(), "u1", "b1", 4, "first"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	_, err := f.svc.Create(context.Background(), "u1", "b1", 5, "second")
	if err == nil {
		t.Fatal("expected error for second review")
	}
	if err.Error() != "You have already reviewed this book" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestReviewUpdateAuthorization(t *testing.T) {
	f := newReviewFixture(t)

	review, err := f.svc.Create(context.Background(), "u1", "b1", 3, "ok")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	author := identity.Identity{UserID: "u1", Role: identity.RoleUser}
	stranger := identity.Identity{UserID: "u2", Role: identity.RoleUser}
	admin := identity.Identity{UserID: "u3", Role: identity.RoleAdmin}

	if _, err := f.svc.Update(context.Background(), stranger, review.ID, 1, "drive-by"); apperr.StatusOf(err) != 403 {
		t.Errorf("stranger update status = %d, want 403", apperr.StatusOf(err))
	}

	updated, err := f.svc.Update(context.Background(), author, review.ID, 4, "better on reread")
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Rating != 4 {
		t.Errorf("rating = %d", updated.Rating)
	}

	if _, err := f.svc.Update(context.Background(), admin, review.ID, 2, "moderated"); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestReviewDelete(t *testing.T) {
	f := newReviewFixture(t)

	review, _ := f.svc.Create(context.Background(), "u1", "b1", 3, "ok")
	stranger := identity.Identity{UserID: "u2", Role: identity.RoleUser}
	author := identity.Identity{UserID: "u1", Role: identity.RoleUser}

	if err := f.svc.Delete(context.Background(), stranger, review.ID); apperr.StatusOf(err) != 403 {
		t.Errorf("stranger delete status = %d, want 403", apperr.StatusOf(err))
	}
	if err := f.svc.Delete(context.Background(), author, review.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), author, review.ID); apperr.StatusOf(err) != 404 {
		t.Errorf("second delete status = %d, want 404", apperr.StatusOf(err))
	}
}

func TestReviewListByBookUnknownBook(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.ListByBook(context.Background(), "ghost")
	if apperr.StatusOf(err) != 404 {
		t.Errorf("status = %d, want 404", apperr.StatusOf(err))
	}
}
