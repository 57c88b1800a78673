package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// BookService manages the catalog.
type BookService struct {
	books      ports.BookStore
	categories ports.CategoryStore
	files      ports.FileStore
	ids        ports.IDGenerator
	clock      ports.Clock
	metrics    *metrics.Collector
	logger     zerolog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	books ports.BookStore,
	categories ports.CategoryStore,
	files ports.FileStore,
	ids ports.IDGenerator,
	clock ports.Clock,
	collector *metrics.Collector,
	logger zerolog.Logger,
) *BookService {
	return &BookService{
		books:      books,
		categories: categories,
		files:      files,
		ids:        ids,
		clock:      clock,
		metrics:    collector,
		logger:     logger,
	}
}

// List returns a page of the catalog. Inactive titles are only
// included when the caller is an administrator.
func (s *BookService) List(ctx context.Context, opts catalog.ListOptions) (catalog.Page[catalog.Book], error) {
	return s.books.List(ctx, opts)
}

// Get returns one book.
func (s *BookService) Get(ctx context.Context, id string) (catalog.Book, error) {
	book, err := s.books.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return catalog.Book{}, apperr.NotFound("Book not found")
		}
		return catalog.Book{}, err
	}
	return book, nil
}

// BookInput carries a validated create/update payload.
type BookInput struct {
	Title       string
	Author      string
	Description string
	ISBN        string
	Price       float64
	CategoryIDs []string
	PublishedAt time.Time
	IsActive    bool
}

// Create adds a book to the catalog.
func (s *BookService) Create(ctx context.Context, in BookInput) (catalog.Book, error) {
	if err := s.checkCategories(ctx, in.CategoryIDs); err != nil {
		return catalog.Book{}, err
	}

	now := s.clock.Now().UTC()
	book := catalog.Book{
		ID:          s.ids.New(),
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
		ISBN:        in.ISBN,
		Price:       in.Price,
		CategoryIDs: in.CategoryIDs,
		PublishedAt: in.PublishedAt,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.books.Create(ctx, book); err != nil {
		return catalog.Book{}, err
	}

	s.logger.Info().Str("book_id", book.ID).Str("title", book.Title).Msg("book created")
	return book, nil
}

// Update modifies a book.
func (s *BookService) Update(ctx context.Context, id string, in BookInput) (catalog.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return catalog.Book{}, err
	}
	if err := s.checkCategories(ctx, in.CategoryIDs); err != nil {
		return catalog.Book{}, err
	}

	book.Title = in.Title
	book.Author = in.Author
	book.Description = in.Description
	book.ISBN = in.ISBN
	book.Price = in.Price
	book.CategoryIDs = in.CategoryIDs
	book.PublishedAt = in.PublishedAt
	book.IsActive = in.IsActive

	if err := s.books.Update(ctx, book); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return catalog.Book{}, apperr.NotFound("Book not found")
		}
		return catalog.Book{}, err
	}
	return book, nil
}

// Delete removes a book and its stored files.
func (s *BookService) Delete(ctx context.Context, id string) error {
	book, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return err
	}

	// Stored objects are cleaned up best-effort; the catalog row is
	// already gone.
	for _, key := range []string{coverKey(book.ID), fileKey(book.ID)} {
		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("delete stored object")
		}
	}

	s.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

// UploadCover stores a cover image and records its URL on the book.
func (s *BookService) UploadCover(ctx context.Context, bookID, contentType string, body io.Reader) (catalog.Book, error) {
	return s.attach(ctx, bookID, coverKey(bookID), contentType, body, "cover")
}

// UploadFile stores the book's content file and records its URL.
func (s *BookService) UploadFile(ctx context.Context, bookID, contentType string, body io.Reader) (catalog.Book, error) {
	return s.attach(ctx, bookID, fileKey(bookID), contentType, body, "book")
}

func (s *BookService) attach(ctx context.Context, bookID, key, contentType string, body io.Reader, kind string) (catalog.Book, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return catalog.Book{}, err
	}

	url, err := s.files.Put(ctx, key, contentType, body)
	if err != nil {
		return catalog.Book{}, err
	}

	switch kind {
	case "cover":
		book.CoverURL = url
	default:
		book.FileURL = url
	}

	if err := s.books.Update(ctx, book); err != nil {
		return catalog.Book{}, err
	}

	s.metrics.UploadsTotal.WithLabelValues(kind).Inc()
	s.logger.Info().Str("book_id", bookID).Str("kind", kind).Msg("file uploaded")
	return book, nil
}

// checkCategories rejects references to unknown categories up front so
// a bad ID fails with a clear message instead of a constraint error.
func (s *BookService) checkCategories(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.categories.Get(ctx, id); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return apperr.BadRequest(fmt.Sprintf("Category %s does not exist", id))
			}
			return err
		}
	}
	return nil
}

func coverKey(bookID string) string {
	return path.Join("covers", bookID)
}

func fileKey(bookID string) string {
	return path.Join("books", bookID)
}
