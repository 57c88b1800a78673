package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/pkg/apperr"
)

// maxUploadBytes caps cover and book file uploads.
const maxUploadBytes = 64 << 20

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	p := params(r.Context())

	opts := catalog.ListOptions{
		Search:     str(p, "search"),
		CategoryID: str(p, "category_id"),
		Page:       int(integer(p, "page")),
		PerPage:    int(integer(p, "per_page")),
	}
	// Only administrators see delisted titles.
	if id, ok := getIdentity(r.Context()); ok && id.Role.IsAdmin() {
		opts.IncludeInactive = r.URL.Query().Get("include_inactive") == "true"
	}

	page, err := h.books.List(r.Context(), opts.Normalized())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respond(w, http.StatusOK, toBookPageView(page))
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toBookView(book))
}

func bookInputFrom(p map[string]any) app.BookInput {
	in := app.BookInput{
		Title:       str(p, "title"),
		Author:      str(p, "author"),
		Description: str(p, "description"),
		ISBN:        str(p, "isbn"),
		Price:       number(p, "price"),
		CategoryIDs: stringSlice(p, "category_ids"),
		PublishedAt: datetime(p, "published_at"),
	}
	if v, ok := p["is_active"]; ok {
		in.IsActive, _ = v.(bool)
	} else {
		in.IsActive = true
	}
	return in
}

func (h *Handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.Create(r.Context(), bookInputFrom(payload(r.Context())))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, toBookView(book))
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.Update(r.Context(), chi.URLParam(r, "id"), bookInputFrom(payload(r.Context())))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toBookView(book))
}

func (h *Handler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.books.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "Book deleted")
}

func (h *Handler) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, h.books.UploadCover)
}

func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, h.books.UploadFile)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, store func(ctx context.Context, bookID, contentType string, body io.Reader) (catalog.Book, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, apperr.BadRequest("Provide a file in the \"file\" form field"))
		return
	}
	defer file.Close()

	book, err := store(r.Context(), chi.URLParam(r, "id"), header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toBookView(book))
}
