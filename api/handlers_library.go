package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	books, err := h.library.List(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toBookViews(books))
}

func (h *Handler) handleAddToLibrary(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	if err := h.library.Add(r.Context(), id.UserID, str(p, "book_id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Book added to your library")
}

func (h *Handler) handleRemoveFromLibrary(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	if err := h.library.Remove(r.Context(), id.UserID, chi.URLParam(r, "bookID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "Book removed from your library")
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	url, err := h.library.Download(r.Context(), id.UserID, chi.URLParam(r, "bookID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"url": url})
}
