package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListBookReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toReviewViews(reviews))
}

func (h *Handler) handleListMyReviews(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	reviews, err := h.reviews.ListMine(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toReviewViews(reviews))
}

func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	review, err := h.reviews.Create(r.Context(), id.UserID, chi.URLParam(r, "id"), int(integer(p, "rating")), str(p, "comment"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, toReviewView(review))
}

func (h *Handler) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	review, err := h.reviews.Update(r.Context(), id, chi.URLParam(r, "id"), int(integer(p, "rating")), str(p, "comment"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toReviewView(review))
}

func (h *Handler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	if err := h.reviews.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "Review deleted")
}
