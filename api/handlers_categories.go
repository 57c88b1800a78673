package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/domain/catalog"
)

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toCategoryViews(categories))
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toCategoryView(cat))
}

func (h *Handler) handleListCategoryBooks(w http.ResponseWriter, r *http.Request) {
	cat, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	p := params(r.Context())
	page, err := h.books.List(r.Context(), catalog.ListOptions{
		CategoryID: cat.ID,
		Page:       int(integer(p, "page")),
		PerPage:    int(integer(p, "per_page")),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toBookPageView(page))
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	cat, err := h.categories.Create(r.Context(), str(p, "name"), str(p, "description"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, toCategoryView(cat))
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	cat, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), str(p, "name"), str(p, "description"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toCategoryView(cat))
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "Category deleted")
}
