package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/pkg/apperr"
)

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	purchase, err := h.purchases.Create(r.Context(), id.UserID, str(p, "book_id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, toPurchaseView(purchase))
}

func (h *Handler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	purchases, err := h.purchases.ListMine(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toPurchaseViews(purchases))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	purchase, err := h.purchases.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	// Non-admins only see their own orders; report unknown rather than
	// confirming the order exists.
	if purchase.UserID != id.UserID && !id.Role.IsAdmin() {
		respondError(w, h.logger, apperr.NotFound("Order not found"))
		return
	}
	respond(w, http.StatusOK, toPurchaseView(purchase))
}

func (h *Handler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	p := params(r.Context())

	limit := int(integer(p, "per_page"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	page := int(integer(p, "page"))
	if page < 1 {
		page = 1
	}

	purchases, err := h.purchases.ListAll(r.Context(), order.Status(str(p, "status")), limit, (page-1)*limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toPurchaseViews(purchases))
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	purchase, err := h.purchases.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(str(p, "status")))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toPurchaseView(purchase))
}
