package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/pkg/apperr"
)

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toStatsView(stats))
}

func (h *Handler) handleFinanceOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.admin.FinanceOverview(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toFinanceOverviewView(overview))
}

func (h *Handler) handleFinanceTrends(w http.ResponseWriter, r *http.Request) {
	p := params(r.Context())

	from, to := datetime(p, "start_date"), datetime(p, "end_date")
	if from.IsZero() || to.IsZero() {
		respondError(w, h.logger, apperr.BadRequest("Provide valid start and end dates"))
		return
	}

	points, err := h.admin.FinanceTrends(r.Context(), from, to)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toRevenuePointViews(points))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p := params(r.Context())

	limit := int(integer(p, "per_page"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	page := int(integer(p, "page"))
	if page < 1 {
		page = 1
	}

	users, err := h.admin.ListUsers(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserViews(users))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.admin.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserView(user))
}

func (h *Handler) handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	user, err := h.admin.SetUserActive(r.Context(), id, chi.URLParam(r, "id"), boolean(p, "is_active"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserView(user))
}

func (h *Handler) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	user, err := h.admin.SetUserRole(r.Context(), id, chi.URLParam(r, "id"), identity.Role(str(p, "role")))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserView(user))
}

func (h *Handler) handleSetUserPermissions(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	user, err := h.admin.SetUserPermissions(r.Context(), id, chi.URLParam(r, "id"), stringSlice(p, "permissions"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserView(user))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	if err := h.admin.DeleteUser(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted")
}
