package api

import "net/http"

func (h *Handler) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	stats, err := h.user.Stats(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toUserStatsView(stats))
}
