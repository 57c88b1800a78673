package api

import (
	"net/http"

	"github.com/openshelf/openshelf/app"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	user, token, err := h.auth.Register(r.Context(), app.RegisterInput{
		Email:    str(p, "email"),
		Password: str(p, "password"),
		FullName: str(p, "full_name"),
		Phone:    str(p, "phone"),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respond(w, http.StatusCreated, authView{User: toUserView(user), Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	user, token, err := h.auth.Login(r.Context(), str(p, "email"), str(p, "password"))
	if err != nil {
		h.metrics.AuthFailures.WithLabelValues("bad_credentials").Inc()
		respondError(w, h.logger, err)
		return
	}

	respond(w, http.StatusOK, authView{User: toUserView(user), Token: token})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	if err := h.auth.ForgotPassword(r.Context(), str(p, "email")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "If that email exists, a reset link has been sent")
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())

	if err := h.auth.ResetPassword(r.Context(), str(p, "token"), str(p, "password")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "Password has been reset")
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p := payload(r.Context())
	id := mustIdentity(r)

	if err := h.auth.ChangePassword(r.Context(), id.UserID, str(p, "current_password"), str(p, "new_password")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "Password has been changed")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	user, err := h.auth.Me(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respond(w, http.StatusOK, toUserView(user))
}
