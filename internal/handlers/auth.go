package handlers

import (
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/metrics"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.service.Auth.SignIn(r.Context(), req.Password)
	switch {
	case errors.Is(err, app.ErrInvalidPassword):
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		logger.Info.Printf("Rejected login from %s", r.RemoteAddr)
	case errors.Is(err, app.ErrAuthNotConfigured):
		metrics.LoginAttemptsTotal.WithLabelValues("unconfigured").Inc()
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.service.Auth.SessionCookie(session))
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Auth.SignOut(r.Context(), app.SessionFromRequest(r)); err != nil {
		logger.Error.Printf("Failed to revoke session: %v", err)
	}
	http.SetCookie(w, h.service.Auth.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}
