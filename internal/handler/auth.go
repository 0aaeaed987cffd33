package handler

import (
	"net/http"
	"strings"

	"github.com/launchpanel/hub/internal/middleware"
	"github.com/launchpanel/hub/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	token, op, err := h.svc.Login(r.Context(), strings.TrimSpace(body.Email), body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "operator": op})
}

// POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if err := h.svc.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	op := middleware.OperatorFromCtx(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"operator": op})
}
