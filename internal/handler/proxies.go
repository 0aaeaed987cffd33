package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/launchpanel/hub/internal/model"
	"github.com/launchpanel/hub/internal/service"
)

type ProxyHandler struct {
	svc *service.ProxyService
}

func NewProxyHandler(svc *service.ProxyService) *ProxyHandler {
	return &ProxyHandler{svc: svc}
}

// GET /v1/proxies?user_id=...
func (h *ProxyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "user_id is required")
		return
	}
	proxies, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if proxies == nil {
		proxies = []model.Proxy{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"proxies": proxies})
}

// POST /v1/proxies?user_id=...
func (h *ProxyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "user_id is required")
		return
	}
	var in service.CreateProxyInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	proxy, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"proxy": proxy})
}

// DELETE /v1/proxies/{proxy_id}
func (h *ProxyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	proxyID := chi.URLParam(r, "proxy_id")
	if err := h.svc.Delete(r.Context(), proxyID); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
