package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/launchpanel/hub/internal/model"
	"github.com/launchpanel/hub/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// POST /v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	user, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// PATCH /v1/users/{user_id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	var in service.UpdateUserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	user, err := h.svc.Update(r.Context(), userID, in)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// DELETE /v1/users/{user_id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	err := h.svc.Delete(r.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
