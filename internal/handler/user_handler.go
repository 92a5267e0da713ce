package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"userposts/internal/models"
	"userposts/internal/repository"
	"userposts/internal/validation"
)

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to fetch users"
	defer h.recoverWith(w, r, fallback)

	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, users, http.StatusOK)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to create user"
	defer h.recoverWith(w, r, fallback)

	var req models.NewUser
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, user, http.StatusCreated)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to update user"
	defer h.recoverWith(w, r, fallback)

	// extracting the user id from the url
	userID, err := validation.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	var req models.UserPatch
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteError(w, r, "user not found", http.StatusNotFound)
			return
		}
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, user, http.StatusOK)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to delete user"
	defer h.recoverWith(w, r, fallback)

	userID, err := validation.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), userID); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, SuccessResponse{Success: true}, http.StatusOK)
}
