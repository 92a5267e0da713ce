package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"userposts/internal/models"
	"userposts/internal/repository"
	"userposts/internal/validation"
)

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to fetch posts"
	defer h.recoverWith(w, r, fallback)

	posts, err := h.PostService.ListPosts(r.Context())
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, posts, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to create post"
	defer h.recoverWith(w, r, fallback)

	var req models.NewPost
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	// creating a post
	post, err := h.PostService.CreatePost(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, post, http.StatusCreated)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to update post"
	defer h.recoverWith(w, r, fallback)

	// Extracting the post ID from the URL
	postID, err := validation.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	var req models.PostPatch
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), postID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteError(w, r, "post not found", http.StatusNotFound)
			return
		}
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to delete post"
	defer h.recoverWith(w, r, fallback)

	postID, err := validation.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), postID); err != nil {
		h.fail(w, r, err, fallback)
		return
	}

	writeSuccess(w, r, SuccessResponse{Success: true}, http.StatusOK)
}
