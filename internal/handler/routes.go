package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every route of the API on a fresh router.
func NewRouter(h *Handlers) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", HomeHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	router.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)
	router.HandleFunc("/users/{id}", h.DeleteUser).Methods(http.MethodDelete)

	router.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	router.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	router.HandleFunc("/posts/{id}", h.UpdatePost).Methods(http.MethodPut)
	router.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, "Not found", http.StatusNotFound)
	})

	return router
}
