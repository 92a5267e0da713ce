package handlers

import (
	"fmt"
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
	Posts  int    `json:"posts"`
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Hello from userposts!")
}

// HealthHandler reads the row counts; a failing read means the store is unusable.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.TablesService.GetTableStats(r.Context())
	if err != nil {
		WriteError(w, r, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeSuccess(w, r, HealthResponse{Status: "ok", Users: stats.Users, Posts: stats.Posts}, http.StatusOK)
}
