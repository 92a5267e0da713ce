package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userposts/internal/models"
)

func newTestClient(url string) *Client {
	return New(url, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestClient_GetUsers(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Alice","createdAt":"2024-05-01T12:00:00Z"}]`))
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).GetUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, 1, calls)
}

func TestClient_CreatePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)

		var in models.NewPost
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, models.NewPost{Title: "Hello", Content: "First post body", UserID: 1}, in)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":9,"title":"Hello","content":"First post body","userId":1,"createdAt":"2024-05-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	post, err := newTestClient(srv.URL).CreatePost(context.Background(), models.NewPost{Title: "Hello", Content: "First post body", UserID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(9), post.ID)
}

func TestClient_UpdateUserSendsOnlyPatchedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/3", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Bob"}`, string(body))
		w.Write([]byte(`{"id":3,"name":"Bob","createdAt":"2024-05-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	name := "Bob"
	user, err := newTestClient(srv.URL).UpdateUser(context.Background(), 3, models.UserPatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		call       func(c *Client) error
		wantMsg    string
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"connection refused"}`))
			},
			call: func(c *Client) error {
				_, err := c.GetUsers(context.Background())
				return err
			},
			wantMsg:    "Failed to fetch users",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "validation rejection",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"validation failed","fields":{"name":"name is a required field"}}`))
			},
			call: func(c *Client) error {
				_, err := c.CreateUser(context.Background(), models.NewUser{})
				return err
			},
			wantMsg:    "Failed to create user",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			call: func(c *Client) error {
				_, err := c.GetPosts(context.Background())
				return err
			},
			wantMsg:    "Failed to fetch posts",
			wantStatus: http.StatusOK,
		},
		{
			name: "not found on delete",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			call: func(c *Client) error {
				return c.DeletePost(context.Background(), 4)
			},
			wantMsg:    "Failed to delete post",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			err := tt.call(newTestClient(srv.URL))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestClient(url).DeleteUser(context.Background(), 1)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to delete user", apiErr.Message)
	assert.Equal(t, "deleteUser", apiErr.Op)
	assert.Zero(t, apiErr.StatusCode)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.http.BaseURL)
}
