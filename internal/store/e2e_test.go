package store_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userposts/internal/apiclient"
	"userposts/internal/database"
	handlers "userposts/internal/handler"
	"userposts/internal/middleware"
	"userposts/internal/models"
	"userposts/internal/repository"
	"userposts/internal/service"
	"userposts/internal/store"
	"userposts/internal/validation"
)

// startServer runs the full API over an in-memory SQLite database.
func startServer(t *testing.T) *apiclient.Client {
	t.Helper()
	ctx := context.Background()

	db, err := sqlx.Open("sqlite3", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared&_foreign_keys=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.ApplySchema(ctx, db, database.SQLite))

	repo := repository.NewRepository(db, repository.Options{
		Placeholder:    database.SQLite.Placeholder,
		AcquireTimeout: time.Second,
		Logger:         discard,
	})
	services := service.NewService(repo, validation.New(), nil, discard)
	router := handlers.NewRouter(handlers.NewHandlers(services, discard))

	srv := httptest.NewServer(middleware.Standard(router, discard))
	t.Cleanup(srv.Close)

	return apiclient.New(srv.URL, apiclient.WithLogger(discard))
}

func TestEndToEnd_CreateShowsUpInList(t *testing.T) {
	ctx := context.Background()
	client := startServer(t)
	cache := newCache()
	users := store.NewUsers(cache, client, validation.New(), discard)
	posts := store.NewPosts(cache, client, validation.New(), discard)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, users.Create(ctx, models.ClientUserInput{Name: "Alice"}))

	list = users.Snapshot().Data
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)

	require.NoError(t, posts.Create(ctx, models.ClientPostInput{
		Title:   "Hello",
		Content: "First post body",
		UserID:  list[0].ID,
	}))

	postList := posts.Snapshot().Data
	require.Len(t, postList, 1)
	assert.Equal(t, list[0].ID, postList[0].UserID)

	require.NoError(t, posts.Update(ctx, postList[0].ID, models.ClientPostInput{
		Title:   "Hello again",
		Content: "Edited post body",
		UserID:  list[0].ID,
	}))
	assert.Equal(t, "Hello again", posts.Snapshot().Data[0].Title)

	require.NoError(t, posts.Delete(ctx, postList[0].ID))
	assert.Empty(t, posts.Snapshot().Data)
}

func TestEndToEnd_ServerRejectionsAreNormalized(t *testing.T) {
	ctx := context.Background()
	client := startServer(t)
	cache := newCache()
	users := store.NewUsers(cache, client, validation.New(), discard)
	posts := store.NewPosts(cache, client, validation.New(), discard)

	// unknown owner fails the foreign key on the server
	err := posts.Create(ctx, models.ClientPostInput{Title: "Hello", Content: "First post body", UserID: 999})
	assert.ErrorIs(t, err, store.ErrCreatePost)

	err = users.Update(ctx, 404, models.ClientUserInput{Name: "Nobody"})
	assert.ErrorIs(t, err, store.ErrUpdateUser)

	// deleting an id that never existed still succeeds
	assert.NoError(t, users.Delete(ctx, 12345))
}

func TestEndToEnd_DirectClientErrors(t *testing.T) {
	client := startServer(t)

	_, err := client.UpdatePost(context.Background(), 77, models.PostPatch{})

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Failed to update post", apiErr.Message)
}
