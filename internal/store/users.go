// Package store exposes the user and post collections to front ends: a cached
// list per entity plus mutations that refetch the list once the server
// acknowledges the change.
package store

import (
	"context"
	"errors"
	"log/slog"

	"userposts/internal/models"
	"userposts/internal/swr"
	"userposts/internal/validation"
)

const UsersKey = "users"

var (
	ErrCreateUser = errors.New("Failed to create user")
	ErrUpdateUser = errors.New("Failed to update user")
	ErrDeleteUser = errors.New("Failed to delete user")
)

// UsersAPI is the part of the API client the users collection needs.
type UsersAPI interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Users struct {
	res      *swr.Resource[[]models.User]
	api      UsersAPI
	validate *validation.Validator
	logger   *slog.Logger
}

func NewUsers(cache *swr.Cache, api UsersAPI, validate *validation.Validator, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{
		res:      swr.NewResource(cache, UsersKey, api.GetUsers),
		api:      api,
		validate: validate,
		logger:   logger,
	}
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	return u.res.Get(ctx)
}

func (u *Users) Snapshot() swr.Snapshot[[]models.User] {
	return u.res.Snapshot()
}

func (u *Users) Subscribe(fn func(swr.Snapshot[[]models.User])) func() {
	return u.res.Subscribe(fn)
}

// Create checks the form input, sends it and refetches the list. Form
// errors come back as *validation.Error without any request being made.
func (u *Users) Create(ctx context.Context, in models.ClientUserInput) error {
	if err := u.validate.Struct(in); err != nil {
		return err
	}

	if _, err := u.api.CreateUser(ctx, in.NewUser()); err != nil {
		u.logger.Error("create user error", slog.String("error", err.Error()))
		return ErrCreateUser
	}

	u.refetch(ctx)
	return nil
}

func (u *Users) Update(ctx context.Context, id int64, in models.ClientUserInput) error {
	if err := u.validate.Struct(in); err != nil {
		return err
	}

	if _, err := u.api.UpdateUser(ctx, id, in.Patch()); err != nil {
		u.logger.Error("update user error", slog.Int64("id", id), slog.String("error", err.Error()))
		return ErrUpdateUser
	}

	u.refetch(ctx)
	return nil
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	if err := u.api.DeleteUser(ctx, id); err != nil {
		u.logger.Error("delete user error", slog.Int64("id", id), slog.String("error", err.Error()))
		return ErrDeleteUser
	}

	u.refetch(ctx)
	return nil
}

// refetch reloads the list after a write. A failed reload stays in the
// cache entry's error; the write itself already succeeded.
func (u *Users) refetch(ctx context.Context) {
	if err := u.res.Invalidate(ctx); err != nil {
		u.logger.Warn("users refetch failed", slog.String("error", err.Error()))
	}
}
