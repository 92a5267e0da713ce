package repository

import (
	"context"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"userposts/internal/models"
)

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, in models.NewPost) (*models.Post, error)
	Update(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

type TablesRepository interface {
	CountRows(ctx context.Context) (*models.TableStats, error)
}

type Repository struct {
	User   UserRepository
	Post   PostRepository
	Tables TablesRepository
}

// Options tune how the repositories talk to the pool.
type Options struct {
	Placeholder    sq.PlaceholderFormat
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

func NewRepository(db *sqlx.DB, opts Options) *Repository {
	b := newBase(db, opts)
	return &Repository{
		User:   &userRepository{base: b},
		Post:   &postRepository{base: b},
		Tables: &tablesRepository{base: b},
	}
}
