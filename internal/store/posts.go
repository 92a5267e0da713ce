package store

import (
	"context"
	"errors"
	"log/slog"

	"userposts/internal/models"
	"userposts/internal/swr"
	"userposts/internal/validation"
)

const PostsKey = "posts"

var (
	ErrCreatePost = errors.New("Failed to create post")
	ErrUpdatePost = errors.New("Failed to update post")
	ErrDeletePost = errors.New("Failed to delete post")
)

type PostsAPI interface {
	GetPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type Posts struct {
	res      *swr.Resource[[]models.Post]
	api      PostsAPI
	validate *validation.Validator
	logger   *slog.Logger
}

func NewPosts(cache *swr.Cache, api PostsAPI, validate *validation.Validator, logger *slog.Logger) *Posts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Posts{
		res:      swr.NewResource(cache, PostsKey, api.GetPosts),
		api:      api,
		validate: validate,
		logger:   logger,
	}
}

func (p *Posts) List(ctx context.Context) ([]models.Post, error) {
	return p.res.Get(ctx)
}

func (p *Posts) Snapshot() swr.Snapshot[[]models.Post] {
	return p.res.Snapshot()
}

func (p *Posts) Subscribe(fn func(swr.Snapshot[[]models.Post])) func() {
	return p.res.Subscribe(fn)
}

func (p *Posts) Create(ctx context.Context, in models.ClientPostInput) error {
	if err := p.validate.Struct(in); err != nil {
		return err
	}

	if _, err := p.api.CreatePost(ctx, in.NewPost()); err != nil {
		p.logger.Error("create post error", slog.String("error", err.Error()))
		return ErrCreatePost
	}

	p.refetch(ctx)
	return nil
}

func (p *Posts) Update(ctx context.Context, id int64, in models.ClientPostInput) error {
	if err := p.validate.Struct(in); err != nil {
		return err
	}

	if _, err := p.api.UpdatePost(ctx, id, in.Patch()); err != nil {
		p.logger.Error("update post error", slog.Int64("id", id), slog.String("error", err.Error()))
		return ErrUpdatePost
	}

	p.refetch(ctx)
	return nil
}

func (p *Posts) Delete(ctx context.Context, id int64) error {
	if err := p.api.DeletePost(ctx, id); err != nil {
		p.logger.Error("delete post error", slog.Int64("id", id), slog.String("error", err.Error()))
		return ErrDeletePost
	}

	p.refetch(ctx)
	return nil
}

func (p *Posts) refetch(ctx context.Context) {
	if err := p.res.Invalidate(ctx); err != nil {
		p.logger.Warn("posts refetch failed", slog.String("error", err.Error()))
	}
}
