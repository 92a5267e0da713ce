package service

import (
	"context"
	"log/slog"

	"userposts/internal/cache"
	"userposts/internal/models"
	"userposts/internal/repository"
	"userposts/internal/validation"
)

type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type postService struct {
	postRepo repository.PostRepository
	validate *validation.Validator
	lists    cache.Cache
	logger   *slog.Logger
}

func NewPostService(postRepo repository.PostRepository, validate *validation.Validator, lists cache.Cache, logger *slog.Logger) PostService {
	if lists == nil {
		lists = cache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		postRepo: postRepo,
		validate: validate,
		lists:    lists,
		logger:   logger,
	}
}

func (p *postService) ListPosts(ctx context.Context) ([]models.Post, error) {
	gen, genErr := p.lists.Generation(ctx, cache.PostsKey)
	if genErr != nil {
		p.logger.Warn("posts cache generation read failed", slog.String("error", genErr.Error()))
	}

	var posts []models.Post
	found, err := p.lists.GetJSON(ctx, cache.PostsKey, &posts)
	if err != nil {
		p.logger.Warn("posts cache read failed", slog.String("error", err.Error()))
	} else if found {
		return posts, nil
	}

	posts, err = p.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if _, err := p.lists.SetJSONIf(ctx, cache.PostsKey, gen, posts); err != nil {
			p.logger.Warn("posts cache write failed", slog.String("error", err.Error()))
		}
	}
	return posts, nil
}

func (p *postService) CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	if err := p.validate.Struct(in); err != nil {
		return nil, err
	}

	post, err := p.postRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	p.forget(ctx)
	return post, nil
}

func (p *postService) UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	if id < 1 {
		return nil, validation.Field("id", "id must be a positive integer")
	}

	if err := p.validate.Struct(patch); err != nil {
		return nil, err
	}

	post, err := p.postRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	p.forget(ctx)
	return post, nil
}

func (p *postService) DeletePost(ctx context.Context, id int64) error {
	if id < 1 {
		return validation.Field("id", "id must be a positive integer")
	}

	err := p.postRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	p.forget(ctx)
	return nil
}

func (p *postService) forget(ctx context.Context) {
	if err := p.lists.Invalidate(ctx, cache.PostsKey); err != nil {
		p.logger.Warn("posts cache invalidation failed", slog.String("error", err.Error()))
	}
}
