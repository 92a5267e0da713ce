package service

import (
	"context"
	"log/slog"

	"userposts/internal/cache"
	"userposts/internal/models"
	"userposts/internal/repository"
	"userposts/internal/validation"
)

const sampleUserName = "Sample User"

type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	EnsureSampleUser(ctx context.Context) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	validate *validation.Validator
	lists    cache.Cache
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, validate *validation.Validator, lists cache.Cache, logger *slog.Logger) UserService {
	if lists == nil {
		lists = cache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		validate: validate,
		lists:    lists,
		logger:   logger,
	}
}

// ListUsers serves the list from the cache when it holds one and fills it
// otherwise. The fill is skipped if a write invalidated the list while the
// store was being read.
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	gen, genErr := s.lists.Generation(ctx, cache.UsersKey)
	if genErr != nil {
		s.logger.Warn("users cache generation read failed", slog.String("error", genErr.Error()))
	}

	var users []models.User
	found, err := s.lists.GetJSON(ctx, cache.UsersKey, &users)
	if err != nil {
		s.logger.Warn("users cache read failed", slog.String("error", err.Error()))
	} else if found {
		return users, nil
	}

	users, err = s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if _, err := s.lists.SetJSONIf(ctx, cache.UsersKey, gen, users); err != nil {
			s.logger.Warn("users cache write failed", slog.String("error", err.Error()))
		}
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.forget(ctx)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if id < 1 {
		return nil, validation.Field("id", "id must be a positive integer")
	}

	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.forget(ctx)
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if id < 1 {
		return validation.Field("id", "id must be a positive integer")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.forget(ctx)
	return nil
}

// EnsureSampleUser inserts a default user when the users table is empty and
// reports whether it did.
func (s *userService) EnsureSampleUser(ctx context.Context) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := s.userRepo.Create(ctx, models.NewUser{Name: sampleUserName})
	if err != nil {
		return false, err
	}
	s.forget(ctx)

	s.logger.Info("added sample user", slog.Int64("id", user.ID))
	return true, nil
}

// forget drops the cached list after a write so the next read goes to the store.
func (s *userService) forget(ctx context.Context) {
	if err := s.lists.Invalidate(ctx, cache.UsersKey); err != nil {
		s.logger.Warn("users cache invalidation failed", slog.String("error", err.Error()))
	}
}
