package service

import (
	"log/slog"

	"userposts/internal/cache"
	"userposts/internal/repository"
	"userposts/internal/validation"
)

type Service struct {
	User   UserService
	Post   PostService
	Tables TablesService
}

// NewService wires the services over rep. lists may be nil, which disables
// list caching.
func NewService(rep *repository.Repository, validate *validation.Validator, lists cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		User:   NewUserService(rep.User, validate, lists, logger),
		Post:   NewPostService(rep.Post, validate, lists, logger),
		Tables: NewTablesService(rep.Tables),
	}
}
