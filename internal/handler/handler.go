package handlers

import (
	"log/slog"

	"userposts/internal/service"
)

type Handlers struct {
	UserService   service.UserService
	PostService   service.PostService
	TablesService service.TablesService
	Logger        *slog.Logger
}

func NewHandlers(service *service.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		UserService:   service.User,
		PostService:   service.Post,
		TablesService: service.Tables,
		Logger:        logger,
	}
}
