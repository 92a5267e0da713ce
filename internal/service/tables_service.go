package service

import (
	"context"

	"userposts/internal/models"
	"userposts/internal/repository"
)

type TablesService interface {
	GetTableStats(ctx context.Context) (*models.TableStats, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

func (t *tablesService) GetTableStats(ctx context.Context) (*models.TableStats, error) {
	stats, err := t.tablesRepo.CountRows(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
