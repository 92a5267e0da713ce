package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"userposts/internal/models"
)

type tablesRepository struct {
	*base
}

func NewTablesRepository(db *sqlx.DB, opts Options) TablesRepository {
	return &tablesRepository{base: newBase(db, opts)}
}

// CountRows reports how many rows the users and posts tables hold.
func (r *tablesRepository) CountRows(ctx context.Context) (*models.TableStats, error) {
	const op = "tables.count"
	var stats models.TableStats

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query := `
			SELECT
				(SELECT COUNT(*) FROM users) AS users,
				(SELECT COUNT(*) FROM posts) AS posts
		`

		if err := conn.GetContext(ctx, &stats, query); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
