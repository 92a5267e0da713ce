package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"userposts/internal/models"
)

var userColumns = []string{"id", "name", "created_at"}

type userRepository struct {
	*base
}

func NewUserRepository(db *sqlx.DB, opts Options) UserRepository {
	return &userRepository{base: newBase(db, opts)}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	const op = "users.list"
	users := make([]models.User, 0)

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Select(userColumns...).From("users").ToSql()
		if err != nil {
			return err
		}

		if err := conn.SelectContext(ctx, &users, query, args...); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// Create inserts a user; id comes back from the store and createdAt is stamped here.
func (r *userRepository) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	const op = "users.create"
	user := &models.User{Name: in.Name, CreatedAt: now()}

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Insert("users").
			Columns("name", "created_at").
			Values(user.Name, user.CreatedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}

		if err := conn.QueryRowxContext(ctx, query, args...).Scan(&user.ID); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update applies the non-nil fields of patch and returns the row as stored.
func (r *userRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	const op = "users.update"
	var user models.User

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		return inTx(ctx, op, conn, func(tx *sqlx.Tx) error {
			if !patch.IsEmpty() {
				builder := r.sb.Update("users").Where(sq.Eq{"id": id})
				if patch.Name != nil {
					builder = builder.Set("name", *patch.Name)
				}

				query, args, err := builder.ToSql()
				if err != nil {
					return err
				}

				result, err := tx.ExecContext(ctx, query, args...)
				if err != nil {
					return persistErr(op, err)
				}

				rowsAffected, err := result.RowsAffected()
				if err != nil {
					return persistErr(op, err)
				}
				if rowsAffected == 0 {
					return notFound("user", id)
				}
			}

			query, args, err := r.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return err
			}

			if err := tx.GetContext(ctx, &user, query, args...); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFound("user", id)
				}
				return persistErr(op, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Delete removes the user if present. A missing row is not an error.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const op = "users.delete"

	return r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Delete("users").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}

		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	const op = "users.count"
	var count int

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Select("COUNT(*)").From("users").ToSql()
		if err != nil {
			return err
		}

		if err := conn.GetContext(ctx, &count, query, args...); err != nil {
			return persistErr(op, err)
		}
		return nil
	})

	return count, err
}
