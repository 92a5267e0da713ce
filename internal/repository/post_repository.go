package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"userposts/internal/models"
)

var postColumns = []string{"id", "title", "content", "created_at", "user_id"}

type postRepository struct {
	*base
}

func NewPostRepository(db *sqlx.DB, opts Options) PostRepository {
	return &postRepository{base: newBase(db, opts)}
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	const op = "posts.list"
	posts := make([]models.Post, 0)

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Select(postColumns...).From("posts").ToSql()
		if err != nil {
			return err
		}

		if err := conn.SelectContext(ctx, &posts, query, args...); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// Create inserts a post. A userId with no matching user is rejected by the
// foreign key and surfaces as a PersistenceError; nothing is stored.
func (r *postRepository) Create(ctx context.Context, in models.NewPost) (*models.Post, error) {
	const op = "posts.create"
	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		UserID:    in.UserID,
		CreatedAt: now(),
	}

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Insert("posts").
			Columns("title", "content", "created_at", "user_id").
			Values(post.Title, post.Content, post.CreatedAt, post.UserID).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}

		if err := conn.QueryRowxContext(ctx, query, args...).Scan(&post.ID); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *postRepository) Update(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	const op = "posts.update"
	var post models.Post

	err := r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		return inTx(ctx, op, conn, func(tx *sqlx.Tx) error {
			if !patch.IsEmpty() {
				builder := r.sb.Update("posts").Where(sq.Eq{"id": id})
				if patch.Title != nil {
					builder = builder.Set("title", *patch.Title)
				}
				if patch.Content != nil {
					builder = builder.Set("content", *patch.Content)
				}
				if patch.UserID != nil {
					builder = builder.Set("user_id", *patch.UserID)
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
					return notFound("post", id)
				}
			}

			query, args, err := r.sb.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return err
			}

			if err := tx.GetContext(ctx, &post, query, args...); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFound("post", id)
				}
				return persistErr(op, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	const op = "posts.delete"

	return r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		query, args, err := r.sb.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}

		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return persistErr(op, err)
		}
		return nil
	})
}
