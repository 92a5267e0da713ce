package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "userposts/internal/repository"

type base struct {
	db             *sqlx.DB
	sb             sq.StatementBuilderType
	acquireTimeout time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
}

func newBase(db *sqlx.DB, opts Options) *base {
	if opts.Placeholder == nil {
		opts.Placeholder = sq.Dollar
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &base{
		db:             db,
		sb:             sq.StatementBuilder.PlaceholderFormat(opts.Placeholder),
		acquireTimeout: opts.AcquireTimeout,
		logger:         opts.Logger,
		tracer:         otel.Tracer(tracerName),
	}
}

// withConn acquires a pooled connection, waiting at most acquireTimeout for
// one to free up, and runs fn on it. The acquisition deadline does not apply to fn.
func (b *base) withConn(ctx context.Context, op string, fn func(ctx context.Context, conn *sqlx.Conn) error) error {
	ctx, span := b.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.operation", op)),
	)
	defer span.End()

	start := time.Now()
	err := b.run(ctx, op, fn)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.LogAttrs(ctx, slog.LevelError, "query failed",
			slog.String("operation", op),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
	}

	return err
}

func (b *base) run(ctx context.Context, op string, fn func(ctx context.Context, conn *sqlx.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, b.acquireTimeout)
	conn, err := b.db.Connx(acquireCtx)
	cancel()
	if err != nil {
		return &PersistenceError{Op: op, Err: fmt.Errorf("acquire connection: %w", err)}
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// inTx runs fn inside a transaction on conn, committing when fn returns nil.
func inTx(ctx context.Context, op string, conn *sqlx.Conn, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
