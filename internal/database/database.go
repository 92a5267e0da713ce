package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"userposts/internal/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

type DB struct {
	*sqlx.DB
	Dialect        Dialect
	AcquireTimeout time.Duration
}

// ConnectDB opens the pool, verifies it answers, creates missing tables and
// runs the startup read. Any failure is returned; the caller decides to exit.
func ConnectDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	dialect, err := DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to database", slog.String("driver", cfg.DB.Driver), slog.Int("pool_max", cfg.DB.PoolMax))

	db, err := sqlx.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DB.PoolMax)
	db.SetMaxIdleConns(min(5, cfg.DB.PoolMax))
	db.SetConnMaxIdleTime(cfg.DB.IdleTimeout)

	dbStruct := &DB{DB: db, Dialect: dialect, AcquireTimeout: cfg.DB.AcquireTimeout}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DB.AcquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := dbStruct.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := dbStruct.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info("database connection successful")
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

// EnsureSchema creates the users and posts tables if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return ApplySchema(ctx, db.DB, db.Dialect)
}

// ApplySchema runs the dialect's CREATE TABLE IF NOT EXISTS statements one by one.
func ApplySchema(ctx context.Context, db *sqlx.DB, dialect Dialect) error {
	ddl, err := schemaFS.ReadFile(dialect.schemaFile)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", dialect.schemaFile, err)
	}

	for _, stmt := range strings.Split(string(ddl), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

// HealthCheck performs the trivial read used to prove the store is usable.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, db.AcquireTimeout)
	defer cancel()

	query, args, err := sq.Select("id").From("users").Limit(1).PlaceholderFormat(db.Dialect.Placeholder).ToSql()
	if err != nil {
		return err
	}

	var ids []int64
	return db.SelectContext(ctx, &ids, query, args...)
}
