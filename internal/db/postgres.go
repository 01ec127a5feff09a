// Package db holds the Postgres connection, schema migrations and the
// repositories of every catalog resource.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prudhivi99/guitar-store/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type PostgresDB struct {
	Conn *sql.DB
}

// NewPostgresDB opens the pool and pings the server once.
func NewPostgresDB(ctx context.Context, cfg config.Database) (*PostgresDB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpen)
	conn.SetMaxIdleConns(cfg.MaxIdle)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to PostgreSQL", "host", cfg.Host, "db", cfg.Name)
	return &PostgresDB{Conn: conn}, nil
}

func (db *PostgresDB) Close() error {
	return db.Conn.Close()
}

// Ping is used by the health endpoint.
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Conn.PingContext(ctx)
}

func initGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every pending migration.
func (db *PostgresDB) MigrateUp(ctx context.Context) error {
	if err := initGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.Conn, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the latest migration.
func (db *PostgresDB) MigrateDown(ctx context.Context) error {
	if err := initGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.Conn, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrateStatus logs the state of every migration.
func (db *PostgresDB) MigrateStatus(ctx context.Context) error {
	if err := initGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.Conn, migrationsDir)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key error.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
