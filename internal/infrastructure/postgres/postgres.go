// Package postgres provides the PostgreSQL store used by the gateway fleet
// repositories when database.driver is "postgres".
//
// The pool comes from pgx v5; the schema is managed by golang-migrate
// reading the embedded files registered in MigrationsFS.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const connectionTimeout = 5 * time.Second

// MigrationsFS holds the golang-migrate files (NNNNNN_name.up.sql). The
// migrations package sets it from its embedded filesystem.
var MigrationsFS fs.FS

// MigrationsDir is the directory within MigrationsFS holding the files.
var MigrationsDir = "."

// Config contains PostgreSQL options from the database section of config.yaml.
type Config struct {
	// URL is a postgres:// connection string.
	URL string

	// MaxConns caps the pool size. Zero keeps the pgx default.
	MaxConns int32
}

// DB wraps a pgx connection pool.
type DB struct {
	*pgxpool.Pool
	url string
}

// Open creates the pool and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return &DB{Pool: pool, url: cfg.URL}, nil
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	return nil
}

// HealthCheck pings the server.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Migrate applies every pending up migration. An up-to-date schema is not
// an error.
func (db *DB) Migrate() error {
	if MigrationsFS == nil {
		return nil
	}

	src, err := iofs.New(MigrationsFS, MigrationsDir)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(db.url))
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close() //nolint:errcheck // Source and driver close errors are not actionable

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// migrateURL switches the scheme to the one the pgx v5 migrate driver registers.
func migrateURL(url string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return url
}

// IsUniqueViolation reports whether err is a unique_violation on the named
// constraint. An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsForeignKeyViolation reports whether err is a foreign_key_violation on
// the named constraint. An empty constraint matches any foreign key.
func IsForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeForeignKeyViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
