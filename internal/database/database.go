package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ErrPoolExhausted is returned when a transaction or connection could not be
// acquired even after the bounded retry.
var ErrPoolExhausted = errors.New("database connection pool exhausted")

// retryWait is how long to wait before the single retry on pool exhaustion.
const retryWait = 1 * time.Second

// Config carries the connection parameters loaded from the environment.
type Config struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string
	MaxOpen    int
	MaxIdle    int
}

// Open establishes the connection pool and optionally applies the schema
// script. The returned handle is injected into every repository; there is no
// package-level pool.
func Open(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := applySchema(db, cfg.SchemaPath); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// applySchema reads and executes the schema script when a path is configured.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// BeginTxWithRetry starts a transaction, retrying once after a short wait if
// the pool is exhausted or the connection attempt fails. Failure after the
// retry surfaces as ErrPoolExhausted wrapping the driver error.
func BeginTxWithRetry(ctx context.Context, db *sql.DB, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.BeginTx(ctx, opts)
	if err == nil {
		return tx, nil
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrPoolExhausted, err)
	case <-time.After(retryWait):
	}

	tx, retryErr := db.BeginTx(ctx, opts)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolExhausted, retryErr)
	}
	return tx, nil
}
