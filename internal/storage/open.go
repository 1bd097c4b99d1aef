package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dhima/edge-cache/internal/logging"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// OpenSQLite creates or opens a SQLite database at path. The parent
// directory is created when missing. Opening an existing database is safe.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger, opts ...Option) (*SQLStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	opts = append([]Option{WithLocation(path)}, opts...)
	store, err := NewSQLStore(ctx, db, SQLite, logger, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenMySQL connects to the MySQL database described by dsn.
func OpenMySQL(ctx context.Context, dsn string, logger logging.Logger, opts ...Option) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(60 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect mysql database: %w", err)
	}

	opts = append([]Option{WithLocation(fmt.Sprintf("%s/%s", cfg.Addr, cfg.DBName))}, opts...)
	store, err := NewSQLStore(ctx, db, MySQL, logger, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
