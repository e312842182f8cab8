// Package ordinaldb opens the SQLite database that holds containers and their
// sort keys.
package ordinaldb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	ErrDBNameNotFound = errors.New("db name not found")
	ErrDBPathNotFound = errors.New("db path not found")
)

//go:embed schema.sql
var ddl string

var createIndexRegex = regexp.MustCompile(`(?i)\bCREATE\s+(UNIQUE\s+)?INDEX\s+`)

// CreateLocalTables creates every table and index in schema.sql that does not
// exist yet.
func CreateLocalTables(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	modifiedDDL := strings.ReplaceAll(ddl, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ")
	modifiedDDL = createIndexRegex.ReplaceAllStringFunc(modifiedDDL, func(match string) string {
		if strings.Contains(strings.ToUpper(match), "UNIQUE") {
			return "CREATE UNIQUE INDEX IF NOT EXISTS "
		}
		return "CREATE INDEX IF NOT EXISTS "
	})

	for _, stmt := range strings.Split(modifiedDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Warn("table or index already exists, ignoring", zap.Error(err))
				continue
			}
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Open opens (creating if needed) dbName.db under path with a single writer
// connection. Transactions begin IMMEDIATE so concurrent writers from other
// processes wait on the busy timeout instead of failing mid-placement.
func Open(ctx context.Context, dbName, path string) (*sql.DB, func(), error) {
	if dbName == "" {
		return nil, nil, ErrDBNameNotFound
	}
	if path == "" {
		return nil, nil, ErrDBPathNotFound
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create directory: %w", err)
	}

	params := url.Values{
		"_txlock": []string{"immediate"},
		"_pragma": []string{
			"journal_mode(WAL)",
			"busy_timeout(10000)",
			"foreign_keys(1)",
			"synchronous(NORMAL)",
		},
	}
	dsn := fmt.Sprintf("file:%s?%s", filepath.Join(path, dbName+".db"), params.Encode())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := CreateLocalTables(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}
	return db, closeFn, nil
}

// TxnRollback is meant to be deferred right after BeginTx. It logs rollback
// failures other than the transaction having been committed already.
func TxnRollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Error("rollback transaction", zap.Error(err))
	}
}
