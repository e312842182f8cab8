package dbtest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	ordinaldb "github.com/onemodel/ordinal/pkg/db"
)

// GetTestDB opens a fresh in-memory database with every table created. Each
// call gets its own database, so tests can run in parallel.
func GetTestDB(ctx context.Context) (*sql.DB, error) {
	uniqueName := ulid.Make().String()
	connStr := fmt.Sprintf("file:testdb_%s?mode=memory&cache=shared&_txlock=immediate&_pragma=foreign_keys(1)", uniqueName)

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, err
	}
	// one connection keeps the shared-cache database alive and serializes
	// writers like the file-backed database does
	db.SetMaxOpenConns(1)

	if err := ordinaldb.CreateLocalTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
