package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the bootstrap DDL for the dialect
func Schema(dialect Dialect) (string, error) {
	name := "schema/postgres.sql"
	if dialect == DialectSQLite {
		name = "schema/sqlite.sql"
	}
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ApplySchema creates the workspace tables if they do not exist yet.
// Every statement is idempotent so it is safe to run on each start.
func ApplySchema(ctx context.Context, db *sqlx.DB, dialect Dialect) error {
	ddl, err := Schema(dialect)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
