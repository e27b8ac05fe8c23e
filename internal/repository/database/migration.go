package database

import (
	"context"
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schema string

// RunMigrations applies the embedded schema. It is safe to run on every start.
func RunMigrations(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema.sql: %w", err)
	}
	log.Println("[DB] Migrations applied")
	return nil
}
