package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema stores each student and waiting-list entry as one JSONB document.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		ep_id BIGINT PRIMARY KEY,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_status ON students ((document->'status'->>'currentStatus'))`,
	`CREATE TABLE IF NOT EXISTS waiting_list (
		id UUID PRIMARY KEY,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the document tables when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
