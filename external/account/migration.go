package account

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS linked_accounts (
		grow_id TEXT PRIMARY KEY,
		discord_id TEXT NOT NULL UNIQUE,
		balance BIGINT NOT NULL DEFAULT 0,
		linked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS link_codes (
		code TEXT PRIMARY KEY,
		grow_id TEXT NOT NULL UNIQUE,
		issued_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_link_codes_issued_at ON link_codes (issued_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
