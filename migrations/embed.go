// Package migrations embeds the SQL migration files so they can be applied
// by the goose programmatic API at server startup and in tests.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path
// at runtime.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to db and returns how many ran.
func Up(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}

// MigrationStatus is one row of Status.
type MigrationStatus struct {
	Version int64
	Path    string
	State   string // "applied" or "pending"
}

// Status lists every embedded migration and whether db has applied it.
func Status(ctx context.Context, db *sql.DB) ([]MigrationStatus, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.Status: create provider: %w", err)
	}
	results, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Status: %w", err)
	}
	out := make([]MigrationStatus, len(results))
	for i, r := range results {
		out[i] = MigrationStatus{
			Version: r.Source.Version,
			Path:    r.Source.Path,
			State:   string(r.State),
		}
	}
	return out, nil
}
