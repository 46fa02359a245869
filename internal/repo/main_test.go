package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/tripplanner/migrations"
	"github.com/pkordes/tripplanner/testutil"
)

// TestMain applies all pending migrations once for the whole package so
// individual tests never need to think about schema state.
func TestMain(m *testing.M) {
	dsn := testutil.DSN()
	if dsn == "" {
		// No test DB configured; every test skips itself via testutil.
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
