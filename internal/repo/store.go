package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows the same
// repo code to run on the pool, inside a Store transaction, or inside a test
// transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repos bundles one repo per aggregate, all bound to the same db handle.
type Repos struct {
	Trips      TripRepo
	Families   FamilyRepo
	Users      UserRepo
	Attendance AttendanceRepo
	Gear       GearRepo
	Activity   ActivityRepo
}

// NewRepos binds every repo to db.
func NewRepos(db db) Repos {
	return Repos{
		Trips:      NewTripRepo(db),
		Families:   NewFamilyRepo(db),
		Users:      NewUserRepo(db),
		Attendance: NewAttendanceRepo(db),
		Gear:       NewGearRepo(db),
		Activity:   NewActivityRepo(db),
	}
}

// Store is the unit-of-work boundary the service layer depends on.
type Store interface {
	// Repos returns repos that run each statement on its own.
	// Use it for reads that need no consistency across statements.
	Repos() Repos

	// InTx runs fn inside a single transaction. If fn returns an error the
	// transaction is rolled back and nothing fn wrote is visible.
	// Implementations may call fn more than once when the database reports
	// a serialization failure, so fn must not have side effects outside
	// the repos it is given.
	InTx(ctx context.Context, fn func(Repos) error) error
}

// Default retry settings for PgStore.InTx.
const (
	DefaultTxMaxRetries = 5
	txRetryMaxElapsed   = 5 * time.Second
)

// PgStore is the Postgres implementation of Store.
type PgStore struct {
	pool       *pgxpool.Pool
	maxRetries uint64
}

// NewPgStore constructs a PgStore on pool. maxRetries bounds how many times a
// transaction is re-run after a serialization failure or deadlock.
func NewPgStore(pool *pgxpool.Pool, maxRetries uint64) *PgStore {
	return &PgStore{pool: pool, maxRetries: maxRetries}
}

// Repos returns repos bound directly to the pool.
func (s *PgStore) Repos() Repos {
	return NewRepos(s.pool)
}

// InTx runs fn in a READ COMMITTED transaction. Row locks taken inside fn
// (see GearRepo.LockItem) provide the serialization the capacity check
// needs; errors 40001 and 40P01 re-run fn with exponential backoff.
func (s *PgStore) InTx(ctx context.Context, fn func(Repos) error) error {
	op := func() error {
		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			return fn(NewRepos(tx))
		})
		if err == nil {
			return nil
		}
		if isRetryableTxError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newTxBackoff(), s.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if isRetryableTxError(err) {
			return fmt.Errorf("repo.PgStore.InTx: retries exhausted: %w", err)
		}
		return err
	}
	return nil
}

func newTxBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = txRetryMaxElapsed
	return bo
}

// Postgres SQLSTATE codes that mean "run the transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}
