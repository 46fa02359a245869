package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/tripplanner/internal/domain"
)

// AttendanceRepo defines the persistence operations for the attendance
// join table. A row's presence means the family is attending the trip.
type AttendanceRepo interface {
	// Upsert records that familyID attends tripID. Idempotent: no error if
	// the record already exists.
	Upsert(ctx context.Context, tripID, familyID uuid.UUID) error

	// Delete removes the record and reports whether one existed.
	// A missing record is not an error.
	Delete(ctx context.Context, tripID, familyID uuid.UUID) (bool, error)

	// Exists reports whether familyID attends tripID.
	Exists(ctx context.Context, tripID, familyID uuid.UUID) (bool, error)

	// ListFamilies returns the attending families of a trip ordered by name.
	ListFamilies(ctx context.Context, tripID uuid.UUID) ([]domain.Family, error)
}

type pgAttendanceRepo struct {
	db db
}

// NewAttendanceRepo constructs an AttendanceRepo backed by the provided db connection.
func NewAttendanceRepo(db db) AttendanceRepo {
	return &pgAttendanceRepo{db: db}
}

// Upsert inserts the attendance record. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgAttendanceRepo) Upsert(ctx context.Context, tripID, familyID uuid.UUID) error {
	const q = `
		INSERT INTO attendance (trip_id, family_id)
		VALUES (@trip_id, @family_id)
		ON CONFLICT (trip_id, family_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "family_id": familyID})
	if err != nil {
		return fmt.Errorf("repo.AttendanceRepo.Upsert: %w", err)
	}
	return nil
}

func (r *pgAttendanceRepo) Delete(ctx context.Context, tripID, familyID uuid.UUID) (bool, error) {
	const q = `DELETE FROM attendance WHERE trip_id = @trip_id AND family_id = @family_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "family_id": familyID})
	if err != nil {
		return false, fmt.Errorf("repo.AttendanceRepo.Delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgAttendanceRepo) Exists(ctx context.Context, tripID, familyID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM attendance WHERE trip_id = @trip_id AND family_id = @family_id
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "family_id": familyID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.AttendanceRepo.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgAttendanceRepo) ListFamilies(ctx context.Context, tripID uuid.UUID) ([]domain.Family, error) {
	const q = `
		SELECT f.id, f.name, f.status, f.is_active, f.created_at, f.updated_at
		FROM families f
		JOIN attendance a ON a.family_id = f.id
		WHERE a.trip_id = @trip_id
		ORDER BY f.name, f.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListFamilies: %w", err)
	}
	defer rows.Close()

	families := []domain.Family{}
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AttendanceRepo.ListFamilies: scan: %w", err)
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListFamilies: rows: %w", err)
	}
	return families, nil
}
