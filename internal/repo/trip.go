// Package repo contains all database access logic for the trip planner.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/internal/domain"
)

// TripFilter narrows ListPaged. Published trips are always included;
// the fields decide which drafts are.
type TripFilter struct {
	// AllDrafts includes every draft trip.
	AllDrafts bool
	// DraftsAdministeredBy includes drafts that list this user as admin.
	DraftsAdministeredBy *uuid.UUID
}

// TripRepo defines the persistence operations for Trips and their admin set.
// Every read returns the trip with Admins and Attendees populated.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetForUpdate is GetByID plus a row lock held until the transaction ends.
	// Only meaningful inside Store.InTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trips ordered by start_date descending and
	// the total count of trips matching the filter.
	ListPaged(ctx context.Context, f TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable descriptive fields and dates of a trip.
	// The draft flag and admin set are not touched.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// SetDraft flips the draft flag. Returns domain.ErrNotFound if the trip does not exist.
	SetDraft(ctx context.Context, id uuid.UUID, draft bool) error

	// Delete removes a trip by ID; gear, assignments, attendance and admins
	// go with it. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceAdmins sets the trip's admin set to exactly userIDs.
	ReplaceAdmins(ctx context.Context, tripID uuid.UUID, userIDs []uuid.UUID) error

	// AddAdmin links a user as admin. Idempotent, no error if already linked.
	AddAdmin(ctx context.Context, tripID, userID uuid.UUID) error

	// RemoveAdmin unlinks an admin.
	// Returns domain.ErrNotFound if the user is not an admin of the trip.
	RemoveAdmin(ctx context.Context, tripID, userID uuid.UUID) error

	// ListAdministeredBy returns the ids of the trips that list any of
	// userIDs as admin, ordered by id.
	ListAdministeredBy(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a Store transaction; in tests pass a
// pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// tripColumns selects a trip row plus its admin and attendee id arrays.
// The table must be aliased as t.
const tripColumns = `
	t.id, t.name, t.location, t.description, t.photo_album_link,
	t.start_date, t.end_date, t.attendance_cutoff_date, t.draft,
	t.created_at, t.updated_at,
	ARRAY(SELECT ta.user_id FROM trip_admins ta WHERE ta.trip_id = t.id ORDER BY ta.user_id) AS admins,
	ARRAY(SELECT a.family_id FROM attendance a WHERE a.trip_id = t.id ORDER BY a.family_id) AS attendees`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH t AS (
			INSERT INTO trips (name, location, description, photo_album_link,
			                   start_date, end_date, attendance_cutoff_date, draft)
			VALUES (@name, @location, @description, @photo_album_link,
			        @start_date, @end_date, @attendance_cutoff_date, @draft)
			RETURNING *
		)
		SELECT ` + tripColumns + ` FROM t`

	args := pgx.NamedArgs{
		"name":                   trip.Name,
		"location":               trip.Location,
		"description":            trip.Description,
		"photo_album_link":       trip.PhotoAlbumLink,
		"start_date":             trip.StartDate,
		"end_date":               trip.EndDate,
		"attendance_cutoff_date": trip.AttendanceCutoff, // nil becomes NULL
		"draft":                  trip.Draft,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetForUpdate retrieves a trip by primary key and locks its row.
func (r *pgTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = @id FOR UPDATE OF t`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of visible trips ordered by start_date descending.
func (r *pgTripRepo) ListPaged(ctx context.Context, f TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const where = `
		WHERE NOT t.draft
		   OR @all_drafts
		   OR (@admin_id::uuid IS NOT NULL AND EXISTS (
		           SELECT 1 FROM trip_admins ta WHERE ta.trip_id = t.id AND ta.user_id = @admin_id::uuid))`

	args := pgx.NamedArgs{
		"all_drafts": f.AllDrafts,
		"admin_id":   f.DraftsAdministeredBy, // nil becomes NULL
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips t`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + ` FROM trips t` + where + `
		ORDER BY t.start_date DESC, t.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}

	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH t AS (
			UPDATE trips
			SET name                   = @name,
			    location               = @location,
			    description            = @description,
			    photo_album_link       = @photo_album_link,
			    start_date             = @start_date,
			    end_date               = @end_date,
			    attendance_cutoff_date = @attendance_cutoff_date,
			    updated_at             = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + tripColumns + ` FROM t`

	args := pgx.NamedArgs{
		"id":                     trip.ID,
		"name":                   trip.Name,
		"location":               trip.Location,
		"description":            trip.Description,
		"photo_album_link":       trip.PhotoAlbumLink,
		"start_date":             trip.StartDate,
		"end_date":               trip.EndDate,
		"attendance_cutoff_date": trip.AttendanceCutoff,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// SetDraft flips the draft flag of a trip.
func (r *pgTripRepo) SetDraft(ctx context.Context, id uuid.UUID, draft bool) error {
	const q = `UPDATE trips SET draft = @draft, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "draft": draft})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SetDraft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.SetDraft: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ReplaceAdmins deletes the current admin links and inserts userIDs.
// Run it inside Store.InTx so readers never observe the empty set in between.
func (r *pgTripRepo) ReplaceAdmins(ctx context.Context, tripID uuid.UUID, userIDs []uuid.UUID) error {
	const del = `DELETE FROM trip_admins WHERE trip_id = @trip_id`
	const ins = `
		INSERT INTO trip_admins (trip_id, user_id)
		SELECT @trip_id, u FROM unnest(@user_ids::text[]::uuid[]) AS u
		ON CONFLICT (trip_id, user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.TripRepo.ReplaceAdmins: delete: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	args := pgx.NamedArgs{"trip_id": tripID, "user_ids": uuidStrings(userIDs)}
	if _, err := r.db.Exec(ctx, ins, args); err != nil {
		return fmt.Errorf("repo.TripRepo.ReplaceAdmins: insert: %w", err)
	}
	return nil
}

// AddAdmin links an admin. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgTripRepo) AddAdmin(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `
		INSERT INTO trip_admins (trip_id, user_id)
		VALUES (@trip_id, @user_id)
		ON CONFLICT (trip_id, user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}); err != nil {
		return fmt.Errorf("repo.TripRepo.AddAdmin: %w", err)
	}
	return nil
}

// RemoveAdmin unlinks an admin from a trip.
func (r *pgTripRepo) RemoveAdmin(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `DELETE FROM trip_admins WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.RemoveAdmin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.RemoveAdmin: %w", domain.ErrNotFound)
	}
	return nil
}

// ListAdministeredBy returns the trips administered by any of userIDs.
func (r *pgTripRepo) ListAdministeredBy(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT DISTINCT trip_id
		FROM trip_admins
		WHERE user_id = ANY(@ids::text[]::uuid[])
		ORDER BY trip_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(userIDs)})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAdministeredBy: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[pgtype.UUID])
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAdministeredBy: %w", err)
	}
	return fromPgUUIDs(ids), nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single row selected with tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		cutoff    pgtype.Timestamptz
		admins    []pgtype.UUID
		attendees []pgtype.UUID
	)

	err := s.Scan(&id, &t.Name, &t.Location, &t.Description, &t.PhotoAlbumLink,
		&t.StartDate, &t.EndDate, &cutoff, &t.Draft,
		&t.CreatedAt, &t.UpdatedAt, &admins, &attendees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if cutoff.Valid {
		c := cutoff.Time
		t.AttendanceCutoff = &c
	}
	t.Admins = fromPgUUIDs(admins)
	t.Attendees = fromPgUUIDs(attendees)

	return t, nil
}

func fromPgUUIDs(in []pgtype.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(in))
	for _, u := range in {
		out = append(out, uuid.UUID(u.Bytes))
	}
	return out
}

// uuidStrings renders ids as text so they can be bound to a uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
