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

// FamilyRepo defines the persistence operations for Families.
type FamilyRepo interface {
	// Create inserts a new family and returns the persisted record.
	Create(ctx context.Context, f domain.Family) (domain.Family, error)

	// GetByID retrieves a family by ID.
	// Returns domain.ErrNotFound if no family with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Family, error)

	// ListByIDs returns the families with the given IDs ordered by name.
	// Unknown IDs are skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Family, error)

	// UpdateState overwrites status and is_active.
	// Returns domain.ErrNotFound if no family with that ID exists.
	UpdateState(ctx context.Context, id uuid.UUID, status domain.FamilyStatus, isActive bool) (domain.Family, error)

	// Delete removes a family; its attendance records and gear assignments
	// go with it. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgFamilyRepo struct {
	db db
}

// NewFamilyRepo constructs a FamilyRepo backed by the provided db connection.
func NewFamilyRepo(db db) FamilyRepo {
	return &pgFamilyRepo{db: db}
}

const familyColumns = `id, name, status, is_active, created_at, updated_at`

func (r *pgFamilyRepo) Create(ctx context.Context, f domain.Family) (domain.Family, error) {
	const q = `
		INSERT INTO families (name, status, is_active)
		VALUES (@name, @status, @is_active)
		RETURNING ` + familyColumns

	args := pgx.NamedArgs{"name": f.Name, "status": string(f.Status), "is_active": f.IsActive}
	result, err := scanFamily(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Family{}, fmt.Errorf("repo.FamilyRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgFamilyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Family, error) {
	const q = `SELECT ` + familyColumns + ` FROM families WHERE id = @id`

	result, err := scanFamily(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Family{}, fmt.Errorf("repo.FamilyRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgFamilyRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Family, error) {
	const q = `
		SELECT ` + familyColumns + `
		FROM families
		WHERE id = ANY(@ids::text[]::uuid[])
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.FamilyRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	families := []domain.Family{}
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FamilyRepo.ListByIDs: scan: %w", err)
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FamilyRepo.ListByIDs: rows: %w", err)
	}
	return families, nil
}

func (r *pgFamilyRepo) UpdateState(ctx context.Context, id uuid.UUID, status domain.FamilyStatus, isActive bool) (domain.Family, error) {
	const q = `
		UPDATE families
		SET status = @status, is_active = @is_active, updated_at = now()
		WHERE id = @id
		RETURNING ` + familyColumns

	args := pgx.NamedArgs{"id": id, "status": string(status), "is_active": isActive}
	result, err := scanFamily(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Family{}, fmt.Errorf("repo.FamilyRepo.UpdateState: %w", err)
	}
	return result, nil
}

func (r *pgFamilyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM families WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.FamilyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FamilyRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanFamily(s scanner) (domain.Family, error) {
	var (
		f      domain.Family
		id     pgtype.UUID
		status string
	)
	err := s.Scan(&id, &f.Name, &status, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Family{}, domain.ErrNotFound
		}
		return domain.Family{}, err
	}
	f.ID = uuid.UUID(id.Bytes)
	f.Status = domain.FamilyStatus(status)
	return f, nil
}
