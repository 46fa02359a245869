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

// GearRepo defines the persistence operations for gear items and their
// per-family assignments. Item reads return the item hydrated with its
// assignments.
type GearRepo interface {
	// CreateItem inserts a new gear item and returns the persisted record.
	CreateItem(ctx context.Context, item domain.GearItem) (domain.GearItem, error)

	// GetItem retrieves a gear item with its assignments.
	// Returns domain.ErrNotFound if no item with that ID exists.
	GetItem(ctx context.Context, id uuid.UUID) (domain.GearItem, error)

	// LockItem is GetItem preceded by SELECT ... FOR UPDATE on the item row.
	// Concurrent transactions that lock the same item queue behind each
	// other, so the assignments read afterwards stay current until commit.
	// Only meaningful inside Store.InTx.
	LockItem(ctx context.Context, id uuid.UUID) (domain.GearItem, error)

	// ListByTrip returns a trip's gear items, hydrated, ordered by name.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.GearItem, error)

	// UpdateItem overwrites name and quantity_needed.
	// Returns domain.ErrNotFound if no item with that ID exists.
	UpdateItem(ctx context.Context, item domain.GearItem) (domain.GearItem, error)

	// DeleteItem removes an item and, by cascade, all its assignments.
	// Returns domain.ErrNotFound if no item with that ID exists.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// UpsertAssignment writes the family's pledge, replacing any previous
	// quantity for the same (item, family) pair.
	UpsertAssignment(ctx context.Context, a domain.GearAssignment) error

	// DeleteAssignment removes a family's pledge.
	// Returns domain.ErrNotFound if the family has no pledge on the item.
	DeleteAssignment(ctx context.Context, itemID, familyID uuid.UUID) error
}

type pgGearRepo struct {
	db db
}

// NewGearRepo constructs a GearRepo backed by the provided db connection.
func NewGearRepo(db db) GearRepo {
	return &pgGearRepo{db: db}
}

const gearItemColumns = `id, trip_id, name, quantity_needed, created_at, updated_at`

func (r *pgGearRepo) CreateItem(ctx context.Context, item domain.GearItem) (domain.GearItem, error) {
	const q = `
		INSERT INTO gear_items (trip_id, name, quantity_needed)
		VALUES (@trip_id, @name, @quantity_needed)
		RETURNING ` + gearItemColumns

	args := pgx.NamedArgs{
		"trip_id":         item.TripID,
		"name":            item.Name,
		"quantity_needed": item.QuantityNeeded,
	}
	result, err := scanGearItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("repo.GearRepo.CreateItem: %w", err)
	}
	result.Assignments = []domain.GearAssignment{}
	return result, nil
}

func (r *pgGearRepo) GetItem(ctx context.Context, id uuid.UUID) (domain.GearItem, error) {
	const q = `SELECT ` + gearItemColumns + ` FROM gear_items WHERE id = @id`

	item, err := r.getHydrated(ctx, q, id)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("repo.GearRepo.GetItem: %w", err)
	}
	return item, nil
}

func (r *pgGearRepo) LockItem(ctx context.Context, id uuid.UUID) (domain.GearItem, error) {
	const q = `SELECT ` + gearItemColumns + ` FROM gear_items WHERE id = @id FOR UPDATE`

	item, err := r.getHydrated(ctx, q, id)
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("repo.GearRepo.LockItem: %w", err)
	}
	return item, nil
}

func (r *pgGearRepo) getHydrated(ctx context.Context, q string, id uuid.UUID) (domain.GearItem, error) {
	item, err := scanGearItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.GearItem{}, err
	}
	byItem, err := r.listAssignments(ctx, `ga.gear_item_id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.GearItem{}, err
	}
	item.Assignments = orEmpty(byItem[item.ID])
	return item, nil
}

func (r *pgGearRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.GearItem, error) {
	const q = `
		SELECT ` + gearItemColumns + `
		FROM gear_items
		WHERE trip_id = @trip_id
		ORDER BY name, id`

	args := pgx.NamedArgs{"trip_id": tripID}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.GearRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	items := []domain.GearItem{}
	for rows.Next() {
		item, err := scanGearItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.GearRepo.ListByTrip: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.GearRepo.ListByTrip: rows: %w", err)
	}

	byItem, err := r.listAssignments(ctx,
		`ga.gear_item_id IN (SELECT id FROM gear_items WHERE trip_id = @trip_id)`, args)
	if err != nil {
		return nil, fmt.Errorf("repo.GearRepo.ListByTrip: %w", err)
	}
	for i := range items {
		items[i].Assignments = orEmpty(byItem[items[i].ID])
	}
	return items, nil
}

func (r *pgGearRepo) UpdateItem(ctx context.Context, item domain.GearItem) (domain.GearItem, error) {
	const q = `
		UPDATE gear_items
		SET name = @name, quantity_needed = @quantity_needed, updated_at = now()
		WHERE id = @id
		RETURNING ` + gearItemColumns

	args := pgx.NamedArgs{"id": item.ID, "name": item.Name, "quantity_needed": item.QuantityNeeded}
	result, err := scanGearItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.GearItem{}, fmt.Errorf("repo.GearRepo.UpdateItem: %w", err)
	}
	result.Assignments = item.Assignments
	return result, nil
}

func (r *pgGearRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gear_items WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.GearRepo.DeleteItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.GearRepo.DeleteItem: %w", domain.ErrNotFound)
	}
	return nil
}

// UpsertAssignment inserts the pledge or replaces the quantity of an existing
// one. The quantity is overwritten, never added to.
func (r *pgGearRepo) UpsertAssignment(ctx context.Context, a domain.GearAssignment) error {
	const q = `
		INSERT INTO gear_assignments (gear_item_id, family_id, quantity_assigned)
		VALUES (@gear_item_id, @family_id, @quantity)
		ON CONFLICT (gear_item_id, family_id)
		DO UPDATE SET quantity_assigned = EXCLUDED.quantity_assigned, updated_at = now()`

	args := pgx.NamedArgs{"gear_item_id": a.GearItemID, "family_id": a.FamilyID, "quantity": a.Quantity}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.GearRepo.UpsertAssignment: %w", err)
	}
	return nil
}

func (r *pgGearRepo) DeleteAssignment(ctx context.Context, itemID, familyID uuid.UUID) error {
	const q = `DELETE FROM gear_assignments WHERE gear_item_id = @gear_item_id AND family_id = @family_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"gear_item_id": itemID, "family_id": familyID})
	if err != nil {
		return fmt.Errorf("repo.GearRepo.DeleteAssignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.GearRepo.DeleteAssignment: %w", domain.ErrNotFound)
	}
	return nil
}

// listAssignments loads assignments matching where, grouped by item ID.
func (r *pgGearRepo) listAssignments(ctx context.Context, where string, args pgx.NamedArgs) (map[uuid.UUID][]domain.GearAssignment, error) {
	q := `
		SELECT ga.gear_item_id, ga.family_id, f.name, ga.quantity_assigned, ga.created_at, ga.updated_at
		FROM gear_assignments ga
		JOIN families f ON f.id = ga.family_id
		WHERE ` + where + `
		ORDER BY ga.created_at, ga.family_id`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("assignments: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID][]domain.GearAssignment{}
	for rows.Next() {
		var (
			a        domain.GearAssignment
			itemID   pgtype.UUID
			familyID pgtype.UUID
		)
		if err := rows.Scan(&itemID, &familyID, &a.FamilyName, &a.Quantity, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("assignments: scan: %w", err)
		}
		a.GearItemID = uuid.UUID(itemID.Bytes)
		a.FamilyID = uuid.UUID(familyID.Bytes)
		out[a.GearItemID] = append(out[a.GearItemID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assignments: rows: %w", err)
	}
	return out, nil
}

func scanGearItem(s scanner) (domain.GearItem, error) {
	var (
		g      domain.GearItem
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	err := s.Scan(&id, &tripID, &g.Name, &g.QuantityNeeded, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GearItem{}, domain.ErrNotFound
		}
		return domain.GearItem{}, err
	}
	g.ID = uuid.UUID(id.Bytes)
	g.TripID = uuid.UUID(tripID.Bytes)
	return g, nil
}

func orEmpty(a []domain.GearAssignment) []domain.GearAssignment {
	if a == nil {
		return []domain.GearAssignment{}
	}
	return a
}
