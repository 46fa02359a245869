package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/internal/domain"
)

// UserRepo defines the persistence operations the core needs for Users.
// Account management itself lives outside this service.
type UserRepo interface {
	// Create inserts a user and returns the persisted record.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// ListByIDs returns the users with the given IDs. Unknown IDs are skipped,
	// so callers compare lengths to detect them.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)

	// ListByFamily returns the members of a family ordered by name.
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (family_id, name, type)
		VALUES (@family_id, @name, @type)
		RETURNING id, family_id, name, type`

	args := pgx.NamedArgs{"family_id": u.FamilyID, "name": u.Name, "type": string(u.Type)}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	const q = `
		SELECT id, family_id, name, type
		FROM users
		WHERE id = ANY(@ids::text[]::uuid[])
		ORDER BY id`

	users, err := r.list(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByIDs: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]domain.User, error) {
	const q = `
		SELECT id, family_id, name, type
		FROM users
		WHERE family_id = @family_id
		ORDER BY name, id`

	users, err := r.list(ctx, q, pgx.NamedArgs{"family_id": familyID})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByFamily: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u        domain.User
		id       pgtype.UUID
		familyID pgtype.UUID
		typ      string
	)
	if err := s.Scan(&id, &familyID, &u.Name, &typ); err != nil {
		return domain.User{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	if familyID.Valid {
		fid := uuid.UUID(familyID.Bytes)
		u.FamilyID = &fid
	}
	u.Type = domain.UserType(typ)
	return u, nil
}
