package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/tripplanner/internal/domain"
)

// ActivityRepo appends entries to the activity log table.
type ActivityRepo interface {
	Insert(ctx context.Context, e domain.ActivityEntry) error
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

// Insert writes one entry. A nil Metadata map is stored as {}.
func (r *pgActivityRepo) Insert(ctx context.Context, e domain.ActivityEntry) error {
	const q = `
		INSERT INTO activity_log (actor_id, action, entity_type, entity_id, metadata, created_at)
		VALUES (@actor_id, @action, @entity_type, @entity_id, @metadata, @created_at)`

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	args := pgx.NamedArgs{
		"actor_id":    e.ActorID,
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID,
		"metadata":    metadata,
		"created_at":  e.At,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ActivityRepo.Insert: %w", err)
	}
	return nil
}
