// Package service contains the business logic of the trip planner.
// Services validate inputs, enforce lifecycle gates and invariants, ask the
// policy package for authorization, and run each mutation as one
// repo.Store transaction. No SQL lives here.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
)

// Clock returns the current time. Services take one so that gates computed
// from "now" can be tested at fixed instants.
type Clock func() time.Time

// deps is embedded by every service.
type deps struct {
	activity activity.Logger
	now      Clock
}

func newDeps(act activity.Logger, now Clock) deps {
	if act == nil {
		act = activity.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return deps{activity: act, now: now}
}

// record hands a successful mutation to the activity logger. It never fails.
func (d deps) record(ctx context.Context, c domain.Caller, action, entityType string, id uuid.UUID, meta map[string]any) {
	d.activity.Log(ctx, domain.ActivityEntry{
		ActorID:    c.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		Metadata:   meta,
		At:         d.now(),
	})
}
