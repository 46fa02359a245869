package domain

import "errors"

// ErrNotFound is returned when a referenced trip, family, user, gear item or
// gear assignment does not exist.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input is structurally invalid
// (e.g. end date before start date, non-adult admin, non-positive quantity).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller's role or ownership does not
// permit the requested operation.
// Handlers map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrPrecondition is returned when the entity exists and the input is well
// formed, but the current state forbids the transition: a draft trip, a
// passed cutoff, a started trip, an unapproved family, or removing the last
// admin of a published trip.
// Handlers map this to HTTP 409.
var ErrPrecondition = errors.New("precondition failed")

// ErrAlreadyInState is returned when a transition was requested that is
// already satisfied and the caller should be told so (publishing a published
// trip, approving an approved family). Marking attendance twice is NOT one of
// these; that path succeeds silently.
var ErrAlreadyInState = errors.New("already in requested state")

// ErrCapacity is returned when a write would break the gear capacity
// invariant: sum(assigned) <= quantity needed.
var ErrCapacity = errors.New("capacity exceeded")
