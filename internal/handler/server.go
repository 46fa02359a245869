// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, gear.go, ...) but share the same Server struct
// so they can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/spec"
)

// TripServicer defines the trip lifecycle operations the handlers depend on.
// Defined here, in the consumer package, so handler tests can inject a mock
// without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, c domain.Caller, in domain.TripInput) (domain.Trip, error)
	GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, c domain.Caller, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Publish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	Unpublish(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Trip, error)
	AssignAdmins(ctx context.Context, c domain.Caller, id uuid.UUID, userIDs []uuid.UUID) (domain.Trip, error)
	AddAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error)
	RemoveAdmin(ctx context.Context, c domain.Caller, id, userID uuid.UUID) (domain.Trip, error)
	Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error
}

// AttendanceServicer defines the attendance operations the handlers depend on.
type AttendanceServicer interface {
	MarkAttendance(ctx context.Context, c domain.Caller, tripID, familyID uuid.UUID, attending bool) (domain.Trip, error)
	ListAttendees(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.Family, error)
}

// GearServicer defines the gear operations the handlers depend on.
type GearServicer interface {
	CreateItem(ctx context.Context, c domain.Caller, tripID uuid.UUID, name string, quantityNeeded int) (domain.GearItem, error)
	GetItem(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.GearItem, error)
	UpdateItem(ctx context.Context, c domain.Caller, id uuid.UUID, patch domain.GearItemPatch) (domain.GearItem, error)
	DeleteItem(ctx context.Context, c domain.Caller, id uuid.UUID) error
	Assign(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID, quantity int) (domain.GearItem, error)
	RemoveAssignment(ctx context.Context, c domain.Caller, itemID, familyID uuid.UUID) (domain.GearItem, error)
	Summary(ctx context.Context, c domain.Caller, tripID uuid.UUID) ([]domain.GearSummary, error)
}

// FamilyServicer defines the family operations the handlers depend on.
type FamilyServicer interface {
	Register(ctx context.Context, c domain.Caller, name string, members []domain.MemberInput) (domain.Family, error)
	AddMember(ctx context.Context, c domain.Caller, familyID uuid.UUID, m domain.MemberInput) (domain.User, error)
	GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	Approve(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	Reject(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Family, error)
	SetActive(ctx context.Context, c domain.Caller, id uuid.UUID, active bool) (domain.Family, error)
	Delete(ctx context.Context, c domain.Caller, id uuid.UUID) error
}

// Pinger reports whether a backing store is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips      TripServicer
	attendance AttendanceServicer
	gear       GearServicer
	families   FamilyServicer

	db  Pinger
	log *slog.Logger
	now func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithPinger makes GET /healthz report 503 when p cannot be reached.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.db = p }
}

// WithLogger sets the logger used for unexpected (500) errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock sets the clock used to derive trip timing on responses.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, attendance AttendanceServicer, gear GearServicer, families FamilyServicer, opts ...Option) *Server {
	s := &Server{
		trips:      trips,
		attendance: attendance,
		gear:       gear,
		families:   families,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the API router. auth runs in front of every route except
// /healthz and /openapi.yaml and must store a domain.Caller on the request
// context.
func (s *Server) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/families", func(r chi.Router) {
			r.Post("/", s.RegisterFamily)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetFamily)
				r.Delete("/", s.DeleteFamily)
				r.Post("/approve", s.ApproveFamily)
				r.Post("/reject", s.RejectFamily)
				r.Put("/active", s.SetFamilyActive)
				r.Post("/members", s.AddFamilyMember)
			})
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Patch("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Post("/publish", s.PublishTrip)
				r.Post("/unpublish", s.UnpublishTrip)
				r.Put("/admins", s.AssignTripAdmins)
				r.Post("/admins", s.AddTripAdmin)
				r.Delete("/admins/{userID}", s.RemoveTripAdmin)
				r.Get("/attendees", s.ListAttendees)
				r.Put("/attendance/{familyID}", s.MarkAttendance)
				r.Get("/gear", s.GearSummary)
				r.Post("/gear", s.CreateGearItem)
			})
		})

		r.Route("/gear/{id}", func(r chi.Router) {
			r.Get("/", s.GetGearItem)
			r.Patch("/", s.UpdateGearItem)
			r.Delete("/", s.DeleteGearItem)
			r.Put("/assignments/{familyID}", s.AssignGear)
			r.Delete("/assignments/{familyID}", s.RemoveGearAssignment)
		})
	})

	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
