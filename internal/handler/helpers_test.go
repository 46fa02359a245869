package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/handler"
)

var (
	testNow    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testCaller = domain.Caller{UserID: uuid.New(), Role: domain.RoleSuperAdmin}
)

// services bundles the mocks behind one Server. Nil fields become empty mocks.
type services struct {
	trips      *mockTripServicer
	attendance *mockAttendanceServicer
	gear       *mockGearServicer
	families   *mockFamilyServicer
}

// asCaller is a stand-in for the JWT middleware that authenticates every
// request as c.
func asCaller(c domain.Caller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), c)))
		})
	}
}

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way main.go does in production.
func newHTTPHandler(svc services, opts ...handler.Option) http.Handler {
	return newServer(svc, opts...).Routes(asCaller(testCaller))
}

func newServer(svc services, opts ...handler.Option) *handler.Server {
	if svc.trips == nil {
		svc.trips = &mockTripServicer{}
	}
	if svc.attendance == nil {
		svc.attendance = &mockAttendanceServicer{}
	}
	if svc.gear == nil {
		svc.gear = &mockGearServicer{}
	}
	if svc.families == nil {
		svc.families = &mockFamilyServicer{}
	}
	opts = append([]handler.Option{
		handler.WithClock(func() time.Time { return testNow }),
		handler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return handler.NewServer(svc.trips, svc.attendance, svc.gear, svc.families, opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func tripFixture() domain.Trip {
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:               uuid.New(),
		Name:             "Lake Weekend",
		Location:         "Pine Lake",
		StartDate:        time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		AttendanceCutoff: &cutoff,
		Admins:           []uuid.UUID{uuid.New()},
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
}
