package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/tripplanner/internal/domain"
)

// NewSlogLogger returns a middleware that logs each request as a structured
// line via the provided slog.Logger. It captures method, path, HTTP status,
// duration, response size, the request ID set by chi's RequestID middleware
// and, when authentication has run, the caller's user ID and role.
//
// 5xx responses are logged at Error and 4xx at Warn; everything else at Info.
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The auth middleware runs further down the chain and stores the
			// caller on a derived request; it reports back through this slot.
			slot := &callerSlot{}
			next.ServeHTTP(ww, r.WithContext(withCallerSlot(r.Context(), slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if c, ok := slot.get(); ok {
				attrs = append(attrs, "user_id", c.UserID.String(), "role", string(c.Role))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "request", attrs...)
		})
	}
}

type callerSlotKey struct{}

// callerSlot carries the authenticated caller back up to the request logger.
type callerSlot struct {
	caller domain.Caller
	set    bool
}

func (s *callerSlot) get() (domain.Caller, bool) { return s.caller, s.set }

func withCallerSlot(ctx context.Context, s *callerSlot) context.Context {
	return context.WithValue(ctx, callerSlotKey{}, s)
}

// reportCaller records c in the request logger's slot, if there is one.
func reportCaller(ctx context.Context, c domain.Caller) {
	if s, ok := ctx.Value(callerSlotKey{}).(*callerSlot); ok {
		s.caller, s.set = c, true
	}
}
