package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a message for humans.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMapping maps domain sentinels to HTTP status and error code.
// Order matters only if an error ever wraps more than one sentinel.
var errorMapping = []struct {
	sentinel error
	status   int
	code     string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrAlreadyInState, http.StatusConflict, "already_in_state"},
	{domain.ErrPrecondition, http.StatusConflict, "precondition_failed"},
	{domain.ErrCapacity, http.StatusConflict, "capacity_exceeded"},
}

// writeServiceError translates an error returned by a service into a JSON
// error response. Anything that is not a domain sentinel is logged and
// reported as a bare 500 so internals never leak to clients.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, unwrapMessage(err, m.sentinel))
			return
		}
	}
	s.log.ErrorContext(r.Context(), "unhandled service error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// qualifiedPrefix matches the "layer.Type.Method: " segments that services
// and repos add when wrapping.
var qualifiedPrefix = regexp.MustCompile(`[a-z]+\.[A-Za-z]+\.[A-Za-z]+: `)

// unwrapMessage extracts the human-readable part of a wrapped sentinel error.
//
//	"service.TripService.Create: validation error: name is required" -> "name is required"
//	"service.GearService.Assign: gear item 42: repo.GearRepo.LockItem: not found" -> "gear item 42: not found"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return qualifiedPrefix.ReplaceAllString(msg, "")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v. It writes the error response
// itself and returns false when the body is missing, malformed, carries
// unknown fields or is too large.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "request body is required")
	default:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", fmt.Sprintf("invalid request body: %v", err))
	}
	return false
}

// pathUUID parses the named chi URL parameter. It writes a 400 and returns
// false when the value is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s %q: must be a UUID", name, raw))
		return uuid.UUID{}, false
	}
	return id, true
}

// callerFrom returns the authenticated caller. It writes a 401 and returns
// false when the auth middleware did not run.
func callerFrom(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	c, ok := domain.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
	}
	return c, ok
}
