package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
)

// CallerClaims is the bearer token payload issued by the identity provider.
// The subject is the user ID. FamilyID is empty for staff accounts.
type CallerClaims struct {
	Role     string `json:"role"`
	FamilyID string `json:"family_id,omitempty"`
	jwt.RegisteredClaims
}

// NewCallerAuth returns a middleware that resolves the caller from an HS256
// bearer token signed with secret and stores it on the request context with
// domain.WithCaller. Requests without a valid token get 401.
func NewCallerAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			c, err := parseCaller(raw, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
				return
			}

			reportCaller(r.Context(), c)
			next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), c)))
		})
	}
}

func parseCaller(raw string, secret []byte) (domain.Caller, error) {
	var claims CallerClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Caller{}, errors.New("token expired")
		}
		return domain.Caller{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	c := domain.Caller{UserID: userID, Role: domain.Role(claims.Role)}
	if !c.Role.Valid() {
		return domain.Caller{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	if claims.FamilyID != "" {
		fid, err := uuid.Parse(claims.FamilyID)
		if err != nil {
			return domain.Caller{}, fmt.Errorf("invalid family_id %q", claims.FamilyID)
		}
		c.FamilyID = &fid
	}
	return c, nil
}
