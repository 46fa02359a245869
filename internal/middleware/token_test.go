package middleware_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/middleware"
)

// signToken issues an HS256 token for c the way the identity provider does.
// A zero ttl yields a token without expiry; a negative one yields an already
// expired token.
func signToken(secret []byte, c domain.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := middleware.CallerClaims{
		Role: string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  c.UserID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.FamilyID != nil {
		claims.FamilyID = c.FamilyID.String()
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
