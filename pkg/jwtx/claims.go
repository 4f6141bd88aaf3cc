package jwtx

import (
	"time"

	"github.com/aussiebroadwan/pres/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes used by the auth service. Access tokens are never stored, so
// their TTL bounds how long a stolen one stays useful.
const (
	DefaultAccessTokenTTL = 2 * time.Hour

	DefaultRefreshTokenTTL = 14 * 24 * time.Hour

	// LongLivedRefreshTokenTTL is only handed out by the out-of-band test
	// issuance endpoint.
	LongLivedRefreshTokenTTL = 120 * 24 * time.Hour
)

// Claims carried by both access and refresh tokens. Subject is the
// principal's login id (email).
type Claims struct {
	jwt.RegisteredClaims

	// PrincipalID is the numeric principal id.
	PrincipalID int64 `json:"id"`
}

// NewClaims builds claims valid from now for ttl.
func NewClaims(issuer string, principalID int64, subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		PrincipalID: principalID,
	}
}
