// Package auth inspects the bearer token presented to the sync backend.
//
// The client does not hold the signing key, so tokens are not verified
// cryptographically here. Inspection catches the failures worth failing
// fast on before a dial: malformed tokens and expired ones.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
)

// TokenInfo is what inspection extracts from a bearer JWT.
type TokenInfo struct {
	// Subject identifies the authenticated principal.
	Subject string

	// ExpiresAt is the expiry claim, zero when absent.
	ExpiresAt time.Time
}

// Inspector parses bearer tokens ahead of dialing.
type Inspector struct {
	clock driven.Clock
}

// NewInspector creates a token inspector.
func NewInspector(clock driven.Clock) *Inspector {
	return &Inspector{clock: clock}
}

// Inspect parses the token without signature verification and checks the
// expiry claim. An empty token is allowed: the backend may run without
// authentication in development setups.
func (i *Inspector) Inspect(token string) (*TokenInfo, error) {
	if token == "" {
		return &TokenInfo{}, nil
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", domain.ErrAuthInvalid)
	}

	info := &TokenInfo{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		if !exp.Time.After(i.clock.Now()) {
			return nil, fmt.Errorf("token expired at %s: %w", exp.Time.Format(time.RFC3339), domain.ErrAuthExpired)
		}
	}
	return info, nil
}
