package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

const (
	capabilityScope      = "admin_mode"
	capabilityIssuerName = "rental-platform"
	defaultCapabilityTTL = 5 * time.Minute
)

type capabilityClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// CapabilityIssuer signs and verifies one-shot admin-mode tokens. A token is
// bound to a single identity id and carries a unique jti; single use is
// enforced by a ports.CapabilityStore.
type CapabilityIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCapabilityIssuer(secret string, ttl time.Duration) *CapabilityIssuer {
	if ttl <= 0 {
		ttl = defaultCapabilityTTL
	}
	return &CapabilityIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for subjectID and its expiry.
func (c *CapabilityIssuer) Issue(subjectID string) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, errors.New("capability secret not configured")
	}
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := capabilityClaims{
		Scope: capabilityScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    capabilityIssuerName,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign capability: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, scope, expiry and subject binding. It returns the
// token id and how long it remains valid.
func (c *CapabilityIssuer) Verify(token, subjectID string) (string, time.Duration, error) {
	if len(c.secret) == 0 {
		return "", 0, domain.ErrInvalidCapability
	}
	claims := &capabilityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(capabilityIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return "", 0, domain.ErrInvalidCapability
	}
	if claims.Scope != capabilityScope || claims.Subject != subjectID || claims.ID == "" {
		return "", 0, domain.ErrInvalidCapability
	}
	remaining := claims.ExpiresAt.Time.Sub(c.now())
	if remaining <= 0 {
		return "", 0, domain.ErrInvalidCapability
	}
	return claims.ID, remaining, nil
}
