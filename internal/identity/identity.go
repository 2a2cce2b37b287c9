// Package identity issues and verifies the signed session tokens that
// identify users and sellers.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopwise/checkout/internal/apperr"
)

// Role distinguishes buyer sessions from seller (shop) sessions.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// Principal is the authenticated caller. For sellers ID is the shop id.
type Principal struct {
	ID   string
	Role Role
}

type claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 tokens.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewProvider(secret string, ttl time.Duration) *Provider {
	return &Provider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for subject.
func (p *Provider) Issue(subject string, role Role) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", apperr.Internal("Failed to sign token", err)
	}
	return signed, nil
}

// Authenticate verifies raw and returns its principal. Every failure is
// reported as Unauthorized.
func (p *Provider) Authenticate(raw string) (*Principal, error) {
	if raw == "" {
		return nil, apperr.Unauthorized("Please login to continue")
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "Session expired, please login again", err)
		}
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid token", err)
	}

	if c.Subject == "" {
		return nil, apperr.Unauthorized("Invalid token")
	}
	switch c.Role {
	case RoleUser, RoleSeller:
	default:
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid token", fmt.Errorf("unknown role %q", c.Role))
	}

	return &Principal{ID: c.Subject, Role: c.Role}, nil
}
