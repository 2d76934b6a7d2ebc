/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package auth implements the bearer-token auth the REST boundary enforces.
// It is intentionally minimal: no user store, no API-key registry, no
// audit log. It validates a JWT issued out of band against
// security.secret_key/algorithm and exposes the claims to handlers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atombpmn/flowrt/src/core/config"
)

var (
	// ErrDisabled names a component constructed with auth disabled. No
	// function in this package returns it; IsEnabled reports that state.
	ErrDisabled = errors.New("auth: component disabled")
)

// Claims is the JWT payload flowrt issues and validates.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions,omitempty"`
}

// Component validates bearer tokens against a shared HMAC secret.
type Component struct {
	enabled   bool
	secretKey []byte
	algorithm jwt.SigningMethod
	expireIn  time.Duration
}

// NewComponent builds the auth component from security config. Auth itself
// is only enforced when enabled is true (auth.enabled in config); the
// secret/algorithm still back token issuance either way.
func NewComponent(sec *config.SecurityConfig, enabled bool) (*Component, error) {
	method := jwt.GetSigningMethod(sec.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", sec.Algorithm)
	}

	expireMins := sec.AccessTokenExpireMins
	if expireMins <= 0 {
		expireMins = 30
	}

	return &Component{
		enabled:   enabled,
		secretKey: []byte(sec.SecretKey),
		algorithm: method,
		expireIn:  time.Duration(expireMins) * time.Minute,
	}, nil
}

// IsEnabled reports whether the REST boundary should enforce tokens.
func (c *Component) IsEnabled() bool {
	return c.enabled
}

// IssueToken signs a token for subject with the configured permissions,
// expiring after the configured access-token TTL. Nothing in this
// repository calls it; flowrt has no login endpoint of its own.
func (c *Component) IssueToken(subject string, permissions []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expireIn)),
		},
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(c.algorithm, claims)
	return token.SignedString(c.secretKey)
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (c *Component) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != c.algorithm {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return c.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: token rejected")
	}

	return claims, nil
}

// HasPermission reports whether permissions contains required, or the
// wildcard "*".
func HasPermission(permissions []string, required string) bool {
	for _, p := range permissions {
		if p == required || p == "*" {
			return true
		}
	}
	return false
}
