// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perkstreet/pulsehub/internal/config"
)

// Claims represents the JWT claims the gateway accepts.
// The subject carries the platform user ID; Name is the display name
// echoed back in connection acknowledgements.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's identity from the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// JWTManager handles JWT token creation and validation.
// The gateway verifies tokens locally; it never calls back to the
// issuing service on the hot path of a WebSocket handshake.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// defaultTokenTimeout is used when the configured session timeout is zero.
const defaultTokenTimeout = 24 * time.Hour

// NewJWTManager creates a JWT manager with the configured secret.
// The manager uses HMAC-SHA256 signing. The secret is stored as []byte
// to avoid string interning of credential material.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}

	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: defaultTokenTimeout,
	}, nil
}

// GenerateToken creates a signed token for the given user.
// Used by tests and by operator tooling; production tokens are minted
// by the platform's identity service with the shared secret.
func (m *JWTManager) GenerateToken(userID, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and extracts the user claims.
//
// Validation covers signature, expiration, NotBefore and the signing
// algorithm. Tokens signed with anything other than HMAC are rejected
// to prevent algorithm confusion attacks.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}

	return claims, nil
}
