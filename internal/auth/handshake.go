// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Handshake rejection errors. The messages are part of the client contract:
// SDKs match on them to distinguish a missing credential from a bad one.
//
//nolint:staticcheck // error text is a wire contract, capitalization intentional
var (
	// ErrTokenRequired is returned when no credential accompanied the handshake.
	ErrTokenRequired = errors.New("Authentication token required")

	// ErrTokenInvalid is returned when a credential was presented but failed
	// validation (bad signature, expired, malformed, missing subject).
	ErrTokenInvalid = errors.New("Invalid authentication token")
)

// Identity is the result of a successful handshake authentication.
type Identity struct {
	// UserID uniquely identifies the platform user. Multiple simultaneous
	// connections may share one UserID (multi-device).
	UserID string

	// Name is the user's display name, echoed in the connection ack.
	Name string
}

// Authenticator validates WebSocket handshake credentials before the
// connection is upgraded. A rejected handshake must leave no trace in
// the gateway's connection state.
type Authenticator struct {
	jwt *JWTManager
}

// NewAuthenticator creates a handshake authenticator backed by the
// given JWT manager.
func NewAuthenticator(jwt *JWTManager) *Authenticator {
	return &Authenticator{jwt: jwt}
}

// Authenticate extracts and validates the credential from an upgrade request.
//
// The token is read from the "token" query parameter first, then from the
// Authorization header as a Bearer token. The query parameter takes
// precedence because browser WebSocket clients cannot set headers.
//
// Returns ErrTokenRequired when no credential is present and
// ErrTokenInvalid for any validation failure. The distinction is
// deliberate: clients without a token should fetch one, clients with a
// stale token should refresh it.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, ErrTokenRequired
	}

	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &Identity{
		UserID: claims.UserID(),
		Name:   claims.Name,
	}, nil
}

// ExtractToken pulls the raw credential from an HTTP request without
// validating it. Returns empty string if no credential is present.
func ExtractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
