// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *JWTManager) {
	t.Helper()
	m := newTestManager(t)
	return NewAuthenticator(m), m
}

func TestAuthenticateFromQueryParam(t *testing.T) {
	t.Parallel()

	a, m := newTestAuthenticator(t)
	token, err := m.GenerateToken("user-1", "Alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/ws?token="+token, nil)
	identity, err := a.Authenticate(r)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if identity.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", identity.UserID)
	}
	if identity.Name != "Alice" {
		t.Errorf("expected Alice, got %s", identity.Name)
	}
}

func TestAuthenticateFromBearerHeader(t *testing.T) {
	t.Parallel()

	a, m := newTestAuthenticator(t)
	token, err := m.GenerateToken("user-2", "Bob")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	identity, err := a.Authenticate(r)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if identity.UserID != "user-2" {
		t.Errorf("expected user-2, got %s", identity.UserID)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthenticator(t)

	r := httptest.NewRequest("GET", "/ws", nil)
	_, err := a.Authenticate(r)

	if !errors.Is(err, ErrTokenRequired) {
		t.Errorf("expected ErrTokenRequired, got %v", err)
	}
	if err.Error() != "Authentication token required" {
		t.Errorf("rejection message changed: %q", err.Error())
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthenticator(t)

	r := httptest.NewRequest("GET", "/ws?token=garbage", nil)
	_, err := a.Authenticate(r)

	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
	if err.Error() != "Invalid authentication token" {
		t.Errorf("rejection message changed: %q", err.Error())
	}
}

func TestAuthenticateQueryParamPrecedesHeader(t *testing.T) {
	t.Parallel()

	a, m := newTestAuthenticator(t)
	good, err := m.GenerateToken("user-3", "Carol")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Valid token in query, garbage in header: query wins
	r := httptest.NewRequest("GET", "/ws?token="+good, nil)
	r.Header.Set("Authorization", "Bearer garbage")

	identity, err := a.Authenticate(r)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if identity.UserID != "user-3" {
		t.Errorf("expected user-3, got %s", identity.UserID)
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		header   string
		expected string
	}{
		{"query param", "/ws?token=abc", "", "abc"},
		{"bearer header", "/ws", "Bearer xyz", "xyz"},
		{"bearer with spaces", "/ws", "Bearer   xyz", "xyz"},
		{"no credential", "/ws", "", ""},
		{"non-bearer scheme", "/ws", "Basic dXNlcg==", ""},
		{"empty bearer", "/ws", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := ExtractToken(r); got != tt.expected {
				t.Errorf("ExtractToken() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
