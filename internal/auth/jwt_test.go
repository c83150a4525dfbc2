// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perkstreet/pulsehub/internal/config"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "test-secret-for-unit-tests"})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	token, err := m.GenerateToken("user-123", "Alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID() != "user-123" {
		t.Errorf("expected user-123, got %s", claims.UserID())
	}
	if claims.Name != "Alice" {
		t.Errorf("expected Alice, got %s", claims.Name)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "a-different-secret-entirely"})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}

	token, err := other.GenerateToken("user-123", "Alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected validation failure for token signed with different secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	claims := &Claims{
		Name: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := m.ValidateToken(signed); err == nil {
		t.Error("expected validation failure for expired token")
	}
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	// Unsigned token with alg=none
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := m.ValidateToken(signed); err == nil {
		t.Error("expected validation failure for alg=none token")
	}
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	claims := &Claims{
		Name: "No Subject",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := m.ValidateToken(signed); err == nil {
		t.Error("expected validation failure for token without subject")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	for _, input := range []string{"", "not-a-jwt", "a.b.c", strings.Repeat("x", 500)} {
		if _, err := m.ValidateToken(input); err == nil {
			t.Errorf("expected validation failure for %q", input)
		}
	}
}
