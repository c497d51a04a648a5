package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "unit-test-secret",
		Issuer:          "spot2go",
		ExpirationHours: 24,
	}
}

func testPayload() AccessTokenPayload {
	email := "owner@example.com"
	return AccessTokenPayload{
		UserID:    uuid.New(),
		Email:     &email,
		Role:      enums.UserRoleOwner,
		Name:      "Olive Owner",
		CreatedAt: time.Now().Add(-48 * time.Hour).Truncate(time.Second),
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	payload := testPayload()

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id mismatch: %s vs %s", claims.UserID, payload.UserID)
	}
	if claims.Role != enums.UserRoleOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Email == nil || *claims.Email != *payload.Email {
		t.Fatalf("email mismatch: %v", claims.Email)
	}
	if claims.Name != payload.Name {
		t.Fatalf("name mismatch: %q", claims.Name)
	}
	if !claims.AccountOpened.Equal(payload.CreatedAt) {
		t.Fatalf("createdAt mismatch: %s vs %s", claims.AccountOpened, payload.CreatedAt)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	payload := testPayload()
	payload.Role = enums.UserRole("superuser")
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), payload); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-48*time.Hour), testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := testJWTConfig()
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cfg.Issuer = "someone-else"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestTokenExpiresAfterConfiguredTTL(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	token, err := MintAccessToken(cfg, now, testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expected := now.Add(24 * time.Hour)
	if diff := claims.ExpiresAt.Time.Sub(expected); diff > time.Second || diff < -time.Second {
		t.Fatalf("expected 1-day expiry, got %s", claims.ExpiresAt.Time)
	}
}
