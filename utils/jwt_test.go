package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/botyak1234/marketplace-task/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")

	tok, err := GenerateAccessToken(42, models.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, models.RoleAdmin)
	}
	if claims.JTI == "" {
		t.Error("expected a jti")
	}
	if time.Until(claims.Expiry) <= 0 {
		t.Error("token already expired")
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ValidateAccessToken(tok); err == nil {
			t.Errorf("ValidateAccessToken(%q) accepted", tok)
		}
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	tok, err := GenerateAccessToken(1, models.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateAccessToken(tok); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")

	tok, err := GenerateAccessTokenWithExpiry(7, models.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = ValidateAccessToken(tok)
	if err == nil {
		t.Fatal("expired token was accepted")
	}
	// Expiry must stay identifiable in the error chain so the auth
	// middleware can answer with a re-login hint.
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected jwt.ErrTokenExpired in chain, got %v", err)
	}
}
