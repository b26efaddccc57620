package auth

import (
	"testing"
	"time"

	"burnstop/internal/platform/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})

	token, err := svc.GenerateAccessToken("user-1", "dev@acme.io")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "dev@acme.io" {
		t.Errorf("claims = %+v, want user-1 / dev@acme.io", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService(config.JWTConfig{Secret: "secret-a", AccessTokenTTL: time.Hour})
	verifier := NewTokenService(config.JWTConfig{Secret: "secret-b", AccessTokenTTL: time.Hour})

	token, err := issuer.GenerateAccessToken("user-1", "dev@acme.io")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: -time.Minute})

	token, err := svc.GenerateAccessToken("user-1", "dev@acme.io")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestValidateGarbage(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})

	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage input must not validate")
	}
}
