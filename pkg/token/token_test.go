package token

import (
	"testing"
	"time"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	secret := "test-secret"

	tokenString, err := GenerateJWT(42, secret, 60)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(tokenString, secret)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user ID = %d, want 42", claims.UserID)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("token already expired")
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	tokenString, err := GenerateJWT(42, "right-secret", 60)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(tokenString, "wrong-secret"); err == nil {
		t.Fatal("ValidateJWT accepted a token signed with another secret")
	}
}

func TestValidateJWTGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token", "secret"); err == nil {
		t.Fatal("ValidateJWT accepted garbage input")
	}
}
