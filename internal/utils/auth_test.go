package utils

import (
	"testing"

	"github.com/nexfone/invtrack/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == password {
		t.Error("Hash must not equal plaintext")
	}

	if !CheckPasswordHash(password, hash) {
		t.Error("Correct password should verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Wrong password must not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	user := &models.User{
		ID:    "2f0b4d1e-0000-0000-0000-000000000001",
		Email: "ops@example.com",
		Role:  models.RoleAdmin,
	}

	token, err := GenerateToken(user, secret)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims["email"] != user.Email {
		t.Errorf("Email claim wrong: %v", claims["email"])
	}
	if claims["role"] != "admin" {
		t.Errorf("Role claim wrong: %v", claims["role"])
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("Token must not validate under a different secret")
	}
}
