package auth

import (
	"testing"

	"github.com/jeotronix/fieldops/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestJWT(t *testing.T) {
	secret := "test-secret-key-12345"

	tech := &models.Technician{
		ID:          "uuid-1234",
		Email:       "tech@example.com",
		DisplayName: "Jo Mwangi",
	}

	// Test Generation
	token, err := GenerateToken(tech, secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	actor, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if actor.ID != tech.ID {
		t.Errorf("Expected technician ID %s, got %s", tech.ID, actor.ID)
	}
	if actor.Name != tech.DisplayName {
		t.Errorf("Expected name %s, got %s", tech.DisplayName, actor.Name)
	}

	// Test Validation (Failure - Wrong Key)
	if _, err := ValidateToken(token, "wrong-key"); err == nil {
		t.Error("Validation should fail with wrong key")
	}

	// Test Validation (Failure - Garbage)
	if _, err := ValidateToken("not-a-token", secret); err == nil {
		t.Error("Validation should fail for malformed token")
	}
}
