package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	subject := uuid.New()

	token, err := GenerateToken("secret", subject, RoleVendor, time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	id, role, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if id != subject || role != RoleVendor {
		t.Fatalf("unexpected claims: %v %v", id, role)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), RoleStudent, time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if _, _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), RoleStudent, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if _, _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected parse to fail for an expired token")
	}
}
