package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/models"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-0123456789abcdef", time.Hour)
	user := &models.User{ID: "u-1", Name: "alice", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Name != user.Name {
		t.Errorf("Name = %s, want %s", claims.Name, user.Name)
	}
	if claims.Subject != user.ID {
		t.Errorf("Subject = %s, want %s", claims.Subject, user.ID)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret-key-0123456789abcdef", time.Hour)
	user := &models.User{ID: "u-1", Name: "alice"}

	good, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	other := NewJWTManager("a-completely-different-secret-key", time.Hour)
	foreign, err := other.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expired := NewJWTManager("test-secret-key-0123456789abcdef", -time.Minute)
	stale, err := expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"tampered payload", good[:len(good)-4] + "XXXX"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}

	if strings.Count(good, ".") != 2 {
		t.Errorf("token %q is not a compact JWS", good)
	}
}
