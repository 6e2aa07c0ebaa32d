package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", claims.UserID)
	}
	if p := claims.Principal(); p.UserID != "alice" || p.Anonymous() {
		t.Errorf("Principal() = %+v", p)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	t.Run("empty user", func(t *testing.T) {
		if _, err := m.Generate(""); err == nil {
			t.Error("Expected error for empty user id")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-of-length", time.Hour)
		token, _ := other.Generate("alice")
		_, err := m.Validate(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTManager(testSecret, time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Generate("alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		_, err = m.Validate(token)
		if !errors.Is(err, ErrExpiredToken) {
			t.Errorf("Expected ErrExpiredToken, got %v", err)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
		{"Bearer a b", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
