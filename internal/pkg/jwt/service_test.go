package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	id := uuid.New()

	tok, err := svc.GenerateAccessToken(id, "sam@example.com", "STUDENT")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	c, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.UserID != id || c.Email != "sam@example.com" || c.Role != "STUDENT" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if svc.IsRefreshToken(c) {
		t.Fatalf("access token reported as refresh")
	}
}

func TestHMACService_RefreshToken(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)

	tok, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !svc.IsRefreshToken(c) {
		t.Fatalf("expected refresh token")
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := svc.GenerateAccessToken(uuid.New(), "", "EDUCATOR")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	a := NewHMACService("a", "b", time.Minute, time.Hour)
	b := NewHMACService("c", "d", time.Minute, time.Hour)

	tok, err := a.GenerateAccessToken(uuid.New(), "", "STUDENT")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := b.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_MissingSecret(t *testing.T) {
	svc := NewHMACService("", "", time.Minute, time.Hour)
	if _, err := svc.GenerateAccessToken(uuid.New(), "", "STUDENT"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
