package auth

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", "campusportal", time.Hour)

	token, err := tm.Issue("user-1", "alice@example.edu", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Role != domain.RoleUser {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleUser)
	}
	if claims.ID == "" {
		t.Error("expected a token ID for revocation")
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected an expiry")
	}
	if remaining := claims.RemainingLife(time.Now()); remaining <= 0 || remaining > time.Hour {
		t.Errorf("remaining life = %v, want within (0, 1h]", remaining)
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", "campusportal", time.Hour)
	if _, err := tm.Issue("", "alice@example.edu", domain.RoleUser); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "campusportal", time.Hour)
	other := NewTokenManager("different-secret", "campusportal", time.Hour)

	token, err := tm.Issue("user-1", "alice@example.edu", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}

func TestVerifyExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), issuer: "campusportal", ttl: -time.Minute}

	token, err := tm.Issue("user-1", "alice@example.edu", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := tm.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "campusportal", time.Hour)
	if _, err := tm.Verify("not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail verification")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}

	for _, header := range []string{"", "abc123", "Basic abc123", "Bearer"} {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if revoked {
		t.Fatal("fresh token should not be revoked")
	}

	if err := store.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}

	// Expired entries drop off the denylist.
	if err := store.Revoke(ctx, "jti-2", -time.Minute); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "jti-2")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if revoked {
		t.Fatal("entry past the token lifetime should not count as revoked")
	}
}
