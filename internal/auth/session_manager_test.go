package auth

import (
	"context"
	"testing"
	"time"
)

func newTestManager(accessTTL, refreshTTL time.Duration) (*Manager, *InMemorySessionStore) {
	store := NewInMemorySessionStore()
	return NewManager("test-secret", accessTTL, refreshTTL, store), store
}

func TestManagerIssueAndRefresh(t *testing.T) {
	manager, store := newTestManager(time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been rotated out")
	}
	if !store.Has(refreshed.RefreshToken) {
		t.Fatal("new token should be on record")
	}
}

func TestManagerIssueReplacesExistingSession(t *testing.T) {
	manager, store := newTestManager(time.Minute, time.Hour)

	first, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue again: %v", err)
	}

	if store.Has(first.RefreshToken) {
		t.Fatal("first refresh token should have been replaced")
	}
	if !store.Has(second.RefreshToken) {
		t.Fatal("second refresh token should be on record")
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)
	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)

	if _, err := manager.Refresh(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.WithNowFunc(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) })
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrRefreshTokenExpired {
		t.Fatalf("expected refresh expired got %v", err)
	}

	manager.WithNowFunc(func() time.Time { return time.Now().UTC() })
	tokens, err = manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.Revoke(context.Background(), "user-1")
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

func TestManagerVerify(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), "user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42 got %s", userID)
	}

	if _, err := manager.Verify(""); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token for empty string got %v", err)
	}
	if _, err := manager.Verify("not-a-jwt"); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token for garbage got %v", err)
	}

	other := NewManager("other-secret", time.Minute, time.Hour, NewInMemorySessionStore())
	if _, err := other.Verify(tokens.AccessToken); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token across secrets got %v", err)
	}
}

func TestManagerVerifyExpiredToken(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)
	manager.WithNowFunc(func() time.Time { return time.Now().UTC().Add(-time.Hour) })

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.AccessToken); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token for expired access token got %v", err)
	}
}
