package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipstream/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the presented refresh token does not match
	// the credential currently on record for any user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrInvalidAccessToken indicates the bearer token failed verification.
	ErrInvalidAccessToken = errors.New("invalid access token")
)

// SessionStore persists the single active refresh credential per user.
// Saving replaces whatever credential was previously on record, which is
// what invalidates old refresh tokens on rotation.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	FindByToken(ctx context.Context, refreshToken string) (Session, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// Session is the refresh credential currently on record for a user.
type Session struct {
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}

// Manager issues JWT access tokens paired with opaque rotating refresh
// tokens, and verifies bearer tokens on protected operations.
type Manager struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	secret     []byte

	store SessionStore

	nowFunc func() time.Time
}

// NewManager constructs a Manager signing access tokens with the provided
// secret and persisting refresh credentials in store.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if secret == "" {
		panic("auth: signing secret must not be empty")
	}
	return &Manager{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		secret:     []byte(secret),
		store:      store,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a new token pair for the user, replacing any refresh
// credential previously on record.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.nowFunc()
	accessExpiry := now.Add(m.accessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(accessExpiry),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Refresh exchanges the refresh credential currently on record for a new
// token pair. The old credential is invalidated by the rotation.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.FindByToken(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if m.nowFunc().After(session.ExpiresAt) {
		_ = m.store.DeleteByUser(ctx, session.UserID)
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	return m.Issue(ctx, session.UserID)
}

// Verify parses and validates a bearer access token and resolves it to the
// caller's user id.
func (m *Manager) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidAccessToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidAccessToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidAccessToken
	}

	return claims.Subject, nil
}

// Revoke removes the user's active refresh credential.
func (m *Manager) Revoke(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	_ = m.store.DeleteByUser(ctx, userID)
}

// WithNowFunc lets tests override the time source.
func (m *Manager) WithNowFunc(now func() time.Time) {
	if now != nil {
		m.nowFunc = now
	}
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
