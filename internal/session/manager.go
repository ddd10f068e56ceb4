package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/pkg/logger"
)

// Manager issues session cookies and resolves them to user ids.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	domain     string
	secure     bool
}

func NewManager(store Store, cookieName string, ttl time.Duration, domain string, secure bool) *Manager {
	return &Manager{store: store, cookieName: cookieName, ttl: ttl, domain: domain, secure: secure}
}

func (m *Manager) CookieName() string { return m.cookieName }

// Create starts a session for userID and returns the cookie to set.
func (m *Manager) Create(ctx context.Context, userID string) (*http.Cookie, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	expiresAt := time.Now().Add(m.ttl)
	if err := m.store.Save(ctx, HashToken(token), userID, expiresAt); err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.domain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Resolve returns the user id for a cookie token, or ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	return m.store.Lookup(ctx, HashToken(token))
}

func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Revoke(ctx, HashToken(token))
}

// ClearCookie returns a cookie that removes the session cookie.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// StartCleanup purges expired rows periodically when the store supports it.
// The returned function stops the loop.
func (m *Manager) StartCleanup(every time.Duration) func(context.Context) error {
	purger, ok := m.store.(interface {
		Purge(ctx context.Context) (int64, error)
	})
	if !ok {
		return func(context.Context) error { return nil }
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				n, err := purger.Purge(ctx)
				cancel()
				if err != nil {
					logger.Error("session cleanup failed", zap.Error(err))
				} else if n > 0 {
					logger.Info("cleaned up expired sessions", zap.Int64("count", n))
				}
			case <-stop:
				return
			}
		}
	}()
	return func(context.Context) error { close(stop); return nil }
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
