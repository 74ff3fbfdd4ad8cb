package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager binds stored sessions to browser cookies.
type Manager struct {
	store   Store
	cookies *Cookies
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewManager(store Store, cookies *Cookies, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		cookies: cookies,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Load returns the request's session, or a fresh unsaved one when the cookie
// is missing, forged or points at an expired session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if id, ok := m.cookies.Read(r); ok {
		sess, err := m.store.Get(r.Context(), id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	now := m.now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}, nil
}

// Save stores the session, extends its lifetime and sets the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	sess.ExpiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.cookies.Write(w, sess.ID)
	return nil
}

// Destroy removes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	m.cookies.Clear(w)
	if sess == nil {
		return nil
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Purge drops expired sessions from the store.
func (m *Manager) Purge(ctx context.Context) (int, error) {
	n, err := m.store.Purge(ctx, m.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Debug("Purged expired sessions", zap.Int("count", n))
	}
	return n, nil
}

// RunPurger purges expired sessions every interval until ctx is done.
func (m *Manager) RunPurger(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.Purge(ctx); err != nil {
				m.logger.Warn("Session purge failed", zap.Error(err))
			}
		}
	}
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Rotate moves the session to a fresh id, dropping the old one.
func (m *Manager) Rotate(ctx context.Context, sess *Session) error {
	oldID := sess.ID
	sess.ID = uuid.NewString()
	if err := m.store.Delete(ctx, oldID); err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}
	return nil
}
