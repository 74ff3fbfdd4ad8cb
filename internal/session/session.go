// Package session keeps per-browser state between requests: OAuth tokens,
// submitted preferences and the last created playlist.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"musicmem/internal/core"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID          string              `json:"id"`
	Auth        *core.AuthSession   `json:"auth,omitempty"`
	Preferences *core.PreferenceSet `json:"preferences,omitempty"`
	PlaylistID  string              `json:"playlist_id,omitempty"`
	OAuthState  string              `json:"oauth_state,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

// Authenticated reports whether the session holds OAuth tokens.
func (s *Session) Authenticated() bool {
	return s.Auth != nil && s.Auth.AccessToken != ""
}

// Store persists sessions by id. Get returns ErrNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context, now time.Time) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewStore opens the store selected by config.Backend.
func NewStore(config *core.SessionConfig, logger *zap.Logger) (Store, error) {
	switch config.Backend {
	case "sqlite", "":
		return NewSQLiteStore(config.SQLitePath, config.CacheSize, logger)
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", config.Backend)
	}
}
