package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"go.uber.org/zap"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

// SQLiteStore keeps sessions in a sqlite database with a small read cache in front.
type SQLiteStore struct {
	db     *sql.DB
	cache  *lru.Cache[string, []byte]
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLiteStore(path string, cacheSize int, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// A single connection keeps :memory: databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	if _, err := db.Exec(createSessionsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	logger.Info("Session store ready", zap.String("backend", "sqlite"), zap.String("path", path))

	return &SQLiteStore{db: db, cache: cache, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	data, ok := s.cache.Get(id)
	if !ok {
		var expiresAt int64
		err := s.db.QueryRowContext(ctx,
			`SELECT data, expires_at FROM sessions WHERE id = ?`, id).Scan(&data, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		s.cache.Add(id, data)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNotFound
	}

	return &sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		sess.ID, data, sess.ExpiresAt.Unix())
	if err != nil {
		s.cache.Remove(sess.ID)
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.cache.Add(sess.ID, data)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Purge removes sessions that expired at or before now.
func (s *SQLiteStore) Purge(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged sessions: %w", err)
	}

	if n > 0 {
		s.cache.Purge()
	}

	return int(n), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
