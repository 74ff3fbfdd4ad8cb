package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix   = "musicmem:session:"
	redisDialTimeout = 5 * time.Second
)

// RedisStore keeps sessions in redis and lets key expiry do the purging.
type RedisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(opts RedisOptions, logger *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: redisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Session store ready", zap.String("backend", "redis"), zap.String("addr", opts.Addr))

	return &RedisStore{rdb: rdb, logger: logger, now: time.Now}, nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := redisTTL(sess, s.now())
	if ttl < 0 {
		return s.Delete(ctx, sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, redisKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// redisTTL is the remaining lifetime of a session, zero meaning no expiry
// and a negative value meaning already expired.
func redisTTL(sess *Session, now time.Time) time.Duration {
	if sess.ExpiresAt.IsZero() {
		return 0
	}
	if ttl := sess.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return -1
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Purge is a no-op; redis expires keys on its own.
func (s *RedisStore) Purge(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
