package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/domain"
	"github.com/dku-library/ticket-chat/internal/persistence"
)

const keyPrefix = "ticket_chat_session:"

// Store persists at most one in-flight conversation per user context.
type Store interface {
	// Get returns the session for the user context, or nil when absent,
	// expired, or undecodable.
	Get(ctx context.Context, userKey string) (*domain.Session, error)
	// Put writes the session and refreshes its TTL, so an idle
	// conversation expires a full TTL window after its last activity.
	Put(ctx context.Context, userKey string, sess *domain.Session) error
	// Clear removes the session for the user context.
	Clear(ctx context.Context, userKey string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(r *persistence.Redis, ttl time.Duration, logger *zap.Logger) Store {
	return &redisStore{client: r.Client, ttl: ttl, logger: logger}
}

func sessionKey(userKey string) string {
	return keyPrefix + userKey
}

func (s *redisStore) Get(ctx context.Context, userKey string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(userKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sess := decodeSession(raw)
	if sess == nil {
		// Corrupted or foreign data behaves as absent.
		s.logger.Warn("discarding undecodable session", zap.String("user_key", userKey))
		return nil, nil
	}
	return sess, nil
}

func (s *redisStore) Put(ctx context.Context, userKey string, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(userKey), raw, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, userKey string) error {
	return s.client.Del(ctx, sessionKey(userKey)).Err()
}

func decodeSession(raw []byte) *domain.Session {
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil
	}
	return &sess
}
