package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docverify/internal/auth/models"
	"docverify/pkg/platform/sentinel"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps sessions as JSON with a TTL matching the session expiry.
// Execute uses WATCH so concurrent updates to one session fail with
// redis.TxFailedErr instead of overwriting each other.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

type RedisOption func(*RedisStore)

func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (s *RedisStore) ttl(session *models.Session) time.Duration {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, sessionKey(session.ID), data, s.ttl(session)).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.load(ctx, s.client, id)
}

func (s *RedisStore) load(ctx context.Context, c redis.Cmdable, id uuid.UUID) (*models.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Execute runs validate and mutate inside a WATCH/MULTI transaction and keeps
// the remaining TTL.
func (s *RedisStore) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Session) error, mutate func(*models.Session)) (*models.Session, error) {
	key := sessionKey(id)
	var result *models.Session

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		session, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := validate(session); err != nil {
			return err
		}
		mutate(session)

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = session
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return result, nil
}
