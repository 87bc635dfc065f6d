package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docverify/internal/auth/models"
	"docverify/pkg/platform/sentinel"
)

const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user:email:"
)

// RedisStore keeps users as JSON under user:<id> with an email index under
// user:email:<email>. The index is claimed with SETNX so two signups for the
// same email cannot both win.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func userKey(id uuid.UUID) string {
	return userKeyPrefix + id.String()
}

func emailKey(email string) string {
	return emailKeyPrefix + strings.ToLower(email)
}

func (s *RedisStore) Save(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, emailKey(user.Email), user.ID.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		owner, err := s.client.Get(ctx, emailKey(user.Email)).Result()
		if err != nil {
			return fmt.Errorf("read email index: %w", err)
		}
		if owner != user.ID.String() {
			return sentinel.ErrConflict
		}
	}

	if err := s.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	raw, err := s.client.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get email index: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return s.FindByID(ctx, id)
}
