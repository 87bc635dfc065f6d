//go:build integration

package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"docverify/internal/auth/models"
	"docverify/internal/auth/store/session"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession() *models.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Session{
		ID:                    uuid.New(),
		UserID:                uuid.New(),
		DeviceDisplayName:     "Test Device",
		DeviceFingerprintHash: "fp-hash-456",
		CreatedAt:             now,
		ExpiresAt:             now.Add(24 * time.Hour),
	}
}

func (s *RedisStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	sess := makeSession()
	s.Require().NoError(s.store.Create(ctx, sess))
	s.Require().ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.Equal(sess.DeviceDisplayName, found.DeviceDisplayName)
	s.True(sess.ExpiresAt.Equal(found.ExpiresAt))

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestWATCHConflictDetection verifies that concurrent revocations of one
// session are serialized by WATCH.
func (s *RedisStoreSuite) TestWATCHConflictDetection() {
	ctx := context.Background()
	sess := makeSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var rejected atomic.Int32
	var otherErrors atomic.Int32
	errAlreadyRevoked := errors.New("already revoked")

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, sess.ID,
				func(cur *models.Session) error {
					if cur.Revoked {
						return errAlreadyRevoked
					}
					return nil
				},
				func(cur *models.Session) { cur.Revoked = true },
			)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, redis.TxFailedErr), errors.Is(err, errAlreadyRevoked):
				rejected.Add(1)
			default:
				otherErrors.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one revoke should succeed")
	s.Equal(int32(goroutines-1), rejected.Load())
	s.Equal(int32(0), otherErrors.Load())
}

// TestTTLPreservation verifies that updates keep the session expiry TTL.
func (s *RedisStoreSuite) TestTTLPreservation() {
	ctx := context.Background()
	sess := makeSession()
	sess.ExpiresAt = time.Now().Add(time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	key := "session:" + sess.ID.String()
	initialTTL, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(initialTTL, 59*time.Minute)

	_, err = s.store.Execute(ctx, sess.ID,
		func(*models.Session) error { return nil },
		func(cur *models.Session) { cur.Revoked = true },
	)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 58*time.Minute)
	s.LessOrEqual(ttl, initialTTL)
}
