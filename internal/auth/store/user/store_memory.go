package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docverify/internal/auth/models"
	"docverify/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in process memory, indexed by id and email.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Save inserts or updates a user. Emails are unique case-insensitively.
func (s *InMemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if owner, ok := s.byEmail[email]; ok && owner != user.ID {
		return sentinel.ErrConflict
	}
	if prev, ok := s.users[user.ID]; ok {
		delete(s.byEmail, strings.ToLower(prev.Email))
	}
	stored := *user
	s.users[user.ID] = &stored
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		found := *user
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[strings.ToLower(email)]; ok {
		found := *s.users[id]
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}
