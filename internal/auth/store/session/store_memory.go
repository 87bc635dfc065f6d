package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"docverify/internal/auth/models"
	"docverify/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in process memory.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return sentinel.ErrConflict
	}
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[id]; ok {
		found := *session
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

// Execute validates and mutates a copy of the session under the write lock.
// Nothing is saved when validate fails.
func (s *InMemorySessionStore) Execute(_ context.Context, id uuid.UUID, validate func(*models.Session) error, mutate func(*models.Session)) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *current
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	s.sessions[id] = &working
	result := working
	return &result, nil
}
