package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"docverify/internal/wizard/models"
	"docverify/pkg/platform/sentinel"
)

// InMemoryWizardStore keeps wizards in process memory. Every read and write
// copies, so callers never share state with the map.
type InMemoryWizardStore struct {
	mu      sync.Mutex
	wizards map[uuid.UUID]*models.Wizard
}

func New() *InMemoryWizardStore {
	return &InMemoryWizardStore{wizards: make(map[uuid.UUID]*models.Wizard)}
}

func (s *InMemoryWizardStore) Create(_ context.Context, w *models.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wizards[w.ID]; ok {
		return sentinel.ErrConflict
	}
	s.wizards[w.ID] = w.Clone()
	return nil
}

func (s *InMemoryWizardStore) FindByID(_ context.Context, id uuid.UUID) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return w.Clone(), nil
}

// Execute applies fn to a copy of the wizard under the store lock and saves
// the copy only when fn succeeds.
func (s *InMemoryWizardStore) Execute(_ context.Context, id uuid.UUID, fn func(*models.Wizard) error) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := w.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.wizards[id] = working
	return working.Clone(), nil
}

func (s *InMemoryWizardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wizards[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.wizards, id)
	return nil
}
