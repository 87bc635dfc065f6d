package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"docverify/internal/documents"
	"docverify/pkg/platform/sentinel"
)

// InMemoryDocumentStore keeps uploaded files in process memory.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]documents.Document
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[uuid.UUID]documents.Document)}
}

func (s *InMemoryDocumentStore) Save(_ context.Context, doc documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *InMemoryDocumentStore) FindByID(_ context.Context, id uuid.UUID) (documents.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[id]; ok {
		return doc, nil
	}
	return documents.Document{}, sentinel.ErrNotFound
}

func (s *InMemoryDocumentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
