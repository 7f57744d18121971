package repository

import (
	"context"
	"sync"
	"time"

	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*domain.Document),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[userID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return cloneDocument(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneDocument(doc)
	if next.Portfolio == nil {
		next.Portfolio = []string{}
	}
	if existing, ok := s.docs[doc.UserID]; ok {
		next.CreatedAt = existing.CreatedAt
	} else if next.CreatedAt.IsZero() {
		next.CreatedAt = s.now()
	}
	s.docs[doc.UserID] = next
	return nil
}

func (s *MemoryStore) UnionAppend(ctx context.Context, userID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[userID]
	if !ok {
		doc = &domain.Document{UserID: userID, CreatedAt: s.now(), Portfolio: []string{}}
		s.docs[userID] = doc
	}
	if !containsSymbol(doc.Portfolio, symbol) {
		doc.Portfolio = append(doc.Portfolio, symbol)
	}
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cloneDocument(doc *domain.Document) *domain.Document {
	out := *doc
	out.Portfolio = append([]string{}, doc.Portfolio...)
	return &out
}
