package storeinfra

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-profile-cache/document"
)

// MemoryStore keeps documents in process, in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]document.Document
	order []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]document.Document)}
}

func (s *MemoryStore) Query(ctx context.Context, conds []Condition, limit int) ([]document.Document, error) {
	for _, c := range conds {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []document.Document{}
	for _, id := range s.order {
		doc := s.docs[id]
		if !matchAll(doc, conds) {
			continue
		}
		out = append(out, doc.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, doc document.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, exists := s.docs[doc.ID]; exists {
		return "", ErrDuplicateID
	}
	s.docs[doc.ID] = doc.Clone()
	s.order = append(s.order, doc.ID)
	return doc.ID, nil
}

// List returns the documents for keys in key order, skipping ids that do not
// exist. Without keys every document is returned.
func (s *MemoryStore) List(ctx context.Context, keys []string, limit int) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := keys
	if len(ids) == 0 {
		ids = s.order
	}

	out := []document.Document{}
	for _, id := range ids {
		doc, ok := s.docs[id]
		if !ok {
			continue
		}
		out = append(out, doc.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		return ErrNotFound
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}
