package risk

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu          sync.RWMutex
	evaluations map[string][]*Evaluation // authorKey → evaluations
}

// NewMemoryStore creates an in-memory evaluation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		evaluations: make(map[string][]*Evaluation),
	}
}

func (s *MemoryStore) Record(_ context.Context, eval *Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *eval
	e.Factors = append([]FactorResult(nil), eval.Factors...)
	s.evaluations[eval.AuthorKey] = append(s.evaluations[eval.AuthorKey], &e)
	return nil
}

func (s *MemoryStore) ListByAuthor(_ context.Context, authorKey string, limit int) ([]*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.evaluations[authorKey]
	if len(all) == 0 {
		return nil, nil
	}

	// Most recent first, up to limit.
	start := len(all) - limit
	if start < 0 {
		start = 0
	}
	result := make([]*Evaluation, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		e := *all[i]
		e.Factors = append([]FactorResult(nil), all[i].Factors...)
		result = append(result, &e)
	}
	return result, nil
}
