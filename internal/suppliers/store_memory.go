package suppliers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qms/pkg/platform/sentinel"
)

// MemoryEvaluationStore is the in-memory twin of PostgresEvaluationStore.
type MemoryEvaluationStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Evaluation
}

func NewMemoryEvaluationStore() *MemoryEvaluationStore {
	return &MemoryEvaluationStore{nextID: 1, items: make(map[int64]Evaluation)}
}

func (s *MemoryEvaluationStore) Create(_ context.Context, e *Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	e.CreatedAt = time.Now()
	s.items[e.ID] = *e
	return nil
}

func (s *MemoryEvaluationStore) List(_ context.Context) ([]Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Evaluation{}
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MemoryMasterStore serves a fixed supplier master for tests.
type MemoryMasterStore struct {
	mu        sync.RWMutex
	suppliers map[string]Supplier
}

func NewMemoryMasterStore(suppliers ...Supplier) *MemoryMasterStore {
	s := &MemoryMasterStore{suppliers: make(map[string]Supplier)}
	for _, sup := range suppliers {
		s.suppliers[sup.Code] = sup
	}
	return s
}

func (s *MemoryMasterStore) ListSuppliers(_ context.Context) ([]Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Supplier{}
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryMasterStore) FindSupplier(_ context.Context, code string) (*Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[code]
	if !ok {
		return nil, fmt.Errorf("supplier %s: %w", code, sentinel.ErrNotFound)
	}
	return &sup, nil
}
