package weightcontrol

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qms/pkg/platform/sentinel"
)

// MemoryStore is the in-memory twin of PostgresStore. RunInTx snapshots
// state and restores it if the callback fails.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]Record
	samples map[int64]Sample
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]Record),
		samples: make(map[int64]Sample),
		nextID:  1,
	}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapRecords := cloneMap(s.records)
	snapSamples := cloneMap(s.samples)
	snapNext := s.nextID
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.records = snapRecords
		s.samples = snapSamples
		s.nextID = snapNext
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) InsertHeader(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	rec.CreatedAt = time.Now()
	s.records[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) InsertSample(_ context.Context, sample *Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[sample.RecordID]; !ok {
		return fmt.Errorf("insert weight sample: %w", sentinel.ErrNotFound)
	}
	sample.ID = s.nextID
	s.nextID++
	s.samples[sample.ID] = *sample
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetDetail(_ context.Context, id int64) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	header, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("weight control %d: %w", id, sentinel.ErrNotFound)
	}
	detail := &Detail{Header: header, Samples: []Sample{}}
	for _, sample := range s.samples {
		if sample.RecordID == id {
			detail.Samples = append(detail.Samples, sample)
		}
	}
	sort.Slice(detail.Samples, func(i, j int) bool { return detail.Samples[i].Position < detail.Samples[j].Position })
	return detail, nil
}

// RecordCount reports stored header rows, for atomicity assertions.
func (s *MemoryStore) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SampleCount reports stored sample rows, for atomicity assertions.
func (s *MemoryStore) SampleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
