package plantaudits

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qms/pkg/platform/sentinel"
)

// MemoryStore is the in-memory twin of PostgresStore. RunInTx snapshots
// state and restores it if the callback fails, so atomicity holds in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	audits      map[int64]Audit
	findings    map[int64]Finding
	attachments map[int64]Attachment
	nextID      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		audits:      make(map[int64]Audit),
		findings:    make(map[int64]Finding),
		attachments: make(map[int64]Attachment),
		nextID:      1,
	}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapAudits := cloneMap(s.audits)
	snapFindings := cloneMap(s.findings)
	snapAttachments := cloneMap(s.attachments)
	snapNext := s.nextID
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.audits = snapAudits
		s.findings = snapFindings
		s.attachments = snapAttachments
		s.nextID = snapNext
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) InsertHeader(_ context.Context, a *Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now()
	s.audits[a.ID] = *a
	return nil
}

func (s *MemoryStore) InsertFinding(_ context.Context, f *Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.audits[f.AuditID]; !ok {
		return fmt.Errorf("insert audit finding: %w", sentinel.ErrNotFound)
	}
	f.ID = s.nextID
	s.nextID++
	s.findings[f.ID] = *f
	return nil
}

func (s *MemoryStore) InsertAttachment(_ context.Context, att *Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.audits[att.AuditID]; !ok {
		return fmt.Errorf("insert audit attachment: %w", sentinel.ErrNotFound)
	}
	att.ID = s.nextID
	s.nextID++
	s.attachments[att.ID] = *att
	return nil
}

func (s *MemoryStore) List(_ context.Context, onlyVisible bool) ([]Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Audit{}
	for _, a := range s.audits {
		if onlyVisible && !a.Visible {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetDetail(_ context.Context, id int64) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	header, ok := s.audits[id]
	if !ok {
		return nil, fmt.Errorf("audit %d: %w", id, sentinel.ErrNotFound)
	}
	detail := &Detail{Header: header, Findings: []Finding{}, Attachments: []Attachment{}}
	for _, f := range s.findings {
		if f.AuditID == id {
			detail.Findings = append(detail.Findings, f)
		}
	}
	sort.Slice(detail.Findings, func(i, j int) bool { return detail.Findings[i].ID < detail.Findings[j].ID })
	for _, att := range s.attachments {
		if att.AuditID == id {
			detail.Attachments = append(detail.Attachments, att)
		}
	}
	sort.Slice(detail.Attachments, func(i, j int) bool { return detail.Attachments[i].ID < detail.Attachments[j].ID })
	return detail, nil
}

// FindingCount reports stored finding rows, for atomicity assertions.
func (s *MemoryStore) FindingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.findings)
}

// AuditCount reports stored header rows, for atomicity assertions.
func (s *MemoryStore) AuditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audits)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
