package recalls

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
	mu          sync.RWMutex
	recalls     map[int64]Recall
	shipments   map[int64]Shipment
	attachments map[int64]Attachment
	nextID      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recalls:     make(map[int64]Recall),
		shipments:   make(map[int64]Shipment),
		attachments: make(map[int64]Attachment),
		nextID:      1,
	}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapRecalls := cloneMap(s.recalls)
	snapShipments := cloneMap(s.shipments)
	snapAttachments := cloneMap(s.attachments)
	snapNext := s.nextID
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.recalls = snapRecalls
		s.shipments = snapShipments
		s.attachments = snapAttachments
		s.nextID = snapNext
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) InsertHeader(_ context.Context, rec *Recall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	rec.CreatedAt = time.Now()
	s.recalls[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) InsertShipment(_ context.Context, sh *Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recalls[sh.RecallID]; !ok {
		return fmt.Errorf("insert recall shipment: %w", sentinel.ErrNotFound)
	}
	sh.ID = s.nextID
	s.nextID++
	s.shipments[sh.ID] = *sh
	return nil
}

func (s *MemoryStore) InsertAttachment(_ context.Context, att *Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recalls[att.RecallID]; !ok {
		return fmt.Errorf("insert recall attachment: %w", sentinel.ErrNotFound)
	}
	att.ID = s.nextID
	s.nextID++
	s.attachments[att.ID] = *att
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Recall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Recall{}
	for _, rec := range s.recalls {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetDetail(_ context.Context, id int64) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	header, ok := s.recalls[id]
	if !ok {
		return nil, fmt.Errorf("recall %d: %w", id, sentinel.ErrNotFound)
	}
	detail := &Detail{Header: header, Shipments: []Shipment{}, Attachments: []Attachment{}}
	for _, sh := range s.shipments {
		if sh.RecallID == id {
			detail.Shipments = append(detail.Shipments, sh)
		}
	}
	sort.Slice(detail.Shipments, func(i, j int) bool { return detail.Shipments[i].ID < detail.Shipments[j].ID })
	for _, att := range s.attachments {
		if att.RecallID == id {
			detail.Attachments = append(detail.Attachments, att)
		}
	}
	sort.Slice(detail.Attachments, func(i, j int) bool { return detail.Attachments[i].ID < detail.Attachments[j].ID })
	return detail, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, from, to Status, closedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recalls[id]
	if !ok {
		return fmt.Errorf("recall %d: %w", id, sentinel.ErrNotFound)
	}
	if rec.Status != from {
		return sentinel.ErrInvalidState
	}
	rec.Status = to
	rec.ClosedAt = closedAt
	s.recalls[id] = rec
	return nil
}

// RecallCount reports stored header rows, for atomicity assertions.
func (s *MemoryStore) RecallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recalls)
}

// ShipmentCount reports stored shipment rows, for atomicity assertions.
func (s *MemoryStore) ShipmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shipments)
}

// MemoryShipmentDirectory serves a fixed ERP shipment table for tests.
type MemoryShipmentDirectory struct {
	infos map[string]ShipmentInfo
}

func NewMemoryShipmentDirectory(infos ...ShipmentInfo) *MemoryShipmentDirectory {
	d := &MemoryShipmentDirectory{infos: make(map[string]ShipmentInfo)}
	for _, info := range infos {
		d.infos[info.Ref] = info
	}
	return d
}

func (d *MemoryShipmentDirectory) FindShipments(_ context.Context, refs []string) (map[string]ShipmentInfo, error) {
	out := make(map[string]ShipmentInfo)
	for _, ref := range refs {
		if info, ok := d.infos[ref]; ok {
			out[ref] = info
		}
	}
	return out, nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
