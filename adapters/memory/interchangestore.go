package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/ports"
)

// InterchangeStore is an in-memory implementation of ports.InterchangeStore.
type InterchangeStore struct {
	mu      sync.RWMutex
	records []billing.InterchangeRecord
	nextID  int64
}

// NewInterchangeStore creates a new in-memory interchange store.
func NewInterchangeStore() *InterchangeStore {
	return &InterchangeStore{}
}

// Latest returns the record for (client, exact window) with the most
// recent charge date, ties broken by highest ID.
func (s *InterchangeStore) Latest(ctx context.Context, clientID string, start, end time.Time) (billing.InterchangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best billing.InterchangeRecord
	found := false
	for _, r := range s.records {
		if r.ClientID != clientID || !r.Start.Equal(start) || !r.End.Equal(end) {
			continue
		}
		if !found || r.ChargeDate.After(best.ChargeDate) ||
			(r.ChargeDate.Equal(best.ChargeDate) && r.ID > best.ID) {
			best = r
			found = true
		}
	}
	if !found {
		return billing.InterchangeRecord{}, ports.ErrNotFound
	}
	return best, nil
}

// List returns all records ordered by ID.
func (s *InterchangeStore) List(ctx context.Context) ([]billing.InterchangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]billing.InterchangeRecord, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new record and returns its assigned ID.
func (s *InterchangeStore) Create(ctx context.Context, rec billing.InterchangeRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// Ensure interface compliance.
var _ ports.InterchangeStore = (*InterchangeStore)(nil)
