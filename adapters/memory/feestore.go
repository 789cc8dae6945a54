package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// FeeStore is an in-memory implementation of ports.FeeStore.
type FeeStore struct {
	mu   sync.RWMutex
	fees map[string]fee.Fee

	// referenced is consulted by Delete so tests can simulate the
	// foreign-key protection the sqlite adapter enforces.
	referenced func(feeID string) bool
}

// NewFeeStore creates a new in-memory fee store.
func NewFeeStore() *FeeStore {
	return &FeeStore{fees: make(map[string]fee.Fee)}
}

// SetReferenceCheck installs the predicate Delete uses to refuse removal
// of fees that mappings or history still point at.
func (s *FeeStore) SetReferenceCheck(check func(feeID string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referenced = check
}

// Get retrieves a fee by ID.
func (s *FeeStore) Get(ctx context.Context, id string) (fee.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fees[id]
	if !ok {
		return fee.Fee{}, ports.ErrNotFound
	}
	return f, nil
}

// List returns all fees ordered by ID.
func (s *FeeStore) List(ctx context.Context) ([]fee.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fee.Fee, 0, len(s.fees))
	for _, f := range s.fees {
		out = append(out, f)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new fee.
func (s *FeeStore) Create(ctx context.Context, f fee.Fee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fees[f.ID]; exists {
		return ports.ErrDuplicate
	}
	s.fees[f.ID] = f
	return nil
}

// Update modifies an existing fee.
func (s *FeeStore) Update(ctx context.Context, f fee.Fee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fees[f.ID]; !exists {
		return ports.ErrNotFound
	}
	s.fees[f.ID] = f
	return nil
}

// Delete removes a fee unless it is still referenced.
func (s *FeeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fees[id]; !exists {
		return ports.ErrNotFound
	}
	if s.referenced != nil && s.referenced(id) {
		return ports.ErrReferenced
	}
	delete(s.fees, id)
	return nil
}

// Ensure interface compliance.
var _ ports.FeeStore = (*FeeStore)(nil)

// MappingStore is an in-memory implementation of ports.MappingStore.
type MappingStore struct {
	mu       sync.RWMutex
	mappings map[int64]fee.Mapping
	nextID   int64
}

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{mappings: make(map[int64]fee.Mapping)}
}

// Get retrieves a mapping by ID.
func (s *MappingStore) Get(ctx context.Context, id int64) (fee.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[id]
	if !ok {
		return fee.Mapping{}, ports.ErrNotFound
	}
	return m, nil
}

// ListOverlapping returns the client's mappings whose windows intersect
// [start, end], ordered by fee ID then mapping ID.
func (s *MappingStore) ListOverlapping(ctx context.Context, clientID string, start, end time.Time) ([]fee.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []fee.Mapping
	for _, m := range s.mappings {
		if m.ClientID == clientID && m.Overlaps(start, end) {
			out = append(out, m)
		}
	}
	sortMappings(out)
	return out, nil
}

// ActiveFor returns the first overlapping mapping for (client, fee).
func (s *MappingStore) ActiveFor(ctx context.Context, clientID, feeID string, start, end time.Time) (fee.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []fee.Mapping
	for _, m := range s.mappings {
		if m.ClientID == clientID && m.FeeID == feeID && m.Overlaps(start, end) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return fee.Mapping{}, ports.ErrNotFound
	}
	sortMappings(matches)
	return matches[0], nil
}

// List returns all mappings ordered by ID.
func (s *MappingStore) List(ctx context.Context) ([]fee.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fee.Mapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new mapping and returns its assigned ID.
func (s *MappingStore) Create(ctx context.Context, m fee.Mapping) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.mappings[m.ID] = m
	return m.ID, nil
}

// Delete removes a mapping.
func (s *MappingStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.mappings[id]; !exists {
		return ports.ErrNotFound
	}
	delete(s.mappings, id)
	return nil
}

func sortMappings(ms []fee.Mapping) {
	sort.Slice(ms, func(a, b int) bool {
		if ms[a].FeeID != ms[b].FeeID {
			return ms[a].FeeID < ms[b].FeeID
		}
		return ms[a].ID < ms[b].ID
	})
}

// Ensure interface compliance.
var _ ports.MappingStore = (*MappingStore)(nil)
