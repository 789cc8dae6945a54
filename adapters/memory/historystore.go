package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// HistoryStore is an in-memory implementation of ports.HistoryStore.
// Writes happen only through InvoiceStore.CreateWithItems, mirroring the
// sqlite adapter where history rows join the invoice transaction.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []fee.HistoryEntry
	// seen enforces the (client, fee, period) uniqueness guard.
	seen map[string]bool
}

// NewHistoryStore creates a new in-memory history ledger.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{seen: make(map[string]bool)}
}

func periodScope(clientID, feeID, periodKey string) string {
	return fmt.Sprintf("%s|%s|%s", clientID, feeID, periodKey)
}

// append adds entries atomically, rejecting the whole batch with
// ports.ErrDuplicate if any entry's period scope already exists.
func (s *HistoryStore) append(entries []fee.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if s.seen[periodScope(e.ClientID, e.FeeID, e.PeriodKey)] {
			return ports.ErrDuplicate
		}
	}
	for _, e := range entries {
		s.seen[periodScope(e.ClientID, e.FeeID, e.PeriodKey)] = true
		s.entries = append(s.entries, e)
	}
	return nil
}

// Charged reports whether any entry exists for (client, fee).
func (s *HistoryStore) Charged(ctx context.Context, clientID, feeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ClientID == clientID && e.FeeID == feeID {
			return true, nil
		}
	}
	return false, nil
}

// ChargedInYear reports whether an entry exists with the given charge year.
func (s *HistoryStore) ChargedInYear(ctx context.Context, clientID, feeID string, year int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ClientID == clientID && e.FeeID == feeID && e.ChargeDate.Year() == year {
			return true, nil
		}
	}
	return false, nil
}

// ChargedInMonth reports whether an entry exists with the given charge
// year and month.
func (s *HistoryStore) ChargedInMonth(ctx context.Context, clientID, feeID string, year int, month time.Month) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ClientID == clientID && e.FeeID == feeID &&
			e.ChargeDate.Year() == year && e.ChargeDate.Month() == month {
			return true, nil
		}
	}
	return false, nil
}

// ListByClient returns the client's ledger, newest first.
func (s *HistoryStore) ListByClient(ctx context.Context, clientID string) ([]fee.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []fee.HistoryEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ClientID == clientID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

// Ensure interface compliance.
var _ ports.HistoryStore = (*HistoryStore)(nil)
