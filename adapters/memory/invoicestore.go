package memory

import (
	"context"
	"sync"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// InvoiceStore is an in-memory implementation of ports.InvoiceStore. It
// shares a HistoryStore so a history uniqueness violation rejects the
// invoice write as a whole, matching the sqlite transaction semantics.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]billing.Invoice
	order    []string
	history  *HistoryStore
}

// NewInvoiceStore creates an invoice store writing history into hs.
func NewInvoiceStore(hs *HistoryStore) *InvoiceStore {
	return &InvoiceStore{
		invoices: make(map[string]billing.Invoice),
		history:  hs,
	}
}

// CreateWithItems stores the invoice with its line items and appends the
// fee history entries atomically.
func (s *InvoiceStore) CreateWithItems(ctx context.Context, inv billing.Invoice, history []fee.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[inv.ID]; exists {
		return ports.ErrDuplicate
	}
	if err := s.history.append(history); err != nil {
		return err
	}
	items := make([]billing.LineItem, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	s.invoices[inv.ID] = inv
	s.order = append(s.order, inv.ID)
	return nil
}

// Get retrieves an invoice with its line items.
func (s *InvoiceStore) Get(ctx context.Context, id string) (billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return billing.Invoice{}, ports.ErrNotFound
	}
	return inv, nil
}

// List returns invoices newest first; clientID empty means all clients.
func (s *InvoiceStore) List(ctx context.Context, clientID string, limit int) ([]billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []billing.Invoice
	for i := len(s.order) - 1; i >= 0; i-- {
		inv := s.invoices[s.order[i]]
		if clientID != "" && inv.ClientID != clientID {
			continue
		}
		out = append(out, inv)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Ensure interface compliance.
var _ ports.InvoiceStore = (*InvoiceStore)(nil)
