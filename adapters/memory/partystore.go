// Package memory provides in-memory implementations of storage ports,
// used by tests and ephemeral deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cardbill/cardbill/domain/party"
	"github.com/cardbill/cardbill/ports"
)

// BillerStore is an in-memory implementation of ports.BillerStore.
type BillerStore struct {
	mu      sync.RWMutex
	billers map[string]party.Biller
	order   []string
}

// NewBillerStore creates a new in-memory biller store.
func NewBillerStore() *BillerStore {
	return &BillerStore{billers: make(map[string]party.Biller)}
}

// Get retrieves a biller by ID.
func (s *BillerStore) Get(ctx context.Context, id string) (party.Biller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.billers[id]
	if !ok {
		return party.Biller{}, ports.ErrNotFound
	}
	return b, nil
}

// Default returns the first biller created.
func (s *BillerStore) Default(ctx context.Context) (party.Biller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return party.Biller{}, ports.ErrNotFound
	}
	return s.billers[s.order[0]], nil
}

// List returns all billers.
func (s *BillerStore) List(ctx context.Context) ([]party.Biller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]party.Biller, 0, len(s.billers))
	for _, id := range s.order {
		out = append(out, s.billers[id])
	}
	return out, nil
}

// Create stores a new biller.
func (s *BillerStore) Create(ctx context.Context, b party.Biller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.billers[b.ID]; exists {
		return ports.ErrDuplicate
	}
	s.billers[b.ID] = b
	s.order = append(s.order, b.ID)
	return nil
}

// Update modifies an existing biller.
func (s *BillerStore) Update(ctx context.Context, b party.Biller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.billers[b.ID]; !exists {
		return ports.ErrNotFound
	}
	s.billers[b.ID] = b
	return nil
}

// Ensure interface compliance.
var _ ports.BillerStore = (*BillerStore)(nil)

// IssuerStore is an in-memory implementation of ports.IssuerStore.
type IssuerStore struct {
	mu      sync.RWMutex
	issuers map[string]party.Issuer
}

// NewIssuerStore creates a new in-memory issuer store.
func NewIssuerStore() *IssuerStore {
	return &IssuerStore{issuers: make(map[string]party.Issuer)}
}

// Get retrieves an issuer by ID.
func (s *IssuerStore) Get(ctx context.Context, id string) (party.Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.issuers[id]
	if !ok {
		return party.Issuer{}, ports.ErrNotFound
	}
	return i, nil
}

// List returns all issuers ordered by ID.
func (s *IssuerStore) List(ctx context.Context) ([]party.Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]party.Issuer, 0, len(s.issuers))
	for _, i := range s.issuers {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new issuer.
func (s *IssuerStore) Create(ctx context.Context, i party.Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuers[i.ID]; exists {
		return ports.ErrDuplicate
	}
	s.issuers[i.ID] = i
	return nil
}

// Update modifies an existing issuer.
func (s *IssuerStore) Update(ctx context.Context, i party.Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuers[i.ID]; !exists {
		return ports.ErrNotFound
	}
	s.issuers[i.ID] = i
	return nil
}

// Delete removes an issuer.
func (s *IssuerStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuers[id]; !exists {
		return ports.ErrNotFound
	}
	delete(s.issuers, id)
	return nil
}

// Ensure interface compliance.
var _ ports.IssuerStore = (*IssuerStore)(nil)

// ClientStore is an in-memory implementation of ports.ClientStore.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]party.Client
}

// NewClientStore creates a new in-memory client store.
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[string]party.Client)}
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(ctx context.Context, id string) (party.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return party.Client{}, ports.ErrNotFound
	}
	return c, nil
}

// List returns all clients ordered by ID.
func (s *ClientStore) List(ctx context.Context) ([]party.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]party.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new client.
func (s *ClientStore) Create(ctx context.Context, c party.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[c.ID]; exists {
		return ports.ErrDuplicate
	}
	s.clients[c.ID] = c
	return nil
}

// Update modifies an existing client.
func (s *ClientStore) Update(ctx context.Context, c party.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[c.ID]; !exists {
		return ports.ErrNotFound
	}
	s.clients[c.ID] = c
	return nil
}

// Delete removes a client.
func (s *ClientStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[id]; !exists {
		return ports.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

// Ensure interface compliance.
var _ ports.ClientStore = (*ClientStore)(nil)

// ProductStore is an in-memory implementation of ports.ProductStore.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]party.Product
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]party.Product)}
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, id string) (party.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return party.Product{}, ports.ErrNotFound
	}
	return p, nil
}

// List returns all products ordered by ID.
func (s *ProductStore) List(ctx context.Context) ([]party.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]party.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Create stores a new product.
func (s *ProductStore) Create(ctx context.Context, p party.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; exists {
		return ports.ErrDuplicate
	}
	s.products[p.ID] = p
	return nil
}

// Update modifies an existing product.
func (s *ProductStore) Update(ctx context.Context, p party.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; !exists {
		return ports.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

// Delete removes a product.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[id]; !exists {
		return ports.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Ensure interface compliance.
var _ ports.ProductStore = (*ProductStore)(nil)
