// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/domain/party"
)

// Shared store errors. Every store implementation maps its backend's
// failure modes onto these so callers can errors.Is against one set.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrReferenced = errors.New("still referenced")
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces human-readable, sortable identifiers of the form
// <PREFIX>-<YYYYMMDD>-<token>. Implementations must guarantee uniqueness
// under concurrent creation.
type IDGenerator interface {
	New(prefix string) string
}

// -----------------------------------------------------------------------------
// Party Store Ports
// -----------------------------------------------------------------------------

// BillerStore persists invoicing entities.
type BillerStore interface {
	// Get retrieves a biller by ID.
	Get(ctx context.Context, id string) (party.Biller, error)

	// Default returns the biller invoices are issued under.
	Default(ctx context.Context) (party.Biller, error)

	// List returns all billers.
	List(ctx context.Context) ([]party.Biller, error)

	// Create stores a new biller.
	Create(ctx context.Context, b party.Biller) error

	// Update modifies an existing biller.
	Update(ctx context.Context, b party.Biller) error
}

// IssuerStore persists card issuers.
type IssuerStore interface {
	Get(ctx context.Context, id string) (party.Issuer, error)
	List(ctx context.Context) ([]party.Issuer, error)
	Create(ctx context.Context, i party.Issuer) error
	Update(ctx context.Context, i party.Issuer) error

	// Delete removes an issuer; fails with ErrReferenced while clients or
	// products point at it.
	Delete(ctx context.Context, id string) error
}

// ClientStore persists billed clients.
type ClientStore interface {
	Get(ctx context.Context, id string) (party.Client, error)
	List(ctx context.Context) ([]party.Client, error)
	Create(ctx context.Context, c party.Client) error
	Update(ctx context.Context, c party.Client) error
	Delete(ctx context.Context, id string) error
}

// ProductStore persists issuer products.
type ProductStore interface {
	Get(ctx context.Context, id string) (party.Product, error)
	List(ctx context.Context) ([]party.Product, error)
	Create(ctx context.Context, p party.Product) error
	Update(ctx context.Context, p party.Product) error
	Delete(ctx context.Context, id string) error
}

// -----------------------------------------------------------------------------
// Fee Store Ports
// -----------------------------------------------------------------------------

// FeeStore persists fee catalog reference data.
type FeeStore interface {
	Get(ctx context.Context, id string) (fee.Fee, error)
	List(ctx context.Context) ([]fee.Fee, error)
	Create(ctx context.Context, f fee.Fee) error
	Update(ctx context.Context, f fee.Fee) error

	// Delete removes a fee; fails with ErrReferenced while mappings or
	// history entries reference it.
	Delete(ctx context.Context, id string) error
}

// MappingStore persists time-bounded (client, product, fee) unit prices.
type MappingStore interface {
	Get(ctx context.Context, id int64) (fee.Mapping, error)

	// ListOverlapping returns the client's mappings whose inclusive windows
	// intersect [start, end], ordered by fee ID then mapping ID so
	// resolution is deterministic across calls.
	ListOverlapping(ctx context.Context, clientID string, start, end time.Time) ([]fee.Mapping, error)

	// ActiveFor returns the first mapping (same deterministic order) for
	// (client, fee) overlapping [start, end], or ErrNotFound.
	ActiveFor(ctx context.Context, clientID, feeID string, start, end time.Time) (fee.Mapping, error)

	List(ctx context.Context) ([]fee.Mapping, error)
	Create(ctx context.Context, m fee.Mapping) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// HistoryStore reads the append-only fee charge ledger. Writes happen only
// through InvoiceStore.CreateWithItems so that history commits atomically
// with the invoice that caused it.
type HistoryStore interface {
	// Charged reports whether any entry exists for (client, fee),
	// regardless of date.
	Charged(ctx context.Context, clientID, feeID string) (bool, error)

	// ChargedInYear reports whether an entry exists with the given charge
	// year.
	ChargedInYear(ctx context.Context, clientID, feeID string, year int) (bool, error)

	// ChargedInMonth reports whether an entry exists with the given charge
	// year and month.
	ChargedInMonth(ctx context.Context, clientID, feeID string, year int, month time.Month) (bool, error)

	// ListByClient returns the client's ledger, newest first.
	ListByClient(ctx context.Context, clientID string) ([]fee.HistoryEntry, error)
}

// InterchangeStore persists operator-entered interchange revenue figures.
type InterchangeStore interface {
	// Latest returns the record for (client, exact window) with the most
	// recent charge date, or ErrNotFound.
	Latest(ctx context.Context, clientID string, start, end time.Time) (billing.InterchangeRecord, error)

	List(ctx context.Context) ([]billing.InterchangeRecord, error)
	Create(ctx context.Context, rec billing.InterchangeRecord) (int64, error)
}

// InvoiceStore persists invoices with their line items.
type InvoiceStore interface {
	// CreateWithItems stores the invoice, its line items, and the fee
	// history entries it implies in one atomic transaction. A history
	// uniqueness violation (same client, fee, and charge period) fails the
	// whole write with ErrDuplicate.
	CreateWithItems(ctx context.Context, inv billing.Invoice, history []fee.HistoryEntry) error

	// Get retrieves an invoice with its line items.
	Get(ctx context.Context, id string) (billing.Invoice, error)

	// List returns invoices newest first; clientID empty means all clients.
	List(ctx context.Context, clientID string, limit int) ([]billing.Invoice, error)
}

// -----------------------------------------------------------------------------
// Renderer Port
// -----------------------------------------------------------------------------

// RenderInput is the deterministic input for invoice rendering.
type RenderInput struct {
	Biller  party.Biller
	Issuer  party.Issuer
	Client  party.Client
	Invoice billing.Invoice
}

// Renderer produces printable documents from a fully-populated invoice.
// Implementations are synchronous and must fail loudly on malformed input,
// never truncate silently.
type Renderer interface {
	// RenderHTML renders the invoice document as HTML.
	RenderHTML(in RenderInput) (string, error)

	// RenderPDF converts rendered HTML into a PDF byte stream.
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}
