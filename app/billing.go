// Package app contains application services. Services orchestrate stores
// and pure domain computation; business rules live in domain/, I/O happens
// at the edges via injected stores.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/adapters/metrics"
	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// Service errors callers are expected to branch on.
var (
	// ErrInvalidPeriod means the billing period is missing or inverted.
	ErrInvalidPeriod = errors.New("invalid billing period")

	// ErrNoApplicableFees means the period produced no line items at all.
	ErrNoApplicableFees = errors.New("no applicable fees for the period")

	// ErrAlreadyCharged means a fee in the invoice was already charged for
	// its period, typically a concurrent duplicate generation.
	ErrAlreadyCharged = errors.New("fee already charged for this period")
)

// BillingService resolves applicable fees, generates invoices, and renders
// invoice documents.
type BillingService struct {
	billers     ports.BillerStore
	clients     ports.ClientStore
	issuers     ports.IssuerStore
	fees        ports.FeeStore
	mappings    ports.MappingStore
	history     ports.HistoryStore
	interchange ports.InterchangeStore
	invoices    ports.InvoiceStore
	renderer    ports.Renderer
	idGen       ports.IDGenerator
	clock       ports.Clock
	metrics     *metrics.Collector
	logger      zerolog.Logger
}

// BillingDeps carries the dependencies of a BillingService.
type BillingDeps struct {
	Billers     ports.BillerStore
	Clients     ports.ClientStore
	Issuers     ports.IssuerStore
	Fees        ports.FeeStore
	Mappings    ports.MappingStore
	History     ports.HistoryStore
	Interchange ports.InterchangeStore
	Invoices    ports.InvoiceStore
	Renderer    ports.Renderer
	IDGen       ports.IDGenerator
	Clock       ports.Clock
	Metrics     *metrics.Collector
	Logger      zerolog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(d BillingDeps) *BillingService {
	return &BillingService{
		billers:     d.Billers,
		clients:     d.Clients,
		issuers:     d.Issuers,
		fees:        d.Fees,
		mappings:    d.Mappings,
		history:     d.History,
		interchange: d.Interchange,
		invoices:    d.Invoices,
		renderer:    d.Renderer,
		idGen:       d.IDGen,
		clock:       d.Clock,
		metrics:     d.Metrics,
		logger:      d.Logger,
	}
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidPeriod)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidPeriod, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return nil
}

// ResolveFees returns the client's fees chargeable for [start, end]. It is
// the single authoritative applicability implementation; the HTTP preview
// endpoint and invoice generation both go through it.
//
// A fee is applicable when a price mapping window overlaps the period and
// its frequency permits another charge: one-time fees must never have been
// charged, yearly fees not in the period's start year, monthly fees not in
// the period's start month. With excludeInterchange the reserved
// "Interchange" fee is skipped so it can be priced separately. Each fee is
// returned at most once regardless of how many mappings overlap.
func (s *BillingService) ResolveFees(ctx context.Context, clientID string, start, end time.Time, excludeInterchange bool) ([]fee.Fee, error) {
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}

	mappings, err := s.mappings.ListOverlapping(ctx, clientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	seen := make(map[string]bool)
	var applicable []fee.Fee

	for _, m := range mappings {
		if seen[m.FeeID] {
			continue
		}
		seen[m.FeeID] = true

		f, err := s.fees.Get(ctx, m.FeeID)
		if errors.Is(err, ports.ErrNotFound) {
			// A mapping pointing at a missing fee is a data problem;
			// skipping must stay visible in logs and metrics.
			s.logger.Warn().
				Str("client_id", clientID).
				Str("fee_id", m.FeeID).
				Int64("mapping_id", m.ID).
				Msg("mapping references unknown fee, skipping")
			s.metrics.FeesExcluded.WithLabelValues("missing_fee").Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get fee %s: %w", m.FeeID, err)
		}

		if excludeInterchange && f.IsInterchange() {
			s.metrics.FeesExcluded.WithLabelValues("interchange").Inc()
			continue
		}

		switch f.Frequency {
		case fee.FrequencyOneTime:
			charged, err := s.history.Charged(ctx, clientID, f.ID)
			if err != nil {
				return nil, fmt.Errorf("check charge history for fee %s: %w", f.ID, err)
			}
			if charged {
				s.metrics.FeesExcluded.WithLabelValues("charged_once").Inc()
				continue
			}
		case fee.FrequencyYearly:
			charged, err := s.history.ChargedInYear(ctx, clientID, f.ID, start.Year())
			if err != nil {
				return nil, fmt.Errorf("check charge history for fee %s: %w", f.ID, err)
			}
			if charged {
				s.metrics.FeesExcluded.WithLabelValues("charged_this_year").Inc()
				continue
			}
		case fee.FrequencyMonthly:
			charged, err := s.history.ChargedInMonth(ctx, clientID, f.ID, start.Year(), start.Month())
			if err != nil {
				return nil, fmt.Errorf("check charge history for fee %s: %w", f.ID, err)
			}
			if charged {
				s.metrics.FeesExcluded.WithLabelValues("charged_this_month").Inc()
				continue
			}
		}

		applicable = append(applicable, f)
		s.metrics.FeesResolved.Inc()
	}

	return applicable, nil
}

// GenerateParams carries the operator's invoice generation request.
type GenerateParams struct {
	ClientID string
	Start    time.Time
	End      time.Time

	// SharePercent is the client's interchange revenue share percentage.
	SharePercent decimal.Decimal

	// Units overrides per-fee unit counts. Absent fees bill one unit; an
	// explicit zero excludes the fee for this period.
	Units map[string]int64
}

// GenerateResult is a persisted invoice plus the fees that resolved as
// applicable but had no active price mapping. Unpriced fees produce no
// line item and no history entry; callers surface them as warnings.
type GenerateResult struct {
	Invoice  billing.Invoice
	Unpriced []string
}

// GenerateInvoice computes and persists an invoice for the client's
// billing period. Computation is pure; the invoice, its line items, and
// the fee history entries commit in one transaction, so a concurrent
// duplicate run fails atomically with ErrAlreadyCharged. Rendering is not
// part of generation: documents are produced afterwards from the
// persisted invoice.
func (s *BillingService) GenerateInvoice(ctx context.Context, p GenerateParams) (GenerateResult, error) {
	if err := validatePeriod(p.Start, p.End); err != nil {
		s.metrics.GenerationErrors.WithLabelValues("invalid_period").Inc()
		return GenerateResult{}, err
	}

	client, err := s.clients.Get(ctx, p.ClientID)
	if err != nil {
		s.metrics.GenerationErrors.WithLabelValues("client_lookup").Inc()
		return GenerateResult{}, fmt.Errorf("get client %s: %w", p.ClientID, err)
	}
	biller, err := s.billers.Default(ctx)
	if err != nil {
		s.metrics.GenerationErrors.WithLabelValues("biller_lookup").Inc()
		return GenerateResult{}, fmt.Errorf("get default biller: %w", err)
	}

	applicable, err := s.ResolveFees(ctx, p.ClientID, p.Start, p.End, true)
	if err != nil {
		s.metrics.GenerationErrors.WithLabelValues("resolve").Inc()
		return GenerateResult{}, err
	}

	var items []billing.LineItem

	rec, err := s.interchange.Latest(ctx, p.ClientID, p.Start, p.End)
	switch {
	case err == nil:
		if li := billing.ComputeInterchange(rec, p.SharePercent, p.End); li != nil {
			items = append(items, *li)
		}
	case errors.Is(err, ports.ErrNotFound):
		// No interchange figure entered for this window.
	default:
		s.metrics.GenerationErrors.WithLabelValues("interchange_lookup").Inc()
		return GenerateResult{}, fmt.Errorf("get interchange record: %w", err)
	}

	feeByID := make(map[string]fee.Fee, len(applicable))
	active := make(map[string]fee.Mapping, len(applicable))
	for _, f := range applicable {
		feeByID[f.ID] = f
		m, err := s.mappings.ActiveFor(ctx, p.ClientID, f.ID, p.Start, p.End)
		if errors.Is(err, ports.ErrNotFound) {
			continue // PriceFees reports it as unpriced
		}
		if err != nil {
			s.metrics.GenerationErrors.WithLabelValues("mapping_lookup").Inc()
			return GenerateResult{}, fmt.Errorf("get active mapping for fee %s: %w", f.ID, err)
		}
		active[f.ID] = m
	}

	priced := billing.PriceFees(billing.PriceInput{
		Fees:     applicable,
		Units:    p.Units,
		Mappings: active,
	})
	for _, feeID := range priced.Unpriced {
		s.logger.Warn().
			Str("client_id", p.ClientID).
			Str("fee_id", feeID).
			Msg("applicable fee has no active price mapping, omitted from invoice")
		s.metrics.UnpricedFees.Inc()
	}
	items = append(items, priced.Items...)

	now := s.clock.Now()
	invoiceID := s.idGen.New("INV")

	inv, err := billing.Assemble(billing.AssembleParams{
		ID:          invoiceID,
		Number:      invoiceID,
		BillerID:    biller.ID,
		IssuerID:    client.IssuerID,
		ClientID:    client.ID,
		PeriodStart: p.Start,
		InvoiceDate: now,
		Items:       items,
	})
	if errors.Is(err, billing.ErrNoLineItems) {
		s.metrics.GenerationErrors.WithLabelValues("no_applicable_fees").Inc()
		return GenerateResult{}, fmt.Errorf("%w: client %s, period %s to %s",
			ErrNoApplicableFees, p.ClientID,
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	if err != nil {
		return GenerateResult{}, err
	}

	// History entries come from the accepted fee-backed line items and are
	// keyed on the period start, matching the resolver's predicates.
	var history []fee.HistoryEntry
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
		it := inv.Items[i]
		if it.FeeID == "" {
			continue // interchange item leaves no history
		}
		history = append(history, fee.HistoryEntry{
			ID:         s.idGen.New("FEEHIST"),
			ClientID:   client.ID,
			IssuerID:   client.IssuerID,
			FeeID:      it.FeeID,
			ChargeDate: p.Start,
			PeriodKey:  fee.PeriodKey(feeByID[it.FeeID].Frequency, p.Start),
			Units:      it.Units,
			Total:      it.Total,
			CreatedAt:  now,
		})
	}

	if err := s.invoices.CreateWithItems(ctx, inv, history); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			s.metrics.GenerationErrors.WithLabelValues("already_charged").Inc()
			return GenerateResult{}, fmt.Errorf("%w: client %s", ErrAlreadyCharged, p.ClientID)
		}
		s.metrics.GenerationErrors.WithLabelValues("persistence").Inc()
		return GenerateResult{}, fmt.Errorf("persist invoice: %w", err)
	}

	s.metrics.InvoicesGenerated.Inc()
	s.logger.Info().
		Str("invoice_id", inv.ID).
		Str("client_id", client.ID).
		Str("grand_total", inv.GrandTotal.String()).
		Int("line_items", len(inv.Items)).
		Int("unpriced", len(priced.Unpriced)).
		Msg("invoice generated")

	return GenerateResult{Invoice: inv, Unpriced: priced.Unpriced}, nil
}

// RenderInvoicePDF re-renders a persisted invoice as a PDF document. A
// failure here never affects the stored invoice; the operation can simply
// be retried.
func (s *BillingService) RenderInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", invoiceID, err)
	}
	client, err := s.clients.Get(ctx, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", inv.ClientID, err)
	}
	biller, err := s.billers.Get(ctx, inv.BillerID)
	if err != nil {
		return nil, fmt.Errorf("get biller %s: %w", inv.BillerID, err)
	}
	issuer, err := s.issuers.Get(ctx, inv.IssuerID)
	if err != nil {
		return nil, fmt.Errorf("get issuer %s: %w", inv.IssuerID, err)
	}

	start := s.clock.Now()
	html, err := s.renderer.RenderHTML(ports.RenderInput{
		Biller:  biller,
		Issuer:  issuer,
		Client:  client,
		Invoice: inv,
	})
	if err != nil {
		s.metrics.RenderErrors.Inc()
		return nil, fmt.Errorf("render invoice %s: %w", invoiceID, err)
	}
	s.metrics.RenderDuration.WithLabelValues("html").Observe(s.clock.Now().Sub(start).Seconds())

	start = s.clock.Now()
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		s.metrics.RenderErrors.Inc()
		return nil, fmt.Errorf("render invoice %s: %w", invoiceID, err)
	}
	s.metrics.RenderDuration.WithLabelValues("pdf").Observe(s.clock.Now().Sub(start).Seconds())

	return pdf, nil
}
