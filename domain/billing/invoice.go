package billing

import (
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/billing/words"
	"github.com/shopspring/decimal"
)

// ErrNoLineItems means the billing period produced nothing to invoice.
// Policy: an invoice with zero substantive content is not worth issuing.
// An interchange-only invoice still has one line item and is issuable.
var ErrNoLineItems = errors.New("no line items to invoice")

// Invoice is a finalized invoice with totals, tax, rounding, and a
// words-representation of the grand total. Immutable after persistence.
type Invoice struct {
	ID       string
	Number   string
	BillerID string
	IssuerID string
	ClientID string

	InvoiceDate  time.Time
	InvoiceType  string
	InvoiceMonth time.Time
	ChargeDate   time.Time

	// InvoiceAmount sums line-item totals; for the interchange item the
	// total already carries GST, so this is not the same figure as
	// TaxableAmount.
	InvoiceAmount decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	TaxableAmount decimal.Decimal
	// RoundingUp is the signed delta applied to reach GrandTotal.
	RoundingUp    decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountInWords string

	Items     []LineItem
	CreatedAt time.Time
}

// AssembleParams carries the identity and period context for an invoice;
// the monetary content comes from the line items.
type AssembleParams struct {
	ID          string
	Number      string
	BillerID    string
	IssuerID    string
	ClientID    string
	PeriodStart time.Time
	InvoiceDate time.Time
	Items       []LineItem
}

// Assemble aggregates line items into a finalized invoice. The grand total
// is the after-tax sum rounded half-up to the nearest 0.10; the signed
// rounding delta is recorded. Fails with ErrNoLineItems on an empty period.
func Assemble(p AssembleParams) (Invoice, error) {
	if len(p.Items) == 0 {
		return Invoice{}, ErrNoLineItems
	}

	var invoiceAmount, taxAmount, totalAmount decimal.Decimal
	for _, it := range p.Items {
		invoiceAmount = invoiceAmount.Add(it.Total)
		taxAmount = taxAmount.Add(it.GSTAmount)
		totalAmount = totalAmount.Add(it.FinalAmount)
	}

	grand := totalAmount.Round(1)

	return Invoice{
		ID:            p.ID,
		Number:        p.Number,
		BillerID:      p.BillerID,
		IssuerID:      p.IssuerID,
		ClientID:      p.ClientID,
		InvoiceDate:   p.InvoiceDate,
		InvoiceType:   "client",
		InvoiceMonth:  p.PeriodStart,
		ChargeDate:    p.InvoiceDate,
		InvoiceAmount: invoiceAmount,
		TaxRate:       TaxRatePercent,
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		TaxableAmount: totalAmount.Sub(taxAmount),
		RoundingUp:    grand.Sub(totalAmount),
		GrandTotal:    grand,
		AmountInWords: words.Rupees(grand),
		Items:         p.Items,
	}, nil
}
