// Package billing provides the pure invoice computation core: line-item
// pricing, interchange revenue-share computation, and invoice assembly.
// Nothing in this package touches storage; callers feed it resolved data
// and commit the results transactionally.
package billing

import (
	"github.com/cardbill/cardbill/domain/fee"
	"github.com/shopspring/decimal"
)

// GST is the fixed 18% value-added tax applied uniformly in this domain.
var (
	gstRate    = decimal.RequireFromString("0.18")
	gstDivisor = decimal.RequireFromString("1.18")
	hundred    = decimal.NewFromInt(100)
)

// TaxRatePercent is the GST rate recorded on every invoice.
var TaxRatePercent = decimal.NewFromInt(18)

// LineItem is one priced, taxed row of an invoice. FeeID is empty for the
// synthetic interchange item. Monetary fields carry two decimal places.
type LineItem struct {
	ID          int64
	InvoiceID   string
	FeeID       string
	Description string
	Units       int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	GSTAmount   decimal.Decimal
	FinalAmount decimal.Decimal
}

// PriceInput is everything line-item pricing needs: the fees the resolver
// returned, operator unit counts (absent means 1, zero means skip), and the
// active mapping per fee.
type PriceInput struct {
	Fees     []fee.Fee
	Units    map[string]int64
	Mappings map[string]fee.Mapping
}

// PriceResult separates fees that priced cleanly from fees the resolver
// returned but no active mapping could price. Unpriced fees produce no line
// item and no history entry; callers surface them as warnings rather than
// dropping them silently.
type PriceResult struct {
	Items    []LineItem
	Unpriced []string
}

// PriceFees turns resolved fees into line items. It is pure: no identifier
// generation, no history writes. Fee items keep catalog resolution order.
func PriceFees(in PriceInput) PriceResult {
	var res PriceResult

	for _, f := range in.Fees {
		units, ok := in.Units[f.ID]
		if !ok {
			units = 1
		}
		if units == 0 {
			// Operator opted out of this fee for the period.
			continue
		}

		m, ok := in.Mappings[f.ID]
		if !ok {
			res.Unpriced = append(res.Unpriced, f.ID)
			continue
		}

		total := m.UnitPrice.Mul(decimal.NewFromInt(units)).Round(2)
		gst := total.Mul(gstRate).Round(2)

		res.Items = append(res.Items, LineItem{
			FeeID:       f.ID,
			Description: f.Name,
			Units:       units,
			UnitPrice:   m.UnitPrice,
			Total:       total,
			GSTAmount:   gst,
			FinalAmount: total.Add(gst),
		})
	}

	return res
}
