package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InterchangeRecord is a per-client, per-period interchange revenue figure
// entered by an operator before invoice generation. Multiple records may
// exist for the same window; the store returns the latest by charge date.
type InterchangeRecord struct {
	ID               int64
	ClientID         string
	Start            time.Time
	End              time.Time
	ChargeDate       time.Time
	GrossAmount      decimal.Decimal
	MinimumGuarantee decimal.Decimal
	CreatedAt        time.Time
}

// ComputeInterchange prices the client's interchange revenue share as a
// synthetic line item, or returns nil when both the gross figure and the
// minimum guarantee are zero.
//
// When the gross amount strictly exceeds the minimum guarantee, the gross
// figure is de-taxed at the embedded 18% rate and the client's percentage
// cut is taken from the result. Otherwise (including a tie) the minimum
// guarantee is the client's share directly, with no de-taxing and no
// percentage applied. GST is then re-applied on the share either way.
func ComputeInterchange(rec InterchangeRecord, sharePercent decimal.Decimal, periodEnd time.Time) *LineItem {
	if rec.GrossAmount.IsZero() && rec.MinimumGuarantee.IsZero() {
		return nil
	}

	var share decimal.Decimal
	if rec.GrossAmount.GreaterThan(rec.MinimumGuarantee) {
		exGST := rec.GrossAmount.Div(gstDivisor)
		share = exGST.Mul(sharePercent.Div(hundred))
	} else {
		share = rec.MinimumGuarantee
	}

	gst := share.Mul(gstRate).Round(2)
	final := share.Add(share.Mul(gstRate)).Round(2)

	return &LineItem{
		Description: fmt.Sprintf("Interchange Fee (%s)", periodEnd.Format("January 2006")),
		Units:       1,
		UnitPrice:   final,
		Total:       final,
		GSTAmount:   gst,
		FinalAmount: final,
	}
}
