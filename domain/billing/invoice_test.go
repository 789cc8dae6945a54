package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func wantEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func monthlyFee(id, name string) fee.Fee {
	return fee.Fee{ID: id, Name: name, Type: fee.TypeStatic, Frequency: fee.FrequencyMonthly}
}

func TestPriceFees_SingleStaticFee(t *testing.T) {
	res := billing.PriceFees(billing.PriceInput{
		Fees: []fee.Fee{monthlyFee("FEE-1", "Switching Fee")},
		Mappings: map[string]fee.Mapping{
			"FEE-1": {FeeID: "FEE-1", UnitPrice: d("100")},
		},
	})

	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	it := res.Items[0]
	if it.Units != 1 {
		t.Errorf("Units = %d, want 1", it.Units)
	}
	wantEqual(t, "Total", it.Total, d("100.00"))
	wantEqual(t, "GSTAmount", it.GSTAmount, d("18.00"))
	wantEqual(t, "FinalAmount", it.FinalAmount, d("118.00"))
}

func TestPriceFees_DynamicUnits(t *testing.T) {
	res := billing.PriceFees(billing.PriceInput{
		Fees:  []fee.Fee{{ID: "FEE-1", Name: "Transaction Fee", Type: fee.TypeDynamic, Frequency: fee.FrequencyMonthly}},
		Units: map[string]int64{"FEE-1": 250},
		Mappings: map[string]fee.Mapping{
			"FEE-1": {FeeID: "FEE-1", UnitPrice: d("0.50")},
		},
	})

	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	it := res.Items[0]
	if it.Units != 250 {
		t.Errorf("Units = %d, want 250", it.Units)
	}
	wantEqual(t, "Total", it.Total, d("125.00"))
	wantEqual(t, "GSTAmount", it.GSTAmount, d("22.50"))
	wantEqual(t, "FinalAmount", it.FinalAmount, d("147.50"))
}

func TestPriceFees_ZeroUnitsSkips(t *testing.T) {
	res := billing.PriceFees(billing.PriceInput{
		Fees:  []fee.Fee{monthlyFee("FEE-1", "Optional Fee")},
		Units: map[string]int64{"FEE-1": 0},
		Mappings: map[string]fee.Mapping{
			"FEE-1": {FeeID: "FEE-1", UnitPrice: d("100")},
		},
	})

	if len(res.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(res.Items))
	}
	if len(res.Unpriced) != 0 {
		t.Errorf("len(Unpriced) = %d, want 0", len(res.Unpriced))
	}
}

func TestPriceFees_MissingMappingReportedUnpriced(t *testing.T) {
	res := billing.PriceFees(billing.PriceInput{
		Fees: []fee.Fee{
			monthlyFee("FEE-1", "Priced Fee"),
			monthlyFee("FEE-2", "Orphan Fee"),
		},
		Mappings: map[string]fee.Mapping{
			"FEE-1": {FeeID: "FEE-1", UnitPrice: d("10")},
		},
	})

	if len(res.Items) != 1 || res.Items[0].FeeID != "FEE-1" {
		t.Fatalf("Items = %+v, want only FEE-1", res.Items)
	}
	if len(res.Unpriced) != 1 || res.Unpriced[0] != "FEE-2" {
		t.Errorf("Unpriced = %v, want [FEE-2]", res.Unpriced)
	}
}

func TestPriceFees_GSTRoundsHalfUp(t *testing.T) {
	// 33.33 * 0.18 = 5.9994 -> 6.00
	res := billing.PriceFees(billing.PriceInput{
		Fees: []fee.Fee{monthlyFee("FEE-1", "Odd Fee")},
		Mappings: map[string]fee.Mapping{
			"FEE-1": {FeeID: "FEE-1", UnitPrice: d("33.33")},
		},
	})

	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	wantEqual(t, "GSTAmount", res.Items[0].GSTAmount, d("6.00"))
	wantEqual(t, "FinalAmount", res.Items[0].FinalAmount, d("39.33"))
}

func TestComputeInterchange_GrossAboveMinimum(t *testing.T) {
	// Gross 1000, minimum 50, share 10%: share = (1000/1.18)*0.10,
	// gst = 15.25, final = exactly 100.00.
	it := billing.ComputeInterchange(billing.InterchangeRecord{
		GrossAmount:      d("1000"),
		MinimumGuarantee: d("50"),
	}, d("10"), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	if it == nil {
		t.Fatal("ComputeInterchange returned nil")
	}
	wantEqual(t, "GSTAmount", it.GSTAmount, d("15.25"))
	wantEqual(t, "FinalAmount", it.FinalAmount, d("100.00"))
	if it.Description != "Interchange Fee (March 2024)" {
		t.Errorf("Description = %q", it.Description)
	}
	if it.FeeID != "" {
		t.Errorf("FeeID = %q, want empty for synthetic item", it.FeeID)
	}
}

func TestComputeInterchange_MinimumGuarantee(t *testing.T) {
	// Gross 40 does not exceed minimum 50: the minimum is the share,
	// no de-taxing, no percentage.
	it := billing.ComputeInterchange(billing.InterchangeRecord{
		GrossAmount:      d("40"),
		MinimumGuarantee: d("50"),
	}, d("10"), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	if it == nil {
		t.Fatal("ComputeInterchange returned nil")
	}
	wantEqual(t, "GSTAmount", it.GSTAmount, d("9.00"))
	wantEqual(t, "FinalAmount", it.FinalAmount, d("59.00"))
}

func TestComputeInterchange_TieTakesMinimum(t *testing.T) {
	it := billing.ComputeInterchange(billing.InterchangeRecord{
		GrossAmount:      d("50"),
		MinimumGuarantee: d("50"),
	}, d("10"), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	if it == nil {
		t.Fatal("ComputeInterchange returned nil")
	}
	wantEqual(t, "FinalAmount", it.FinalAmount, d("59.00"))
}

func TestComputeInterchange_BothZeroReturnsNil(t *testing.T) {
	it := billing.ComputeInterchange(billing.InterchangeRecord{}, d("10"),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	if it != nil {
		t.Errorf("ComputeInterchange = %+v, want nil", it)
	}
}

func TestComputeInterchange_MonotonicInGross(t *testing.T) {
	// Above the minimum, a higher gross never yields a lower final amount.
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	min := d("50")
	pct := d("10")

	prev := decimal.Zero
	for _, gross := range []string{"100", "590", "591", "1000", "5000", "99999.99"} {
		it := billing.ComputeInterchange(billing.InterchangeRecord{
			GrossAmount:      d(gross),
			MinimumGuarantee: min,
		}, pct, end)
		if it == nil {
			t.Fatalf("nil item for gross %s", gross)
		}
		if it.FinalAmount.LessThan(prev) {
			t.Errorf("final %s for gross %s is below previous %s", it.FinalAmount, gross, prev)
		}
		prev = it.FinalAmount
	}
}

func assembleParams(items []billing.LineItem) billing.AssembleParams {
	return billing.AssembleParams{
		ID:          "INV-20240401-1",
		Number:      "INV-20240401-1",
		BillerID:    "BILLER-1",
		IssuerID:    "ISSUER-1",
		ClientID:    "CLIENT-1",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		InvoiceDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:       items,
	}
}

func TestAssemble_Totals(t *testing.T) {
	inv, err := billing.Assemble(assembleParams([]billing.LineItem{
		{Description: "Fee A", Units: 1, Total: d("100.00"), GSTAmount: d("18.00"), FinalAmount: d("118.00")},
		{Description: "Fee B", Units: 1, Total: d("200.00"), GSTAmount: d("36.00"), FinalAmount: d("236.00")},
	}))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	wantEqual(t, "InvoiceAmount", inv.InvoiceAmount, d("300.00"))
	wantEqual(t, "TaxAmount", inv.TaxAmount, d("54.00"))
	wantEqual(t, "TotalAmount", inv.TotalAmount, d("354.00"))
	wantEqual(t, "TaxableAmount", inv.TaxableAmount, d("300.00"))
	wantEqual(t, "RoundingUp", inv.RoundingUp, d("0.00"))
	wantEqual(t, "GrandTotal", inv.GrandTotal, d("354.00"))
	wantEqual(t, "TaxRate", inv.TaxRate, d("18"))
	if inv.AmountInWords != "Three Hundred Fifty Four Rupees and Zero Paise Only" {
		t.Errorf("AmountInWords = %q", inv.AmountInWords)
	}
	if !inv.InvoiceMonth.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("InvoiceMonth = %v", inv.InvoiceMonth)
	}
	if inv.InvoiceType != "client" {
		t.Errorf("InvoiceType = %q, want client", inv.InvoiceType)
	}
}

func TestAssemble_RoundingDown(t *testing.T) {
	// 39.33 rounds half-up at the first decimal to 39.30, delta -0.03.
	inv, err := billing.Assemble(assembleParams([]billing.LineItem{
		{Description: "Odd Fee", Units: 1, Total: d("33.33"), GSTAmount: d("6.00"), FinalAmount: d("39.33")},
	}))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	wantEqual(t, "GrandTotal", inv.GrandTotal, d("39.30"))
	wantEqual(t, "RoundingUp", inv.RoundingUp, d("-0.03"))
	wantEqual(t, "TotalAmount", inv.TotalAmount.Add(inv.RoundingUp), inv.GrandTotal)
}

func TestAssemble_RoundingUp(t *testing.T) {
	// 39.35 rounds half-up to 39.40, delta +0.05.
	inv, err := billing.Assemble(assembleParams([]billing.LineItem{
		{Description: "Odd Fee", Units: 1, Total: d("33.35"), GSTAmount: d("6.00"), FinalAmount: d("39.35")},
	}))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	wantEqual(t, "GrandTotal", inv.GrandTotal, d("39.40"))
	wantEqual(t, "RoundingUp", inv.RoundingUp, d("0.05"))
}

func TestAssemble_RoundingIdempotent(t *testing.T) {
	inv, err := billing.Assemble(assembleParams([]billing.LineItem{
		{Description: "Odd Fee", Units: 1, Total: d("33.33"), GSTAmount: d("6.00"), FinalAmount: d("39.33")},
	}))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	wantEqual(t, "re-rounded GrandTotal", inv.GrandTotal.Round(1), inv.GrandTotal)
}

func TestAssemble_NoItems(t *testing.T) {
	_, err := billing.Assemble(assembleParams(nil))
	if err != billing.ErrNoLineItems {
		t.Errorf("err = %v, want ErrNoLineItems", err)
	}
}
