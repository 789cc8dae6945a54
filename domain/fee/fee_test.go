package fee_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/domain/fee"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequency_Valid(t *testing.T) {
	tests := []struct {
		freq fee.Frequency
		want bool
	}{
		{fee.FrequencyMonthly, true},
		{fee.FrequencyYearly, true},
		{fee.FrequencyOneTime, true},
		{fee.Frequency("monthly"), false},
		{fee.Frequency("Weekly"), false},
		{fee.Frequency(""), false},
	}

	for _, tt := range tests {
		if got := tt.freq.Valid(); got != tt.want {
			t.Errorf("Frequency(%q).Valid() = %v, want %v", tt.freq, got, tt.want)
		}
	}
}

func TestFee_Validate(t *testing.T) {
	valid := fee.Fee{Name: "Switching Fee", Type: fee.TypeStatic, Frequency: fee.FrequencyMonthly}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid fee: %v", err)
	}

	tests := []struct {
		name string
		fee  fee.Fee
	}{
		{"empty name", fee.Fee{Name: "  ", Type: fee.TypeStatic, Frequency: fee.FrequencyMonthly}},
		{"bad frequency", fee.Fee{Name: "X", Type: fee.TypeStatic, Frequency: "Weekly"}},
		{"bad type", fee.Fee{Name: "X", Type: "Variable", Frequency: fee.FrequencyMonthly}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fee.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFee_IsInterchange(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Interchange", true},
		{"interchange", true},
		{"INTERCHANGE", true},
		{"Interchange Fee", false},
		{"Switching Fee", false},
	}

	for _, tt := range tests {
		f := fee.Fee{Name: tt.name}
		if got := f.IsInterchange(); got != tt.want {
			t.Errorf("IsInterchange(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMapping_Overlaps(t *testing.T) {
	m := fee.Mapping{Start: date(2024, 1, 1), End: date(2024, 6, 30)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside window", date(2024, 3, 1), date(2024, 3, 31), true},
		{"covers window", date(2023, 1, 1), date(2025, 1, 1), true},
		{"touches start", date(2023, 12, 1), date(2024, 1, 1), true},
		{"touches end", date(2024, 6, 30), date(2024, 7, 31), true},
		{"before window", date(2023, 11, 1), date(2023, 12, 31), false},
		{"after window", date(2024, 7, 1), date(2024, 7, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapping_Validate(t *testing.T) {
	valid := fee.Mapping{
		ClientID:  "CLIENT-1",
		ProductID: "PRODUCT-1",
		FeeID:     "FEE-1",
		UnitPrice: decimal.NewFromInt(100),
		Start:     date(2024, 1, 1),
		End:       date(2024, 12, 31),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid mapping: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*fee.Mapping)
	}{
		{"missing fee ref", func(m *fee.Mapping) { m.FeeID = "" }},
		{"missing window", func(m *fee.Mapping) { m.Start = time.Time{} }},
		{"inverted window", func(m *fee.Mapping) { m.Start, m.End = m.End, m.Start }},
		{"negative price", func(m *fee.Mapping) { m.UnitPrice = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPeriodKey(t *testing.T) {
	day := date(2024, 3, 15)

	tests := []struct {
		freq fee.Frequency
		want string
	}{
		{fee.FrequencyOneTime, "once"},
		{fee.FrequencyYearly, "2024"},
		{fee.FrequencyMonthly, "2024-03"},
	}

	for _, tt := range tests {
		if got := fee.PeriodKey(tt.freq, day); got != tt.want {
			t.Errorf("PeriodKey(%s) = %q, want %q", tt.freq, got, tt.want)
		}
	}
}
