// Package fee provides fee catalog value types, price mappings, and the
// charge-history rules that govern when a fee may be billed again.
package fee

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InterchangeFeeName is the reserved catalog name for the interchange fee.
// Fees carrying this name are priced by the interchange computation, never
// through a unit-price mapping. Comparison is case-insensitive.
const InterchangeFeeName = "Interchange"

// Validation errors for the closed enumerations.
var (
	ErrInvalidFrequency = errors.New("invalid fee frequency")
	ErrInvalidType      = errors.New("invalid fee type")
)

// Frequency is the cadence governing whether a fee can be charged again
// within a billing period based on charge history.
type Frequency string

const (
	FrequencyMonthly Frequency = "Monthly"
	FrequencyYearly  Frequency = "Yearly"
	FrequencyOneTime Frequency = "One-time"
)

// Valid reports whether the frequency is one of the known cadences.
// Unknown values are rejected at the data-model boundary; they never reach
// the resolver.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyYearly, FrequencyOneTime:
		return true
	}
	return false
}

// Type classifies how a fee's unit count is determined: Static fees always
// bill one unit, Dynamic fees take an operator-supplied count per period.
type Type string

const (
	TypeStatic  Type = "Static"
	TypeDynamic Type = "Dynamic"
)

// Valid reports whether the type is a known classification.
func (t Type) Valid() bool {
	return t == TypeStatic || t == TypeDynamic
}

// Fee is immutable catalog reference data.
type Fee struct {
	ID        string
	Name      string
	Type      Type
	Frequency Frequency
	HSNCode   string // tax classification code printed on invoices
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the closed enumerations and required fields.
func (f Fee) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("fee name is required")
	}
	if !f.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if !f.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// IsInterchange reports whether the fee carries the reserved interchange name.
func (f Fee) IsInterchange() bool {
	return strings.EqualFold(f.Name, InterchangeFeeName)
}

// Mapping associates a (client, product, fee) triple with a unit price over
// an inclusive date window. Overlapping windows for the same (client, fee)
// are the operator's responsibility to avoid; the store does not prevent
// them.
type Mapping struct {
	ID        int64
	ClientID  string
	ProductID string
	FeeID     string
	UnitPrice decimal.Decimal
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the mapping's window and references.
func (m Mapping) Validate() error {
	if m.ClientID == "" || m.ProductID == "" || m.FeeID == "" {
		return errors.New("client, product and fee references are required")
	}
	if m.Start.IsZero() || m.End.IsZero() {
		return errors.New("validity window is required")
	}
	if m.Start.After(m.End) {
		return errors.New("validity window start is after end")
	}
	if m.UnitPrice.IsNegative() {
		return errors.New("unit price must not be negative")
	}
	return nil
}

// Overlaps reports whether the mapping's inclusive window intersects
// [start, end].
func (m Mapping) Overlaps(start, end time.Time) bool {
	return !m.Start.After(end) && !m.End.Before(start)
}

// HistoryEntry is one append-only record of a fee charged to a client.
type HistoryEntry struct {
	ID         string
	ClientID   string
	IssuerID   string
	FeeID      string
	ChargeDate time.Time
	// PeriodKey scopes the at-most-once uniqueness guard: "once" for
	// one-time fees, "2006" for yearly, "2006-01" for monthly.
	PeriodKey string
	Units     int64
	Total     decimal.Decimal
	CreatedAt time.Time
}

// PeriodKey derives the uniqueness scope for a charge of the given
// frequency on the given date.
func PeriodKey(freq Frequency, chargeDate time.Time) string {
	switch freq {
	case FrequencyOneTime:
		return "once"
	case FrequencyYearly:
		return chargeDate.Format("2006")
	default:
		return chargeDate.Format("2006-01")
	}
}
