// Package words renders currency amounts as English words in the Indian
// convention (lakh/crore grouping) for printed invoices.
package words

import (
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// Rupees spells out a rupee amount, e.g. 118.00 becomes
// "One Hundred Eighteen Rupees and Zero Paise Only". The amount is read at
// two decimal places.
func Rupees(amount decimal.Decimal) string {
	prefix := ""
	if amount.IsNegative() {
		prefix = "Minus "
		amount = amount.Neg()
	}

	amount = amount.Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).IntPart()

	return prefix + Integer(rupees) + " Rupees and " + Integer(paise) + " Paise Only"
}

// Integer spells out a non-negative integer with Indian grouping. Amounts of
// a crore crore and beyond recurse on the crore count.
func Integer(n int64) string {
	if n < 0 {
		return "Minus " + Integer(-n)
	}
	if n < 20 {
		return ones[n]
	}

	var parts []string

	if crore := n / 1e7; crore > 0 {
		parts = append(parts, Integer(crore)+" Crore")
		n %= 1e7
	}
	if lakh := n / 1e5; lakh > 0 {
		parts = append(parts, twoDigits(lakh)+" Lakh")
		n %= 1e5
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, twoDigits(thousand)+" Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, ones[hundred]+" Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, twoDigits(n))
	}

	return strings.Join(parts, " ")
}

func twoDigits(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
