package words_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/domain/billing/words"
)

func TestInteger(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{13, "Thirteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{118, "One Hundred Eighteen"},
		{354, "Three Hundred Fifty Four"},
		{1000, "One Thousand"},
		{12345, "Twelve Thousand Three Hundred Forty Five"},
		{100000, "One Lakh"},
		{2550000, "Twenty Five Lakh Fifty Thousand"},
		{10000000, "One Crore"},
		{123456789, "Twelve Crore Thirty Four Lakh Fifty Six Thousand Seven Hundred Eighty Nine"},
	}

	for _, tt := range tests {
		if got := words.Integer(tt.n); got != tt.want {
			t.Errorf("Integer(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRupees(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"118.00", "One Hundred Eighteen Rupees and Zero Paise Only"},
		{"39.30", "Thirty Nine Rupees and Thirty Paise Only"},
		{"0.05", "Zero Rupees and Five Paise Only"},
		{"100.50", "One Hundred Rupees and Fifty Paise Only"},
		{"-12.25", "Minus Twelve Rupees and Twenty Five Paise Only"},
	}

	for _, tt := range tests {
		got := words.Rupees(decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Errorf("Rupees(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
