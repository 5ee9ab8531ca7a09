package utils

import (
	"math"
	"testing"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234.56, "R$1.234,56"},
		{0, "R$0,00"},
		{math.NaN(), "R$0,00"},
	}
	for _, tt := range tests {
		if got := FormatBRL(tt.in); got != tt.want {
			t.Errorf("FormatBRL(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBRLWhole(t *testing.T) {
	if got := FormatBRLWhole(350000.4); got != "R$350.000" {
		t.Errorf("FormatBRLWhole = %q; want %q", got, "R$350.000")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{1234.5, 1, "1.234,5"},
		{1234567, 0, "1.234.567"},
		{12, 0, "12"},
		{math.Inf(1), 0, "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.v, tt.decimals); got != tt.want {
			t.Errorf("FormatNumber(%v, %d) = %q; want %q", tt.v, tt.decimals, got, tt.want)
		}
	}
}
