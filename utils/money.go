package utils

import (
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatBRL renders v as Brazilian reais, e.g. "R$1.234,56".
func FormatBRL(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return money.New(int64(math.Round(v*100)), money.BRL).Display()
}

// FormatBRLWhole renders v as reais without cents, e.g. "R$1.235".
func FormatBRLWhole(v float64) string {
	s := FormatBRL(math.Round(v))
	if n := len(s); n > 3 && s[n-3] == ',' {
		return s[:n-3]
	}
	return s
}

// FormatNumber renders v with Brazilian digit grouping and the given number
// of decimals, e.g. FormatNumber(1234.5, 1) = "1.234,5".
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
}
