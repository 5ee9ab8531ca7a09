package models

import (
	"fmt"
	"strings"
)

// Granularity is the time bucket of an aggregate.
type Granularity int

const (
	Monthly Granularity = iota
	Quarterly
	Yearly
)

func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown granularity %d", g))
	}
}

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "monthly", "month", "mensal":
		return Monthly, nil
	case "quarterly", "quarter", "trimestral":
		return Quarterly, nil
	case "yearly", "year", "anual":
		return Yearly, nil
	default:
		return Monthly, fmt.Errorf("unknown granularity %s", s)
	}
}

// ValidPeriod reports whether p is a YYYYMM period with a month in 1..12.
func ValidPeriod(p int) bool {
	return p >= 100001 && p <= 999912 && p%100 >= 1 && p%100 <= 12
}

// PeriodYear returns the year of a YYYYMM period.
func PeriodYear(p int) int { return p / 100 }

// PeriodMonth returns the month of a YYYYMM period.
func PeriodMonth(p int) int { return p % 100 }

// QuarterOf maps a month to its quarter: 1-3→1, 4-6→2, 7-9→3, 10-12→4.
// It returns 0 for an invalid month.
func QuarterOf(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return (month-1)/3 + 1
}

// QuarterLabel is the "{q}T" label of a month, or NotAvailable.
func QuarterLabel(month int) string {
	q := QuarterOf(month)
	if q == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%dT", q)
}

// QuarterKey is the quarterly series key of a period: "{year}_{q}T".
func QuarterKey(p int) string {
	return fmt.Sprintf("%d_%dT", PeriodYear(p), QuarterOf(PeriodMonth(p)))
}

// YearKey is the yearly series key of a period: "{year}".
func YearKey(p int) string {
	return fmt.Sprintf("%d", PeriodYear(p))
}

// Key returns the series key of period p at granularity g.
func (g Granularity) Key(p int) string {
	switch g {
	case Monthly:
		return fmt.Sprintf("%d", p)
	case Quarterly:
		return QuarterKey(p)
	case Yearly:
		return YearKey(p)
	default:
		panic(fmt.Sprintf("unknown granularity %d", g))
	}
}
