package models

import (
	"sort"
	"strconv"
)

// Series is an aggregate of one metric at the three granularities. Periods
// without data are absent keys, never zeros.
type Series struct {
	Monthly   map[int]float64
	Quarterly map[string]float64
	Yearly    map[string]float64
}

// NewSeries returns an empty Series with initialized maps.
func NewSeries() Series {
	return Series{
		Monthly:   make(map[int]float64),
		Quarterly: make(map[string]float64),
		Yearly:    make(map[string]float64),
	}
}

// Months returns the monthly keys in ascending order.
func (s Series) Months() []int {
	months := make([]int, 0, len(s.Monthly))
	for m := range s.Monthly {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// Quarters returns the quarterly keys in ascending order.
func (s Series) Quarters() []string { return sortedKeys(s.Quarterly) }

// Years returns the yearly keys in ascending order.
func (s Series) Years() []string { return sortedKeys(s.Yearly) }

// Lookup returns the value at key for granularity g; ok is false when the
// period has no data.
func (s Series) Lookup(g Granularity, key string) (v float64, ok bool) {
	switch g {
	case Monthly:
		m, err := strconv.Atoi(key)
		if err != nil {
			return 0, false
		}
		v, ok = s.Monthly[m]
	case Quarterly:
		v, ok = s.Quarterly[key]
	case Yearly:
		v, ok = s.Yearly[key]
	}
	return v, ok
}

// Keys returns the ordered keys of granularity g as strings.
func (s Series) Keys(g Granularity) []string {
	switch g {
	case Monthly:
		months := s.Months()
		keys := make([]string, len(months))
		for i, m := range months {
			keys[i] = Monthly.Key(m)
		}
		return keys
	case Quarterly:
		return s.Quarters()
	default:
		return s.Years()
	}
}

// LaunchIndex lists, per month, the projects first launched that month
// under the first-appearance-per-year rule, in first-seen order.
type LaunchIndex map[int][]ProjectKey

// LaunchCounts holds the number of newly launched projects per period.
type LaunchCounts struct {
	Monthly   map[int]int
	Quarterly map[string]int
	Yearly    map[string]int
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
