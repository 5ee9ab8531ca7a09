package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"market-dashboard/models"
)

// ErrUnknownMetric is returned when a Metric names a kind or field the
// aggregator does not implement. It signals a caller bug, not bad data.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricKind selects how rows of one month are combined.
type MetricKind int

const (
	// Sum adds Field over the rows.
	Sum MetricKind = iota + 1
	// Count counts the rows.
	Count
	// WeightedAverage divides the sum of Field by the sum of Weight.
	WeightedAverage
)

// Field is a numeric column of MarketRecord.
type Field int

const (
	FieldUnits Field = iota + 1
	FieldPricedValue
	FieldArea
)

func (f Field) valid() bool { return f >= FieldUnits && f <= FieldArea }

func (f Field) of(r *models.MarketRecord) float64 {
	switch f {
	case FieldUnits:
		return r.Units
	case FieldPricedValue:
		return r.PricedValue
	case FieldArea:
		return r.Area
	}
	return 0
}

// Metric describes what to aggregate.
type Metric struct {
	Kind   MetricKind
	Field  Field
	Weight Field // WeightedAverage only
}

func (m Metric) validate() error {
	switch m.Kind {
	case Sum:
		if !m.Field.valid() {
			return fmt.Errorf("%w: sum of field %d", ErrUnknownMetric, m.Field)
		}
	case Count:
	case WeightedAverage:
		if !m.Field.valid() || !m.Weight.valid() {
			return fmt.Errorf("%w: weighted average of field %d by %d", ErrUnknownMetric, m.Field, m.Weight)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownMetric, m.Kind)
	}
	return nil
}

// accumulator keeps the raw sums behind one period's value.
type accumulator struct {
	num  float64
	den  float64
	rows int
}

func (a *accumulator) add(b *accumulator) {
	a.num += b.num
	a.den += b.den
	a.rows += b.rows
}

// Aggregate computes metric over the valid rows whose status is in filter.
//
// Monthly values group rows by period. Quarterly and yearly values are rolled
// up from the months they contain:
//   - Sum and Count add the monthly values, or, when offerStyle is set,
//     take their mean rounded to the nearest integer (a standing stock level
//     rather than a flow);
//   - WeightedAverage divides the summed numerators by the summed weights of
//     all contained months; it never averages monthly ratios.
//
// A zero weight yields 0. Periods without rows are absent from the result.
func Aggregate(rows []*models.MarketRecord, filter models.StatusSet, metric Metric, offerStyle bool) (models.Series, error) {
	if err := metric.validate(); err != nil {
		return models.Series{}, err
	}

	months := monthlyAccumulators(rows, filter, metric)
	periods := sortedPeriods(months)

	out := models.NewSeries()
	for p, acc := range months {
		out.Monthly[p] = metric.value(acc)
	}

	for _, g := range []models.Granularity{models.Quarterly, models.Yearly} {
		target := out.Quarterly
		if g == models.Yearly {
			target = out.Yearly
		}

		buckets := make(map[string]*accumulator)
		values := make(map[string][]float64)
		for _, p := range periods {
			acc := months[p]
			key := g.Key(p)
			b, ok := buckets[key]
			if !ok {
				b = &accumulator{}
				buckets[key] = b
			}
			b.add(acc)
			values[key] = append(values[key], out.Monthly[p])
		}

		for key, b := range buckets {
			switch {
			case metric.Kind == WeightedAverage:
				target[key] = metric.value(b)
			case offerStyle:
				target[key] = math.Round(mean(values[key]))
			default:
				target[key] = sum(values[key])
			}
		}
	}
	return out, nil
}

func monthlyAccumulators(rows []*models.MarketRecord, filter models.StatusSet, metric Metric) map[int]*accumulator {
	months := make(map[int]*accumulator)
	for _, r := range rows {
		if !r.Valid || !filter.Contains(r.Status) {
			continue
		}
		acc, ok := months[r.Period]
		if !ok {
			acc = &accumulator{}
			months[r.Period] = acc
		}
		acc.rows++
		switch metric.Kind {
		case Sum:
			acc.num += metric.Field.of(r)
		case WeightedAverage:
			acc.num += metric.Field.of(r)
			acc.den += metric.Weight.of(r)
		}
	}
	return months
}

func (m Metric) value(acc *accumulator) float64 {
	switch m.Kind {
	case Count:
		return float64(acc.rows)
	case WeightedAverage:
		return ratio(acc.num, acc.den)
	default:
		return acc.num
	}
}

// IVV computes the sales-velocity index (sales/offers × 100, in units).
// Monthly values come from that month's sums; quarterly and yearly values are
// the mean of the monthly indexes they contain, not a ratio of summed sales
// and offers. A month with sales but no offers has an index of 0.
func IVV(rows []*models.MarketRecord, sales, offers models.StatusSet) models.Series {
	type pair struct{ sales, offers float64 }
	months := make(map[int]*pair)
	for _, r := range rows {
		if !r.Valid {
			continue
		}
		isSale, isOffer := sales.Contains(r.Status), offers.Contains(r.Status)
		if !isSale && !isOffer {
			continue
		}
		p, ok := months[r.Period]
		if !ok {
			p = &pair{}
			months[r.Period] = p
		}
		if isSale {
			p.sales += r.Units
		}
		if isOffer {
			p.offers += r.Units
		}
	}

	out := models.NewSeries()
	quarters := make(map[string][]float64)
	years := make(map[string][]float64)
	for _, period := range sortedPeriods(months) {
		p := months[period]
		v := ratio(p.sales, p.offers) * 100
		out.Monthly[period] = v
		quarters[models.QuarterKey(period)] = append(quarters[models.QuarterKey(period)], v)
		years[models.YearKey(period)] = append(years[models.YearKey(period)], v)
	}
	for k, vs := range quarters {
		out.Quarterly[k] = mean(vs)
	}
	for k, vs := range years {
		out.Yearly[k] = mean(vs)
	}
	return out
}

// sortedPeriods fixes the summation order so roll-ups are reproducible.
func sortedPeriods[V any](m map[int]V) []int {
	periods := make([]int, 0, len(m))
	for p := range m {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}

// ratio divides a by b, returning 0 instead of NaN or Inf.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func sum(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return sum(vs) / float64(len(vs))
}
