package services

import (
	"errors"
	"math"
	"testing"

	"market-dashboard/models"
)

func TestAggregateSumRollsUp(t *testing.T) {
	rows := []*models.MarketRecord{
		rec(202101, models.Sold, 4),
		rec(202101, models.SoldLaunchedAndSold, 6),
		rec(202102, models.Sold, 5),
		rec(202104, models.Sold, 7),
		rec(202201, models.Sold, 1),
		rec(202101, models.OfferAvailable, 100),
	}
	s, err := QuerySales.Run(rows)
	if err != nil {
		t.Fatal(err)
	}

	wantMonthly := map[int]float64{202101: 10, 202102: 5, 202104: 7, 202201: 1}
	if len(s.Monthly) != len(wantMonthly) {
		t.Fatalf("monthly = %v; want %v", s.Monthly, wantMonthly)
	}
	for p, want := range wantMonthly {
		assertApprox(t, "monthly "+models.Monthly.Key(p), s.Monthly[p], want)
	}
	assertApprox(t, "2021_1T", s.Quarterly["2021_1T"], 15)
	assertApprox(t, "2021_2T", s.Quarterly["2021_2T"], 7)
	assertApprox(t, "2021", s.Yearly["2021"], 22)
	assertApprox(t, "2022", s.Yearly["2022"], 1)

	if _, ok := s.Monthly[202103]; ok {
		t.Error("month without rows must be absent, not zero")
	}
	if _, ok := s.Quarterly["2021_3T"]; ok {
		t.Error("quarter without rows must be absent")
	}
}

func TestAggregateOfferStyleAveragesStock(t *testing.T) {
	rows := []*models.MarketRecord{
		rec(202101, models.OfferAvailable, 10),
		rec(202102, models.OfferAvailable, 11),
		rec(202103, models.OfferLaunch, 13),
		rec(202104, models.OfferAvailable, 20),
	}
	s, err := QueryOffers.Run(rows)
	if err != nil {
		t.Fatal(err)
	}
	// mean(10, 11, 13) = 11.33
	assertApprox(t, "2021_1T", s.Quarterly["2021_1T"], 11)
	assertApprox(t, "2021_2T", s.Quarterly["2021_2T"], 20)
	// mean(10, 11, 13, 20) = 13.5
	assertApprox(t, "2021", s.Yearly["2021"], 14)
	assertApprox(t, "202103", s.Monthly[202103], 13)
}

func TestAggregateWeightedAverageUsesRawSums(t *testing.T) {
	rows := []*models.MarketRecord{
		withValue(rec(202101, models.Sold, 1), 1_000_000, 100),
		withValue(rec(202102, models.Sold, 1), 600_000, 200),
	}
	s, err := QuerySalePricePerM2.Run(rows)
	if err != nil {
		t.Fatal(err)
	}
	assertApprox(t, "202101", s.Monthly[202101], 10_000)
	assertApprox(t, "202102", s.Monthly[202102], 3_000)

	// 1 600 000 / 300, not the mean of the monthly prices (6 500).
	want := 1_600_000.0 / 300
	assertApprox(t, "2021_1T", s.Quarterly["2021_1T"], want)
	assertApprox(t, "2021", s.Yearly["2021"], want)
}

func TestAggregateWeightedAverageZeroWeight(t *testing.T) {
	rows := []*models.MarketRecord{withValue(rec(202101, models.Sold, 1), 500_000, 0)}
	s, err := QuerySalePricePerM2.Run(rows)
	if err != nil {
		t.Fatal(err)
	}
	if v := s.Monthly[202101]; v != 0 || math.IsNaN(v) {
		t.Errorf("zero-area price = %v; want 0", v)
	}
}

func TestAggregateCount(t *testing.T) {
	rows := []*models.MarketRecord{
		rec(202101, models.Cancelled, 3),
		rec(202101, models.Cancelled, 9),
		rec(202102, models.Cancelled, 1),
	}
	s, err := Aggregate(rows, CancelledStatuses, Metric{Kind: Count}, false)
	if err != nil {
		t.Fatal(err)
	}
	assertApprox(t, "202101", s.Monthly[202101], 2)
	assertApprox(t, "2021_1T", s.Quarterly["2021_1T"], 3)
}

func TestAggregateSkipsInvalidRows(t *testing.T) {
	bad := rec(202101, models.Sold, 1000)
	bad.Valid = false
	rows := []*models.MarketRecord{rec(202101, models.Sold, 2), bad}
	s, err := QuerySales.Run(rows)
	if err != nil {
		t.Fatal(err)
	}
	assertApprox(t, "202101", s.Monthly[202101], 2)
}

func TestAggregateEmptyInput(t *testing.T) {
	s, err := QueryOffers.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Monthly == nil || s.Quarterly == nil || s.Yearly == nil {
		t.Fatal("series maps must be initialized")
	}
	if len(s.Monthly)+len(s.Quarterly)+len(s.Yearly) != 0 {
		t.Errorf("expected empty series, got %+v", s)
	}
}

func TestAggregateRejectsUnknownMetric(t *testing.T) {
	tests := []Metric{
		{Kind: 0},
		{Kind: 42, Field: FieldUnits},
		{Kind: Sum},
		{Kind: Sum, Field: 9},
		{Kind: WeightedAverage, Field: FieldPricedValue},
	}
	for _, m := range tests {
		if _, err := Aggregate(nil, SaleStatuses, m, false); !errors.Is(err, ErrUnknownMetric) {
			t.Errorf("Aggregate(%+v) error = %v; want ErrUnknownMetric", m, err)
		}
	}
}

func TestIVV(t *testing.T) {
	rows := []*models.MarketRecord{
		rec(202101, models.Sold, 10),
		rec(202101, models.OfferAvailable, 100),
		rec(202102, models.Sold, 30),
		rec(202102, models.SoldLaunchedAndSold, 20),
		rec(202102, models.OfferLaunch, 100),
		rec(202103, models.Sold, 5),
		rec(202104, models.OfferAvailable, 50),
	}
	s := IVV(rows, SaleStatuses, OfferStatuses)

	assertApprox(t, "202101", s.Monthly[202101], 10)
	assertApprox(t, "202102", s.Monthly[202102], 50)
	assertApprox(t, "202103", s.Monthly[202103], 0)
	assertApprox(t, "202104", s.Monthly[202104], 0)
	// mean of the monthly indexes, not 65 / 200
	assertApprox(t, "2021_1T", s.Quarterly["2021_1T"], 20)
	assertApprox(t, "2021", s.Yearly["2021"], 15)

	for _, v := range s.Monthly {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("IVV produced %v", v)
		}
	}
}

func TestIVVIgnoresOtherStatuses(t *testing.T) {
	rows := []*models.MarketRecord{rec(202101, models.Cancelled, 10)}
	if s := IVV(rows, SaleStatuses, OfferStatuses); len(s.Monthly) != 0 {
		t.Errorf("IVV monthly = %v; want empty", s.Monthly)
	}
}

func TestDashboardQueryIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, q := range DashboardQueries {
		if seen[q.ID] {
			t.Errorf("duplicate query id %q", q.ID)
		}
		seen[q.ID] = true
		if err := q.Metric.validate(); err != nil {
			t.Errorf("query %s: %v", q.ID, err)
		}
	}
}
