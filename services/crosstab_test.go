package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"market-dashboard/models"
)

func at(r *models.MarketRecord, neighborhood string, rooms models.RoomBucket) *models.MarketRecord {
	r.Neighborhood = neighborhood
	r.Rooms = rooms
	return r
}

func buildCrossTabs(rows []*models.MarketRecord) *CrossTabs {
	return NewCrossTabBuilder(newTestSpend(), newTestLogger()).Build(rows)
}

func TestCrossTabIVVTotalsUseRawSums(t *testing.T) {
	rows := []*models.MarketRecord{
		at(rec(202101, models.Sold, 10), "SETOR BUENO", "2"),
		at(rec(202101, models.OfferAvailable, 100), "SETOR BUENO", "2"),
		at(rec(202101, models.Sold, 30), "SETOR BUENO", "3"),
		at(rec(202101, models.OfferAvailable, 50), "SETOR BUENO", "3"),
		at(rec(202101, models.Sold, 5), "SETOR OESTE", "2"),
	}
	ivv := buildCrossTabs(rows).IVV

	assertApprox(t, "cell 2", ivv.Cells["SETOR BUENO"]["2"], 10)
	assertApprox(t, "cell 3", ivv.Cells["SETOR BUENO"]["3"], 60)
	// 40 / 150, not the mean of 10 and 60
	assertApprox(t, "row total", ivv.RowTotals["SETOR BUENO"], 40.0/150*100)
	assertApprox(t, "column 2", ivv.ColumnTotals["2"], 15.0/100*100)
	assertApprox(t, "grand total", ivv.GrandTotal, 45.0/150*100)
	// sales without offers
	assertApprox(t, "no offers", ivv.Cells["SETOR OESTE"]["2"], 0)
	assertApprox(t, "no offers row", ivv.RowTotals["SETOR OESTE"], 0)
}

func TestCrossTabUnknownRoomsOnlyInTotals(t *testing.T) {
	rows := []*models.MarketRecord{
		at(rec(202101, models.Sold, 4), "SETOR BUENO", "1"),
		at(rec(202101, models.Sold, 6), "SETOR BUENO", models.RoomsUnknown),
	}
	sales := buildCrossTabs(rows).SaleCount

	if _, ok := sales.Cells["SETOR BUENO"][models.RoomsUnknown]; ok {
		t.Error("unknown rooms must not have a cell")
	}
	if _, ok := sales.ColumnTotals[models.RoomsUnknown]; ok {
		t.Error("unknown rooms must not have a column")
	}
	for _, r := range sales.Rooms {
		if r == models.RoomsUnknown {
			t.Error("unknown rooms listed as a column")
		}
	}
	assertApprox(t, "cell", sales.Cells["SETOR BUENO"]["1"], 4)
	assertApprox(t, "row total", sales.RowTotals["SETOR BUENO"], 10)
	assertApprox(t, "column total", sales.ColumnTotals["1"], 4)
	assertApprox(t, "grand total", sales.GrandTotal, 10)
}

func TestCrossTabAreaTotalsAreNotSumsOfRoundedCells(t *testing.T) {
	rows := []*models.MarketRecord{
		at(withValue(rec(202101, models.Sold, 1), 100_000, 10.4), "SETOR BUENO", "1"),
		at(withValue(rec(202101, models.Sold, 1), 100_000, 10.4), "SETOR BUENO", "2"),
		at(withValue(rec(202101, models.Sold, 1), 100_000, 10.4), "SETOR BUENO", "3"),
	}
	area := buildCrossTabs(rows).SaleArea
	assertApprox(t, "cell", area.Cells["SETOR BUENO"]["2"], 10.4)
	assertApprox(t, "row total", area.RowTotals["SETOR BUENO"], 31.2)
	assertApprox(t, "grand total", area.GrandTotal, 31.2)
}

func TestCrossTabWeightedValue(t *testing.T) {
	rows := []*models.MarketRecord{
		at(withValue(rec(202101, models.Sold, 1), 1_000_000, 100), "SETOR BUENO", "2"),
		at(withValue(rec(202102, models.Sold, 1), 600_000, 200), "SETOR BUENO", "3"),
		at(withValue(rec(202102, models.OfferAvailable, 1), 400_000, 0), "SETOR BUENO", "3"),
	}
	tabs := buildCrossTabs(rows)
	assertApprox(t, "sale cell", tabs.SaleWeightedValue.Cells["SETOR BUENO"]["2"], 10_000)
	assertApprox(t, "sale row", tabs.SaleWeightedValue.RowTotals["SETOR BUENO"], 1_600_000.0/300)
	assertApprox(t, "offer without area", tabs.OfferWeightedValue.Cells["SETOR BUENO"]["3"], 0)
}

func TestCrossTabPostDeliverySpend(t *testing.T) {
	rows := []*models.MarketRecord{
		at(withValue(rec(202101, models.Sold, 1), 1_000_000, 80), "JARDIM GUANABARA", "2"),
	}
	tabs := buildCrossTabs(rows)

	assertApprox(t, "spend", tabs.PostDeliverySpend.RowTotals["JARDIM GUANABARA"], 100_000)
	assertApprox(t, "spend cell", tabs.PostDeliverySpend.Cells["JARDIM GUANABARA"]["2"], 100_000)

	parts := tabs.SpendByCategory["JARDIM GUANABARA"]
	if len(parts) != len(tabs.Categories) {
		t.Fatalf("categories = %d; want %d", len(parts), len(tabs.Categories))
	}
	assertApprox(t, "móveis planejados", parts["Móveis planejados"], 25_000)
	var total float64
	for _, v := range parts {
		total += v
	}
	assertApprox(t, "category sum", total, 100_000)
}

func TestCrossTabSpendMixesTiersPerRow(t *testing.T) {
	rows := []*models.MarketRecord{
		at(withValue(rec(202101, models.Sold, 1), 1_000_000, 80), "JARDIM GUANABARA", "2"),
		at(withValue(rec(202101, models.Sold, 1), 1_000_000, 80), "SETOR BUENO", "2"),
		at(withValue(rec(202101, models.SoldLaunchedAndSold, 1), 5_000_000, 80), "SETOR BUENO", "2"),
	}
	tabs := buildCrossTabs(rows)

	assertApprox(t, "popular", tabs.PostDeliverySpend.RowTotals["JARDIM GUANABARA"], 100_000)
	assertApprox(t, "high", tabs.PostDeliverySpend.RowTotals["SETOR BUENO"], 250_000)
	assertApprox(t, "column", tabs.PostDeliverySpend.ColumnTotals["2"], 350_000)
	assertApprox(t, "grand total", tabs.PostDeliverySpend.GrandTotal, 350_000)
	// launched-and-sold rows still count as sales
	assertApprox(t, "sales", tabs.SaleCount.GrandTotal, 3)
}

func TestCrossTabSkipsInvalidRows(t *testing.T) {
	bad := at(rec(202101, models.Sold, 50), "SETOR BUENO", "2")
	bad.Valid = false
	tabs := buildCrossTabs([]*models.MarketRecord{bad})
	if len(tabs.SaleCount.Neighborhoods) != 0 || tabs.SaleCount.GrandTotal != 0 {
		t.Errorf("invalid row aggregated: %+v", tabs.SaleCount)
	}
}

func TestCrossTabOrdering(t *testing.T) {
	rows := []*models.MarketRecord{
		at(rec(202101, models.OfferAvailable, 1), "SETOR OESTE", models.RoomsFourUp),
		at(rec(202101, models.OfferAvailable, 1), "SETOR BUENO", "1"),
		at(rec(202101, models.OfferAvailable, 1), "SETOR BUENO", "3"),
	}
	ct := buildCrossTabs(rows).OfferCount
	if len(ct.Neighborhoods) != 2 || ct.Neighborhoods[0] != "SETOR BUENO" {
		t.Errorf("neighborhoods = %v", ct.Neighborhoods)
	}
	want := []models.RoomBucket{"1", "3", models.RoomsFourUp}
	if len(ct.Rooms) != len(want) {
		t.Fatalf("rooms = %v; want %v", ct.Rooms, want)
	}
	for i := range want {
		if ct.Rooms[i] != want[i] {
			t.Errorf("rooms = %v; want %v", ct.Rooms, want)
		}
	}
}

func TestSpendModel(t *testing.T) {
	s := newTestSpend()
	value := decimal.NewFromInt(1_000_000)

	tests := []struct {
		neighborhood string
		want         int64
	}{
		{"Setor Bueno", 250_000},
		{"SETOR COIMBRA", 150_000},
		{"Jardim Guanabara", 100_000},
		{"Bairro Desconhecido", 150_000},
	}
	for _, tt := range tests {
		got := s.Spend(tt.neighborhood, value)
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("Spend(%q) = %s; want %d", tt.neighborhood, got, tt.want)
		}
		total := decimal.Zero
		for _, part := range s.ByCategory(tt.neighborhood, value) {
			total = total.Add(part)
		}
		if !total.Equal(got) {
			t.Errorf("ByCategory(%q) sums to %s; want %s", tt.neighborhood, total, got)
		}
	}
}
