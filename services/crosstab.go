package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"market-dashboard/models"
	"market-dashboard/utils"
)

// CrossTab is a neighborhood × room pivot of one metric. Cells, row totals,
// column totals and the grand total are each derived from their own raw
// sums, never by adding up derived cell values.
type CrossTab struct {
	Cells        map[string]map[models.RoomBucket]float64
	RowTotals    map[string]float64
	ColumnTotals map[models.RoomBucket]float64
	GrandTotal   float64

	Neighborhoods []string
	Rooms         []models.RoomBucket
}

// CrossTabs are the pivots of the neighborhood section.
type CrossTabs struct {
	IVV                *CrossTab
	OfferCount         *CrossTab
	SaleCount          *CrossTab
	LaunchCount        *CrossTab
	OfferWeightedValue *CrossTab // R$/m²
	SaleWeightedValue  *CrossTab // R$/m²
	OfferArea          *CrossTab // m²
	SaleArea           *CrossTab // m²
	PostDeliverySpend  *CrossTab // R$

	// SpendByCategory maps neighborhood → expense category → R$.
	SpendByCategory map[string]map[string]float64
	Categories      []string
}

// cellSums are the raw sums behind one cross-tab position.
type cellSums struct {
	offerUnits  float64
	saleUnits   float64
	launchUnits float64
	offerValue  float64
	offerArea   float64
	saleValue   float64
	saleArea    float64
	soldValue   decimal.Decimal
	spend       decimal.Decimal
}

// CrossTabBuilder pivots normalized rows by neighborhood and room count.
type CrossTabBuilder struct {
	spend  *SpendModel
	logger *utils.Logger
}

// NewCrossTabBuilder creates a builder that prices post-delivery spend with spend.
func NewCrossTabBuilder(spend *SpendModel, logger *utils.Logger) *CrossTabBuilder {
	return &CrossTabBuilder{spend: spend, logger: logger}
}

// Build computes every cross-tab from rows. Rows without a room count are
// left out of the room columns but still count in their neighborhood's row
// total and in the grand total.
func (b *CrossTabBuilder) Build(rows []*models.MarketRecord) *CrossTabs {
	cells := make(map[string]map[models.RoomBucket]*cellSums)
	byRow := make(map[string]*cellSums)
	byCol := make(map[models.RoomBucket]*cellSums)
	grand := newCellSums()

	for _, r := range rows {
		if !r.Valid || r.Status == models.StatusUnknown {
			continue
		}
		targets := []*cellSums{grand, getSums(byRow, r.Neighborhood)}
		if r.Rooms != models.RoomsUnknown {
			row, ok := cells[r.Neighborhood]
			if !ok {
				row = make(map[models.RoomBucket]*cellSums)
				cells[r.Neighborhood] = row
			}
			targets = append(targets, getSums(row, r.Rooms), getSums(byCol, r.Rooms))
		}
		for _, t := range targets {
			b.addRow(t, r)
		}
	}

	neighborhoods := make([]string, 0, len(byRow))
	for n := range byRow {
		neighborhoods = append(neighborhoods, n)
	}
	sort.Strings(neighborhoods)
	rooms := make([]models.RoomBucket, 0, len(byCol))
	for room := range byCol {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })

	derive := func(f func(*cellSums) float64) *CrossTab {
		ct := &CrossTab{
			Cells:         make(map[string]map[models.RoomBucket]float64, len(cells)),
			RowTotals:     make(map[string]float64, len(byRow)),
			ColumnTotals:  make(map[models.RoomBucket]float64, len(byCol)),
			GrandTotal:    f(grand),
			Neighborhoods: neighborhoods,
			Rooms:         rooms,
		}
		for n, row := range cells {
			ct.Cells[n] = make(map[models.RoomBucket]float64, len(row))
			for room, s := range row {
				ct.Cells[n][room] = f(s)
			}
		}
		for n, s := range byRow {
			ct.RowTotals[n] = f(s)
		}
		for room, s := range byCol {
			ct.ColumnTotals[room] = f(s)
		}
		return ct
	}

	tabs := &CrossTabs{
		IVV:                derive(func(s *cellSums) float64 { return ratio(s.saleUnits, s.offerUnits) * 100 }),
		OfferCount:         derive(func(s *cellSums) float64 { return s.offerUnits }),
		SaleCount:          derive(func(s *cellSums) float64 { return s.saleUnits }),
		LaunchCount:        derive(func(s *cellSums) float64 { return s.launchUnits }),
		OfferWeightedValue: derive(func(s *cellSums) float64 { return ratio(s.offerValue, s.offerArea) }),
		SaleWeightedValue:  derive(func(s *cellSums) float64 { return ratio(s.saleValue, s.saleArea) }),
		OfferArea:          derive(func(s *cellSums) float64 { return s.offerArea }),
		SaleArea:           derive(func(s *cellSums) float64 { return s.saleArea }),
		PostDeliverySpend:  derive(func(s *cellSums) float64 { return s.spend.InexactFloat64() }),
		SpendByCategory:    make(map[string]map[string]float64, len(byRow)),
		Categories:         b.spend.Categories(),
	}

	for n, s := range byRow {
		if s.soldValue.IsZero() {
			continue
		}
		parts := b.spend.ByCategory(n, s.soldValue)
		tabs.SpendByCategory[n] = make(map[string]float64, len(parts))
		for name, v := range parts {
			tabs.SpendByCategory[n][name] = v.InexactFloat64()
		}
	}

	b.logger.Debug("[crosstab] Built cross-tabs for %d neighborhoods × %d room buckets",
		len(neighborhoods), len(rooms))
	return tabs
}

func newCellSums() *cellSums {
	return &cellSums{soldValue: decimal.Zero, spend: decimal.Zero}
}

func getSums[K comparable](m map[K]*cellSums, k K) *cellSums {
	s, ok := m[k]
	if !ok {
		s = newCellSums()
		m[k] = s
	}
	return s
}

func (b *CrossTabBuilder) addRow(s *cellSums, r *models.MarketRecord) {
	if OfferStatuses.Contains(r.Status) {
		s.offerUnits += r.Units
		s.offerValue += r.PricedValue
		s.offerArea += r.Area
	}
	if LaunchStatuses.Contains(r.Status) {
		s.launchUnits += r.Units
	}
	if SaleStatuses.Contains(r.Status) {
		s.saleUnits += r.Units
		s.saleValue += r.PricedValue
		s.saleArea += r.Area
	}
	if SoldOnlyStatuses.Contains(r.Status) {
		v := decimal.NewFromFloat(r.PricedValue)
		s.soldValue = s.soldValue.Add(v)
		s.spend = s.spend.Add(b.spend.Spend(r.Neighborhood, v))
	}
}
