package services

import "market-dashboard/models"

// Status filters of the dashboard tables.
var (
	OfferStatuses     = models.NewStatusSet(models.OfferAvailable, models.OfferLaunch)
	SaleStatuses      = models.NewStatusSet(models.Sold, models.SoldLaunchedAndSold)
	LaunchStatuses    = models.NewStatusSet(models.OfferLaunch)
	CancelledStatuses = models.NewStatusSet(models.Cancelled)
	SoldOnlyStatuses  = models.NewStatusSet(models.Sold)
)

// Query is a named Aggregate call.
type Query struct {
	ID         string
	Title      string
	Filter     models.StatusSet
	Metric     Metric
	OfferStyle bool
}

// Run aggregates rows for q.
func (q Query) Run(rows []*models.MarketRecord) (models.Series, error) {
	return Aggregate(rows, q.Filter, q.Metric, q.OfferStyle)
}

var (
	QueryOffers = Query{ID: "offers", Title: "Oferta (unidades)", Filter: OfferStatuses,
		Metric: Metric{Kind: Sum, Field: FieldUnits}, OfferStyle: true}
	QueryOfferArea = Query{ID: "offer_area", Title: "Oferta (m²)", Filter: OfferStatuses,
		Metric: Metric{Kind: Sum, Field: FieldArea}, OfferStyle: true}
	QuerySaleArea = Query{ID: "sale_area", Title: "Vendas (m²)", Filter: SaleStatuses,
		Metric: Metric{Kind: Sum, Field: FieldArea}}
	QuerySales = Query{ID: "sales", Title: "Vendas (unidades)", Filter: SaleStatuses,
		Metric: Metric{Kind: Sum, Field: FieldUnits}}
	QueryLaunchUnits = Query{ID: "launches", Title: "Lançamentos (unidades)", Filter: LaunchStatuses,
		Metric: Metric{Kind: Sum, Field: FieldUnits}}
	QueryVGL = Query{ID: "vgl", Title: "VGL (R$)", Filter: LaunchStatuses,
		Metric: Metric{Kind: Sum, Field: FieldPricedValue}}
	QueryVGV = Query{ID: "vgv", Title: "VGV (R$)", Filter: SaleStatuses,
		Metric: Metric{Kind: Sum, Field: FieldPricedValue}}
	QueryDistratos = Query{ID: "distratos", Title: "Distratos (unidades)", Filter: CancelledStatuses,
		Metric: Metric{Kind: Sum, Field: FieldUnits}}
	QueryOfferPricePerM2 = Query{ID: "offer_price_m2", Title: "Preço médio ofertado (R$/m²)", Filter: OfferStatuses,
		Metric: Metric{Kind: WeightedAverage, Field: FieldPricedValue, Weight: FieldArea}}
	QuerySalePricePerM2 = Query{ID: "sale_price_m2", Title: "Preço médio vendido (R$/m²)", Filter: SaleStatuses,
		Metric: Metric{Kind: WeightedAverage, Field: FieldPricedValue, Weight: FieldArea}}
)

// DashboardQueries are the time-series tables of the dashboard, in display order.
var DashboardQueries = []Query{
	QueryOffers,
	QueryOfferArea,
	QuerySales,
	QuerySaleArea,
	QueryLaunchUnits,
	QueryVGL,
	QueryVGV,
	QueryDistratos,
	QueryOfferPricePerM2,
	QuerySalePricePerM2,
}
