package report

import (
	"market-dashboard/models"
	"market-dashboard/services"
)

// Filter decides which dashboard sections a reader may see.
type Filter interface {
	Allows(category string) bool
}

// Section is a titled group of tables guarded by a permission category
// ("menu.submenu").
type Section struct {
	Category string
	Title    string
	Tables   []Table
}

const (
	categoryIVV        = "residencial.ivv"
	categoryLaunches   = "residencial.lancamentos"
	categorySpendByCat = "crosstabs.gastos_categoria_regiao"

	// CategoryIndicators guards the summary indicators block.
	CategoryIndicators = "insights.indicadores_economicos"
)

// seriesSections binds the time-series queries to their permission
// categories and display formats, in display order.
var seriesSections = []struct {
	category string
	query    services.Query
	format   Format
}{
	{"residencial.oferta", services.QueryOffers, FormatUnits},
	{"residencial.oferta_m2", services.QueryOfferArea, FormatArea},
	{"residencial.venda", services.QuerySales, FormatUnits},
	{"residencial.venda_m2", services.QuerySaleArea, FormatArea},
	{categoryLaunches, services.QueryLaunchUnits, FormatUnits},
	{"residencial.vgl", services.QueryVGL, FormatMoney},
	{"residencial.vgv", services.QueryVGV, FormatMoney},
	{"residencial.distratos", services.QueryDistratos, FormatUnits},
	{"residencial.valor_ponderado_oferta", services.QueryOfferPricePerM2, FormatPerM2},
	{"residencial.valor_ponderado_venda", services.QuerySalePricePerM2, FormatPerM2},
}

// crossTabSections binds the neighborhood pivots to their categories.
var crossTabSections = []struct {
	category string
	title    string
	pick     func(*services.CrossTabs) *services.CrossTab
	format   Format
}{
	{"crosstabs.ivv_por_regiao", "IVV por bairro",
		func(c *services.CrossTabs) *services.CrossTab { return c.IVV }, FormatPercent},
	{"crosstabs.ofertas_por_regiao", "Oferta por bairro (unidades)",
		func(c *services.CrossTabs) *services.CrossTab { return c.OfferCount }, FormatUnits},
	{"crosstabs.vendas_por_regiao", "Vendas por bairro (unidades)",
		func(c *services.CrossTabs) *services.CrossTab { return c.SaleCount }, FormatUnits},
	{"crosstabs.lancamentos_por_regiao", "Lançamentos por bairro (unidades)",
		func(c *services.CrossTabs) *services.CrossTab { return c.LaunchCount }, FormatUnits},
	{"crosstabs.oferta_valor_pond_regiao", "Preço médio ofertado por bairro",
		func(c *services.CrossTabs) *services.CrossTab { return c.OfferWeightedValue }, FormatPerM2},
	{"crosstabs.venda_valor_pond_regiao", "Preço médio vendido por bairro",
		func(c *services.CrossTabs) *services.CrossTab { return c.SaleWeightedValue }, FormatPerM2},
	{"crosstabs.oferta_m2_regiao", "Oferta por bairro (m²)",
		func(c *services.CrossTabs) *services.CrossTab { return c.OfferArea }, FormatArea},
	{"crosstabs.venda_m2_regiao", "Vendas por bairro (m²)",
		func(c *services.CrossTabs) *services.CrossTab { return c.SaleArea }, FormatArea},
	{"crosstabs.gastos_pos_entrega_regiao", "Gastos pós-entrega por bairro",
		func(c *services.CrossTabs) *services.CrossTab { return c.PostDeliverySpend }, FormatMoney},
}

var granularities = []models.Granularity{models.Monthly, models.Quarterly, models.Yearly}

// Categories lists every section category in display order.
func Categories() []string {
	ids := []string{categoryIVV}
	for _, s := range seriesSections {
		ids = append(ids, s.category)
	}
	for _, s := range crossTabSections {
		ids = append(ids, s.category)
	}
	return append(ids, categorySpendByCat, CategoryIndicators)
}

// BuildSections lays out the sections of d that allowed lets through, in
// display order.
func BuildSections(d *services.Dashboard, allowed Filter, mask Masking) []Section {
	var sections []Section
	add := func(category, title string, tables ...Table) {
		if allowed.Allows(category) {
			sections = append(sections, Section{Category: category, Title: title, Tables: tables})
		}
	}

	series := func(title string, s models.Series, format Format) []Table {
		tables := make([]Table, 0, len(granularities))
		for _, g := range granularities {
			tables = append(tables, SeriesTable(title, s, g, d.MaxPeriod, format))
		}
		return tables
	}

	add(categoryIVV, "IVV (%)", series("IVV", d.IVV, FormatPercent)...)
	for _, s := range seriesSections {
		if s.category == categoryLaunches {
			launches := make([]Table, 0, len(granularities)+1)
			for _, g := range granularities {
				launches = append(launches, LaunchTable(d.Launches, g, d.MaxPeriod))
			}
			launches = append(launches, LaunchListing(d.Launches.Index, mask))
			add(categoryLaunches, "Lançamentos", launches...)
			continue
		}
		add(s.category, s.query.Title, series(s.query.Title, d.Series[s.query.ID], s.format)...)
	}

	if d.CrossTabs != nil {
		for _, s := range crossTabSections {
			add(s.category, s.title, CrossTabTable(s.title, s.pick(d.CrossTabs), s.format))
		}
		add(categorySpendByCat, "Gastos pós-entrega por categoria", SpendCategoryTable(d.CrossTabs))
	}
	return sections
}
