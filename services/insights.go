package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"market-dashboard/models"
	"market-dashboard/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarizes the latest month and year of d.
func (s *InsightService) Generate(d *Dashboard) *models.InsightReport {
	report := &models.InsightReport{}
	if d == nil {
		return report
	}

	report.TotalRows = d.Rows
	report.MalformedRows = d.Malformed
	report.LastPeriod = d.MaxPeriod
	if months := d.IVV.Months(); len(months) > 0 {
		report.FirstPeriod = months[0]
	}
	if d.MaxPeriod == 0 {
		return report
	}

	year := models.YearKey(d.MaxPeriod)
	report.LatestYear = year
	report.LatestMonthIVV = d.IVV.Monthly[d.MaxPeriod]
	report.LatestYearIVV = d.IVV.Yearly[year]
	report.OfferUnits = d.Series[QueryOffers.ID].Monthly[d.MaxPeriod]
	report.SalesUnits = d.Series[QuerySales.ID].Yearly[year]
	report.LaunchUnits = d.Launches.Units.Yearly[year]
	report.LaunchedProjects = d.Launches.Projects.Yearly[year]
	report.VGV = d.Series[QueryVGV.ID].Yearly[year]
	report.SalePricePerM2 = d.Series[QuerySalePricePerM2.ID].Yearly[year]

	if ct := d.CrossTabs; ct != nil {
		for _, n := range ct.SaleCount.Neighborhoods {
			units := ct.SaleCount.RowTotals[n]
			if units <= 0 {
				continue
			}
			report.TopNeighborhoods = append(report.TopNeighborhoods, models.NeighborhoodSales{
				Name: n, Units: units, IVV: ct.IVV.RowTotals[n],
			})
		}
		sort.SliceStable(report.TopNeighborhoods, func(i, j int) bool {
			return report.TopNeighborhoods[i].Units > report.TopNeighborhoods[j].Units
		})
		if len(report.TopNeighborhoods) > 5 {
			report.TopNeighborhoods = report.TopNeighborhoods[:5]
		}
	}
	return report
}

// Markdown renders the report as a markdown document.
func (s *InsightService) Markdown(r *models.InsightReport) string {
	var b strings.Builder

	b.WriteString("# Mercado imobiliário\n\n")
	fmt.Fprintf(&b, "Linhas lidas: **%d** (%d malformadas, fora dos agregados)\n\n", r.TotalRows, r.MalformedRows)
	if r.LastPeriod == 0 {
		b.WriteString("Nenhum período válido encontrado.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Período: **%s** a **%s**\n\n", periodLabel(r.FirstPeriod), periodLabel(r.LastPeriod))

	fmt.Fprintf(&b, "## Indicadores de %s\n\n", r.LatestYear)
	b.WriteString("| Indicador | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| IVV do último mês | %.1f%% |\n", r.LatestMonthIVV)
	fmt.Fprintf(&b, "| IVV médio do ano | %.1f%% |\n", r.LatestYearIVV)
	fmt.Fprintf(&b, "| Oferta no último mês | %.0f un. |\n", r.OfferUnits)
	fmt.Fprintf(&b, "| Vendas no ano | %.0f un. |\n", r.SalesUnits)
	fmt.Fprintf(&b, "| Lançamentos no ano | %.0f un. [%d empreendimentos] |\n", r.LaunchUnits, r.LaunchedProjects)
	fmt.Fprintf(&b, "| VGV no ano | %s |\n", utils.FormatBRLWhole(r.VGV))
	fmt.Fprintf(&b, "| Preço médio vendido | %s/m² |\n\n", utils.FormatBRLWhole(r.SalePricePerM2))

	b.WriteString("## Bairros com mais vendas\n\n")
	if len(r.TopNeighborhoods) == 0 {
		b.WriteString("Nenhuma venda registrada.\n")
		return b.String()
	}
	b.WriteString("| # | Bairro | Vendas | IVV |\n|---:|---|---:|---:|\n")
	for i, n := range r.TopNeighborhoods {
		fmt.Fprintf(&b, "| %d | %s | %.0f | %.1f%% |\n", i+1, n.Name, n.Units, n.IVV)
	}
	return b.String()
}

// Print writes the report to stdout through glamour, falling back to plain
// markdown when the terminal renderer cannot be built.
func (s *InsightService) Print(r *models.InsightReport) {
	md := s.Markdown(r)
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		s.logger.Warn("[insights] Markdown renderer unavailable: %v", err)
		fmt.Println(md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		s.logger.Warn("[insights] Markdown render failed: %v", err)
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func periodLabel(p int) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("%02d/%d", models.PeriodMonth(p), models.PeriodYear(p))
}
