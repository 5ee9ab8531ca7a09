package services

import (
	"strings"
	"testing"

	"market-dashboard/models"
)

func sampleRows() []*models.MarketRecord {
	bad := rec(202103, models.Sold, 999)
	bad.Period, bad.Valid = 0, false
	return []*models.MarketRecord{
		withValue(rec(202101, models.OfferAvailable, 100), 40_000_000, 8_000),
		withValue(rec(202101, models.Sold, 10), 4_000_000, 800),
		launch(202102, 20, "Residencial Alfa Bloco A", "ACME", "SETOR BUENO"),
		withValue(rec(202102, models.OfferAvailable, 80), 32_000_000, 6_400),
		withValue(at(rec(202102, models.Sold, 20), "JARDIM GUANABARA", "1"), 5_000_000, 1_000),
		withValue(rec(202102, models.Cancelled, 2), 800_000, 160),
		bad,
	}
}

func TestEngineBuild(t *testing.T) {
	d, err := NewEngine(newTestSpend(), newTestLogger()).Build(sampleRows())
	if err != nil {
		t.Fatal(err)
	}

	if d.Rows != 7 || d.Malformed != 1 {
		t.Errorf("rows = %d, malformed = %d; want 7 and 1", d.Rows, d.Malformed)
	}
	if d.MaxPeriod != 202102 {
		t.Errorf("max period = %d; want 202102", d.MaxPeriod)
	}
	for _, q := range DashboardQueries {
		if _, ok := d.Series[q.ID]; !ok {
			t.Errorf("missing series %s", q.ID)
		}
	}

	assertApprox(t, "sales 2021", d.Series[QuerySales.ID].Yearly["2021"], 30)
	assertApprox(t, "distratos", d.Series[QueryDistratos.ID].Monthly[202102], 2)
	// offers: 100 and 80 + 20 launched
	assertApprox(t, "offers 2021_1T", d.Series[QueryOffers.ID].Quarterly["2021_1T"], 100)
	assertApprox(t, "IVV 202101", d.IVV.Monthly[202101], 10)
	assertApprox(t, "IVV 202102", d.IVV.Monthly[202102], 20)
	assertApprox(t, "launch units", d.Launches.Units.Monthly[202102], 20)
	if got := d.Launches.Projects.Monthly[202102]; got != 1 {
		t.Errorf("launched projects = %d; want 1", got)
	}
	assertApprox(t, "grand sales", d.CrossTabs.SaleCount.GrandTotal, 30)
}

func TestInsightReport(t *testing.T) {
	d, err := NewEngine(newTestSpend(), newTestLogger()).Build(sampleRows())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(d)

	if r.FirstPeriod != 202101 || r.LastPeriod != 202102 || r.LatestYear != "2021" {
		t.Errorf("periods = %d..%d (%s)", r.FirstPeriod, r.LastPeriod, r.LatestYear)
	}
	assertApprox(t, "sales", r.SalesUnits, 30)
	assertApprox(t, "VGV", r.VGV, 9_000_000)
	if r.LaunchedProjects != 1 {
		t.Errorf("launched projects = %d; want 1", r.LaunchedProjects)
	}
	if len(r.TopNeighborhoods) != 2 || r.TopNeighborhoods[0].Name != "JARDIM GUANABARA" {
		t.Errorf("top neighborhoods = %+v", r.TopNeighborhoods)
	}

	md := svc.Markdown(r)
	for _, want := range []string{"# Mercado imobiliário", "01/2021", "02/2021", "JARDIM GUANABARA", "R$9.000.000"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestInsightReportWithoutData(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	if r := svc.Generate(nil); r.LastPeriod != 0 {
		t.Errorf("nil dashboard report = %+v", r)
	}

	d, err := NewEngine(newTestSpend(), newTestLogger()).Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	md := svc.Markdown(svc.Generate(d))
	if !strings.Contains(md, "Nenhum período válido") {
		t.Errorf("unexpected markdown:\n%s", md)
	}
}
