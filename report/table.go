package report

import (
	"fmt"
	"sort"
	"strings"

	"market-dashboard/models"
	"market-dashboard/services"
	"market-dashboard/utils"
)

// Row is one table line. Partial marks a quarter or year the data does not
// fully cover yet.
type Row struct {
	Label   string
	Cells   []string
	Partial bool
}

// Table is a rendered grid of formatted values.
type Table struct {
	Title  string
	Header []string
	Rows   []Row
}

// Format renders a metric value.
type Format func(float64) string

// Value formats used by the dashboard tables.
var (
	FormatUnits   Format = func(v float64) string { return utils.FormatNumber(v, 0) }
	FormatPercent Format = func(v float64) string { return utils.FormatNumber(v, 1) + "%" }
	FormatArea    Format = func(v float64) string { return utils.FormatNumber(v, 0) + " m²" }
	FormatMoney   Format = utils.FormatBRLWhole
	FormatPerM2   Format = func(v float64) string { return utils.FormatBRLWhole(v) + "/m²" }
)

var granularityTitles = map[models.Granularity]string{
	models.Monthly:   "Mensal",
	models.Quarterly: "Trimestral",
	models.Yearly:    "Anual",
}

// QuarterPartial reports whether the quarter key ("2021_1T") holds the
// latest period and that period does not close the quarter.
func QuarterPartial(key string, maxPeriod int) bool {
	if maxPeriod == 0 || key != models.QuarterKey(maxPeriod) {
		return false
	}
	return models.PeriodMonth(maxPeriod)%3 != 0
}

// YearPartial reports whether the year key is the latest year and the data
// stops before December.
func YearPartial(key string, maxPeriod int) bool {
	if maxPeriod == 0 || key != models.YearKey(maxPeriod) {
		return false
	}
	return models.PeriodMonth(maxPeriod) != 12
}

func partial(g models.Granularity, key string, maxPeriod int) bool {
	switch g {
	case models.Quarterly:
		return QuarterPartial(key, maxPeriod)
	case models.Yearly:
		return YearPartial(key, maxPeriod)
	}
	return false
}

// PeriodLabel renders a series key for display: "01/2021", "1T 2021", "2021".
func PeriodLabel(g models.Granularity, key string) string {
	switch g {
	case models.Monthly:
		if len(key) == 6 {
			return key[4:] + "/" + key[:4]
		}
	case models.Quarterly:
		if year, q, ok := strings.Cut(key, "_"); ok {
			return q + " " + year
		}
	}
	return key
}

// SeriesTable lays out one granularity of s, one period per row.
func SeriesTable(title string, s models.Series, g models.Granularity, maxPeriod int, format Format) Table {
	t := Table{
		Title:  fmt.Sprintf("%s · %s", title, granularityTitles[g]),
		Header: []string{"Período", "Valor"},
	}
	for _, key := range s.Keys(g) {
		v, _ := s.Lookup(g, key)
		t.Rows = append(t.Rows, Row{
			Label:   PeriodLabel(g, key),
			Cells:   []string{format(v)},
			Partial: partial(g, key, maxPeriod),
		})
	}
	return t
}

// LaunchTable lays out launched units with the count of newly launched
// projects in brackets, "units [projects]".
func LaunchTable(lt services.LaunchTable, g models.Granularity, maxPeriod int) Table {
	t := Table{
		Title:  "Lançamentos · " + granularityTitles[g],
		Header: []string{"Período", "Unidades [empreendimentos]"},
	}
	for _, key := range lt.Units.Keys(g) {
		units, _ := lt.Units.Lookup(g, key)
		t.Rows = append(t.Rows, Row{
			Label:   PeriodLabel(g, key),
			Cells:   []string{fmt.Sprintf("%s [%d]", FormatUnits(units), projectCount(lt.Projects, g, key))},
			Partial: partial(g, key, maxPeriod),
		})
	}
	return t
}

func projectCount(c models.LaunchCounts, g models.Granularity, key string) int {
	switch g {
	case models.Monthly:
		var period int
		if _, err := fmt.Sscanf(key, "%d", &period); err != nil {
			return 0
		}
		return c.Monthly[period]
	case models.Quarterly:
		return c.Quarterly[key]
	default:
		return c.Yearly[key]
	}
}

// Masking options for project listings.
type Masking struct {
	ShowProjects  bool
	ShowCompanies bool
}

// LaunchListing lists the projects launched each month.
func LaunchListing(index models.LaunchIndex, mask Masking) Table {
	t := Table{
		Title:  "Empreendimentos lançados",
		Header: []string{"Mês", "Empreendimento", "Empresa", "Bairro"},
	}
	months := make([]int, 0, len(index))
	for p := range index {
		months = append(months, p)
	}
	sort.Ints(months)

	n := 0
	for _, p := range months {
		for _, key := range index[p] {
			n++
			project := fmt.Sprintf("PROJETO %03d", n)
			if mask.ShowProjects {
				project = key.Identity
			}
			company := "EMPRESA PRIVADA"
			if mask.ShowCompanies {
				company = key.Company
			}
			t.Rows = append(t.Rows, Row{
				Label: PeriodLabel(models.Monthly, models.Monthly.Key(p)),
				Cells: []string{project, company, key.Neighborhood},
			})
		}
	}
	return t
}

// CrossTabTable lays out a neighborhood × room pivot with its totals.
func CrossTabTable(title string, ct *services.CrossTab, format Format) Table {
	t := Table{Title: title, Header: []string{"Bairro"}}
	for _, room := range ct.Rooms {
		t.Header = append(t.Header, roomLabel(room))
	}
	t.Header = append(t.Header, "Total")

	for _, n := range ct.Neighborhoods {
		row := Row{Label: n}
		for _, room := range ct.Rooms {
			v, ok := ct.Cells[n][room]
			if !ok {
				row.Cells = append(row.Cells, "-")
				continue
			}
			row.Cells = append(row.Cells, format(v))
		}
		row.Cells = append(row.Cells, format(ct.RowTotals[n]))
		t.Rows = append(t.Rows, row)
	}

	total := Row{Label: "Total"}
	for _, room := range ct.Rooms {
		total.Cells = append(total.Cells, format(ct.ColumnTotals[room]))
	}
	total.Cells = append(total.Cells, format(ct.GrandTotal))
	t.Rows = append(t.Rows, total)
	return t
}

// SpendCategoryTable lays out post-delivery spend by neighborhood and
// expense category.
func SpendCategoryTable(tabs *services.CrossTabs) Table {
	t := Table{Title: "Gastos pós-entrega por categoria", Header: append([]string{"Bairro"}, tabs.Categories...)}
	t.Header = append(t.Header, "Total")

	for _, n := range tabs.PostDeliverySpend.Neighborhoods {
		parts, ok := tabs.SpendByCategory[n]
		if !ok {
			continue
		}
		row := Row{Label: n}
		for _, c := range tabs.Categories {
			row.Cells = append(row.Cells, FormatMoney(parts[c]))
		}
		row.Cells = append(row.Cells, FormatMoney(tabs.PostDeliverySpend.RowTotals[n]))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func roomLabel(r models.RoomBucket) string {
	if r == models.RoomsFourUp {
		return "4+ quartos"
	}
	if r == "1" {
		return "1 quarto"
	}
	return string(r) + " quartos"
}
