package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market-dashboard/models"
	"market-dashboard/utils"
)

//go:embed templates/dashboard.html.tmpl
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html.tmpl").
	Funcs(template.FuncMap{"anchor": anchor}).
	ParseFS(templatesFS, "templates/dashboard.html.tmpl"))

// Indicator is a headline figure shown above the tables.
type Indicator struct {
	Label string
	Value string
}

// Page is everything the HTML dashboard shows.
type Page struct {
	Title       string
	GeneratedAt string
	Viewer      string
	ProfileName string
	Range       string
	Indicators  []Indicator
	Sections    []Section
}

// NewPage assembles a page from the sections a reader may see. Headline
// indicators are included only when allowed lets CategoryIndicators through.
func NewPage(title string, sections []Section, summary *models.InsightReport, allowed Filter, now time.Time) Page {
	p := Page{
		Title:       title,
		GeneratedAt: now.Format("02/01/2006 15:04"),
		Sections:    sections,
	}
	if summary != nil && summary.LastPeriod != 0 {
		p.Range = PeriodLabel(models.Monthly, models.Monthly.Key(summary.FirstPeriod)) +
			" a " + PeriodLabel(models.Monthly, models.Monthly.Key(summary.LastPeriod))
		if allowed.Allows(CategoryIndicators) {
			p.Indicators = Indicators(summary)
		}
	}
	return p
}

// Indicators lists the headline figures of a summary report.
func Indicators(r *models.InsightReport) []Indicator {
	return []Indicator{
		{"IVV do último mês", FormatPercent(r.LatestMonthIVV)},
		{"IVV médio " + r.LatestYear, FormatPercent(r.LatestYearIVV)},
		{"Oferta no último mês", FormatUnits(r.OfferUnits) + " un."},
		{"Vendas " + r.LatestYear, FormatUnits(r.SalesUnits) + " un."},
		{"Lançamentos " + r.LatestYear, fmt.Sprintf("%s un. [%d]", FormatUnits(r.LaunchUnits), r.LaunchedProjects)},
		{"VGV " + r.LatestYear, FormatMoney(r.VGV)},
		{"Preço médio vendido", FormatPerM2(r.SalePricePerM2)},
	}
}

// RenderHTML writes p as a self-contained HTML document.
func RenderHTML(w io.Writer, p Page) error {
	if err := dashboardTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("html: render: %w", err)
	}
	return nil
}

// WriteHTML renders p to path, creating intermediate directories.
func WriteHTML(path string, p Page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("html: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("html: create file %q: %w", path, err)
	}
	if err := RenderHTML(f, p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func anchor(category string) string {
	return strings.ReplaceAll(category, ".", "-")
}

// FileName turns a profile or user label into a safe file name stem.
func FileName(label string) string {
	folded := strings.ToLower(utils.Fold(label))
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "dashboard"
	}
	return name
}
