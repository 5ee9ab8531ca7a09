package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"market-dashboard/auth"
	"market-dashboard/config"
	"market-dashboard/models"
	"market-dashboard/report"
	"market-dashboard/services"
	"market-dashboard/storage"
	"market-dashboard/utils"
)

const (
	formatHTML = "html"
	formatXLSX = "xlsx"
	formatPDF  = "pdf"
	formatCSV  = "csv"
)

const pageTitle = "Mercado imobiliário"

// app carries the configuration shared by the commands.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

// target is one dashboard to render: the sections a profile may see and the
// file name stem of its outputs.
type target struct {
	Name        string
	Viewer      string
	ProfileName string
	Allowed     report.Filter
	Mask        report.Masking
}

func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: a.logger}
}

func (a *app) insights() *services.InsightService {
	return services.NewInsightService(a.logger)
}

func (a *app) openStore(ctx context.Context) (*storage.SQLStore, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return storage.NewSQLStore(ctx, a.cfg.DBDriver, a.cfg.DSN(), a.retry(), a.logger)
}

// readRaw loads raw rows from the spreadsheet or, with --from-db, from the
// database filled by the store command.
func (a *app) readRaw(cmd *cobra.Command) ([]*models.RawRecord, error) {
	fromDB, _ := cmd.Flags().GetBool("from-db")
	if fromDB {
		db, err := a.openStore(cmd.Context())
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.FetchAll()
	}

	input, _ := cmd.Flags().GetString("input")
	var src storage.RecordSource = storage.NewXLSXReader(input, a.logger)
	return src.FetchAll()
}

// dashboard runs the whole pipeline: read, normalize, aggregate, summarize.
func (a *app) dashboard(cmd *cobra.Command) (*services.Dashboard, *models.InsightReport, error) {
	market, err := config.LoadMarket(a.cfg.MarketConfigPath)
	if err != nil {
		return nil, nil, err
	}

	raw, err := a.readRaw(cmd)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("no rows to aggregate")
	}

	rows := services.NewNormalizer(a.logger).Normalize(raw)
	d, err := services.NewEngine(services.NewSpendModel(market), a.logger).Build(rows)
	if err != nil {
		return nil, nil, err
	}
	return d, a.insights().Generate(d), nil
}

// targets resolves --user, --profile and --all-profiles into dashboards to
// render. Without any of them a single unrestricted dashboard is built.
func (a *app) targets(user, profile string, allProfiles bool) ([]target, error) {
	if user == "" && profile == "" && !allProfiles {
		return []target{{
			Name:    "dashboard",
			Allowed: auth.AllCategories(report.Categories()...),
			Mask:    report.Masking{ShowProjects: true, ShowCompanies: true},
		}}, nil
	}

	store, err := auth.LoadStore(a.cfg.ProfilesPath, a.logger)
	if err != nil {
		return nil, err
	}

	forProfile := func(id string) target {
		return target{
			Name:    report.FileName(id),
			Allowed: store.AllowedCategories(id),
			Mask:    maskingFor(store, id),
		}
	}

	switch {
	case user != "":
		grant := store.Authenticate(user)
		if !grant.Granted {
			return nil, fmt.Errorf("access denied for %q", user)
		}
		t := forProfile(grant.Profile)
		t.Name = report.FileName(grant.Email)
		t.Viewer = grant.Name
		t.ProfileName = grant.ProfileName
		return []target{t}, nil
	case profile != "":
		t := forProfile(profile)
		t.ProfileName = profile
		return []target{t}, nil
	}

	var all []target
	for _, id := range store.Profiles() {
		t := forProfile(id)
		t.ProfileName = id
		all = append(all, t)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no profiles in %s", a.cfg.ProfilesPath)
	}
	return all, nil
}

func maskingFor(store *auth.Store, profile string) report.Masking {
	return report.Masking{
		ShowProjects:  store.HasPermission(profile, auth.PermViewProjects),
		ShowCompanies: store.HasPermission(profile, auth.PermViewCompanies),
	}
}

// masking returns the listing mask of profile, or no masking when profile
// is empty.
func (a *app) masking(profile string) (report.Masking, error) {
	if profile == "" {
		return report.Masking{ShowProjects: true, ShowCompanies: true}, nil
	}
	store, err := auth.LoadStore(a.cfg.ProfilesPath, a.logger)
	if err != nil {
		return report.Masking{}, err
	}
	return maskingFor(store, profile), nil
}

func parseFormats(formats []string) (map[string]bool, error) {
	out := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case formatHTML, formatXLSX, formatPDF, formatCSV:
			out[f] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown format %q (want html, xlsx, pdf or csv)", f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return out, nil
}

// render writes every target's dashboard concurrently. Targets share the
// same read-only Dashboard.
func (a *app) render(ctx context.Context, d *services.Dashboard, summary *models.InsightReport,
	targets []target, formats map[string]bool, outDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var pdf *report.PDFRenderer
	if formats[formatPDF] {
		pdf = report.NewPDFRenderer(a.cfg.ChromeBin, a.retry(), a.logger)
	}

	now := time.Now()
	pool := utils.NewWorkerPool(a.cfg.MaxConcurrency)
	for _, t := range targets {
		t := t
		pool.Submit(t.Name, func() error {
			sections := report.BuildSections(d, t.Allowed, t.Mask)
			page := report.NewPage(pageTitle, sections, summary, t.Allowed, now)
			page.Viewer = t.Viewer
			page.ProfileName = t.ProfileName
			a.logger.Info("[render] %s: %d sections", t.Name, len(sections))
			return a.write(ctx, page, formats, filepath.Join(outDir, t.Name), pdf)
		})
	}
	return pool.Wait()
}

func (a *app) write(ctx context.Context, page report.Page, formats map[string]bool, stem string, pdf *report.PDFRenderer) error {
	htmlPath := stem + ".html"
	if formats[formatHTML] || formats[formatPDF] {
		if err := report.WriteHTML(htmlPath, page); err != nil {
			return err
		}
		a.logger.Info("[render] Saved %s", htmlPath)
	}
	if formats[formatPDF] {
		if err := pdf.Render(ctx, htmlPath, stem+".pdf"); err != nil {
			return err
		}
	}
	if formats[formatXLSX] {
		if err := report.WriteXLSX(stem+".xlsx", page); err != nil {
			return err
		}
		a.logger.Info("[render] Saved %s", stem+".xlsx")
	}
	if formats[formatCSV] {
		if err := report.WriteCSV(stem+".csv", page); err != nil {
			return err
		}
		a.logger.Info("[render] Saved %s", stem+".csv")
	}
	return nil
}

// store copies the spreadsheet's raw rows into the database, and optionally
// into a CSV file.
func (a *app) store(ctx context.Context, input, csvPath string) (int, error) {
	raw, err := storage.NewXLSXReader(input, a.logger).FetchAll()
	if err != nil {
		return 0, err
	}

	db, err := a.openStore(ctx)
	if err != nil {
		return 0, err
	}
	writers := []storage.RecordWriter{db}
	if csvPath != "" {
		w, err := storage.NewCSVWriter(csvPath, storage.RawHeader)
		if err != nil {
			_ = db.Close()
			return 0, err
		}
		writers = append(writers, w)
	}

	var firstErr error
	for _, w := range writers {
		if err := w.Write(raw); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return len(raw), nil
}

func printLaunches(w io.Writer, d *services.Dashboard, mask report.Masking) {
	listing := report.LaunchListing(d.Launches.Index, mask)
	if len(listing.Rows) == 0 {
		fmt.Fprintln(w, "Nenhum lançamento encontrado.")
		return
	}
	month := ""
	for _, r := range listing.Rows {
		if r.Label != month {
			month = r.Label
			fmt.Fprintf(w, "\n%s\n", month)
		}
		fmt.Fprintf(w, "  %-40s %-30s %s\n", r.Cells[0], r.Cells[1], r.Cells[2])
	}

	units := report.LaunchTable(d.Launches, models.Yearly, d.MaxPeriod)
	fmt.Fprintln(w)
	for _, r := range units.Rows {
		marker := ""
		if r.Partial {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s: %s\n", r.Label, marker, r.Cells[0])
	}
}
