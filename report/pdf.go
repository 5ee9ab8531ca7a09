package report

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"market-dashboard/utils"
)

// PDFRenderer prints rendered HTML dashboards to PDF with headless Chrome.
type PDFRenderer struct {
	chromeBin string
	retry     *utils.RetryConfig
	logger    *utils.Logger
	timeout   time.Duration
}

// NewPDFRenderer creates a renderer. An empty chromeBin searches the usual
// Chrome/Chromium install locations.
func NewPDFRenderer(chromeBin string, retry *utils.RetryConfig, logger *utils.Logger) *PDFRenderer {
	return &PDFRenderer{
		chromeBin: findChromeBinary(chromeBin),
		retry:     retry,
		logger:    logger,
		timeout:   60 * time.Second,
	}
}

func (r *PDFRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if r.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(r.chromeBin))
	}
	return opts
}

// Render prints the HTML file at htmlPath to pdfPath in landscape A4.
func (r *PDFRenderer) Render(ctx context.Context, htmlPath, pdfPath string) error {
	target, err := fileURL(htmlPath)
	if err != nil {
		return err
	}
	r.logger.Debug("[pdf] Using browser binary: %q", r.chromeBin)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var pdf []byte
	err = r.retry.DoContext(browserCtx, "pdf "+filepath.Base(pdfPath), func(ctx context.Context) error {
		tabCtx, cancelTab := chromedp.NewContext(ctx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(target),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.ActionFunc(func(ctx context.Context) error {
				buf, _, err := page.PrintToPDF().
					WithPrintBackground(true).
					WithLandscape(true).
					WithPaperWidth(11.69).
					WithPaperHeight(8.27).
					Do(ctx)
				if err != nil {
					return fmt.Errorf("chromedp print: %w", err)
				}
				pdf = buf
				return nil
			}),
		)
	})
	if err != nil {
		return fmt.Errorf("pdf: render %q: %w", htmlPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(pdfPath), 0755); err != nil {
		return fmt.Errorf("pdf: create output dir: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		return fmt.Errorf("pdf: write %q: %w", pdfPath, err)
	}
	r.logger.Info("[pdf] Saved %s (%d bytes)", pdfPath, len(pdf))
	return nil
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("pdf: resolve %q: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
