// Package export prints rendered documents to PDF through a headless Chrome.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// ErrBrowserUnavailable reports that no Chrome could be started.
var ErrBrowserUnavailable = errors.New("export: browser unavailable")

const (
	DefaultSettleDelay = 250 * time.Millisecond
	DefaultTimeout     = 30 * time.Second

	// A4 in inches.
	paperWidth  = 8.27
	paperHeight = 11.69
)

var chromeCandidates = []string{
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// Exporter turns a rendered HTML document into another format.
type Exporter interface {
	Export(ctx context.Context, html string) ([]byte, error)
}

// PDFOption configures a PDFExporter.
type PDFOption func(*PDFExporter)

// WithSettleDelay sets how long the page may lay out before printing.
func WithSettleDelay(d time.Duration) PDFOption {
	return func(e *PDFExporter) {
		if d >= 0 {
			e.settle = d
		}
	}
}

// WithTimeout bounds a single export.
func WithTimeout(d time.Duration) PDFOption {
	return func(e *PDFExporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithChromePath pins the browser binary instead of detecting it.
func WithChromePath(path string) PDFOption {
	return func(e *PDFExporter) {
		e.chromePath = strings.TrimSpace(path)
	}
}

// PDFExporter prints documents to A4 PDF with backgrounds and no margins.
// Each export starts its own browser so exporters are safe for concurrent use.
type PDFExporter struct {
	settle     time.Duration
	timeout    time.Duration
	chromePath string
}

// NewPDFExporter builds an exporter. Without WithChromePath the browser is
// looked up through CHROME_PATH and the usual install locations.
func NewPDFExporter(options ...PDFOption) *PDFExporter {
	e := &PDFExporter{settle: DefaultSettleDelay, timeout: DefaultTimeout}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.chromePath == "" {
		e.chromePath = DetectChromePath()
	}
	return e
}

// ChromePath reports the browser binary in use. Empty means chromedp picks one.
func (e *PDFExporter) ChromePath() string {
	return e.chromePath
}

// Export prints html and returns the PDF bytes.
func (e *PDFExporter) Export(ctx context.Context, html string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if e.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Sleep(e.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("export: print pdf: %w", err)
	}
	return pdf, nil
}

// DetectChromePath checks CHROME_PATH, then common install paths. It returns
// an empty string when nothing is found.
func DetectChromePath() string {
	if path := strings.TrimSpace(os.Getenv("CHROME_PATH")); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range chromeCandidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Filename gives the download name for a document, e.g. invoice-INV-003.pdf.
func Filename(kind document.Kind, number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		number = "document"
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, number)
	return fmt.Sprintf("%s-%s.pdf", kind, cleaned)
}
