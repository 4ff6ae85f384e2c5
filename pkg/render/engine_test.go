package render_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/render"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
	"github.com/goliatone/go-invoicedoc/pkg/testsupport"
)

var (
	totalPattern = regexp.MustCompile(`data-field="total"[^>]*>([^<]*)<`)
	titlePattern = regexp.MustCompile(`<title>([^<]*)</title>`)
)

func newEngine(t *testing.T, options ...render.Option) *render.Engine {
	t.Helper()

	options = append([]render.Option{render.WithClock(testsupport.FixedClock)}, options...)
	engine, err := render.New(options...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func mustRender(t *testing.T, engine *render.Engine, record document.Record, kind document.Kind, opts render.Options) string {
	t.Helper()

	html, err := engine.Render(testsupport.Context(), record, kind, opts)
	if err != nil {
		t.Fatalf("render %s/%s: %v", kind, opts.Template, err)
	}
	return html
}

func TestEngine_DeterministicAcrossTemplates(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleQuote()

	for _, id := range templates.MustDefaultCatalog().IDs() {
		for _, kind := range document.Kinds() {
			first := mustRender(t, engine, record, kind, render.Options{Template: id})
			second := mustRender(t, engine, record, kind, render.Options{Template: id})
			if first != second {
				t.Fatalf("%s/%s: output is not deterministic", id, kind)
			}
		}
	}
}

func TestEngine_INV003Scenario(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()
	record.Template = "modern"

	html := mustRender(t, engine, record, document.KindInvoice, render.Options{})

	for _, want := range []string{"INV-003", "Design Co", "฿3,200", "Due Date", "Mobile App Dev", "5/11/2567", "sent"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected output to contain %q", want)
		}
	}
	if strings.Contains(html, "Expiry Date") {
		t.Fatalf("invoice output must not contain the quote date label")
	}
	if got := titlePattern.FindStringSubmatch(html); len(got) != 2 || got[1] != "Invoice INV-003" {
		t.Fatalf("unexpected title %v", got)
	}
	if !strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>") {
		t.Fatalf("expected standalone document")
	}
	if !strings.Contains(html, `data-layout="modern"`) {
		t.Fatalf("expected modern layout")
	}
}

func TestEngine_SevenFieldsInEveryLayout(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleQuote()

	for _, id := range render.BuiltinLayouts() {
		for _, kind := range document.Kinds() {
			html := mustRender(t, engine, record, kind, render.Options{Template: id})
			for _, field := range []string{"kind", "number", "client", "date-label", "date", "status", "items", "total"} {
				if !strings.Contains(html, fmt.Sprintf("data-field=%q", field)) {
					t.Fatalf("%s/%s: missing field %q", id, kind, field)
				}
			}
			if got := strings.Count(html, `data-row="item"`); got != len(record.Items) {
				t.Fatalf("%s/%s: expected %d rows, got %d", id, kind, len(record.Items), got)
			}
			for _, item := range record.Items {
				if !strings.Contains(html, item.Description) {
					t.Fatalf("%s/%s: missing item %q", id, kind, item.Description)
				}
			}
			if !strings.Contains(html, "draft") {
				t.Fatalf("%s/%s: missing status", id, kind)
			}
		}
	}
}

func TestEngine_GrandTotalMatchesIndependentSum(t *testing.T) {
	engine := newEngine(t)

	cases := [][]document.LineItem{
		{{Description: "a", Quantity: 1, Rate: 3200}},
		{{Description: "a", Quantity: 2, Rate: 6000}, {Description: "b", Quantity: 1, Rate: 3500}},
		{{Description: "a", Quantity: 3, Rate: 0.1}, {Description: "b", Quantity: 7, Rate: 19.99}},
		{{Description: "a", Quantity: 1, Rate: 1000}, {Description: "discount", Quantity: -1, Rate: 250}},
		{{Description: "a", Quantity: 1.5, Rate: 1234567.25}},
	}

	for i, items := range cases {
		want := 0.0
		for _, item := range items {
			want += item.Quantity * item.Rate
		}
		record := document.Record{Number: fmt.Sprintf("INV-%d", i), ClientName: "Client", Items: items, DueDate: "2024-11-05"}

		for _, id := range render.BuiltinLayouts() {
			html := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: id})
			got := displayedTotal(t, html)
			if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
				t.Fatalf("case %d %s: displayed %v, want %v", i, id, got, want)
			}
		}
	}
}

func TestEngine_EmptyItems(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()
	record.Items = []document.LineItem{}

	for _, id := range render.BuiltinLayouts() {
		html := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: id})
		if got := strings.Count(html, `data-row="item"`); got != 0 {
			t.Fatalf("%s: expected zero rows, got %d", id, got)
		}
		if got := displayedTotalText(t, html); got != "฿0" {
			t.Fatalf("%s: expected ฿0 total, got %q", id, got)
		}
	}
}

func TestEngine_UnknownTemplateEqualsDefault(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()

	want := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "modern"})
	for _, id := range []string{"", "retired-template", "  "} {
		record.Template = id
		if got := mustRender(t, engine, record, document.KindInvoice, render.Options{}); got != want {
			t.Fatalf("template %q: output differs from default", id)
		}
	}

	record.Template = "classic"
	if got := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "nope"}); got != want {
		t.Fatalf("unknown override should fall back to the default, not the record template")
	}
}

func TestEngine_KindSwitchChangesOnlyLabelsAndDate(t *testing.T) {
	engine := newEngine(t)
	formatter := render.NewLocaleFormatter()
	record := testsupport.SampleQuote()
	record.DueDate = "2024-11-05"
	record.ExpiryDate = "2024-11-30"

	replacer := strings.NewReplacer(
		"Expiry Date", "Due Date",
		"EXPIRY DATE", "DUE DATE",
		"Quote", "Invoice",
		"QUOTE", "INVOICE",
		formatter.Date(record.ExpiryDate), formatter.Date(record.DueDate),
	)

	for _, id := range render.BuiltinLayouts() {
		invoice := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: id})
		quote := mustRender(t, engine, record, document.KindQuote, render.Options{Template: id})
		if invoice == quote {
			t.Fatalf("%s: kind did not change the output", id)
		}
		if !strings.Contains(quote, formatter.Date(record.ExpiryDate)) || strings.Contains(quote, formatter.Date(record.DueDate)) {
			t.Fatalf("%s: quote must read the expiry date", id)
		}
		if got := replacer.Replace(quote); got != invoice {
			t.Fatalf("%s: quote differs from invoice beyond kind labels and date", id)
		}
	}
}

func TestEngine_ClassicVersusBold(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()

	classic := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "classic"})
	bold := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "bold"})

	if classic == bold {
		t.Fatalf("expected classic and bold to differ")
	}
	if !strings.Contains(classic, "#1e40af") || !strings.Contains(bold, "#dc2626") {
		t.Fatalf("expected template colour tokens")
	}
	for _, html := range []string{classic, bold} {
		for _, want := range []string{"Design Co", "INV-003"} {
			if !strings.Contains(html, want) {
				t.Fatalf("missing %q", want)
			}
		}
		if got := displayedTotalText(t, html); got != "฿3,200" {
			t.Fatalf("unexpected total %q", got)
		}
	}
}

func TestEngine_MissingItemsFailsExplicitly(t *testing.T) {
	engine := newEngine(t)

	record := testsupport.SampleInvoice()
	record.Items = nil
	html, err := engine.Render(testsupport.Context(), record, document.KindInvoice, render.Options{})
	if err == nil {
		t.Fatalf("expected error for nil items")
	}
	if html != "" {
		t.Fatalf("expected no partial markup, got %d bytes", len(html))
	}
	var fieldErr *document.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "items" {
		t.Fatalf("expected items FieldError, got %v", err)
	}
	if !errors.Is(err, document.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	for _, bad := range []string{"undefined", "NaN"} {
		if strings.Contains(err.Error(), bad) {
			t.Fatalf("error should not mention %q: %v", bad, err)
		}
	}

	if _, err := engine.Render(testsupport.Context(), document.Record{Number: "INV-1"}, document.KindQuote, render.Options{Template: "bold"}); !errors.Is(err, document.ErrMissingField) {
		t.Fatalf("expected zero-value record to fail with ErrMissingField, got %v", err)
	}
}

func TestEngine_InvalidDateAndNonFinite(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()
	record.DueDate = ""
	record.Items = append(record.Items, document.LineItem{Description: "Broken", Quantity: math.Inf(1), Rate: 10})

	html := mustRender(t, engine, record, document.KindInvoice, render.Options{})
	if !strings.Contains(html, render.InvalidDate) {
		t.Fatalf("expected invalid date placeholder")
	}
	if got := displayedTotalText(t, html); got != "฿∞" {
		t.Fatalf("expected ฿∞ total, got %q", got)
	}
	if strings.Contains(html, "undefined") {
		t.Fatalf("unexpected undefined in output")
	}
}

func TestEngine_SelfContainedOutput(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleQuote()

	for _, id := range render.BuiltinLayouts() {
		html := mustRender(t, engine, record, document.KindQuote, render.Options{Template: id})
		lower := strings.ToLower(html)
		for _, banned := range []string{"<link", "<script", "http://", "https://", "src="} {
			if strings.Contains(lower, banned) {
				t.Fatalf("%s: output contains %q", id, banned)
			}
		}
		if !strings.Contains(html, `<meta charset="UTF-8">`) {
			t.Fatalf("%s: missing charset", id)
		}
	}
}

func TestEngine_EscapesRecordText(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()
	record.ClientName = `<script>alert(1)</script>`

	html := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "bold"})
	if strings.Contains(html, "<script>") {
		t.Fatalf("client name must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped client name")
	}
}

func TestEngine_LocaleAndClock(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()
	record.Status = "paid"

	html := mustRender(t, engine, record, document.KindInvoice, render.Options{Locale: "th"})
	for _, want := range []string{"ชำระแล้ว", "วันครบกำหนด", "<title>ใบแจ้งหนี้ INV-003</title>", "15/10/2567"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in Thai output", want)
		}
	}

	stamped := mustRender(t, engine, record, document.KindInvoice, render.Options{
		GeneratedAt: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
	})
	if !strings.Contains(stamped, "2/1/2568") {
		t.Fatalf("expected explicit generation stamp")
	}
}

func TestEngine_VariantPalette(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()

	base := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "modern"})
	printed := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "modern", Variant: "print"})
	if base == printed || !strings.Contains(printed, "#ffffff") {
		t.Fatalf("expected print variant accent")
	}
	if strings.Contains(printed, "#f1f5f9") {
		t.Fatalf("print variant should replace the base accent")
	}
}

func TestEngine_CustomLayoutAndCatalog(t *testing.T) {
	reg, err := templates.NewRegistry([]templates.Config{
		{ID: "modern", PrimaryColor: "#3b82f6", SecondaryColor: "#1e293b", AccentColor: "#f1f5f9"},
		{ID: "minimal", PrimaryColor: "#000000", SecondaryColor: "#111111", AccentColor: "#eeeeee"},
		{ID: "nolayout", PrimaryColor: "#abcdef", SecondaryColor: "#111111", AccentColor: "#eeeeee"},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	base := newEngine(t)
	layouts := render.NewLayoutRegistry()
	layouts.MustRegister(base.Layouts().MustGet(render.LayoutModern))
	layouts.MustRegister(render.NewLayoutFunc("minimal", func(view render.View) (string, error) {
		return fmt.Sprintf(`<p data-layout="minimal" style="color:%s">%s %s %s</p>`, view.Colors.Primary, view.Labels[render.LabelKind], view.Number, view.Total), nil
	}))

	engine := newEngine(t, render.WithTemplates(reg), render.WithLayouts(layouts), render.WithTemplateRenderer(base.Renderer()))

	record := testsupport.SampleInvoice()
	html := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "minimal"})
	if !strings.Contains(html, `<p data-layout="minimal" style="color:#000000">Invoice INV-003 ฿3,200</p>`) {
		t.Fatalf("expected custom layout body, got %s", html)
	}
	if !strings.Contains(html, "<title>Invoice INV-003</title>") {
		t.Fatalf("custom layout should still be wrapped in the envelope")
	}

	fallback := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "nolayout"})
	if !strings.Contains(fallback, `data-layout="modern"`) || !strings.Contains(fallback, "#abcdef") {
		t.Fatalf("entry without layout should use the default layout with its own colours")
	}
}

func TestEngine_RejectsUnknownKindAndCancelledContext(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleInvoice()

	if _, err := engine.Render(testsupport.Context(), record, document.Kind("receipt"), render.Options{}); !errors.Is(err, document.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Render(ctx, record, document.KindInvoice, render.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngine_ConcurrentRenders(t *testing.T) {
	engine := newEngine(t)
	record := testsupport.SampleQuote()

	want := make(map[string]string)
	for _, id := range render.BuiltinLayouts() {
		want[id] = mustRender(t, engine, record, document.KindQuote, render.Options{Template: id})
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := render.BuiltinLayouts()[i%4]
			got, err := engine.Render(context.Background(), record, document.KindQuote, render.Options{Template: id})
			if err != nil {
				t.Errorf("render: %v", err)
				return
			}
			if got != want[id] {
				t.Errorf("%s: concurrent output differs", id)
			}
		}(i)
	}
	wg.Wait()
}

func TestEngine_BrandIsATemplateGlobal(t *testing.T) {
	record := testsupport.SampleInvoice()

	stock := mustRender(t, newEngine(t), record, document.KindInvoice, render.Options{Template: "modern"})
	if !strings.Contains(stock, ">INVOICE APP</h1>") {
		t.Fatalf("expected default brand in header")
	}

	engine := newEngine(t, render.WithBrand(render.Brand{Name: "Ledger Ltd", SupportEmail: "ap@ledger.test"}))
	modern := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "modern"})
	if !strings.Contains(modern, ">Ledger Ltd</h1>") || strings.Contains(modern, "INVOICE APP") {
		t.Fatalf("expected custom brand in modern header")
	}
	classic := mustRender(t, engine, record, document.KindInvoice, render.Options{Template: "classic"})
	if !strings.Contains(classic, "ap@ledger.test") {
		t.Fatalf("expected support email in classic footer")
	}
	if engine.Brand().Name != "Ledger Ltd" {
		t.Fatalf("unexpected brand %+v", engine.Brand())
	}
}

func TestEngine_TemplatesDirOverridesSections(t *testing.T) {
	dir := t.TempDir()
	footerDir := filepath.Join(dir, "templates", "layouts", "modern")
	if err := os.MkdirAll(footerDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	footer := `<footer data-field="custom-footer">{{ brand.name }} {{ view.number }}</footer>`
	if err := os.WriteFile(filepath.Join(footerDir, "footer.tpl"), []byte(footer), 0o600); err != nil {
		t.Fatalf("write footer: %v", err)
	}

	engine := newEngine(t, render.WithTemplatesDir(dir))
	html := mustRender(t, engine, testsupport.SampleInvoice(), document.KindInvoice, render.Options{Template: "modern"})

	if !strings.Contains(html, `<footer data-field="custom-footer">INVOICE APP INV-003</footer>`) {
		t.Fatalf("expected footer from disk:\n%s", html)
	}
	if !strings.Contains(html, ">INVOICE APP</h1>") || !strings.Contains(html, "Design Co") {
		t.Fatalf("expected remaining sections from the embedded templates")
	}

	classic := mustRender(t, engine, testsupport.SampleInvoice(), document.KindInvoice, render.Options{Template: "classic"})
	if strings.Contains(classic, "custom-footer") {
		t.Fatalf("override leaked into another layout")
	}

	if _, err := render.New(render.WithTemplatesDir(filepath.Join(dir, "missing"))); err == nil {
		t.Fatalf("expected error for missing templates dir")
	}
}

func TestEngine_TemplatesFS(t *testing.T) {
	files := fstest.MapFS{}
	err := fs.WalkDir(render.TemplatesFS(), "templates", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(render.TemplatesFS(), name)
		if err != nil {
			return err
		}
		files[name] = &fstest.MapFile{Data: data}
		return nil
	})
	if err != nil {
		t.Fatalf("copy templates: %v", err)
	}
	files["templates/layouts/bold/footer.tpl"] = &fstest.MapFile{Data: []byte(`<footer data-field="fs-footer">{{ view.total }}</footer>`)}

	engine := newEngine(t, render.WithTemplatesFS(files))
	html := mustRender(t, engine, testsupport.SampleInvoice(), document.KindInvoice, render.Options{Template: "bold"})
	if !strings.Contains(html, `<footer data-field="fs-footer">฿3,200</footer>`) {
		t.Fatalf("expected footer from the supplied FS:\n%s", html)
	}
}

func TestEngine_MissingTranslationHandler(t *testing.T) {
	var missing []string
	engine := newEngine(t,
		render.WithTranslator(render.MapTranslator{"es": {"invoice.title": "Factura"}}),
		render.WithMissingTranslationHandler(func(_ string, key string, _ []any, err error) string {
			if !errors.Is(err, render.ErrMissingTranslation) {
				t.Errorf("%s: unexpected error %v", key, err)
			}
			missing = append(missing, key)
			return "?" + key
		}),
	)

	view, err := engine.View(testsupport.SampleInvoice(), document.KindInvoice, render.Options{Locale: "es"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Labels[render.LabelKind] != "Factura" {
		t.Fatalf("expected translated kind, got %q", view.Labels[render.LabelKind])
	}
	if view.Labels[render.LabelDate] != "?invoice.date" || view.Labels["billTo"] != "?label.billTo" {
		t.Fatalf("expected handler output for missing keys, got %v", view.Labels)
	}
	if len(missing) != len(render.LabelKeys())-1 {
		t.Fatalf("expected every key but the title reported, got %d", len(missing))
	}

	english, err := engine.View(testsupport.SampleInvoice(), document.KindInvoice, render.Options{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if english.Labels["billTo"] != "Bill To" {
		t.Fatalf("expected handler skipped without locale, got %q", english.Labels["billTo"])
	}
}

func displayedTotalText(t *testing.T, html string) string {
	t.Helper()

	match := totalPattern.FindStringSubmatch(html)
	if len(match) != 2 {
		t.Fatalf("total field not found")
	}
	return strings.TrimSpace(match[1])
}

func displayedTotal(t *testing.T, html string) float64 {
	t.Helper()

	text := displayedTotalText(t, html)
	text = strings.TrimPrefix(text, render.DefaultCurrencyGlyph)
	text = strings.ReplaceAll(text, ",", "")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		t.Fatalf("parse total %q: %v", text, err)
	}
	return value
}
