package render_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestResolveLabels_KindVocabulary(t *testing.T) {
	invoice := render.ResolveLabels(document.KindInvoice, "", nil, nil)
	quote := render.ResolveLabels(document.KindQuote, "", nil, nil)

	if invoice[render.LabelKind] != "Invoice" || invoice[render.LabelDate] != "Due Date" {
		t.Fatalf("unexpected invoice labels: %v", invoice)
	}
	if quote[render.LabelKind] != "Quote" || quote[render.LabelDate] != "Expiry Date" {
		t.Fatalf("unexpected quote labels: %v", quote)
	}
	for _, key := range render.LabelKeys() {
		if invoice[key] == "" {
			t.Fatalf("label %q is empty", key)
		}
		if key != render.LabelKind && key != render.LabelDate && invoice[key] != quote[key] {
			t.Fatalf("label %q differs between kinds: %q vs %q", key, invoice[key], quote[key])
		}
	}
}

func TestResolveLabels_UsesTranslatorAndFallbacks(t *testing.T) {
	labels := render.ResolveLabels(document.KindInvoice, "es", stubTranslator{
		"invoice.title": "Factura",
		"label.billTo":  "Facturar a",
	}, nil)

	if labels[render.LabelKind] != "Factura" || labels["billTo"] != "Facturar a" {
		t.Fatalf("expected translated labels, got %v", labels)
	}
	if labels[render.LabelDate] != "Due Date" {
		t.Fatalf("expected English fallback for missing key, got %q", labels[render.LabelDate])
	}

	var missing []string
	render.ResolveLabels(document.KindQuote, "es", stubTranslator{}, func(_ string, key string, _ []any, _ error) string {
		missing = append(missing, key)
		return key
	})
	if len(missing) != len(render.LabelKeys()) {
		t.Fatalf("expected every key reported missing, got %d", len(missing))
	}
}

func TestMapTranslator_RegionalFallback(t *testing.T) {
	tr := render.MapTranslator{
		"th": {"status.paid": "ชำระแล้ว", "notify.heading": "แจ้งเตือน%sใหม่"},
	}

	if got, err := tr.Translate("th-TH", "status.paid"); err != nil || got != "ชำระแล้ว" {
		t.Fatalf("regional fallback: %q %v", got, err)
	}
	if got, _ := tr.Translate("th_th", "notify.heading", "ใบแจ้งหนี้"); got != "แจ้งเตือนใบแจ้งหนี้ใหม่" {
		t.Fatalf("formatted message: %q", got)
	}
	if _, err := tr.Translate("th", "status.unknown"); !errors.Is(err, render.ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
	if _, err := tr.Translate("", "status.paid"); err == nil {
		t.Fatalf("expected blank locale to miss")
	}
}

func TestTranslateStatus(t *testing.T) {
	tr := render.MapTranslator{"th": {"status.paid": "ชำระแล้ว"}}

	if got := render.TranslateStatus("paid", "th", tr); got != "ชำระแล้ว" {
		t.Fatalf("expected Thai status, got %q", got)
	}
	if got := render.TranslateStatus("Paid", "", tr); got != "Paid" {
		t.Fatalf("expected status as supplied without locale, got %q", got)
	}
	if got := render.TranslateStatus("archived", "th", tr); got != "archived" {
		t.Fatalf("expected unknown status unchanged, got %q", got)
	}
}

func TestMessage(t *testing.T) {
	tr := render.MapTranslator{"th": {"notify.view": "ดู%s"}}
	if got := render.Message(tr, "th", "notify.view", "View %s", "ใบเสนอราคา"); got != "ดูใบเสนอราคา" {
		t.Fatalf("translated message: %q", got)
	}
	if got := render.Message(tr, "", "notify.view", "View %s", "Quote"); got != "View Quote" {
		t.Fatalf("fallback message: %q", got)
	}
}

func TestLoadLocales_FlattensNestedKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/es.yaml":   &fstest.MapFile{Data: []byte("invoice:\n  title: Factura\nstatus:\n  paid: Pagada\n")},
		"locales/pt-BR.yml": &fstest.MapFile{Data: []byte("label.total: Total\n")},
		"locales/README.md": &fstest.MapFile{Data: []byte("ignored")},
	}

	tr, err := render.LoadLocales(fsys, "locales")
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	if got, _ := tr.Translate("es", "invoice.title"); got != "Factura" {
		t.Fatalf("nested key: %q", got)
	}
	if got, _ := tr.Translate("pt-br", "label.total"); got != "Total" {
		t.Fatalf("dotted key: %q", got)
	}
	if len(tr.Locales()) != 2 {
		t.Fatalf("expected two locales, got %v", tr.Locales())
	}

	broken := fstest.MapFS{"locales/xx.yaml": &fstest.MapFile{Data: []byte("a: [\n")}}
	if _, err := render.LoadLocales(broken, "locales"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultTranslator_Thai(t *testing.T) {
	tr, err := render.DefaultTranslator()
	if err != nil {
		t.Fatalf("default translator: %v", err)
	}
	want := map[string]string{
		"status.paid":    "ชำระแล้ว",
		"status.pending": "รอชำระ",
		"status.overdue": "เกินกำหนด",
		"status.sent":    "ส่งแล้ว",
		"status.draft":   "ร่าง",
	}
	for key, msg := range want {
		if got, err := tr.Translate("th", key); err != nil || got != msg {
			t.Fatalf("%s: want %q, got %q (%v)", key, msg, got, err)
		}
	}
	labels := render.ResolveLabels(document.KindInvoice, "th", tr, nil)
	for _, key := range render.LabelKeys() {
		if _, err := tr.Translate("th", translationKey(key)); err != nil {
			t.Fatalf("thai catalog misses %q", key)
		}
		if labels[key] == "" {
			t.Fatalf("empty thai label %q", key)
		}
	}
}

func translationKey(label string) string {
	switch label {
	case render.LabelKind:
		return "invoice.title"
	case render.LabelDate:
		return "invoice.date"
	default:
		return "label." + label
	}
}
