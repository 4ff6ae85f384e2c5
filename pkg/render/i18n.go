package render

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the string used when a key cannot be
// translated. err is ErrMissingTranslator when no translator is configured.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Labels holds the resolved label vocabulary for one render, keyed by the
// names the layout templates reference (kind, date, billTo, ...).
type Labels map[string]string

// Label keys shared by every layout.
const (
	LabelKind = "kind"
	LabelDate = "date"
)

var kindLabels = map[document.Kind]map[string]string{
	document.KindInvoice: {LabelKind: "Invoice", LabelDate: "Due Date"},
	document.KindQuote:   {LabelKind: "Quote", LabelDate: "Expiry Date"},
}

var defaultLabels = map[string]string{
	"billTo":            "Bill To",
	"billedTo":          "Billed To",
	"client":            "Client",
	"status":            "Status",
	"description":       "Description",
	"qty":               "Qty",
	"rate":              "Rate",
	"total":             "Total",
	"itemDescription":   "Item Description",
	"quantity":          "Quantity",
	"unitPrice":         "Unit Price",
	"amount":            "Amount",
	"subtotal":          "Subtotal",
	"totalAmount":       "Total Amount",
	"grandTotal":        "Grand Total",
	"thankYou":          "Thank you for your business",
	"thanksChoosing":    "Thanks for choosing us!",
	"generatedOn":       "Generated on",
	"generatedWithLove": "Generated with love on",
	"contact":           "For questions, please contact us at",
}

// LabelKeys lists the label names every Labels value carries, sorted.
func LabelKeys() []string {
	keys := make([]string, 0, len(defaultLabels)+2)
	keys = append(keys, LabelKind, LabelDate)
	for key := range defaultLabels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ResolveLabels builds the label set for kind. Kind labels are looked up as
// "<kind>.title" and "<kind>.date"; everything else as "label.<name>". Keys
// the translator misses keep their English defaults.
func ResolveLabels(kind document.Kind, locale string, t Translator, onMissing MissingTranslationHandler) Labels {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if !kind.Valid() {
		kind = document.KindInvoice
	}

	out := make(Labels, len(defaultLabels)+2)
	base := kindLabels[kind]
	out[LabelKind] = translate(locale, kind.String()+".title", base[LabelKind], t, onMissing)
	out[LabelDate] = translate(locale, kind.String()+".date", base[LabelDate], t, onMissing)
	for name, fallback := range defaultLabels {
		out[name] = translate(locale, "label."+name, fallback, t, onMissing)
	}
	return out
}

// TranslateStatus renders a status value for locale. Statuses without a
// "status.<value>" entry are returned unchanged.
func TranslateStatus(status, locale string, t Translator) string {
	key := strings.ToLower(strings.TrimSpace(status))
	if key == "" || t == nil || strings.TrimSpace(locale) == "" {
		return status
	}
	msg, err := t.Translate(locale, "status."+key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return status
	}
	return msg
}

// Message translates key for locale, formatting args into fallback when the
// translator cannot serve it.
func Message(t Translator, locale, key, fallback string, args ...any) string {
	if t != nil && strings.TrimSpace(locale) != "" {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(fallback, args...)
	}
	return fallback
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil || strings.TrimSpace(locale) == "" {
		return fallback
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		values, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		if fallback, ok := values["default"].(string); ok && strings.TrimSpace(fallback) != "" {
			return fallback
		}
	}
	return key
}

// MapTranslator serves messages from an in-memory catalog keyed by locale and
// then message key. Regional locales fall back to their base language, so
// "th-TH" is served by a "th" catalog.
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeCandidates(locale) {
		messages, ok := m[candidate]
		if !ok {
			continue
		}
		msg, ok := messages[key]
		if !ok {
			continue
		}
		if len(args) > 0 {
			return fmt.Sprintf(msg, args...), nil
		}
		return msg, nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

// Locales returns the locales present in the catalog, sorted.
func (m MapTranslator) Locales() []string {
	out := make([]string, 0, len(m))
	for locale := range m {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

func localeCandidates(locale string) []string {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if normalized == "" {
		return nil
	}
	candidates := []string{normalized}
	if idx := strings.Index(normalized, "-"); idx > 0 {
		candidates = append(candidates, normalized[:idx])
	}
	return candidates
}

// LoadLocales reads every *.yaml / *.yml file under dir in fsys into a
// MapTranslator. The file name (without extension) is the locale. Nested
// mappings are flattened into dotted keys.
func LoadLocales(fsys fs.FS, dir string) (MapTranslator, error) {
	if fsys == nil {
		return nil, fmt.Errorf("render: load locales: nil filesystem")
	}
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("render: read locales dir %q: %w", dir, err)
	}

	out := make(MapTranslator)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		locale := strings.ToLower(strings.TrimSuffix(entry.Name(), ext))
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("render: read locale %q: %w", entry.Name(), err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("render: parse locale %q: %w", entry.Name(), err)
		}
		messages := make(map[string]string)
		flattenMessages("", raw, messages)
		out[locale] = messages
	}
	return out, nil
}

func flattenMessages(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenMessages(full, v, out)
		case nil:
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}
