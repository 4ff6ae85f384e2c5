package render

import (
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-invoicedoc/pkg/render/template"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

// Options describe per-call choices that never touch the record itself.
type Options struct {
	// Template overrides record.Template. Blank or unknown ids fall back to
	// the registry default.
	Template string
	// Locale selects translated labels and status values. Empty renders the
	// English vocabulary with status as supplied.
	Locale string
	// Variant picks a palette override from the template config (for
	// example "print").
	Variant string
	// GeneratedAt stamps the footer. The engine clock is used when zero.
	GeneratedAt time.Time
}

// Brand is the issuer block printed in layout headers and footers. Layout
// templates read it from the "brand" global.
type Brand struct {
	Name         string `json:"name"`
	SupportEmail string `json:"supportEmail"`
}

// DefaultBrand matches the stock catalog artwork.
var DefaultBrand = Brand{Name: "INVOICE APP", SupportEmail: "support@invoiceapp.com"}

// Option configures the Engine.
type Option func(*engineConfig)

type engineConfig struct {
	templates   *templates.Registry
	layouts     *LayoutRegistry
	formatter   Formatter
	translator  Translator
	onMissing   MissingTranslationHandler
	renderer    template.TemplateRenderer
	templatesFS fs.FS
	templateDir string
	clock       func() time.Time
	brand       Brand
}

// WithTemplates injects the template registry. DefaultCatalog is used when
// omitted.
func WithTemplates(reg *templates.Registry) Option {
	return func(cfg *engineConfig) {
		cfg.templates = reg
	}
}

// WithLayouts injects the layout registry. When omitted the four built-in
// layouts are registered against the engine's template renderer.
func WithLayouts(reg *LayoutRegistry) Option {
	return func(cfg *engineConfig) {
		cfg.layouts = reg
	}
}

// WithFormatter overrides number and date formatting.
func WithFormatter(f Formatter) Option {
	return func(cfg *engineConfig) {
		cfg.formatter = f
	}
}

// WithTranslator overrides the label translator. The embedded locale
// catalogs are used when omitted.
func WithTranslator(t Translator) Option {
	return func(cfg *engineConfig) {
		cfg.translator = t
	}
}

// WithMissingTranslationHandler customises label fallbacks.
func WithMissingTranslationHandler(fn MissingTranslationHandler) Option {
	return func(cfg *engineConfig) {
		cfg.onMissing = fn
	}
}

// WithTemplateRenderer injects the engine executing layout templates.
func WithTemplateRenderer(r template.TemplateRenderer) Option {
	return func(cfg *engineConfig) {
		cfg.renderer = r
	}
}

// WithTemplatesFS swaps the filesystem the default pongo2 renderer loads
// layout templates from. It must mirror the embedded templates/ tree.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(cfg *engineConfig) {
		cfg.templatesFS = fsys
	}
}

// WithTemplatesDir layers a directory on disk over the templates FS. Files
// found there, such as templates/layouts/modern/header.tpl, replace their
// embedded counterparts; anything missing is still served from the FS.
func WithTemplatesDir(dir string) Option {
	return func(cfg *engineConfig) {
		cfg.templateDir = strings.TrimSpace(dir)
	}
}

// WithClock sets the clock used for the footer stamp.
func WithClock(clock func() time.Time) Option {
	return func(cfg *engineConfig) {
		cfg.clock = clock
	}
}

// WithBrand overrides the issuer block.
func WithBrand(brand Brand) Option {
	return func(cfg *engineConfig) {
		cfg.brand = brand
	}
}
