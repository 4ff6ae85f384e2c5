package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/render/template"
	"github.com/goliatone/go-invoicedoc/pkg/render/template/gotemplate"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

// Engine renders document records into standalone HTML. It holds no mutable
// state after New returns and is safe for concurrent use.
type Engine struct {
	templates  *templates.Registry
	layouts    *LayoutRegistry
	formatter  Formatter
	translator Translator
	onMissing  MissingTranslationHandler
	renderer   template.TemplateRenderer
	clock      func() time.Time
	brand      Brand
}

// New constructs an Engine, filling every dependency that was not supplied
// with the built-in default.
func New(options ...Option) (*Engine, error) {
	cfg := &engineConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.templates == nil {
		reg, err := templates.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("render: default catalog: %w", err)
		}
		cfg.templates = reg
	}

	if strings.TrimSpace(cfg.brand.Name) == "" {
		cfg.brand = DefaultBrand
	}
	globals := map[string]any{"brand": cfg.brand}

	if cfg.renderer == nil {
		fsys := cfg.templatesFS
		if fsys == nil {
			fsys = TemplatesFS()
		}
		tplOpts := []gotemplate.Option{gotemplate.WithFS(fsys), gotemplate.WithGlobalData(globals)}
		if cfg.templateDir != "" {
			tplOpts = append(tplOpts, gotemplate.WithBaseDir(cfg.templateDir))
		}
		engine, err := gotemplate.New(tplOpts...)
		if err != nil {
			return nil, fmt.Errorf("render: template engine: %w", err)
		}
		cfg.renderer = engine
	} else if err := cfg.renderer.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("render: template globals: %w", err)
	}

	if cfg.layouts == nil {
		layouts, err := DefaultLayouts(cfg.renderer)
		if err != nil {
			return nil, fmt.Errorf("render: default layouts: %w", err)
		}
		cfg.layouts = layouts
	}

	if cfg.formatter == nil {
		cfg.formatter = NewLocaleFormatter()
	}

	if cfg.translator == nil {
		translator, err := DefaultTranslator()
		if err != nil {
			return nil, fmt.Errorf("render: default locales: %w", err)
		}
		cfg.translator = translator
	}

	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	return &Engine{
		templates:  cfg.templates,
		layouts:    cfg.layouts,
		formatter:  cfg.formatter,
		translator: cfg.translator,
		onMissing:  cfg.onMissing,
		renderer:   cfg.renderer,
		clock:      cfg.clock,
		brand:      cfg.brand,
	}, nil
}

// Templates returns the registry the engine resolves template ids against.
func (e *Engine) Templates() *templates.Registry {
	return e.templates
}

// Layouts returns the layout registry.
func (e *Engine) Layouts() *LayoutRegistry {
	return e.layouts
}

// Formatter returns the formatter used for every value.
func (e *Engine) Formatter() Formatter {
	return e.formatter
}

// Translator returns the label translator.
func (e *Engine) Translator() Translator {
	return e.translator
}

// Brand returns the issuer block.
func (e *Engine) Brand() Brand {
	return e.brand
}

// Renderer returns the template renderer, for hosts that render their own
// fragments with the same engine.
func (e *Engine) Renderer() template.TemplateRenderer {
	return e.renderer
}

// Render produces the standalone HTML document for record. The only error
// outcomes are an invalid record shape, an unknown kind, a cancelled context
// and template execution failures; unknown template ids fall back to the
// registry default.
func (e *Engine) Render(ctx context.Context, record document.Record, kind document.Kind, opts Options) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	view, layout, err := e.compose(record, kind, opts)
	if err != nil {
		return "", err
	}

	body, err := layout.Render(view)
	if err != nil {
		return "", fmt.Errorf("render: %s %s: %w", view.Labels[LabelKind], record.Number, err)
	}

	html, err := Envelope(e.renderer, view, body)
	if err != nil {
		return "", fmt.Errorf("render: %s %s: %w", view.Labels[LabelKind], record.Number, err)
	}
	return html, nil
}

// View resolves the formatted view for record without running a layout.
func (e *Engine) View(record document.Record, kind document.Kind, opts Options) (View, error) {
	view, _, err := e.compose(record, kind, opts)
	return view, err
}

func (e *Engine) compose(record document.Record, kind document.Kind, opts Options) (View, Layout, error) {
	if !kind.Valid() {
		return View{}, nil, fmt.Errorf("render: kind %q: %w", kind, document.ErrUnknownKind)
	}
	if err := record.Validate(); err != nil {
		return View{}, nil, fmt.Errorf("render: record %q: %w", record.Number, err)
	}

	templateID := opts.Template
	if strings.TrimSpace(templateID) == "" {
		templateID = record.Template
	}
	cfg := e.templates.Lookup(templateID)

	layout, err := e.layoutFor(cfg.ID)
	if err != nil {
		return View{}, nil, fmt.Errorf("render: template %q: %w", templateID, err)
	}

	labels := ResolveLabels(kind, opts.Locale, e.translator, e.onMissing)
	projection := Project(record.Items, e.formatter)

	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = e.clock()
	}

	view := View{
		Title:       labels[LabelKind] + " " + record.Number,
		Template:    cfg.ID,
		Labels:      labels,
		Number:      record.Number,
		Client:      record.ClientName,
		Date:        e.formatter.Date(record.DateFor(kind)),
		Status:      TranslateStatus(record.Status, opts.Locale, e.translator),
		Rows:        projection.Rows,
		Total:       projection.FormattedTotal,
		GeneratedOn: e.formatter.Date(generated.Format("2006-01-02")),
		Colors:      e.templates.ColorsFor(cfg.ID, opts.Variant),
	}
	return view, layout, nil
}

// layoutFor finds the layout of id. A catalog entry without its own layout
// borrows the default entry's layout, then the modern one, and keeps its
// colours either way.
func (e *Engine) layoutFor(id string) (Layout, error) {
	var lastErr error
	for _, name := range []string{id, e.templates.Default().ID, LayoutModern} {
		layout, err := e.layouts.Get(name)
		if err == nil {
			return layout, nil
		}
		if !errors.Is(err, ErrLayoutNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
