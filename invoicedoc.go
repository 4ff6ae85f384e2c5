// Package invoicedoc renders invoice and quote records into standalone,
// print-ready HTML using a catalog of visual templates.
//
// Most callers only need RenderHTML. Long-lived processes should build one
// Engine with NewEngine and reuse it; engines are safe for concurrent use.
package invoicedoc

import (
	"context"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/render"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

// Record is the document to render.
type Record = document.Record

// LineItem is one billable row of a Record.
type LineItem = document.LineItem

// Kind selects invoice or quote vocabulary.
type Kind = document.Kind

// Options carries per-render choices (template override, locale, variant).
type Options = render.Options

// Engine renders records.
type Engine = render.Engine

const (
	KindInvoice = document.KindInvoice
	KindQuote   = document.KindQuote
)

// NewEngine exposes the render engine constructor from the top-level module.
func NewEngine(options ...render.Option) (*Engine, error) {
	return render.New(options...)
}

// RenderHTML renders record with a throwaway engine built from options.
func RenderHTML(ctx context.Context, record Record, kind Kind, opts Options, options ...render.Option) (string, error) {
	engine, err := render.New(options...)
	if err != nil {
		return "", err
	}
	return engine.Render(ctx, record, kind, opts)
}

// Decode parses a JSON or YAML record.
func Decode(data []byte, source string) (Record, error) {
	return document.Decode(data, source)
}

// WithCatalog renders with reg instead of the embedded catalog.
func WithCatalog(reg *templates.Registry) render.Option {
	return render.WithTemplates(reg)
}
