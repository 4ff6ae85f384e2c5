// Package notify builds the e-mail that announces a new invoice or quote.
// It reuses the render engine for formatted values and palette colours and
// sanitizes the result before it leaves the process.
package notify

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/render"
	"github.com/goliatone/go-invoicedoc/pkg/render/template"
	"github.com/goliatone/go-invoicedoc/pkg/render/template/gotemplate"
)

//go:embed templates
var templatesFS embed.FS

const (
	// DefaultAppName is printed in the banner, intro and subject.
	DefaultAppName = "Invoice App"
	// DefaultLink is used when Options.Link is blank. A bare "#" would not
	// survive sanitizing.
	DefaultLink = "#document"

	notificationTemplate = "templates/notification"
)

// Options select how one notification is composed.
type Options struct {
	Template string
	Locale   string
	Variant  string
	// Link is the target of the call-to-action button.
	Link string
	// IncludeDocument attaches the full rendered document to the message.
	IncludeDocument bool
}

// Message is a ready-to-send notification.
type Message struct {
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Document string `json:"document,omitempty"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithAppName overrides DefaultAppName.
func WithAppName(name string) Option {
	return func(c *Composer) {
		if strings.TrimSpace(name) != "" {
			c.appName = name
		}
	}
}

// WithTemplateRenderer swaps the renderer used for the notification body.
// The renderer must resolve "templates/notification"; "app" and "brand" are
// seeded as its globals.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(c *Composer) {
		if renderer != nil {
			c.renderer = renderer
		}
	}
}

// Composer turns records into notification messages.
type Composer struct {
	engine   *render.Engine
	renderer template.TemplateRenderer
	appName  string
}

// New returns a Composer bound to engine.
func New(engine *render.Engine, options ...Option) (*Composer, error) {
	if engine == nil {
		return nil, fmt.Errorf("notify: render engine is required")
	}
	c := &Composer{engine: engine, appName: DefaultAppName}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	globals := map[string]any{"app": c.appName, "brand": engine.Brand()}
	if c.renderer == nil {
		renderer, err := gotemplate.New(gotemplate.WithFS(templatesFS), gotemplate.WithGlobalData(globals))
		if err != nil {
			return nil, fmt.Errorf("notify: template renderer: %w", err)
		}
		c.renderer = renderer
	} else if err := c.renderer.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("notify: template globals: %w", err)
	}
	return c, nil
}

// Compose renders the notification for record.
func (c *Composer) Compose(ctx context.Context, record document.Record, kind document.Kind, opts Options) (Message, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
	}

	renderOpts := render.Options{Template: opts.Template, Locale: opts.Locale, Variant: opts.Variant}
	view, err := c.engine.View(record, kind, renderOpts)
	if err != nil {
		return Message{}, fmt.Errorf("notify: %w", err)
	}

	title := view.Labels[render.LabelKind]
	tr := c.engine.Translator()
	locale := opts.Locale
	text := map[string]string{
		"heading":   render.Message(tr, locale, "notify.heading", "New %s Notification", title),
		"intro":     render.Message(tr, locale, "notify.intro", "You have received a new %s from %s.", strings.ToLower(title), c.appName),
		"number":    render.Message(tr, locale, "notify.number", "%s Number", title),
		"client":    render.Message(tr, locale, "notify.client", "Client"),
		"amount":    render.Message(tr, locale, "notify.amount", "Amount"),
		"view":      render.Message(tr, locale, "notify.view", "View %s", title),
		"automated": render.Message(tr, locale, "notify.automated", "This is an automated notification from %s.", c.appName),
	}

	link := strings.TrimSpace(opts.Link)
	if link == "" {
		link = DefaultLink
	}

	body, err := c.renderer.RenderTemplate(notificationTemplate, map[string]any{
		"colors": view.Colors,
		"view":   view,
		"text":   text,
		"link":   link,
	})
	if err != nil {
		return Message{}, fmt.Errorf("notify: %s %s: %w", title, record.Number, err)
	}

	msg := Message{
		Subject: render.Message(tr, locale, "notify.subject", "%s %s from %s", title, record.Number, c.appName),
		HTML:    Sanitize(body),
	}
	if opts.IncludeDocument {
		doc, err := c.engine.Render(ctx, record, kind, renderOpts)
		if err != nil {
			return Message{}, fmt.Errorf("notify: %w", err)
		}
		msg.Document = doc
	}
	return msg, nil
}
