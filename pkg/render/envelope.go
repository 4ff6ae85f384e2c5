package render

import (
	"fmt"

	"github.com/goliatone/go-invoicedoc/pkg/render/template"
)

// Envelope wraps a layout body into a standalone HTML document titled
// view.Title, with the base style reset coloured by the template.
func Envelope(renderer template.TemplateRenderer, view View, body string) (string, error) {
	if renderer == nil {
		return "", fmt.Errorf("render: envelope: template renderer is nil")
	}
	out, err := renderer.RenderTemplate(envelopeTemplate, map[string]any{
		"title":  view.Title,
		"colors": view.Colors,
		"body":   body,
	})
	if err != nil {
		return "", fmt.Errorf("render: envelope: %w", err)
	}
	return out, nil
}
