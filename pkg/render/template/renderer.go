package template

import (
	"io"
)

// TemplateRenderer is the seam layouts and the envelope execute their
// templates through. gotemplate.Engine is the pongo2-backed implementation.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
