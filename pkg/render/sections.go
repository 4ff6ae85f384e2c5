package render

import (
	"fmt"
	"path"

	"github.com/goliatone/go-invoicedoc/pkg/render/template"
)

// Section names, in the order a document reads.
const (
	SectionHeader = "header"
	SectionInfo   = "info"
	SectionItems  = "items"
	SectionTotal  = "total"
	SectionFooter = "footer"

	bodyTemplate     = "body"
	envelopeTemplate = "templates/envelope"
	layoutsRoot      = "templates/layouts"
)

// Sections lists the section builders every template layout is composed of.
func Sections() []string {
	return []string{SectionHeader, SectionInfo, SectionItems, SectionTotal, SectionFooter}
}

// Built-in layout names. They match the ids of the default catalog.
const (
	LayoutModern   = "modern"
	LayoutClassic  = "classic"
	LayoutCreative = "creative"
	LayoutBold     = "bold"
)

// BuiltinLayouts lists the layouts DefaultLayouts registers.
func BuiltinLayouts() []string {
	return []string{LayoutModern, LayoutClassic, LayoutCreative, LayoutBold}
}

// templateLayout renders each section from templates/layouts/<name>/ and lets
// body.tpl arrange them.
type templateLayout struct {
	name     string
	renderer template.TemplateRenderer
}

// NewTemplateLayout builds a Layout from the section templates found under
// templates/layouts/<name>/ in the renderer's filesystem.
func NewTemplateLayout(name string, renderer template.TemplateRenderer) Layout {
	return &templateLayout{name: name, renderer: renderer}
}

func (l *templateLayout) Name() string { return l.name }

func (l *templateLayout) Render(view View) (string, error) {
	if l.renderer == nil {
		return "", fmt.Errorf("render: layout %q: template renderer is nil", l.name)
	}

	data := map[string]any{"view": view}
	sections := make(map[string]any, len(Sections()))
	for _, section := range Sections() {
		out, err := l.renderer.RenderTemplate(l.templatePath(section), data)
		if err != nil {
			return "", fmt.Errorf("render: layout %q section %s: %w", l.name, section, err)
		}
		sections[section] = out
	}

	data["sections"] = sections
	body, err := l.renderer.RenderTemplate(l.templatePath(bodyTemplate), data)
	if err != nil {
		return "", fmt.Errorf("render: layout %q body: %w", l.name, err)
	}
	return body, nil
}

func (l *templateLayout) templatePath(section string) string {
	return path.Join(layoutsRoot, l.name, section)
}

// DefaultLayouts registers the four built-in template layouts against
// renderer.
func DefaultLayouts(renderer template.TemplateRenderer) (*LayoutRegistry, error) {
	reg := NewLayoutRegistry()
	for _, name := range BuiltinLayouts() {
		if err := reg.Register(NewTemplateLayout(name, renderer)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
