package render

import (
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

// Layout turns a fully formatted View into the body markup of one template
// variant. Layouts never see the raw record and never format values.
type Layout interface {
	Name() string
	Render(view View) (string, error)
}

// LayoutFunc adapts a plain function into the body of a Layout.
type LayoutFunc func(view View) (string, error)

type funcLayout struct {
	name string
	fn   LayoutFunc
}

// NewLayoutFunc registers fn under name. It is the smallest way to add a
// variant next to the template-backed ones.
func NewLayoutFunc(name string, fn LayoutFunc) Layout {
	return funcLayout{name: name, fn: fn}
}

func (l funcLayout) Name() string { return l.name }

func (l funcLayout) Render(view View) (string, error) {
	if l.fn == nil {
		return "", nil
	}
	return l.fn(view)
}

// View is everything a layout may print. Every value is already formatted
// and translated.
type View struct {
	Title       string           `json:"title"`
	Template    string           `json:"template"`
	Labels      Labels           `json:"labels"`
	Number      string           `json:"number"`
	Client      string           `json:"client"`
	Date        string           `json:"date"`
	Status      string           `json:"status"`
	Rows        []Row            `json:"rows"`
	Total       string           `json:"total"`
	GeneratedOn string           `json:"generatedOn"`
	Colors      templates.Colors `json:"colors"`
}
