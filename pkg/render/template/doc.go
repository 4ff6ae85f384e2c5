// Package template defines the template execution contract used by the
// document layouts, plus the pongo2 adapter in the gotemplate subpackage.
package template
