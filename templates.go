package invoicedoc

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-invoicedoc/pkg/render"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

// EmbeddedTemplates exposes the built-in layout and section templates so
// callers can reuse or extend them without importing the render package.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

// EmbeddedLocales exposes the built-in translation catalogs.
func EmbeddedLocales() fs.FS {
	return render.LocalesFS()
}

// LoadCatalogFile reads a YAML or JSON catalog from disk. A blank path
// returns the embedded catalog.
func LoadCatalogFile(path string) (*templates.Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return templates.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("invoicedoc: read catalog: %w", err)
	}
	return templates.ParseCatalog(data, path)
}
