package render

import (
	"embed"
	"io/fs"
)

//go:embed templates locales
var embedded embed.FS

// TemplatesFS exposes the embedded layout and envelope templates. Paths are
// rooted at "templates/".
func TemplatesFS() fs.FS {
	return embedded
}

// LocalesFS exposes the embedded locale catalogs under "locales/".
func LocalesFS() fs.FS {
	return embedded
}

// DefaultTranslator loads the embedded locale catalogs.
func DefaultTranslator() (MapTranslator, error) {
	return LoadLocales(embedded, "locales")
}
