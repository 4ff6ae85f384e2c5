package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the file name LoadCatalog reads from an fs.FS.
const CatalogFile = "catalog.yaml"

//go:embed catalog.yaml
var builtinFS embed.FS

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Catalog is the on-disk representation of a template registry.
type Catalog struct {
	Default   string   `json:"default,omitempty" yaml:"default,omitempty"`
	Templates []Config `json:"templates" yaml:"templates"`
}

// DefaultCatalog returns the registry built from the embedded catalog with the
// modern, classic, creative and bold templates. The registry is built once.
func DefaultCatalog() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = LoadCatalog(builtinFS)
	})
	return defaultRegistry, defaultErr
}

// MustDefaultCatalog panics when the embedded catalog is invalid.
func MustDefaultCatalog() *Registry {
	reg, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return reg
}

// LoadCatalog reads CatalogFile from fsys and builds a registry from it.
func LoadCatalog(fsys fs.FS) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("templates: load catalog: nil filesystem")
	}
	data, err := fs.ReadFile(fsys, CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", CatalogFile, err)
	}
	return ParseCatalog(data, CatalogFile)
}

// ParseCatalog decodes a JSON or YAML catalog document.
func ParseCatalog(data []byte, source string) (*Registry, error) {
	catalog, err := decodeCatalog(data, source)
	if err != nil {
		return nil, err
	}
	var opts []RegistryOption
	if strings.TrimSpace(catalog.Default) != "" {
		opts = append(opts, WithDefault(catalog.Default))
	}
	reg, err := NewRegistry(catalog.Templates, opts...)
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", source, err)
	}
	return reg, nil
}

func decodeCatalog(data []byte, source string) (Catalog, error) {
	var catalog Catalog
	if len(strings.TrimSpace(string(data))) == 0 {
		return catalog, fmt.Errorf("%w: %s is empty", ErrInvalidCatalog, source)
	}
	if json.Valid(data) {
		if err := json.Unmarshal(data, &catalog); err != nil {
			return catalog, fmt.Errorf("%w: parse %s: %v", ErrInvalidCatalog, source, err)
		}
		return catalog, nil
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("%w: parse %s: %v", ErrInvalidCatalog, source, err)
	}
	return catalog, nil
}
