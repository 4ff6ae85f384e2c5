package templates

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const manifestVersion = "1.0.0"

// Registry is an immutable catalog of template configs. It is built once and
// can be shared by any number of concurrent readers.
type Registry struct {
	order     []string
	configs   map[string]Config
	manifests map[string]*theme.Manifest
	fallback  string
}

// RegistryOption customises registry construction.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	defaultID string
}

// WithDefault names the entry returned for blank or unknown ids. When omitted
// the first registered config is the default.
func WithDefault(id string) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.defaultID = strings.ToLower(strings.TrimSpace(id))
	}
}

// NewRegistry validates configs and returns a read-only registry.
func NewRegistry(configs []Config, options ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: at least one template is required", ErrInvalidCatalog)
	}

	reg := &Registry{
		order:     make([]string, 0, len(configs)),
		configs:   make(map[string]Config, len(configs)),
		manifests: make(map[string]*theme.Manifest, len(configs)),
	}

	provider := theme.NewRegistry()
	for _, raw := range configs {
		entry := raw.normalise()
		if err := entry.validate(); err != nil {
			return nil, err
		}
		if _, exists := reg.configs[entry.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidCatalog, entry.ID)
		}

		manifest := buildManifest(entry)
		if err := provider.Register(manifest); err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrInvalidCatalog, entry.ID, err)
		}

		reg.order = append(reg.order, entry.ID)
		reg.configs[entry.ID] = entry
		reg.manifests[entry.ID] = manifest
	}

	reg.fallback = reg.order[0]
	if cfg.defaultID != "" {
		if _, ok := reg.configs[cfg.defaultID]; !ok {
			return nil, fmt.Errorf("%w: default template %q is not registered", ErrInvalidCatalog, cfg.defaultID)
		}
		reg.fallback = cfg.defaultID
	}
	return reg, nil
}

// Lookup returns the config for id. Blank or unknown ids resolve to the
// default entry; Lookup never fails.
func (r *Registry) Lookup(id string) Config {
	if cfg, ok := r.configs[normaliseID(id)]; ok {
		return cfg
	}
	return r.configs[r.fallback]
}

// Resolve behaves like Lookup and also reports whether id matched an entry.
func (r *Registry) Resolve(id string) (Config, bool) {
	if cfg, ok := r.configs[normaliseID(id)]; ok {
		return cfg, true
	}
	return r.configs[r.fallback], false
}

// Has reports whether id names a registered template.
func (r *Registry) Has(id string) bool {
	_, ok := r.configs[normaliseID(id)]
	return ok
}

// Default returns the fallback entry.
func (r *Registry) Default() Config {
	return r.configs[r.fallback]
}

// List returns the configs in registration order.
func (r *Registry) List() []Config {
	out := make([]Config, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id])
	}
	return out
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Manifest returns the go-theme manifest generated for id.
func (r *Registry) Manifest(id string) (*theme.Manifest, bool) {
	manifest, ok := r.manifests[normaliseID(id)]
	return manifest, ok
}

// Select implements theme.ThemeSelector. Unknown names resolve to the default
// template, mirroring Lookup. Unknown variants fall back to the base tokens.
func (r *Registry) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	cfg := r.Lookup(name)
	manifest := r.manifests[cfg.ID]
	if manifest == nil {
		return nil, fmt.Errorf("templates: select %q: manifest missing", cfg.ID)
	}

	variant = strings.ToLower(strings.TrimSpace(variant))
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// ColorsFor resolves the colour triple for id under the given variant.
func (r *Registry) ColorsFor(id, variant string) Colors {
	selection, err := r.Select(id, variant)
	if err != nil {
		return r.Lookup(id).Colors()
	}
	tokens := SelectionTokens(selection)
	return Colors{
		Primary:   tokens[TokenPrimary],
		Secondary: tokens[TokenSecondary],
		Accent:    tokens[TokenAccent],
	}
}

// SelectionTokens merges the selected variant's tokens over the manifest's
// base tokens.
func SelectionTokens(selection *theme.Selection) map[string]string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	out := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		out[key] = value
	}
	if selection.Variant == "" {
		return out
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			out[key] = value
		}
	}
	return out
}

// RendererConfig derives the go-theme renderer configuration for a selection,
// exposing the tokens as `--invoice-<token>` CSS variables.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	tokens := SelectionTokens(selection)
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--invoice-"+key] = value
	}
	return &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
		Tokens:  tokens,
		CSSVars: vars,
	}
}

func buildManifest(cfg Config) *theme.Manifest {
	manifest := &theme.Manifest{
		Name:    cfg.ID,
		Version: manifestVersion,
		Tokens:  cfg.Tokens(),
		Templates: map[string]string{
			"document.body": "templates/layouts/" + cfg.ID + "/body",
		},
	}
	if len(cfg.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(cfg.Variants))
		for name, palette := range cfg.Variants {
			manifest.Variants[name] = theme.Variant{Tokens: palette.tokens()}
		}
	}
	return manifest
}

func normaliseID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
