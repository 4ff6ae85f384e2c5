package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// LayoutRegistry stores layouts by name, providing discovery and duplication
// safeguards. Template ids from the catalog select a layout by name.
type LayoutRegistry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewLayoutRegistry creates an empty registry instance.
func NewLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{
		layouts: make(map[string]Layout),
	}
}

// Register adds a layout by its Name(). Duplicate names return an error.
func (r *LayoutRegistry) Register(layout Layout) error {
	if layout == nil {
		return fmt.Errorf("render: layout is required")
	}
	name := strings.ToLower(strings.TrimSpace(layout.Name()))
	if name == "" {
		return fmt.Errorf("render: layout name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.layouts[name]; exists {
		return fmt.Errorf("render: layout %q already registered", name)
	}

	r.layouts[name] = layout
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *LayoutRegistry) MustRegister(layout Layout) {
	if err := r.Register(layout); err != nil {
		panic(err)
	}
}

// Get retrieves a layout by name.
func (r *LayoutRegistry) Get(name string) (Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	layout, ok := r.layouts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
	}
	return layout, nil
}

// MustGet panics if the layout is missing.
func (r *LayoutRegistry) MustGet(name string) Layout {
	layout, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return layout
}

// List returns a sorted list of layout names.
func (r *LayoutRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a layout is registered.
func (r *LayoutRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.layouts[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
