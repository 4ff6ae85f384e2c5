package templates

import "errors"

// ErrInvalidCatalog is returned when a registry cannot be built from the
// supplied configs (missing id, duplicate id, malformed colour, bad YAML).
var ErrInvalidCatalog = errors.New("templates: invalid catalog")
