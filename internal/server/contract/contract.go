// Package contract embeds the preview server's OpenAPI document.
package contract

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Route is one operation declared by the contract.
type Route struct {
	Method      string
	Path        string
	OperationID string
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	return doc, nil
}

// Routes lists the operations of doc sorted by path then method.
func Routes(doc *openapi3.T) []Route {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var routes []Route
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			routes = append(routes, Route{Method: method, Path: path, OperationID: op.OperationID})
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	return routes
}

// Has reports whether doc declares method on path.
func Has(doc *openapi3.T, method, path string) bool {
	if doc == nil || doc.Paths == nil {
		return false
	}
	item := doc.Paths.Value(path)
	if item == nil {
		return false
	}
	return item.GetOperation(method) != nil
}
