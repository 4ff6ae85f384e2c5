package render

import "errors"

var (
	// ErrLayoutNotFound is returned when neither the requested template nor
	// the registry default has a registered layout.
	ErrLayoutNotFound = errors.New("render: layout not found")
	// ErrMissingTranslator is passed to MissingTranslationHandler when labels
	// are resolved without a translator.
	ErrMissingTranslator = errors.New("render: translator is not configured")
	// ErrMissingTranslation reports a key the translator does not know.
	ErrMissingTranslation = errors.New("render: missing translation")
)
