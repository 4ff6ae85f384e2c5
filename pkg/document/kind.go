package document

import (
	"fmt"
	"strings"
)

// Kind selects the label vocabulary and the date field of a record.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindQuote   Kind = "quote"
)

// Kinds lists the supported kinds in display order.
func Kinds() []Kind {
	return []Kind{KindInvoice, KindQuote}
}

// ParseKind normalises raw into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindInvoice:
		return KindInvoice, nil
	case KindQuote:
		return KindQuote, nil
	default:
		return "", fmt.Errorf("document: kind %q: %w", raw, ErrUnknownKind)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindInvoice || k == KindQuote
}

func (k Kind) String() string {
	return string(k)
}
