package document

// Record is the invoice-or-quote payload the renderer consumes. It is supplied
// by the persistence layer and never mutated by the rendering pipeline.
type Record struct {
	Number     string     `json:"number" yaml:"number"`
	ClientName string     `json:"clientName" yaml:"clientName"`
	Items      []LineItem `json:"items" yaml:"items"`
	// Amount is the caller-supplied total. Renderers display the total
	// recomputed from Items; Amount is kept so hosts can detect drift.
	Amount     float64 `json:"amount" yaml:"amount"`
	DueDate    string  `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	ExpiryDate string  `json:"expiryDate,omitempty" yaml:"expiryDate,omitempty"`
	Status     string  `json:"status" yaml:"status"`
	CreatedAt  string  `json:"createdAt" yaml:"createdAt"`
	Template   string  `json:"template,omitempty" yaml:"template,omitempty"`
}

// LineItem is a single billable row.
type LineItem struct {
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Rate        float64 `json:"rate" yaml:"rate"`
}

// LineTotal returns Quantity * Rate. Signs are not checked.
func (i LineItem) LineTotal() float64 {
	return i.Quantity * i.Rate
}

// Validate checks the structural contract of the record. A nil Items slice
// means the field was absent or null; an empty, non-nil slice is valid.
func (r Record) Validate() error {
	if r.Items == nil {
		return &FieldError{Field: "items", Err: ErrMissingField}
	}
	return nil
}

// DateFor returns the raw date string that applies to the given kind.
func (r Record) DateFor(kind Kind) string {
	if kind == KindQuote {
		return r.ExpiryDate
	}
	return r.DueDate
}
