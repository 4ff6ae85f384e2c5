package render

import (
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// Drift compares the caller-supplied amount with the total recomputed from
// the record's items.
type Drift struct {
	Declared   float64
	Computed   float64
	Difference decimal.Decimal
}

// AmountDrift reports whether record.Amount disagrees with the sum of its
// line totals. Rendered documents always show the recomputed total; hosts
// use this to flag stale records. Non-finite values always count as drift.
func AmountDrift(record document.Record) (Drift, bool) {
	sum := decimal.Zero
	computed := 0.0
	exact := finite(record.Amount)
	for _, item := range record.Items {
		line, value, ok := lineTotal(item)
		if !ok {
			exact = false
			computed += line
			continue
		}
		sum = sum.Add(value)
	}

	if !exact {
		return Drift{Declared: record.Amount, Computed: computed + sum.InexactFloat64()}, true
	}

	declared := decimal.NewFromFloat(record.Amount)
	diff := sum.Sub(declared)
	return Drift{
		Declared:   record.Amount,
		Computed:   sum.InexactFloat64(),
		Difference: diff,
	}, !diff.IsZero()
}
