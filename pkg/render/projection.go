package render

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// Row is one printed line of the item table.
type Row struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// Projection is the formatted item table plus its grand total.
type Projection struct {
	Rows []Row
	// Sum is the exact sum of every finite line total.
	Sum decimal.Decimal
	// Total is the grand total; NaN or ±Inf when any line is non-finite.
	Total          float64
	FormattedTotal string
}

// Project formats items in input order and sums their line totals with
// decimal arithmetic. Signs are not checked and nothing is rounded.
func Project(items []document.LineItem, f Formatter) Projection {
	if f == nil {
		f = NewLocaleFormatter()
	}

	rows := make([]Row, 0, len(items))
	sum := decimal.Zero
	special, hasSpecial := 0.0, false

	for _, item := range items {
		line, exact, ok := lineTotal(item)
		if ok {
			sum = sum.Add(exact)
		} else {
			special += line
			hasSpecial = true
		}
		rows = append(rows, Row{
			Description: item.Description,
			Quantity:    f.Quantity(item.Quantity),
			Rate:        f.Money(item.Rate),
			Amount:      f.Money(line),
		})
	}

	total := sum.InexactFloat64()
	if hasSpecial {
		total = special
	}
	return Projection{
		Rows:           rows,
		Sum:            sum,
		Total:          total,
		FormattedTotal: f.Money(total),
	}
}

// lineTotal returns quantity*rate as a float and, when both inputs are
// finite, as an exact decimal.
func lineTotal(item document.LineItem) (float64, decimal.Decimal, bool) {
	if !finite(item.Quantity) || !finite(item.Rate) {
		return item.Quantity * item.Rate, decimal.Zero, false
	}
	exact := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.Rate))
	return exact.InexactFloat64(), exact, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
