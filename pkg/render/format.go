package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// InvalidDate is rendered in place of a missing or unparseable date.
const InvalidDate = "Invalid Date"

// DefaultCurrencyGlyph prefixes every monetary value unless overridden.
const DefaultCurrencyGlyph = "฿"

const maxFractionDigits = 15

// Calendar selects how dates are printed.
type Calendar string

const (
	// CalendarBuddhist prints d/m/yyyy with the Thai solar year (Gregorian + 543).
	CalendarBuddhist Calendar = "buddhist"
	// CalendarGregorian prints dates with the formatter's Go layout.
	CalendarGregorian Calendar = "gregorian"
)

// ParseCalendar normalises raw into a Calendar.
func ParseCalendar(raw string) (Calendar, error) {
	switch Calendar(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CalendarBuddhist:
		return CalendarBuddhist, nil
	case CalendarGregorian:
		return CalendarGregorian, nil
	default:
		return "", fmt.Errorf("render: unknown calendar %q", raw)
	}
}

// Formatter turns raw record values into display strings. Layouts only ever
// see formatter output.
type Formatter interface {
	Money(amount float64) string
	Quantity(quantity float64) string
	Date(raw string) string
}

// FormatterOption configures a LocaleFormatter.
type FormatterOption func(*LocaleFormatter)

// WithCurrencyGlyph overrides the currency prefix.
func WithCurrencyGlyph(glyph string) FormatterOption {
	return func(f *LocaleFormatter) {
		f.glyph = glyph
	}
}

// WithLanguage selects the locale used for digit grouping.
func WithLanguage(tag language.Tag) FormatterOption {
	return func(f *LocaleFormatter) {
		f.tag = tag
	}
}

// WithCalendar selects the date calendar.
func WithCalendar(cal Calendar) FormatterOption {
	return func(f *LocaleFormatter) {
		if cal != "" {
			f.calendar = cal
		}
	}
}

// WithDateLayout sets the Go time layout used by CalendarGregorian.
func WithDateLayout(layout string) FormatterOption {
	return func(f *LocaleFormatter) {
		if strings.TrimSpace(layout) != "" {
			f.dateLayout = layout
		}
	}
}

// LocaleFormatter groups digits with golang.org/x/text and prints dates in
// the Buddhist or Gregorian calendar. It is immutable and safe for concurrent
// use.
type LocaleFormatter struct {
	tag        language.Tag
	glyph      string
	calendar   Calendar
	dateLayout string
	printer    *message.Printer
}

var _ Formatter = (*LocaleFormatter)(nil)

// NewLocaleFormatter returns a formatter with ฿, English digit grouping and the
// Buddhist calendar unless options say otherwise.
func NewLocaleFormatter(options ...FormatterOption) *LocaleFormatter {
	f := &LocaleFormatter{
		tag:        language.English,
		glyph:      DefaultCurrencyGlyph,
		calendar:   CalendarBuddhist,
		dateLayout: "2/1/2006",
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	f.printer = message.NewPrinter(f.tag)
	return f
}

// Money prints amount with grouping and the currency glyph. Fraction digits
// present in the input are kept; nothing is rounded to cents.
func (f *LocaleFormatter) Money(amount float64) string {
	return f.glyph + f.grouped(amount)
}

// Quantity prints q without grouping, the way it was supplied.
func (f *LocaleFormatter) Quantity(q float64) string {
	if s, ok := nonFinite(q); ok {
		return s
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Date parses raw as an ISO date (or RFC 3339 timestamp) and prints it in the
// configured calendar. Blank or unparseable input yields InvalidDate.
func (f *LocaleFormatter) Date(raw string) string {
	t, ok := parseDate(raw)
	if !ok {
		return InvalidDate
	}
	if f.calendar == CalendarGregorian {
		return t.Format(f.dateLayout)
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year()+543)
}

func (f *LocaleFormatter) grouped(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	digits := fractionDigits(v)
	return f.printer.Sprint(number.Decimal(v, number.MinFractionDigits(digits), number.MaxFractionDigits(digits)))
}

func fractionDigits(v float64) int {
	exp := decimal.NewFromFloat(v).Exponent()
	if exp >= 0 {
		return 0
	}
	if digits := int(-exp); digits < maxFractionDigits {
		return digits
	}
	return maxFractionDigits
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "∞", true
	case math.IsInf(v, -1):
		return "-∞", true
	}
	return "", false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
