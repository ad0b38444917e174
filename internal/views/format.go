package views

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale groups digits the Indian way (lakh, crore)
const DefaultLocale = "en-IN"

// Formatter renders rupee amounts for a locale
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter. Unparseable locales fall back to en-IN.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Amount formats n rupees, e.g. ₹2,50,000
func (f *Formatter) Amount(n int64) string {
	return f.printer.Sprintf("₹%v", number.Decimal(n))
}

var defaultFormatter = NewFormatter(DefaultLocale)

// FormatAmount formats n rupees with Indian digit grouping
func FormatAmount(n int64) string {
	return defaultFormatter.Amount(n)
}
