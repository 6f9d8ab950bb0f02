// Package format renders legend strings for text output surfaces.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// USD formats a dollar amount with thousands separators, dropping cents
// when the value is whole.
func USD(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("$%d", int64(v))
	}
	return printer.Sprintf("$%.2f", v)
}

// LegendLine renders the "N accounts, $X" suffix shown next to each
// legend entry.
func LegendLine(accounts int, sum float64) string {
	return printer.Sprintf("%d accounts, %s", accounts, USD(sum))
}
