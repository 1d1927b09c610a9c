package view

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 12345 -> "12,345".
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatDecimal renders v with thousands separators and the given precision.
func FormatDecimal(v float64, precision int) string {
	return printer.Sprintf("%."+strconv.Itoa(precision)+"f", v)
}
