// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice formats a price in pesos with two decimals.
// e.g., 22.5 -> "$22.50", 1234.5 -> "$1,234.50", -0.4 -> "-$0.40"
func FormatPrice(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatPrice(d.Neg())
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "$" + s
	}
	return "$" + FormatNumber(n) + "." + frac
}

// FormatMXN formats a price with the currency code, as shown in result cards.
func FormatMXN(d decimal.Decimal) string {
	return FormatPrice(d) + " MXN"
}

// FormatEstimate formats a model estimate like a stored price. NaN and
// infinities render as "n/a".
func FormatEstimate(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return FormatPrice(decimal.NewFromFloat(f))
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a ratio as a signed percentage.
// e.g., 0.0412 -> "+4.1%"
func FormatPercent(f float64) string {
	return fmt.Sprintf("%+.1f%%", f*100)
}

// FormatDelta formats a price change with an explicit sign.
func FormatDelta(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatPrice(d)
	}
	return "+" + FormatPrice(d)
}

var monthAbbr = []string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatMonth returns the Spanish three-letter month abbreviation.
func FormatMonth(month int) string {
	if month >= 1 && month <= 12 {
		return monthAbbr[month-1]
	}
	return "???"
}

// FormatMonthName returns the full Spanish month name.
func FormatMonthName(month int) string {
	if month >= 1 && month <= 12 {
		return monthNames[month-1]
	}
	return strconv.Itoa(month)
}

// FormatPeriod formats a (year, month) pair, e.g. "may 2023".
func FormatPeriod(year, month int) string {
	return fmt.Sprintf("%s %d", FormatMonth(month), year)
}
