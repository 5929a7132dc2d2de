// Package format renders amounts and dates for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// DefaultCurrency is used when a currency code is unknown.
const DefaultCurrency = money.USD

// Currency returns the go-money currency for code, falling back to USD.
func Currency(code string) *money.Currency {
	if cur := money.GetCurrency(strings.ToUpper(code)); cur != nil {
		return cur
	}
	return money.GetCurrency(DefaultCurrency)
}

// Amount formats d with the currency's symbol, grouping and fraction
// digits, e.g. "$1,234.50". Negative amounts get a leading minus.
func Amount(d decimal.Decimal, code string) string {
	cur := Currency(code)
	minor := d.Abs().Shift(int32(cur.Fraction)).Round(0).IntPart()
	s := cur.Formatter().Format(minor)
	if d.IsNegative() && minor != 0 {
		return "-" + s
	}
	return s
}

// Signed formats d with an explicit sign: "+$10.00", "-$3.00".
func Signed(d decimal.Decimal, code string) string {
	if d.IsNegative() {
		return Amount(d, code)
	}
	return "+" + Amount(d, code)
}

// Date formats a date the way es-ES locales do: day/month/year without
// padding. The zero date formats as "".
func Date(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Month returns the Spanish month name and year, e.g. "marzo 2024".
func Month(year int, month time.Month) string {
	if month < time.January || month > time.December {
		return fmt.Sprintf("%d-%02d", year, int(month))
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	d, err := model.ParseDate(s + "-01")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return d.Year(), d.Month(), nil
}
