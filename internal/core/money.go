// Package core provides money parsing and handling utilities.
//
// This file contains the amount coercion applied when a transaction is
// stored and the currency table used for display.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the leading number of a string the way a lenient
// float parser does: "12.5abc" yields "12.5", ".5" yields ".5".
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount coerces s to a decimal amount.
//
// Leading whitespace is ignored and trailing garbage after the number is
// dropped. A string with no leading number, or a negative number, is
// rejected with ErrInvalidAmount since the sign of a transaction is carried
// by its type.
//
// Examples:
//
//	ParseAmount("12.50")  -> 12.5, nil
//	ParseAmount(" 7kg")   -> 7, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
//	ParseAmount("-3")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// "5." is accepted by the prefix but not by the decimal parser.
	m = strings.TrimSuffix(m, ".")
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders s with two decimals, or "0.00" when s is not numeric.
func FormatAmount(s string) string {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	m = strings.TrimSuffix(m, ".")
	d, err := decimal.NewFromString(m)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// DisplayCurrency is a currency symbol with its rate against USD.
type DisplayCurrency struct {
	Symbol string
	Rate   decimal.Decimal
}

// Currencies is the display table used by the dashboard.
var Currencies = map[string]DisplayCurrency{
	"USD": {Symbol: "$", Rate: decimal.NewFromInt(1)},
	"EUR": {Symbol: "€", Rate: decimal.RequireFromString("0.85")},
	"GBP": {Symbol: "£", Rate: decimal.RequireFromString("0.73")},
	"CAD": {Symbol: "C$", Rate: decimal.RequireFromString("1.25")},
	"AUD": {Symbol: "A$", Rate: decimal.RequireFromString("1.35")},
	"NGN": {Symbol: "₦", Rate: decimal.RequireFromString("411.50")},
	"RWF": {Symbol: "FRw", Rate: decimal.RequireFromString("1030.00")},
	"ZAR": {Symbol: "R", Rate: decimal.RequireFromString("14.85")},
	"KES": {Symbol: "KSh", Rate: decimal.RequireFromString("110.25")},
	"GHS": {Symbol: "₵", Rate: decimal.RequireFromString("6.15")},
	"JPY": {Symbol: "¥", Rate: decimal.RequireFromString("110.15")},
	"CHF": {Symbol: "CHF", Rate: decimal.RequireFromString("0.92")},
	"CNY": {Symbol: "¥", Rate: decimal.RequireFromString("6.45")},
	"INR": {Symbol: "₹", Rate: decimal.RequireFromString("74.85")},
}

// LookupCurrency returns the display currency for code, falling back to USD.
func LookupCurrency(code string) DisplayCurrency {
	if c, ok := Currencies[strings.ToUpper(code)]; ok {
		return c
	}
	return Currencies["USD"]
}

// FormatCurrency renders the absolute value of amount with the symbol of code.
func FormatCurrency(amount decimal.Decimal, code string) string {
	return LookupCurrency(code).Symbol + amount.Abs().StringFixed(2)
}
