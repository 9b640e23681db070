package dto

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a price the way the site shows it: space-grouped
// thousands, no decimals for whole amounts.
func FormatAmount(amount decimal.Decimal) string {
	if amount.IsInteger() {
		return humanize.FormatInteger("# ###.", int(amount.IntPart()))
	}
	return humanize.FormatFloat("# ###,##", amount.InexactFloat64())
}

// FormatMoney appends the currency code to a formatted amount.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return FormatAmount(amount)
	}
	return FormatAmount(amount) + " " + currency
}
