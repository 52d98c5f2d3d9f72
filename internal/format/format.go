// Package format holds the display helpers shared by receipts, listings and reports.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	countryCode  = "234"
	nairaSymbol  = "₦"
	dateLayout   = "2 Jan 2006"
	isoDateShort = "2006-01-02"
)

var grouping = message.NewPrinter(language.English)

// Phone strips every non-digit, swaps a leading 0 for the Nigerian country code and prefixes "+".
// Length and other country codes are not validated.
func Phone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	}
	return "+" + digits
}

// Currency renders amount as Naira with no decimal places and thousands grouping, e.g. ₦12,500.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + nairaSymbol + grouping.Sprintf("%d", rounded.IntPart())
}

// Date formats an ISO-8601 timestamp as "D MMM YYYY". Unparseable input is returned unchanged.
func Date(iso string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, isoDateShort} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format(dateLayout)
		}
	}
	return iso
}
