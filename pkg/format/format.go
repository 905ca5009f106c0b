package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the truncation applied to generic quantities and prices.
const DefaultPlaces = 8

// majorPairs get a coarser 2-decimal price display; everything else keeps
// full precision so low-priced alts stay readable.
var majorPairs = map[string]bool{
	"BTCUSDT": true,
	"ETHUSDT": true,
}

// Decimal renders d truncated (not rounded) to the given number of decimal
// places, with trailing zeros stripped and thousands separators in the
// integer part. E.g. 1234.50000000 -> "1,234.5".
func Decimal(d decimal.Decimal, places int32) string {
	s := d.Truncate(places).String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
		fracPart = strings.TrimRight(fracPart, "0")
	}

	out := groupThousands(intPart)
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Quantity renders a quantity with the default precision.
func Quantity(d decimal.Decimal) string {
	return Decimal(d, DefaultPlaces)
}

// Price renders a price, using 2 decimal places for major pairs.
func Price(d decimal.Decimal, symbol string) string {
	if majorPairs[symbol] {
		return Decimal(d, 2)
	}
	return Decimal(d, DefaultPlaces)
}

// USD renders a PnL-style dollar amount with 2 decimal places and a sign.
func USD(d decimal.Decimal) string {
	return "$" + Decimal(d, 2)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(n + n/3)

	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
