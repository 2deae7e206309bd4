// Package format renders pipeline numbers for display: rupee amounts,
// percentages and the negative-return highlight flags.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	CurrencyCode = "INR"
	// Missing marks an absent amount in formatted output.
	Missing = "-"
)

var rupee = func() *money.Formatter {
	cur := money.GetCurrency(CurrencyCode)
	return money.NewFormatter(2, ".", ",", cur.Grapheme, "$ 1")
}()

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Currency renders an amount as "₹ 1,234.56". The sign follows the symbol,
// as in "₹ -5.00".
func Currency(amount decimal.Decimal) string {
	minor := amount.Abs().Shift(2).Round(0)
	var s string
	if minor.GreaterThan(maxMinorUnits) {
		s = rupee.Grapheme + " " + group(minor.Shift(-2).StringFixed(2))
	} else {
		s = rupee.Format(minor.IntPart())
	}
	if amount.IsNegative() && !minor.IsZero() {
		s = strings.Replace(s, rupee.Grapheme+" ", rupee.Grapheme+" -", 1)
	}
	return s
}

// group inserts thousands separators into a plain "1234567.89" string.
func group(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString("." + frac)
	}
	return b.String()
}

func CurrencyNull(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return Missing
	}
	return Currency(amount.Decimal)
}

// Percent renders a value with two decimals and a trailing percent sign.
func Percent(value decimal.Decimal) string {
	return value.StringFixed(2) + "%"
}

func Quantity(q decimal.NullDecimal) string {
	if !q.Valid {
		return ""
	}
	return q.Decimal.String()
}

// Highlight flags each formatted percentage whose value is strictly negative.
// The value is read back from the text, so "-0.00%" is not flagged.
func Highlight(formatted []string) []bool {
	flags := make([]bool, len(formatted))
	for i, s := range formatted {
		v, err := ParsePercent(s)
		if err != nil {
			continue
		}
		flags[i] = v.IsNegative()
	}
	return flags
}

func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return decimal.Zero, fmt.Errorf("not a percentage: %q", s)
	}
	return decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
}
