package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// EURToBGNRate is the fixed peg between the two display currencies.
// Bulgaria's currency board rate does not float.
const EURToBGNRate = 1.95583

// Currency is one of the two display currencies every amount is stored in.
type Currency string

const (
	CurrencyBGN Currency = "BGN"
	CurrencyEUR Currency = "EUR"
)

// Valid reports whether c is a known currency code.
func (c Currency) Valid() bool {
	return c == CurrencyBGN || c == CurrencyEUR
}

// EURCentsToBGNCents converts EUR minor units to BGN minor units at the
// fixed rate, rounding half away from zero.
func EURCentsToBGNCents(eurCents int64) int64 {
	return int64(math.Round(float64(eurCents) * EURToBGNRate))
}

// BGNCentsToEURCents converts BGN minor units to EUR minor units at the
// fixed rate, rounding half away from zero.
func BGNCentsToEURCents(bgnCents int64) int64 {
	return int64(math.Round(float64(bgnCents) / EURToBGNRate))
}

// AmountInput carries whichever monetary representations the caller has.
// Fields are resolved into canonical cents through a fixed precedence, per
// currency: exact cents first, then a decimal amount, then the original
// user-entered amount converted at the fixed rate.
type AmountInput struct {
	EURCents *int64
	BGNCents *int64

	EURAmount *decimal.Decimal
	BGNAmount *decimal.Decimal

	OriginalAmount   *decimal.Decimal
	OriginalCurrency Currency
}

// Totals is the canonical dual-currency pair. A nil side means the value
// could not be determined from the input.
type Totals struct {
	EURCents *int64
	BGNCents *int64
}

// amountSource identifies which representation won the precedence race.
type amountSource int

const (
	sourceNone amountSource = iota
	sourceCents
	sourceDecimal
	sourceOriginal
)

// ResolveTotals reduces an AmountInput to canonical {eurCents, bgnCents}.
// If only one side resolves, the other is derived at the fixed rate.
// Nothing resolving yields {nil, nil}; ResolveTotals never fails.
func ResolveTotals(in AmountInput) Totals {
	eur, eurSrc := resolveSide(in.EURCents, in.EURAmount, in.OriginalAmount, in.OriginalCurrency == CurrencyEUR)
	bgn, bgnSrc := resolveSide(in.BGNCents, in.BGNAmount, in.OriginalAmount, in.OriginalCurrency == CurrencyBGN)

	if eurSrc == sourceNone && bgnSrc != sourceNone {
		derived := BGNCentsToEURCents(bgn)
		eur = derived
		eurSrc = bgnSrc
	}
	if bgnSrc == sourceNone && eurSrc != sourceNone {
		derived := EURCentsToBGNCents(eur)
		bgn = derived
		bgnSrc = eurSrc
	}

	var t Totals
	if eurSrc != sourceNone {
		t.EURCents = &eur
	}
	if bgnSrc != sourceNone {
		t.BGNCents = &bgn
	}
	return t
}

func resolveSide(cents *int64, amount, original *decimal.Decimal, originalMatches bool) (int64, amountSource) {
	if cents != nil {
		return *cents, sourceCents
	}
	if amount != nil {
		return decimalToCents(*amount), sourceDecimal
	}
	if original != nil && originalMatches {
		return decimalToCents(*original), sourceOriginal
	}
	return 0, sourceNone
}

func decimalToCents(d decimal.Decimal) int64 {
	f, _ := d.Float64()
	return int64(math.Round(f * 100))
}

// CentsToDecimal converts minor units back to a two-place decimal amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatMoney renders a dual-currency amount, EUR first.
func FormatMoney(eurCents, bgnCents int64) string {
	return fmt.Sprintf("%s EUR (%s BGN)", CentsToDecimal(eurCents).StringFixed(2), CentsToDecimal(bgnCents).StringFixed(2))
}

// Delta is a signed balance change for one account in both currencies.
type Delta struct {
	BGNCents int64
	EURCents int64
}

// ExpenseDelta builds a delta that decreases a balance, from unsigned magnitudes.
func ExpenseDelta(bgnCents, eurCents int64) Delta {
	return Delta{BGNCents: -abs64(bgnCents), EURCents: -abs64(eurCents)}
}

// IncomeDelta builds a delta that increases a balance, from unsigned magnitudes.
func IncomeDelta(bgnCents, eurCents int64) Delta {
	return Delta{BGNCents: abs64(bgnCents), EURCents: abs64(eurCents)}
}

// Neg returns the reversing delta.
func (d Delta) Neg() Delta {
	return Delta{BGNCents: -d.BGNCents, EURCents: -d.EURCents}
}

// Add returns the sum of two deltas.
func (d Delta) Add(o Delta) Delta {
	return Delta{BGNCents: d.BGNCents + o.BGNCents, EURCents: d.EURCents + o.EURCents}
}

// IsZero reports whether applying d would change nothing.
func (d Delta) IsZero() bool {
	return d.BGNCents == 0 && d.EURCents == 0
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
