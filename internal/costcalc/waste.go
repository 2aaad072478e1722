package costcalc

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type WasteTarget string

const (
	TargetNetto WasteTarget = "netto"
	TargetWaste WasteTarget = "waste"
)

// NormalizeNumberInput replaces a decimal comma with a point. The result is
// not guaranteed to be numeric.
func NormalizeNumberInput(text string) string {
	return strings.Replace(text, ",", ".", 1)
}

func parseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(NormalizeNumberInput(text))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(v) {
		return 0, false
	}
	return v, true
}

// IsFinite reports whether v is neither NaN nor an infinity. strconv accepts
// "inf" and "nan", decimal does not.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CalculateWaste derives the third of {brutto, netto, waste%} from the other
// two. Invalid or incomplete input yields an empty string, never an error:
// the form calls this on every keystroke.
func CalculateWaste(brutto, netto, wastePercent string, target WasteTarget) string {
	b, okB := parseNumber(brutto)
	if !okB || b <= 0 {
		return ""
	}

	switch target {
	case TargetNetto:
		w, ok := parseNumber(wastePercent)
		if !ok || w < 0 || w > 100 {
			return ""
		}
		return nettoFromWaste(b, w).StringFixed(3)

	case TargetWaste:
		n, ok := parseNumber(netto)
		if !ok || n <= 0 || n > b {
			return ""
		}
		return wasteFromNetto(b, n).StringFixed(2)
	}
	return ""
}

func nettoFromWaste(brutto, waste float64) decimal.Decimal {
	b := decimal.NewFromFloat(brutto)
	keep := hundred.Sub(decimal.NewFromFloat(waste)).Div(hundred)
	return b.Mul(keep)
}

func wasteFromNetto(brutto, netto float64) decimal.Decimal {
	b := decimal.NewFromFloat(brutto)
	n := decimal.NewFromFloat(netto)
	return b.Sub(n).Div(b).Mul(hundred)
}

// YieldPercent is netto as a share of brutto, 0 when brutto is not positive.
func YieldPercent(brutto, netto float64) float64 {
	if !(brutto > 0) || !IsFinite(brutto) || !IsFinite(netto) {
		return 0
	}
	return decimal.NewFromFloat(netto).Div(decimal.NewFromFloat(brutto)).Mul(hundred).InexactFloat64()
}
