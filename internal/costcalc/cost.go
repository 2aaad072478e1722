package costcalc

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidWaste       = errors.New("waste percent must be within [0, 100)")
	ErrNettoExceedsBrutto = errors.New("netto must not exceed brutto")
	ErrIncompatibleUnits  = errors.New("units are not compatible")
)

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

func canonicalQuantity(quantity float64, unit Unit) decimal.Decimal {
	q := decimal.NewFromFloat(quantity)
	if unit.scaledToCanonical() {
		return q.Div(thousand)
	}
	return q
}

// CalculateTotalCost multiplies a quantity by a canonical-unit price. Grams and
// milliliters are converted to kilograms and liters first. Any non-positive
// input gives 0.
func CalculateTotalCost(quantity, pricePerUnit float64, unit string) float64 {
	if !(quantity > 0) || !(pricePerUnit > 0) || !IsFinite(quantity) || !IsFinite(pricePerUnit) {
		return 0
	}
	u := ParseUnit(unit)
	return canonicalQuantity(quantity, u).Mul(decimal.NewFromFloat(pricePerUnit)).InexactFloat64()
}

// CalculatePricePerUnit is the inverse of CalculateTotalCost.
func CalculatePricePerUnit(totalCost, quantity float64, unit string) float64 {
	if !(totalCost > 0) || !(quantity > 0) || !IsFinite(totalCost) || !IsFinite(quantity) {
		return 0
	}
	u := ParseUnit(unit)
	q := canonicalQuantity(quantity, u)
	if q.IsZero() {
		return 0
	}
	return decimal.NewFromFloat(totalCost).Div(q).InexactFloat64()
}

// TotalCost is the validating form of CalculateTotalCost used on writes.
func TotalCost(quantity, pricePerUnit float64, unit Unit) (float64, error) {
	if !(quantity > 0) || !IsFinite(quantity) {
		return 0, ErrInvalidQuantity
	}
	if !(pricePerUnit >= 0) || !IsFinite(pricePerUnit) {
		return 0, ErrInvalidPrice
	}
	return CalculateTotalCost(quantity, pricePerUnit, string(unit)), nil
}

// PricePerUnit is the validating form of CalculatePricePerUnit.
func PricePerUnit(totalCost, quantity float64, unit Unit) (float64, error) {
	if !(quantity > 0) || !IsFinite(quantity) {
		return 0, ErrInvalidQuantity
	}
	if !(totalCost >= 0) || !IsFinite(totalCost) {
		return 0, ErrInvalidPrice
	}
	return CalculatePricePerUnit(totalCost, quantity, string(unit)), nil
}

// SuggestPrice applies a markup multiple to a cost, rounded to kopecks.
func SuggestPrice(cost, markup float64) float64 {
	if !(cost > 0) || !(markup > 0) || !IsFinite(cost) || !IsFinite(markup) {
		return 0
	}
	return round(decimal.NewFromFloat(cost).Mul(decimal.NewFromFloat(markup)).InexactFloat64(), 2)
}

// Sum adds money amounts without float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if !IsFinite(v) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Divide returns a/b rounded to places, 0 when b is not positive.
func Divide(a, b float64, places int32) float64 {
	if !(b > 0) || !IsFinite(a) || !IsFinite(b) {
		return 0
	}
	return decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Round(places).InexactFloat64()
}

func round(v float64, places int32) float64 {
	if !IsFinite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundMoney rounds an amount to two decimals.
func RoundMoney(v float64) float64 { return round(v, 2) }
