package costcalc

import (
	"math"
	"testing"
)

func TestCalculateTotalCost(t *testing.T) {
	testCases := []struct {
		name     string
		quantity float64
		price    float64
		unit     string
		want     float64
	}{
		{"grams priced per kg", 5000, 10.25, "g", 51.25},
		{"milliliters priced per liter", 20000, 2.30, "ml", 46.00},
		{"pieces", 40, 1.45, "pcs", 58.00},
		{"kilograms direct", 2.5, 100, "kg", 250},
		{"liters direct", 3, 2.5, "l", 7.5},
		{"cyrillic grams", 500, 12, "г", 6},
		{"zero quantity", 0, 10, "g", 0},
		{"negative quantity", -5, 10, "g", 0},
		{"zero price", 10, 0, "kg", 0},
		{"NaN quantity", math.NaN(), 10, "kg", 0},
		{"infinite quantity", math.Inf(1), 10, "g", 0},
		{"infinite price", 10, math.Inf(1), "kg", 0},
		{"NaN price", 10, math.NaN(), "kg", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateTotalCost(tc.quantity, tc.price, tc.unit)
			if got != tc.want {
				t.Errorf("CalculateTotalCost(%v, %v, %q) = %v, want %v", tc.quantity, tc.price, tc.unit, got, tc.want)
			}
		})
	}
}

func TestCalculatePricePerUnit(t *testing.T) {
	if got := CalculatePricePerUnit(51.25, 5000, "g"); got != 10.25 {
		t.Errorf("expected 10.25, got %v", got)
	}
	if got := CalculatePricePerUnit(46, 20000, "ml"); got != 2.3 {
		t.Errorf("expected 2.3, got %v", got)
	}
	if got := CalculatePricePerUnit(10, 0, "g"); got != 0 {
		t.Errorf("expected 0 for zero quantity, got %v", got)
	}
	if got := CalculatePricePerUnit(-1, 10, "g"); got != 0 {
		t.Errorf("expected 0 for negative cost, got %v", got)
	}

	nonFinite := []struct {
		name            string
		total, quantity float64
	}{
		{"infinite cost", math.Inf(1), 10},
		{"infinite quantity", 10, math.Inf(1)},
		{"NaN cost", math.NaN(), 10},
		{"NaN quantity", 10, math.NaN()},
	}
	for _, tc := range nonFinite {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculatePricePerUnit(tc.total, tc.quantity, "g"); got != 0 {
				t.Errorf("CalculatePricePerUnit(%v, %v) = %v, want 0", tc.total, tc.quantity, got)
			}
		})
	}
}

func TestCostPriceInverse(t *testing.T) {
	quantities := []float64{0.5, 1, 250, 5000, 12345.678}
	prices := []float64{0.01, 1.45, 10.25, 999.99}
	units := []string{"g", "kg", "ml", "l", "pcs"}

	for _, u := range units {
		for _, q := range quantities {
			for _, p := range prices {
				total := CalculateTotalCost(q, p, u)
				back := CalculatePricePerUnit(total, q, u)
				if math.Abs(back-p) > 1e-9*math.Max(1, p) {
					t.Errorf("unit %s q=%v p=%v: round trip gave %v", u, q, p, back)
				}
			}
		}
	}
}

func TestStrictVariants(t *testing.T) {
	if _, err := TotalCost(0, 10, UnitGram); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := TotalCost(10, -1, UnitGram); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	got, err := TotalCost(5000, 10.25, UnitGram)
	if err != nil || got != 51.25 {
		t.Errorf("expected 51.25, got %v (%v)", got, err)
	}
	if _, err := PricePerUnit(10, -3, UnitKilogram); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := PricePerUnit(math.Inf(1), 3, UnitKilogram); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := TotalCost(math.NaN(), 3, UnitKilogram); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	got, err = PricePerUnit(51.25, 5000, UnitGram)
	if err != nil || got != 10.25 {
		t.Errorf("expected 10.25, got %v (%v)", got, err)
	}
}

func TestSuggestPrice(t *testing.T) {
	if got := SuggestPrice(123.456, 3); got != 370.37 {
		t.Errorf("expected 370.37, got %v", got)
	}
	if got := SuggestPrice(0, 3); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestUnits(t *testing.T) {
	if ParseUnit(" КГ ") != UnitKilogram {
		t.Errorf("expected kg alias to parse")
	}
	if !Compatible(UnitGram, UnitKilogram) {
		t.Errorf("g and kg must be compatible")
	}
	if Compatible(UnitGram, UnitLiter) {
		t.Errorf("g and l must not be compatible")
	}
	if Compatible(Unit("box"), UnitPiece) {
		t.Errorf("unknown unit must only match itself")
	}
}
