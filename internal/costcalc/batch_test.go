package costcalc

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestReconcileBatch(t *testing.T) {
	t.Run("netto from waste", func(t *testing.T) {
		b, err := ReconcileBatch(BatchInput{Unit: UnitKilogram, Brutto: ptr(10), WastePercent: ptr(15), GrossPrice: ptr(1000)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Netto != 8.5 {
			t.Errorf("expected netto 8.5, got %v", b.Netto)
		}
		if b.PricePerUnit != 100 {
			t.Errorf("expected price per unit 100, got %v", b.PricePerUnit)
		}
		if b.NetPrice != 850 {
			t.Errorf("expected net price 850, got %v", b.NetPrice)
		}
		if b.NetPricePerUnit != 117.6471 {
			t.Errorf("expected net price per unit 117.6471, got %v", b.NetPricePerUnit)
		}
	})

	t.Run("waste from netto wins over waste", func(t *testing.T) {
		b, err := ReconcileBatch(BatchInput{Unit: UnitGram, Brutto: ptr(1000), Netto: ptr(800), WastePercent: ptr(5)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.WastePercent != 20 {
			t.Errorf("expected waste 20, got %v", b.WastePercent)
		}
	})

	t.Run("liters priced per liter from ml", func(t *testing.T) {
		b, err := ReconcileBatch(BatchInput{Unit: UnitMilliliter, Brutto: ptr(20000), GrossPrice: ptr(46)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.PricePerUnit != 2.3 {
			t.Errorf("expected 2.3 per liter, got %v", b.PricePerUnit)
		}
	})

	t.Run("pieces force netto to brutto", func(t *testing.T) {
		b, err := ReconcileBatch(BatchInput{Unit: UnitPiece, Brutto: ptr(40), Netto: ptr(30), WastePercent: ptr(10)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Netto != 40 || b.WastePercent != 0 {
			t.Errorf("expected netto 40 and no waste, got %v / %v", b.Netto, b.WastePercent)
		}
	})

	errorCases := []struct {
		name string
		in   BatchInput
		want error
	}{
		{"missing brutto", BatchInput{Unit: UnitKilogram}, ErrInvalidQuantity},
		{"negative brutto", BatchInput{Unit: UnitKilogram, Brutto: ptr(-1)}, ErrInvalidQuantity},
		{"netto above brutto", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), Netto: ptr(2)}, ErrNettoExceedsBrutto},
		{"zero netto", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), Netto: ptr(0)}, ErrInvalidQuantity},
		{"full waste", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), WastePercent: ptr(100)}, ErrInvalidWaste},
		{"negative price", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), GrossPrice: ptr(-5)}, ErrInvalidPrice},
		{"infinite brutto", BatchInput{Unit: UnitKilogram, Brutto: ptr(math.Inf(1))}, ErrInvalidQuantity},
		{"NaN brutto", BatchInput{Unit: UnitPiece, Brutto: ptr(math.NaN())}, ErrInvalidQuantity},
		{"NaN netto", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), Netto: ptr(math.NaN())}, ErrInvalidQuantity},
		{"infinite netto", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), Netto: ptr(math.Inf(1))}, ErrInvalidQuantity},
		{"NaN waste", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), WastePercent: ptr(math.NaN())}, ErrInvalidWaste},
		{"infinite price", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), GrossPrice: ptr(math.Inf(1))}, ErrInvalidPrice},
		{"NaN price", BatchInput{Unit: UnitKilogram, Brutto: ptr(1), GrossPrice: ptr(math.NaN())}, ErrInvalidPrice},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReconcileBatch(tc.in); err != tc.want {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
