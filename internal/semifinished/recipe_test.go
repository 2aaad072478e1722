package semifinished

import (
	"errors"
	"testing"

	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/models"
)

func rice() models.Ingredient {
	return models.Ingredient{ID: 1, Name: "Рис", Unit: "kg", NetPricePerUnit: 120}
}

func vinegar() models.Ingredient {
	return models.Ingredient{ID: 2, Name: "Уксус рисовый", Unit: "l", NetPricePerUnit: 400}
}

func TestPriceItem(t *testing.T) {
	testCases := []struct {
		name      string
		ing       models.Ingredient
		quantity  float64
		unit      string
		wantUnit  string
		wantTotal float64
	}{
		{"grams of a kg batch", rice(), 500, "г", "g", 60},
		{"same unit", rice(), 2, "kg", "kg", 240},
		{"empty unit falls back to batch unit", rice(), 1.5, "", "kg", 180},
		{"milliliters of a liter batch", vinegar(), 50, "ml", "ml", 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item, err := PriceItem(tc.ing, tc.quantity, tc.unit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Unit != tc.wantUnit {
				t.Errorf("unit = %q, want %q", item.Unit, tc.wantUnit)
			}
			if item.Total != tc.wantTotal {
				t.Errorf("total = %v, want %v", item.Total, tc.wantTotal)
			}
			if item.PricePerUnit != tc.ing.NetPricePerUnit || item.IngredientID != tc.ing.ID {
				t.Errorf("price or reference not locked in: %+v", item)
			}
		})
	}
}

func TestPriceItem_Errors(t *testing.T) {
	if _, err := PriceItem(rice(), 100, "ml"); !errors.Is(err, costcalc.ErrIncompatibleUnits) {
		t.Errorf("expected ErrIncompatibleUnits, got %v", err)
	}
	if _, err := PriceItem(rice(), 0, "g"); !errors.Is(err, costcalc.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCostPerUnit(t *testing.T) {
	items := []models.SemiFinishedItem{{Total: 60}, {Total: 20}, {Total: 0.5}}

	got, err := CostPerUnit(items, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 40.25 {
		t.Errorf("expected 40.25, got %v", got)
	}
	if TotalOf(items) != 80.5 {
		t.Errorf("expected total 80.5, got %v", TotalOf(items))
	}

	if _, err := CostPerUnit(items, 0); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("expected ErrInvalidOutput, got %v", err)
	}
	if _, err := CostPerUnit(nil, 1); !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
}

func TestCanonicalPrice(t *testing.T) {
	testCases := []struct {
		cost float64
		unit string
		want float64
	}{
		{0.08, "g", 80},
		{0.08, "ml", 80},
		{12, "kg", 12},
		{35, "pcs", 35},
		{0, "g", 0},
	}
	for _, tc := range testCases {
		if got := CanonicalPrice(tc.cost, tc.unit); got != tc.want {
			t.Errorf("CanonicalPrice(%v, %s) = %v, want %v", tc.cost, tc.unit, got, tc.want)
		}
	}
}
