package semifinished

import (
	"errors"
	"fmt"

	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/models"
)

var (
	ErrNoItems       = errors.New("recipe has no items")
	ErrInvalidOutput = errors.New("output quantity must be greater than zero")
)

// PriceItem turns a recipe line into a stored item, locking in the
// ingredient's current net price per unit. An empty unit means the
// ingredient's own unit.
func PriceItem(ing models.Ingredient, quantity float64, unit string) (models.SemiFinishedItem, error) {
	u := costcalc.Unit(ing.Unit)
	if unit != "" {
		u = costcalc.ParseUnit(unit)
	}
	if !costcalc.Compatible(u, costcalc.Unit(ing.Unit)) {
		return models.SemiFinishedItem{}, fmt.Errorf("%s (%s → %s): %w", ing.Name, ing.Unit, u, costcalc.ErrIncompatibleUnits)
	}

	total, err := costcalc.TotalCost(quantity, ing.NetPricePerUnit, u)
	if err != nil {
		return models.SemiFinishedItem{}, fmt.Errorf("%s: %w", ing.Name, err)
	}

	return models.SemiFinishedItem{
		IngredientID: ing.ID,
		Ingredient:   ing,
		Quantity:     quantity,
		Unit:         string(u),
		PricePerUnit: ing.NetPricePerUnit,
		Total:        costcalc.RoundMoney(total),
	}, nil
}

func TotalOf(items []models.SemiFinishedItem) float64 {
	totals := make([]float64, 0, len(items))
	for _, it := range items {
		totals = append(totals, it.Total)
	}
	return costcalc.Sum(totals...)
}

// CostPerUnit is the recipe cost spread over one unit of output.
func CostPerUnit(items []models.SemiFinishedItem, outputQuantity float64) (float64, error) {
	if !(outputQuantity > 0) {
		return 0, ErrInvalidOutput
	}
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	return costcalc.Divide(TotalOf(items), outputQuantity, 4), nil
}

// CanonicalPrice converts a per-output-unit cost into the per-kilogram,
// per-liter or per-piece price that costcalc multiplies quantities by.
func CanonicalPrice(costPerUnit float64, outputUnit string) float64 {
	return costcalc.CalculatePricePerUnit(costPerUnit, 1, outputUnit)
}
