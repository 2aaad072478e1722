package menu

import (
	"errors"
	"fmt"

	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/models"
	"fodi-backend/internal/semifinished"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ComponentRequest struct {
	Kind           models.ComponentKind `json:"kind"`
	IngredientID   *uint                `json:"ingredient_id"`
	SemiFinishedID *uint                `json:"semi_finished_id"`
	Quantity       float64              `json:"quantity"`
	Unit           string               `json:"unit"`
}

type Quote struct {
	Components     []models.ProductComponent
	Cost           float64
	Markup         float64
	SuggestedPrice float64
}

// IngredientComponent prices a raw ingredient line at the batch's net price.
func IngredientComponent(ing models.Ingredient, quantity float64, unit string) (models.ProductComponent, error) {
	item, err := semifinished.PriceItem(ing, quantity, unit)
	if err != nil {
		return models.ProductComponent{}, err
	}
	id := ing.ID
	return models.ProductComponent{
		Kind:         models.ComponentIngredient,
		IngredientID: &id,
		Name:         ing.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		PricePerUnit: item.PricePerUnit,
		Total:        item.Total,
	}, nil
}

// SemiFinishedComponent prices a semi-finished line. The recipe cost is per
// output unit, so it is lifted to a canonical price before multiplying.
func SemiFinishedComponent(sf models.SemiFinished, quantity float64, unit string) (models.ProductComponent, error) {
	out := costcalc.Unit(sf.OutputUnit)
	u := out
	if unit != "" {
		u = costcalc.ParseUnit(unit)
	}
	if !costcalc.Compatible(u, out) {
		return models.ProductComponent{}, fmt.Errorf("%s (%s → %s): %w", sf.Name, out, u, costcalc.ErrIncompatibleUnits)
	}

	price := semifinished.CanonicalPrice(sf.CostPerUnit, sf.OutputUnit)
	total, err := costcalc.TotalCost(quantity, price, u)
	if err != nil {
		return models.ProductComponent{}, fmt.Errorf("%s: %w", sf.Name, err)
	}

	id := sf.ID
	return models.ProductComponent{
		Kind:           models.ComponentSemiFinished,
		SemiFinishedID: &id,
		Name:           sf.Name,
		Quantity:       quantity,
		Unit:           string(u),
		PricePerUnit:   price,
		Total:          costcalc.RoundMoney(total),
	}, nil
}

func NewQuote(components []models.ProductComponent, markup float64) Quote {
	totals := make([]float64, 0, len(components))
	for _, c := range components {
		totals = append(totals, c.Total)
	}
	cost := costcalc.RoundMoney(costcalc.Sum(totals...))
	return Quote{
		Components:     components,
		Cost:           cost,
		Markup:         markup,
		SuggestedPrice: costcalc.SuggestPrice(cost, markup),
	}
}

func badLine(i int, msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Состав, строка %d: %s", i+1, msg))
}

func componentErrorMessage(err error) string {
	switch {
	case errors.Is(err, costcalc.ErrIncompatibleUnits):
		return "единица не совместима (" + err.Error() + ")"
	case errors.Is(err, costcalc.ErrInvalidQuantity):
		return "количество должно быть больше нуля"
	case errors.Is(err, costcalc.ErrInvalidPrice):
		return "отрицательная цена"
	}
	return err.Error()
}

// BuildComponents resolves and prices every requested line with two
// lookups, one per kind. Invalid lines come back as 400 fiber errors.
func BuildComponents(db *gorm.DB, reqs []ComponentRequest) ([]models.ProductComponent, error) {
	var ingIDs, sfIDs []uint
	for i, r := range reqs {
		switch r.Kind {
		case models.ComponentIngredient:
			if r.IngredientID == nil {
				return nil, badLine(i, "не указан ингредиент")
			}
			ingIDs = append(ingIDs, *r.IngredientID)
		case models.ComponentSemiFinished:
			if r.SemiFinishedID == nil {
				return nil, badLine(i, "не указан полуфабрикат")
			}
			sfIDs = append(sfIDs, *r.SemiFinishedID)
		default:
			return nil, badLine(i, "тип должен быть ingredient или semi_finished")
		}
	}

	ingredients := make(map[uint]models.Ingredient)
	if len(ingIDs) > 0 {
		var list []models.Ingredient
		if err := db.Where("id IN ?", ingIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for _, ing := range list {
			ingredients[ing.ID] = ing
		}
	}
	semis := make(map[uint]models.SemiFinished)
	if len(sfIDs) > 0 {
		var list []models.SemiFinished
		if err := db.Where("id IN ?", sfIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for _, sf := range list {
			semis[sf.ID] = sf
		}
	}

	out := make([]models.ProductComponent, 0, len(reqs))
	for i, r := range reqs {
		var (
			comp models.ProductComponent
			err  error
		)
		if r.Kind == models.ComponentIngredient {
			ing, ok := ingredients[*r.IngredientID]
			if !ok {
				return nil, badLine(i, fmt.Sprintf("ингредиент %d не найден", *r.IngredientID))
			}
			comp, err = IngredientComponent(ing, r.Quantity, r.Unit)
		} else {
			sf, ok := semis[*r.SemiFinishedID]
			if !ok {
				return nil, badLine(i, fmt.Sprintf("полуфабрикат %d не найден", *r.SemiFinishedID))
			}
			comp, err = SemiFinishedComponent(sf, r.Quantity, r.Unit)
		}
		if err != nil {
			return nil, badLine(i, componentErrorMessage(err))
		}
		out = append(out, comp)
	}
	return out, nil
}
