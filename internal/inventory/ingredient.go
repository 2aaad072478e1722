package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const timeLayout = time.RFC3339

type IngredientResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	BatchNumber     string  `json:"batch_number"`
	Category        string  `json:"category"`
	Supplier        string  `json:"supplier"`
	Brutto          float64 `json:"brutto"`
	Netto           float64 `json:"netto"`
	WastePercent    float64 `json:"waste_percent"`
	YieldPercent    float64 `json:"yield_percent"`
	ShelfLifeDays   *int    `json:"shelf_life_days"`
	ExpiryDate      string  `json:"expiry_date"`
	GrossPrice      float64 `json:"gross_price"`
	NetPrice        float64 `json:"net_price"`
	PricePerUnit    float64 `json:"price_per_unit"`
	NetPricePerUnit float64 `json:"net_price_per_unit"`
	MovementsCount  int64   `json:"movements_count"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type IngredientGroupResponse struct {
	Key        string               `json:"key"`
	Name       string               `json:"name"`
	Unit       string               `json:"unit"`
	TotalNetto float64              `json:"total_netto"`
	Batches    []IngredientResponse `json:"batches"`
}

// IngredientRequest is used for both create and update; nil fields are left
// untouched on update.
type IngredientRequest struct {
	Name          *string  `json:"name"`
	Unit          *string  `json:"unit"`
	BatchNumber   *string  `json:"batch_number"`
	Category      *string  `json:"category"`
	Supplier      *string  `json:"supplier"`
	Brutto        *float64 `json:"brutto"`
	Netto         *float64 `json:"netto"`
	WastePercent  *float64 `json:"waste_percent"`
	ShelfLifeDays *int     `json:"shelf_life_days"`
	GrossPrice    *float64 `json:"gross_price"`
}

func toIngredientResponse(ing models.Ingredient) IngredientResponse {
	expiry := costcalc.NoExpiry
	if ing.ShelfLifeDays != nil {
		expiry = costcalc.ExpiryDateFrom(ing.CreatedAt, *ing.ShelfLifeDays)
	}
	return IngredientResponse{
		ID:              ing.ID,
		Name:            ing.Name,
		Unit:            ing.Unit,
		BatchNumber:     ing.BatchNumber,
		Category:        ing.Category,
		Supplier:        ing.Supplier,
		Brutto:          ing.Brutto,
		Netto:           ing.Netto,
		WastePercent:    ing.WastePercent,
		YieldPercent:    costcalc.YieldPercent(ing.Brutto, ing.Netto),
		ShelfLifeDays:   ing.ShelfLifeDays,
		ExpiryDate:      expiry,
		GrossPrice:      ing.GrossPrice,
		NetPrice:        ing.NetPrice,
		PricePerUnit:    ing.PricePerUnit,
		NetPricePerUnit: ing.NetPricePerUnit,
		MovementsCount:  ing.MovementsCount,
		CreatedAt:       ing.CreatedAt.Format(timeLayout),
		UpdatedAt:       ing.UpdatedAt.Format(timeLayout),
	}
}

func toGroupResponses(groups []GroupedIngredient) []IngredientGroupResponse {
	res := make([]IngredientGroupResponse, 0, len(groups))
	for _, g := range groups {
		batches := make([]IngredientResponse, 0, len(g.Batches))
		netto := make([]float64, 0, len(g.Batches))
		for _, b := range g.Batches {
			batches = append(batches, toIngredientResponse(b))
			netto = append(netto, b.Netto)
		}
		res = append(res, IngredientGroupResponse{
			Key:        g.Key,
			Name:       g.Name,
			Unit:       g.Unit,
			TotalNetto: costcalc.Sum(netto...),
			Batches:    batches,
		})
	}
	return res
}

// applyIngredientRequest merges a request into ing and re-derives the
// brutto/netto/waste triple and prices. On update, when neither netto nor
// waste is sent, a new brutto keeps the stored waste percent; otherwise the
// stored netto is kept as is.
func applyIngredientRequest(ing *models.Ingredient, body IngredientRequest, creating bool) error {
	if body.Name != nil {
		ing.Name = strings.TrimSpace(*body.Name)
	}
	if body.Unit != nil {
		ing.Unit = string(costcalc.ParseUnit(*body.Unit))
	}
	if body.BatchNumber != nil {
		ing.BatchNumber = strings.TrimSpace(*body.BatchNumber)
	}
	if body.Category != nil {
		ing.Category = strings.TrimSpace(*body.Category)
	}
	if body.Supplier != nil {
		ing.Supplier = strings.TrimSpace(*body.Supplier)
	}
	if body.ShelfLifeDays != nil {
		if *body.ShelfLifeDays <= 0 {
			ing.ShelfLifeDays = nil
		} else {
			days := *body.ShelfLifeDays
			ing.ShelfLifeDays = &days
		}
	}

	if ing.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Название обязательно")
	}
	unit := costcalc.Unit(ing.Unit)
	if !unit.Known() {
		return fiber.NewError(fiber.StatusBadRequest, "Единица измерения должна быть g, kg, ml, l или pcs")
	}

	in := costcalc.BatchInput{
		Unit:         unit,
		Brutto:       body.Brutto,
		Netto:        body.Netto,
		WastePercent: body.WastePercent,
		GrossPrice:   body.GrossPrice,
	}
	if !creating {
		bruttoChanged := in.Brutto != nil
		if !bruttoChanged {
			in.Brutto = &ing.Brutto
		}
		if in.Netto == nil && in.WastePercent == nil {
			if bruttoChanged {
				in.WastePercent = &ing.WastePercent
			} else {
				in.Netto = &ing.Netto
			}
		}
		if in.GrossPrice == nil {
			in.GrossPrice = &ing.GrossPrice
		}
	}

	batch, err := costcalc.ReconcileBatch(in)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, batchErrorMessage(err))
	}

	ing.Brutto = batch.Brutto
	ing.Netto = batch.Netto
	ing.WastePercent = batch.WastePercent
	ing.GrossPrice = batch.GrossPrice
	ing.PricePerUnit = batch.PricePerUnit
	ing.NetPrice = batch.NetPrice
	ing.NetPricePerUnit = batch.NetPricePerUnit

	if ing.BatchNumber == "" {
		ing.BatchNumber = newBatchNumber()
	}
	return nil
}

func batchErrorMessage(err error) string {
	switch {
	case errors.Is(err, costcalc.ErrInvalidQuantity):
		return "Брутто и нетто должны быть больше нуля"
	case errors.Is(err, costcalc.ErrNettoExceedsBrutto):
		return "Нетто не может превышать брутто"
	case errors.Is(err, costcalc.ErrInvalidWaste):
		return "Процент отхода должен быть от 0 до 100"
	case errors.Is(err, costcalc.ErrInvalidPrice):
		return "Цена не может быть отрицательной"
	}
	return err.Error()
}

func newBatchNumber() string {
	return "B-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// createBatch stores a new batch and its opening addition movement.
func createBatch(tx *gorm.DB, ing *models.Ingredient, userID *uint) error {
	if err := tx.Create(ing).Error; err != nil {
		return err
	}
	mv := models.StockMovement{
		IngredientID: ing.ID,
		Quantity:     ing.Netto,
		Type:         models.MovementAddition,
		Note:         fmt.Sprintf("Приход партии %s", ing.BatchNumber),
		CreatedBy:    userID,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return err
	}
	ing.MovementsCount = 1
	return nil
}

// nettoAdjustment is the movement that keeps the ledger in step with an edited
// netto. ok is false when netto did not change.
func nettoAdjustment(before, after models.Ingredient, userID *uint) (models.StockMovement, bool) {
	delta := costcalc.Sum(after.Netto, -before.Netto)
	if delta == 0 {
		return models.StockMovement{}, false
	}
	return models.StockMovement{
		IngredientID: after.ID,
		Quantity:     delta,
		Type:         models.MovementAdjustment,
		Note:         fmt.Sprintf("Корректировка нетто партии %s: %.3f → %.3f", after.BatchNumber, before.Netto, after.Netto),
		CreatedBy:    userID,
	}, true
}

type movementCount struct {
	IngredientID uint
	Count        int64
}

func attachMovementCounts(db *gorm.DB, list []models.Ingredient) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(list))
	for _, ing := range list {
		ids = append(ids, ing.ID)
	}

	var rows []movementCount
	if err := db.Model(&models.StockMovement{}).
		Select("ingredient_id, count(*) AS count").
		Where("ingredient_id IN ?", ids).
		Group("ingredient_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.IngredientID] = r.Count
	}
	for i := range list {
		list[i].MovementsCount = counts[list[i].ID]
	}
	return nil
}
