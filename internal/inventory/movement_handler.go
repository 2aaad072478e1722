package inventory

import (
	"errors"
	"math"
	"strings"

	"fodi-backend/internal/auth"
	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/database"
	"fodi-backend/internal/metrics"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errInsufficientStock = errors.New("insufficient stock")

type MovementResponse struct {
	ID           uint                `json:"id"`
	IngredientID uint                `json:"ingredient_id"`
	Quantity     float64             `json:"quantity"`
	Type         models.MovementType `json:"type"`
	Note         string              `json:"note"`
	CreatedBy    *uint               `json:"created_by"`
	CreatedAt    string              `json:"created_at"`
}

type MovementListResponse struct {
	IngredientID uint               `json:"ingredient_id"`
	Unit         string             `json:"unit"`
	Stock        float64            `json:"stock"`
	Movements    []MovementResponse `json:"movements"`
}

type CreateMovementRequest struct {
	Type     models.MovementType `json:"type"`
	Quantity float64             `json:"quantity"`
	Note     string              `json:"note"`
}

func toMovementResponse(m models.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		Type:         m.Type,
		Note:         m.Note,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt.Format(timeLayout),
	}
}

// SignedDelta turns a movement request into the stored signed quantity.
// Additions are always positive, removals always negative, adjustments keep
// the sign they were given.
func SignedDelta(t models.MovementType, quantity float64) (float64, error) {
	if quantity == 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Количество должно быть ненулевым числом")
	}
	switch t {
	case models.MovementAddition:
		return math.Abs(quantity), nil
	case models.MovementRemoval:
		return -math.Abs(quantity), nil
	case models.MovementAdjustment:
		return quantity, nil
	}
	return 0, fiber.NewError(fiber.StatusBadRequest, "Тип движения: addition, removal или adjustment")
}

func stockOf(movements []models.StockMovement) float64 {
	deltas := make([]float64, 0, len(movements))
	for _, m := range movements {
		deltas = append(deltas, m.Quantity)
	}
	return costcalc.Sum(deltas...)
}

// GET /api/admin/ingredients/:id/movements
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ing, err := findIngredient(c)
		if err != nil {
			return err
		}

		var movements []models.StockMovement
		if err := database.DB.
			Where("ingredient_id = ?", ing.ID).
			Order("created_at DESC, id DESC").
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить движения")
		}

		res := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			res = append(res, toMovementResponse(m))
		}

		return c.JSON(MovementListResponse{
			IngredientID: ing.ID,
			Unit:         ing.Unit,
			Stock:        stockOf(movements),
			Movements:    res,
		})
	}
}

// POST /api/admin/ingredients/:id/movements
func CreateMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		ing, err := findIngredient(c)
		if err != nil {
			return err
		}

		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}

		delta, err := SignedDelta(body.Type, body.Quantity)
		if err != nil {
			return err
		}

		mv := models.StockMovement{
			IngredientID: ing.ID,
			Quantity:     delta,
			Type:         body.Type,
			Note:         strings.TrimSpace(body.Note),
			CreatedBy:    &user.ID,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			// serialize movements per batch so the stock check below holds
			if err := tx.Exec("SELECT id FROM ingredients WHERE id = ? FOR UPDATE", ing.ID).Error; err != nil {
				return err
			}
			var movements []models.StockMovement
			if err := tx.Where("ingredient_id = ?", ing.ID).Find(&movements).Error; err != nil {
				return err
			}
			if stockOf(movements)+delta < 0 {
				return errInsufficientStock
			}
			return tx.Create(&mv).Error
		})
		if errors.Is(err, errInsufficientStock) {
			return fiber.NewError(fiber.StatusConflict, "Недостаточно остатка для списания")
		}
		if err != nil {
			zap.L().Error("create movement failed", zap.Uint("ingredient_id", ing.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось записать движение")
		}

		metrics.StockMovements.WithLabelValues(string(mv.Type)).Inc()
		return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mv))
	}
}
