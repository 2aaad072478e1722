package inventory

import (
	"errors"
	"fmt"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/database"
	"fodi-backend/internal/metrics"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func loadIngredients(dbq *gorm.DB) ([]models.Ingredient, error) {
	var list []models.Ingredient
	if err := dbq.Order("name ASC, updated_at DESC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	if err := attachMovementCounts(database.DB, list); err != nil {
		return nil, err
	}
	return list, nil
}

func findIngredient(c *fiber.Ctx) (*models.Ingredient, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Некорректный id")
	}
	var ing models.Ingredient
	if err := database.DB.First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Ингредиент не найден")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Не удалось загрузить ингредиент")
	}
	return &ing, nil
}

// GET /api/admin/ingredients?grouped=true&category=fish
func ListIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Query("category")
		grouped := c.QueryBool("grouped", false)

		dbq := database.DB.Model(&models.Ingredient{})
		if category != "" && !grouped {
			dbq = dbq.Where("LOWER(category) = LOWER(?)", category)
		}

		list, err := loadIngredients(dbq)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить ингредиенты")
		}

		if grouped {
			groups := FilterByCategory(GroupByName(list), category)
			return c.JSON(toGroupResponses(groups))
		}

		res := make([]IngredientResponse, 0, len(list))
		for _, ing := range list {
			res = append(res, toIngredientResponse(ing))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/ingredients/search?q=лос
func SearchIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := loadIngredients(database.DB.Model(&models.Ingredient{}))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить ингредиенты")
		}

		found := Search(list, c.Query("q"))
		res := make([]IngredientResponse, 0, len(found))
		for _, ing := range found {
			res = append(res, toIngredientResponse(ing))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/ingredients/:id
func GetIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ing, err := findIngredient(c)
		if err != nil {
			return err
		}
		list := []models.Ingredient{*ing}
		if err := attachMovementCounts(database.DB, list); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить движения")
		}
		return c.JSON(toIngredientResponse(list[0]))
	}
}

// POST /api/admin/ingredients
func CreateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body IngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}
		if body.Name == nil || body.Unit == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Название и единица измерения обязательны")
		}

		var ing models.Ingredient
		if err := applyIngredientRequest(&ing, body, true); err != nil {
			return err
		}

		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			return createBatch(tx, &ing, &user.ID)
		}); err != nil {
			zap.L().Error("create ingredient failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось создать ингредиент")
		}

		audit.Record(batchCreatedLog(user, ing))
		return c.Status(fiber.StatusCreated).JSON(toIngredientResponse(ing))
	}
}

// batchCreatedLog is the audit entry for a batch stored by the create form or
// a spreadsheet import.
func batchCreatedLog(user *auth.SessionUser, ing models.Ingredient) audit.LogOptions {
	return audit.LogOptions{
		UserID:      user.ID,
		UserName:    user.Name,
		EntityType:  audit.EntityIngredient,
		EntityID:    ing.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Партия %s: %s %.3f %s", ing.BatchNumber, ing.Name, ing.Brutto, ing.Unit),
		After:       ing,
	}
}

// PUT /api/admin/ingredients/:id
func UpdateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		ing, err := findIngredient(c)
		if err != nil {
			return err
		}
		before := *ing

		var body IngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}
		if err := applyIngredientRequest(ing, body, false); err != nil {
			return err
		}

		mv, adjusted := nettoAdjustment(before, *ing, &user.ID)
		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(ing).Error; err != nil {
				return err
			}
			if adjusted {
				return tx.Create(&mv).Error
			}
			return nil
		}); err != nil {
			zap.L().Error("update ingredient failed", zap.Uint("id", ing.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось обновить ингредиент")
		}
		if adjusted {
			metrics.StockMovements.WithLabelValues(string(mv.Type)).Inc()
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityIngredient,
			EntityID:    ing.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Партия %s обновлена", ing.BatchNumber),
			Before:      before,
			After:       ing,
		})

		list := []models.Ingredient{*ing}
		if err := attachMovementCounts(database.DB, list); err != nil {
			zap.L().Warn("movement count failed", zap.Uint("id", ing.ID), zap.Error(err))
		}
		return c.JSON(toIngredientResponse(list[0]))
	}
}

// DELETE /api/admin/ingredients/:id
func DeleteIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		ing, err := findIngredient(c)
		if err != nil {
			return err
		}

		var used int64
		if err := database.DB.Model(&models.SemiFinishedItem{}).Where("ingredient_id = ?", ing.ID).Count(&used).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось проверить использование")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Партия используется в полуфабрикатах")
		}

		if err := database.DB.Delete(ing).Error; err != nil {
			zap.L().Error("delete ingredient failed", zap.Uint("id", ing.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось удалить ингредиент")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityIngredient,
			EntityID:    ing.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Партия %s удалена: %s", ing.BatchNumber, ing.Name),
			Before:      ing,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
