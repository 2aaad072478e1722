package semifinished

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// SemiFinishedRequest serves create and update. On update, nil fields are
// kept; a non-nil Items replaces the whole composition and re-prices it.
type SemiFinishedRequest struct {
	Name           *string        `json:"name"`
	OutputQuantity *float64       `json:"output_quantity"`
	OutputUnit     *string        `json:"output_unit"`
	Category       *string        `json:"category"`
	IsVisible      *bool          `json:"is_visible"`
	IsArchived     *bool          `json:"is_archived"`
	Items          *[]ItemRequest `json:"items"`
}

type ItemResponse struct {
	ID             uint    `json:"id"`
	IngredientID   uint    `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	BatchNumber    string  `json:"batch_number"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	PricePerUnit   float64 `json:"price_per_unit"`
	Total          float64 `json:"total"`
}

type SemiFinishedResponse struct {
	ID             uint           `json:"id"`
	Name           string         `json:"name"`
	OutputQuantity float64        `json:"output_quantity"`
	OutputUnit     string         `json:"output_unit"`
	CostPerUnit    float64        `json:"cost_per_unit"`
	TotalCost      float64        `json:"total_cost"`
	Category       string         `json:"category"`
	IsVisible      bool           `json:"is_visible"`
	IsArchived     bool           `json:"is_archived"`
	Items          []ItemResponse `json:"items"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

func toResponse(sf models.SemiFinished) SemiFinishedResponse {
	items := make([]ItemResponse, 0, len(sf.Items))
	for _, it := range sf.Items {
		items = append(items, ItemResponse{
			ID:             it.ID,
			IngredientID:   it.IngredientID,
			IngredientName: it.Ingredient.Name,
			BatchNumber:    it.Ingredient.BatchNumber,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			PricePerUnit:   it.PricePerUnit,
			Total:          it.Total,
		})
	}
	return SemiFinishedResponse{
		ID:             sf.ID,
		Name:           sf.Name,
		OutputQuantity: sf.OutputQuantity,
		OutputUnit:     sf.OutputUnit,
		CostPerUnit:    sf.CostPerUnit,
		TotalCost:      TotalOf(sf.Items),
		Category:       sf.Category,
		IsVisible:      sf.IsVisible,
		IsArchived:     sf.IsArchived,
		Items:          items,
		CreatedAt:      sf.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      sf.UpdatedAt.Format(time.RFC3339),
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOutput):
		return "Выход должен быть больше нуля"
	case errors.Is(err, ErrNoItems):
		return "Добавьте хотя бы один ингредиент"
	case errors.Is(err, costcalc.ErrIncompatibleUnits):
		return "Единица не совместима с ингредиентом: " + err.Error()
	case errors.Is(err, costcalc.ErrInvalidQuantity):
		return "Количество должно быть больше нуля: " + err.Error()
	}
	return err.Error()
}

// buildItems prices every requested line against the current ingredient
// batches in one query.
func buildItems(tx *gorm.DB, reqs []ItemRequest) ([]models.SemiFinishedItem, error) {
	if len(reqs) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, errorMessage(ErrNoItems))
	}

	ids := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.IngredientID)
	}
	var found []models.Ingredient
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Не удалось загрузить ингредиенты")
	}
	byID := make(map[uint]models.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}

	items := make([]models.SemiFinishedItem, 0, len(reqs))
	for _, r := range reqs {
		ing, ok := byID[r.IngredientID]
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ингредиент %d не найден", r.IngredientID))
		}
		item, err := PriceItem(ing, r.Quantity, r.Unit)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, errorMessage(err))
		}
		items = append(items, item)
	}
	return items, nil
}

func applyRequest(sf *models.SemiFinished, body SemiFinishedRequest) error {
	if body.Name != nil {
		sf.Name = strings.TrimSpace(*body.Name)
	}
	if body.OutputQuantity != nil {
		sf.OutputQuantity = *body.OutputQuantity
	}
	if body.OutputUnit != nil {
		sf.OutputUnit = string(costcalc.ParseUnit(*body.OutputUnit))
	}
	if body.Category != nil {
		sf.Category = strings.TrimSpace(*body.Category)
	}
	if body.IsVisible != nil {
		sf.IsVisible = *body.IsVisible
	}
	if body.IsArchived != nil {
		sf.IsArchived = *body.IsArchived
	}

	if sf.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Название обязательно")
	}
	if !costcalc.Unit(sf.OutputUnit).Known() {
		return fiber.NewError(fiber.StatusBadRequest, "Единица выхода должна быть g, kg, ml, l или pcs")
	}
	return nil
}

func findSemiFinished(c *fiber.Ctx) (*models.SemiFinished, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Некорректный id")
	}
	var sf models.SemiFinished
	if err := database.DB.Preload("Items.Ingredient").First(&sf, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Полуфабрикат не найден")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Не удалось загрузить полуфабрикат")
	}
	return &sf, nil
}

// GET /api/admin/semi-finished?category=соусы&include_archived=true
func ListSemiFinishedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SemiFinished{}).Preload("Items.Ingredient")
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			dbq = dbq.Where("LOWER(category) = LOWER(?)", category)
		}
		if !c.QueryBool("include_archived", false) {
			dbq = dbq.Where("is_archived = ?", false)
		}

		var list []models.SemiFinished
		if err := dbq.Order("name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить полуфабрикаты")
		}

		res := make([]SemiFinishedResponse, 0, len(list))
		for _, sf := range list {
			res = append(res, toResponse(sf))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/semi-finished/:id
func GetSemiFinishedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sf, err := findSemiFinished(c)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*sf))
	}
}

// POST /api/admin/semi-finished
func CreateSemiFinishedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body SemiFinishedRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}

		sf := models.SemiFinished{IsVisible: true}
		if err := applyRequest(&sf, body); err != nil {
			return err
		}
		if body.Items == nil {
			return fiber.NewError(fiber.StatusBadRequest, errorMessage(ErrNoItems))
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			items, err := buildItems(tx, *body.Items)
			if err != nil {
				return err
			}
			cost, err := CostPerUnit(items, sf.OutputQuantity)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, errorMessage(err))
			}
			sf.CostPerUnit = cost
			if err := tx.Omit(clause.Associations).Create(&sf).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].SemiFinishedID = sf.ID
			}
			sf.Items = items
			return tx.Omit(clause.Associations).Create(&sf.Items).Error
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			zap.L().Error("create semi-finished failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось создать полуфабрикат")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntitySemiFinished,
			EntityID:    sf.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Полуфабрикат %s: %.4f за %s", sf.Name, sf.CostPerUnit, sf.OutputUnit),
			After:       sf,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(sf))
	}
}

// PUT /api/admin/semi-finished/:id
func UpdateSemiFinishedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		sf, err := findSemiFinished(c)
		if err != nil {
			return err
		}
		before := *sf
		before.Items = append([]models.SemiFinishedItem(nil), sf.Items...)

		var body SemiFinishedRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}
		if err := applyRequest(sf, body); err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if body.Items != nil {
				items, err := buildItems(tx, *body.Items)
				if err != nil {
					return err
				}
				if err := tx.Where("semi_finished_id = ?", sf.ID).Delete(&models.SemiFinishedItem{}).Error; err != nil {
					return err
				}
				for i := range items {
					items[i].SemiFinishedID = sf.ID
				}
				sf.Items = items
			}

			cost, err := CostPerUnit(sf.Items, sf.OutputQuantity)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, errorMessage(err))
			}
			sf.CostPerUnit = cost

			if body.Items != nil {
				if err := tx.Omit(clause.Associations).Create(&sf.Items).Error; err != nil {
					return err
				}
			}
			return tx.Omit(clause.Associations).Save(sf).Error
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			zap.L().Error("update semi-finished failed", zap.Uint("id", sf.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось обновить полуфабрикат")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntitySemiFinished,
			EntityID:    sf.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Полуфабрикат %s обновлён", sf.Name),
			Before:      before,
			After:       sf,
		})

		return c.JSON(toResponse(*sf))
	}
}

// DELETE /api/admin/semi-finished/:id
func DeleteSemiFinishedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		sf, err := findSemiFinished(c)
		if err != nil {
			return err
		}

		// items go with the recipe (ON DELETE CASCADE); product components
		// keep their locked price and lose the reference
		if err := database.DB.Delete(&models.SemiFinished{}, "id = ?", sf.ID).Error; err != nil {
			zap.L().Error("delete semi-finished failed", zap.Uint("id", sf.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось удалить полуфабрикат")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntitySemiFinished,
			EntityID:    sf.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Полуфабрикат %s удалён", sf.Name),
			Before:      sf,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
