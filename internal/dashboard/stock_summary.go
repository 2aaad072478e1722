package dashboard

import (
	"sort"
	"strconv"
	"time"

	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultExpiryWindow = 3

type CategoryValue struct {
	Category string  `json:"category"`
	Batches  int     `json:"batches"`
	Value    float64 `json:"value"`
}

type ExpiringBatch struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	BatchNumber string  `json:"batch_number"`
	Stock       float64 `json:"stock"`
	Unit        string  `json:"unit"`
	ExpiresAt   string  `json:"expires_at"`
	DaysLeft    int     `json:"days_left"`
}

type StockSummaryResponse struct {
	GeneratedAt string          `json:"generated_at"`
	WindowDays  int             `json:"window_days"`
	TotalValue  float64         `json:"total_value"`
	Categories  []CategoryValue `json:"categories"`
	Expiring    []ExpiringBatch `json:"expiring"`
}

// Summarize values the remaining stock of every batch at its net unit price
// and lists batches with stock left that expire within windowDays of now.
// stock maps ingredient id to the movement-log balance.
func Summarize(list []models.Ingredient, stock map[uint]float64, now time.Time, windowDays int) StockSummaryResponse {
	byCategory := map[string]*CategoryValue{}
	var values []float64
	expiring := []ExpiringBatch{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, ing := range list {
		left := stock[ing.ID]
		if left <= 0 {
			continue
		}
		value := costcalc.CalculateTotalCost(left, ing.NetPricePerUnit, ing.Unit)
		values = append(values, value)

		cat := ing.Category
		if cat == "" {
			cat = "Без категории"
		}
		cv, ok := byCategory[cat]
		if !ok {
			cv = &CategoryValue{Category: cat}
			byCategory[cat] = cv
		}
		cv.Batches++
		cv.Value = costcalc.Sum(cv.Value, value)

		if ing.ShelfLifeDays == nil || *ing.ShelfLifeDays <= 0 {
			continue
		}
		created := ing.CreatedAt.In(now.Location())
		expires := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, *ing.ShelfLifeDays)
		daysLeft := int(expires.Sub(today).Hours() / 24)
		if daysLeft > windowDays {
			continue
		}
		expiring = append(expiring, ExpiringBatch{
			ID:          ing.ID,
			Name:        ing.Name,
			BatchNumber: ing.BatchNumber,
			Stock:       left,
			Unit:        ing.Unit,
			ExpiresAt:   costcalc.ExpiryDateFrom(created, *ing.ShelfLifeDays),
			DaysLeft:    daysLeft,
		})
	}

	categories := make([]CategoryValue, 0, len(byCategory))
	for _, cv := range byCategory {
		cv.Value = costcalc.RoundMoney(cv.Value)
		categories = append(categories, *cv)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Value != categories[j].Value {
			return categories[i].Value > categories[j].Value
		}
		return categories[i].Category < categories[j].Category
	})
	sort.SliceStable(expiring, func(i, j int) bool { return expiring[i].DaysLeft < expiring[j].DaysLeft })

	return StockSummaryResponse{
		GeneratedAt: now.Format(time.RFC3339),
		WindowDays:  windowDays,
		TotalValue:  costcalc.RoundMoney(costcalc.Sum(values...)),
		Categories:  categories,
		Expiring:    expiring,
	}
}

type stockRow struct {
	IngredientID uint
	Stock        float64
}

// GET /api/admin/dashboard/stock?days=3
func StockSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := defaultExpiryWindow
		if raw := c.Query("days"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "days должен быть неотрицательным числом")
			}
			days = v
		}

		var list []models.Ingredient
		if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
			zap.L().Error("stock summary: list ingredients", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить ингредиенты")
		}

		var rows []stockRow
		if err := database.DB.Model(&models.StockMovement{}).
			Select("ingredient_id, SUM(quantity) AS stock").
			Group("ingredient_id").
			Scan(&rows).Error; err != nil {
			zap.L().Error("stock summary: aggregate movements", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось посчитать остатки")
		}
		stock := make(map[uint]float64, len(rows))
		for _, r := range rows {
			stock[r.IngredientID] = r.Stock
		}

		return c.JSON(Summarize(list, stock, time.Now(), days))
	}
}
