package inventory

import (
	"sort"
	"strings"

	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LookupsResponse struct {
	Categories []string `json:"categories"`
	Suppliers  []string `json:"suppliers"`
}

// Distinct drops blanks and case-insensitive duplicates, keeping the first
// spelling seen, and sorts the result.
func Distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// GET /api/admin/ingredients/lookups
// Feeds the category and supplier pickers of the batch form.
func LookupsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories, suppliers []string
		if err := database.DB.Model(&models.Ingredient{}).
			Order("created_at ASC").
			Pluck("category", &categories).Error; err != nil {
			zap.L().Error("list ingredient categories", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить категории")
		}
		if err := database.DB.Model(&models.Ingredient{}).
			Order("created_at ASC").
			Pluck("supplier", &suppliers).Error; err != nil {
			zap.L().Error("list ingredient suppliers", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить поставщиков")
		}
		return c.JSON(LookupsResponse{
			Categories: Distinct(categories),
			Suppliers:  Distinct(suppliers),
		})
	}
}
