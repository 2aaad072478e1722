package menu

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/config"
	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRequest serves create and update. A non-nil Components replaces
// the stored composition; a missing price on create falls back to the
// suggested price.
type ProductRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Price       *float64            `json:"price"`
	Image       *string             `json:"image"`
	Weight      *string             `json:"weight"`
	Category    *string             `json:"category"`
	IsVisible   *bool               `json:"is_visible"`
	Components  *[]ComponentRequest `json:"components"`
}

type QuoteRequest struct {
	Components []ComponentRequest `json:"components"`
	Markup     *float64           `json:"markup"`
}

type ComponentResponse struct {
	ID             uint                 `json:"id"`
	Kind           models.ComponentKind `json:"kind"`
	IngredientID   *uint                `json:"ingredient_id"`
	SemiFinishedID *uint                `json:"semi_finished_id"`
	Name           string               `json:"name"`
	Quantity       float64              `json:"quantity"`
	Unit           string               `json:"unit"`
	PricePerUnit   float64              `json:"price_per_unit"`
	Total          float64              `json:"total"`
}

type QuoteResponse struct {
	Components     []ComponentResponse `json:"components"`
	Cost           float64             `json:"cost"`
	Markup         float64             `json:"markup"`
	SuggestedPrice float64             `json:"suggested_price"`
}

type ProductResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Image       string              `json:"image"`
	ImageURL    string              `json:"image_url"`
	Weight      string              `json:"weight"`
	Category    string              `json:"category"`
	IsVisible   bool                `json:"is_visible"`
	Cost        float64             `json:"cost"`
	Margin      float64             `json:"margin"`
	Components  []ComponentResponse `json:"components"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// PublicProductResponse is what the storefront sees: no cost, no recipe.
type PublicProductResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Weight      string  `json:"weight"`
	Category    string  `json:"category"`
}

func toComponentResponses(list []models.ProductComponent) []ComponentResponse {
	res := make([]ComponentResponse, 0, len(list))
	for _, c := range list {
		res = append(res, ComponentResponse{
			ID:             c.ID,
			Kind:           c.Kind,
			IngredientID:   c.IngredientID,
			SemiFinishedID: c.SemiFinishedID,
			Name:           c.Name,
			Quantity:       c.Quantity,
			Unit:           c.Unit,
			PricePerUnit:   c.PricePerUnit,
			Total:          c.Total,
		})
	}
	return res
}

func toProductResponse(p models.Product) ProductResponse {
	margin := 0.0
	if p.Cost > 0 {
		margin = p.Price - p.Cost
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		ImageURL:    ImageURL(p.Image),
		Weight:      p.Weight,
		Category:    p.Category,
		IsVisible:   p.IsVisible,
		Cost:        p.Cost,
		Margin:      margin,
		Components:  toComponentResponses(p.Components),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func applyProductRequest(p *models.Product, body ProductRequest) {
	if body.Name != nil {
		p.Name = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		p.Description = strings.TrimSpace(*body.Description)
	}
	if body.Price != nil {
		p.Price = *body.Price
	}
	if body.Image != nil {
		p.Image = strings.TrimSpace(*body.Image)
	}
	if body.Weight != nil {
		p.Weight = strings.TrimSpace(*body.Weight)
	}
	if body.Category != nil {
		p.Category = strings.TrimSpace(*body.Category)
	}
	if body.IsVisible != nil {
		p.IsVisible = *body.IsVisible
	}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Название обязательно")
	}
	if !(p.Price > 0) {
		return fiber.NewError(fiber.StatusBadRequest, "Цена должна быть больше нуля")
	}
	return nil
}

func findProduct(c *fiber.Ctx) (*models.Product, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Некорректный id")
	}
	var p models.Product
	if err := database.DB.Preload("Components").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Товар не найден")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Не удалось загрузить товар")
	}
	return &p, nil
}

func asFiberError(err error, fallback string) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	zap.L().Error(fallback, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// GET /api/admin/products?category=роллы&visible=true
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Preload("Components")
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			dbq = dbq.Where("LOWER(category) = LOWER(?)", category)
		}
		if v := c.Query("visible"); v != "" {
			dbq = dbq.Where("is_visible = ?", c.QueryBool("visible"))
		}

		var list []models.Product
		if err := dbq.Order("category ASC, name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить товары")
		}

		res := make([]ProductResponse, 0, len(list))
		for _, p := range list {
			res = append(res, toProductResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/products (public, visible only)
func PublicProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Where("is_visible = ?", true)
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			dbq = dbq.Where("LOWER(category) = LOWER(?)", category)
		}

		var list []models.Product
		if err := dbq.Order("category ASC, name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить меню")
		}

		res := make([]PublicProductResponse, 0, len(list))
		for _, p := range list {
			res = append(res, PublicProductResponse{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				ImageURL:    ImageURL(p.Image),
				Weight:      p.Weight,
				Category:    p.Category,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/admin/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := findProduct(c)
		if err != nil {
			return err
		}
		return c.JSON(toProductResponse(*p))
	}
}

// POST /api/admin/products/quote
func QuoteHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QuoteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}

		markup := cfg.PriceMarkup
		if body.Markup != nil {
			if !(*body.Markup > 0) {
				return fiber.NewError(fiber.StatusBadRequest, "Наценка должна быть больше нуля")
			}
			markup = *body.Markup
		}

		components, err := BuildComponents(database.DB, body.Components)
		if err != nil {
			return asFiberError(err, "Не удалось рассчитать себестоимость")
		}

		q := NewQuote(components, markup)
		return c.JSON(QuoteResponse{
			Components:     toComponentResponses(q.Components),
			Cost:           q.Cost,
			Markup:         q.Markup,
			SuggestedPrice: q.SuggestedPrice,
		})
	}
}

func replaceComponents(tx *gorm.DB, p *models.Product, components []models.ProductComponent) error {
	if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductComponent{}).Error; err != nil {
		return err
	}
	for i := range components {
		components[i].ProductID = p.ID
	}
	p.Components = components
	if len(components) == 0 {
		return nil
	}
	return tx.Create(&p.Components).Error
}

// POST /api/admin/products
func CreateProductHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}

		p := models.Product{IsVisible: true}
		applyProductRequest(&p, body)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var components []models.ProductComponent
			if body.Components != nil {
				built, err := BuildComponents(tx, *body.Components)
				if err != nil {
					return err
				}
				components = built
				q := NewQuote(components, cfg.PriceMarkup)
				p.Cost = q.Cost
				if body.Price == nil {
					p.Price = q.SuggestedPrice
				}
			}
			if err := validateProduct(&p); err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
				return err
			}
			return replaceComponents(tx, &p, components)
		})
		if err != nil {
			return asFiberError(err, "Не удалось создать товар")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Товар %s: %.2f", p.Name, p.Price),
			After:       p,
		})

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		p, err := findProduct(c)
		if err != nil {
			return err
		}
		before := *p
		before.Components = append([]models.ProductComponent(nil), p.Components...)

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректные данные")
		}
		applyProductRequest(p, body)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if body.Components != nil {
				components, err := BuildComponents(tx, *body.Components)
				if err != nil {
					return err
				}
				p.Cost = NewQuote(components, cfg.PriceMarkup).Cost
				if err := replaceComponents(tx, p, components); err != nil {
					return err
				}
			}
			if err := validateProduct(p); err != nil {
				return err
			}
			return tx.Omit(clause.Associations).Save(p).Error
		})
		if err != nil {
			return asFiberError(err, "Не удалось обновить товар")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Товар %s обновлён", p.Name),
			Before:      before,
			After:       p,
		})

		return c.JSON(toProductResponse(*p))
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		p, err := findProduct(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(&models.Product{}, "id = ?", p.ID).Error; err != nil {
			zap.L().Error("delete product failed", zap.Uint("id", p.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось удалить товар")
		}

		// image file stays on disk for undo
		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Товар %s удалён", p.Name),
			Before:      p,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
