package adminclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

type SemiFinishedItem struct {
	ID             uint
	IngredientID   uint
	IngredientName string
	Quantity       float64
	Unit           string
	PricePerUnit   float64
	Total          float64
}

type SemiFinished struct {
	ID             uint
	Name           string
	OutputQuantity float64
	OutputUnit     string
	CostPerUnit    float64
	TotalCost      float64
	Category       string
	IsVisible      bool
	IsArchived     bool
	Items          []SemiFinishedItem
	UpdatedAt      time.Time
}

type SemiFinishedItemInput struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
}

type SemiFinishedInput struct {
	Name           *string                  `json:"name,omitempty"`
	OutputQuantity *float64                 `json:"output_quantity,omitempty"`
	OutputUnit     *string                  `json:"output_unit,omitempty"`
	Category       *string                  `json:"category,omitempty"`
	IsVisible      *bool                    `json:"is_visible,omitempty"`
	IsArchived     *bool                    `json:"is_archived,omitempty"`
	Items          *[]SemiFinishedItemInput `json:"items,omitempty"`
}

type Component struct {
	Kind           string
	IngredientID   *uint
	SemiFinishedID *uint
	Name           string
	Quantity       float64
	Unit           string
	PricePerUnit   float64
	Total          float64
}

type Product struct {
	ID          uint
	Name        string
	Description string
	Price       float64
	Image       string
	ImageURL    string
	Weight      string
	Category    string
	IsVisible   bool
	Cost        float64
	Components  []Component
	UpdatedAt   time.Time
}

type ComponentInput struct {
	Kind           string  `json:"kind"`
	IngredientID   *uint   `json:"ingredient_id,omitempty"`
	SemiFinishedID *uint   `json:"semi_finished_id,omitempty"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit,omitempty"`
}

type ProductInput struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Price       *float64          `json:"price,omitempty"`
	Image       *string           `json:"image,omitempty"`
	Weight      *string           `json:"weight,omitempty"`
	Category    *string           `json:"category,omitempty"`
	IsVisible   *bool             `json:"is_visible,omitempty"`
	Components  *[]ComponentInput `json:"components,omitempty"`
}

type Quote struct {
	Components     []Component
	Cost           float64
	Markup         float64
	SuggestedPrice float64
}

type wireSemiItem struct {
	ID             *uint    `json:"id"`
	IngredientID   *uint    `json:"ingredient_id"`
	IngredientName *string  `json:"ingredient_name"`
	Quantity       *float64 `json:"quantity"`
	Unit           *string  `json:"unit"`
	PricePerUnit   *float64 `json:"price_per_unit"`
	Total          *float64 `json:"total"`
}

type wireSemiFinished struct {
	ID             *uint          `json:"id"`
	Name           *string        `json:"name"`
	OutputQuantity *float64       `json:"output_quantity"`
	OutputUnit     *string        `json:"output_unit"`
	CostPerUnit    *float64       `json:"cost_per_unit"`
	TotalCost      *float64       `json:"total_cost"`
	Category       *string        `json:"category"`
	IsVisible      *bool          `json:"is_visible"`
	IsArchived     *bool          `json:"is_archived"`
	Items          []wireSemiItem `json:"items"`
	UpdatedAt      *string        `json:"updated_at"`
}

type wireComponent struct {
	Kind           *string  `json:"kind"`
	IngredientID   *uint    `json:"ingredient_id"`
	SemiFinishedID *uint    `json:"semi_finished_id"`
	Name           *string  `json:"name"`
	Quantity       *float64 `json:"quantity"`
	Unit           *string  `json:"unit"`
	PricePerUnit   *float64 `json:"price_per_unit"`
	Total          *float64 `json:"total"`
}

type wireProduct struct {
	ID          *uint           `json:"id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price"`
	Image       *string         `json:"image"`
	ImageURL    *string         `json:"image_url"`
	Weight      *string         `json:"weight"`
	Category    *string         `json:"category"`
	IsVisible   *bool           `json:"is_visible"`
	Cost        *float64        `json:"cost"`
	Components  []wireComponent `json:"components"`
	UpdatedAt   *string         `json:"updated_at"`
}

type wireQuote struct {
	Components     []wireComponent `json:"components"`
	Cost           *float64        `json:"cost"`
	Markup         *float64        `json:"markup"`
	SuggestedPrice *float64        `json:"suggested_price"`
}

func decodeSemiFinished(w wireSemiFinished) (SemiFinished, error) {
	c := checker{entity: "semi_finished"}
	sf := SemiFinished{
		ID:             c.id("id", w.ID),
		Name:           c.text("name", w.Name),
		OutputQuantity: c.nonNegative("output_quantity", w.OutputQuantity),
		OutputUnit:     c.unit("output_unit", w.OutputUnit),
		CostPerUnit:    c.nonNegative("cost_per_unit", w.CostPerUnit),
		Category:       c.optText(w.Category),
		IsVisible:      c.flag("is_visible", w.IsVisible),
		IsArchived:     c.flag("is_archived", w.IsArchived),
		UpdatedAt:      c.time("updated_at", w.UpdatedAt),
	}
	if w.TotalCost != nil {
		sf.TotalCost = *w.TotalCost
	}
	for _, wi := range w.Items {
		ic := checker{entity: "semi_finished_item"}
		it := SemiFinishedItem{
			ID:             ic.id("id", wi.ID),
			IngredientID:   ic.id("ingredient_id", wi.IngredientID),
			IngredientName: ic.optText(wi.IngredientName),
			Quantity:       ic.nonNegative("quantity", wi.Quantity),
			Unit:           ic.unit("unit", wi.Unit),
			PricePerUnit:   ic.nonNegative("price_per_unit", wi.PricePerUnit),
			Total:          ic.nonNegative("total", wi.Total),
		}
		if err := ic.result(); err != nil {
			return SemiFinished{}, err
		}
		sf.Items = append(sf.Items, it)
	}
	return sf, c.result()
}

func decodeComponents(ws []wireComponent) ([]Component, error) {
	out := make([]Component, 0, len(ws))
	for _, w := range ws {
		c := checker{entity: "component"}
		comp := Component{
			Kind:           c.text("kind", w.Kind),
			IngredientID:   w.IngredientID,
			SemiFinishedID: w.SemiFinishedID,
			Name:           c.optText(w.Name),
			Quantity:       c.nonNegative("quantity", w.Quantity),
			Unit:           c.unit("unit", w.Unit),
			PricePerUnit:   c.nonNegative("price_per_unit", w.PricePerUnit),
			Total:          c.nonNegative("total", w.Total),
		}
		// a nil reference means the source was deleted; the locked price stays
		switch comp.Kind {
		case "ingredient":
			if comp.SemiFinishedID != nil {
				c.fail("semi_finished_id", "set on ingredient component")
			}
		case "semi_finished":
			if comp.IngredientID != nil {
				c.fail("ingredient_id", "set on semi-finished component")
			}
		case "":
		default:
			c.fail("kind", "unknown component kind "+comp.Kind)
		}
		if err := c.result(); err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	return out, nil
}

func decodeProduct(w wireProduct) (Product, error) {
	c := checker{entity: "product"}
	p := Product{
		ID:          c.id("id", w.ID),
		Name:        c.text("name", w.Name),
		Description: c.optText(w.Description),
		Price:       c.nonNegative("price", w.Price),
		Image:       c.optText(w.Image),
		ImageURL:    c.optText(w.ImageURL),
		Weight:      c.optText(w.Weight),
		Category:    c.optText(w.Category),
		IsVisible:   c.flag("is_visible", w.IsVisible),
		UpdatedAt:   c.time("updated_at", w.UpdatedAt),
	}
	if w.Cost != nil {
		p.Cost = *w.Cost
	}
	if err := c.result(); err != nil {
		return Product{}, err
	}
	comps, err := decodeComponents(w.Components)
	if err != nil {
		return Product{}, err
	}
	p.Components = comps
	return p, nil
}

func (c *Client) ListSemiFinished(includeArchived bool) ([]SemiFinished, error) {
	path := "/api/admin/semi-finished"
	if includeArchived {
		path += "?include_archived=true"
	}
	body, err := c.send(request{method: fiber.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	var ws []wireSemiFinished
	if err := unmarshal("semi_finished", body, &ws); err != nil {
		return nil, err
	}
	out := make([]SemiFinished, 0, len(ws))
	for i, w := range ws {
		sf, err := decodeSemiFinished(w)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, sf)
	}
	return out, nil
}

func (c *Client) semiFinishedCall(method, path string, in any) (SemiFinished, error) {
	body, err := c.send(request{method: method, path: path, body: in})
	if err != nil {
		return SemiFinished{}, err
	}
	var w wireSemiFinished
	if err := unmarshal("semi_finished", body, &w); err != nil {
		return SemiFinished{}, err
	}
	return decodeSemiFinished(w)
}

func (c *Client) CreateSemiFinished(in SemiFinishedInput) (SemiFinished, error) {
	return c.semiFinishedCall(fiber.MethodPost, "/api/admin/semi-finished", in)
}

func (c *Client) UpdateSemiFinished(id uint, in SemiFinishedInput) (SemiFinished, error) {
	return c.semiFinishedCall(fiber.MethodPut, fmt.Sprintf("/api/admin/semi-finished/%d", id), in)
}

func (c *Client) DeleteSemiFinished(id uint) error {
	_, err := c.send(request{method: fiber.MethodDelete, path: fmt.Sprintf("/api/admin/semi-finished/%d", id)})
	return err
}

func (c *Client) ListProducts(category string) ([]Product, error) {
	path := "/api/admin/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	body, err := c.send(request{method: fiber.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	var ws []wireProduct
	if err := unmarshal("product", body, &ws); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(ws))
	for i, w := range ws {
		p, err := decodeProduct(w)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) productCall(method, path string, in any) (Product, error) {
	body, err := c.send(request{method: method, path: path, body: in})
	if err != nil {
		return Product{}, err
	}
	var w wireProduct
	if err := unmarshal("product", body, &w); err != nil {
		return Product{}, err
	}
	return decodeProduct(w)
}

func (c *Client) CreateProduct(in ProductInput) (Product, error) {
	return c.productCall(fiber.MethodPost, "/api/admin/products", in)
}

func (c *Client) UpdateProduct(id uint, in ProductInput) (Product, error) {
	return c.productCall(fiber.MethodPut, fmt.Sprintf("/api/admin/products/%d", id), in)
}

func (c *Client) DeleteProduct(id uint) error {
	_, err := c.send(request{method: fiber.MethodDelete, path: fmt.Sprintf("/api/admin/products/%d", id)})
	return err
}

// QuoteProduct prices a composition; a nil markup uses the server default.
func (c *Client) QuoteProduct(components []ComponentInput, markup *float64) (Quote, error) {
	in := struct {
		Components []ComponentInput `json:"components"`
		Markup     *float64         `json:"markup,omitempty"`
	}{components, markup}

	body, err := c.send(request{method: fiber.MethodPost, path: "/api/admin/products/quote", body: in})
	if err != nil {
		return Quote{}, err
	}
	var w wireQuote
	if err := unmarshal("quote", body, &w); err != nil {
		return Quote{}, err
	}

	ch := checker{entity: "quote"}
	q := Quote{
		Cost:           ch.nonNegative("cost", w.Cost),
		Markup:         ch.nonNegative("markup", w.Markup),
		SuggestedPrice: ch.nonNegative("suggested_price", w.SuggestedPrice),
	}
	if err := ch.result(); err != nil {
		return Quote{}, err
	}
	if q.Components, err = decodeComponents(w.Components); err != nil {
		return Quote{}, err
	}
	return q, nil
}
