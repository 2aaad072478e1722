package adminclient

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"fodi-backend/internal/costcalc"

	"github.com/gofiber/fiber/v2"
)

type Ingredient struct {
	ID              uint
	Name            string
	Unit            string
	BatchNumber     string
	Category        string
	Supplier        string
	Brutto          float64
	Netto           float64
	WastePercent    float64
	YieldPercent    float64
	ShelfLifeDays   *int
	ExpiryDate      string
	GrossPrice      float64
	NetPrice        float64
	PricePerUnit    float64
	NetPricePerUnit float64
	MovementsCount  int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type IngredientGroup struct {
	Key        string
	Name       string
	Unit       string
	TotalNetto float64
	Batches    []Ingredient
}

type Movement struct {
	ID           uint
	IngredientID uint
	Quantity     float64
	Type         string
	Note         string
	CreatedAt    time.Time
}

type MovementList struct {
	IngredientID uint
	Unit         string
	Stock        float64
	Movements    []Movement
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// IngredientInput is the create/update payload; nil fields are omitted.
type IngredientInput struct {
	Name          *string  `json:"name,omitempty"`
	Unit          *string  `json:"unit,omitempty"`
	BatchNumber   *string  `json:"batch_number,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Supplier      *string  `json:"supplier,omitempty"`
	Brutto        *float64 `json:"brutto,omitempty"`
	Netto         *float64 `json:"netto,omitempty"`
	WastePercent  *float64 `json:"waste_percent,omitempty"`
	ShelfLifeDays *int     `json:"shelf_life_days,omitempty"`
	GrossPrice    *float64 `json:"gross_price,omitempty"`
}

type MovementInput struct {
	Type     string  `json:"type"`
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note,omitempty"`
}

type wireIngredient struct {
	ID              *uint    `json:"id"`
	Name            *string  `json:"name"`
	Unit            *string  `json:"unit"`
	BatchNumber     *string  `json:"batch_number"`
	Category        *string  `json:"category"`
	Supplier        *string  `json:"supplier"`
	Brutto          *float64 `json:"brutto"`
	Netto           *float64 `json:"netto"`
	WastePercent    *float64 `json:"waste_percent"`
	YieldPercent    *float64 `json:"yield_percent"`
	ShelfLifeDays   *int     `json:"shelf_life_days"`
	ExpiryDate      *string  `json:"expiry_date"`
	GrossPrice      *float64 `json:"gross_price"`
	NetPrice        *float64 `json:"net_price"`
	PricePerUnit    *float64 `json:"price_per_unit"`
	NetPricePerUnit *float64 `json:"net_price_per_unit"`
	MovementsCount  *int64   `json:"movements_count"`
	CreatedAt       *string  `json:"created_at"`
	UpdatedAt       *string  `json:"updated_at"`
}

type wireGroup struct {
	Key        *string          `json:"key"`
	Name       *string          `json:"name"`
	Unit       *string          `json:"unit"`
	TotalNetto *float64         `json:"total_netto"`
	Batches    []wireIngredient `json:"batches"`
}

type wireMovement struct {
	ID           *uint    `json:"id"`
	IngredientID *uint    `json:"ingredient_id"`
	Quantity     *float64 `json:"quantity"`
	Type         *string  `json:"type"`
	Note         *string  `json:"note"`
	CreatedAt    *string  `json:"created_at"`
}

type wireMovementList struct {
	IngredientID *uint          `json:"ingredient_id"`
	Unit         *string        `json:"unit"`
	Stock        *float64       `json:"stock"`
	Movements    []wireMovement `json:"movements"`
}

func decodeIngredient(w wireIngredient) (Ingredient, error) {
	c := checker{entity: "ingredient"}
	ing := Ingredient{
		ID:              c.id("id", w.ID),
		Name:            c.text("name", w.Name),
		Unit:            c.unit("unit", w.Unit),
		BatchNumber:     c.optText(w.BatchNumber),
		Category:        c.optText(w.Category),
		Supplier:        c.optText(w.Supplier),
		Brutto:          c.nonNegative("brutto", w.Brutto),
		Netto:           c.nonNegative("netto", w.Netto),
		WastePercent:    c.nonNegative("waste_percent", w.WastePercent),
		ShelfLifeDays:   w.ShelfLifeDays,
		ExpiryDate:      c.optText(w.ExpiryDate),
		GrossPrice:      c.nonNegative("gross_price", w.GrossPrice),
		NetPrice:        c.nonNegative("net_price", w.NetPrice),
		PricePerUnit:    c.nonNegative("price_per_unit", w.PricePerUnit),
		NetPricePerUnit: c.nonNegative("net_price_per_unit", w.NetPricePerUnit),
		CreatedAt:       c.time("created_at", w.CreatedAt),
		UpdatedAt:       c.time("updated_at", w.UpdatedAt),
	}
	if ing.Netto > ing.Brutto {
		c.fail("netto", "exceeds brutto")
	}
	if w.YieldPercent != nil {
		ing.YieldPercent = *w.YieldPercent
	} else {
		ing.YieldPercent = costcalc.YieldPercent(ing.Brutto, ing.Netto)
	}
	if ing.ExpiryDate == "" {
		ing.ExpiryDate = costcalc.NoExpiry
	}
	if w.MovementsCount != nil {
		ing.MovementsCount = *w.MovementsCount
	}
	return ing, c.result()
}

func decodeIngredients(ws []wireIngredient) ([]Ingredient, error) {
	out := make([]Ingredient, 0, len(ws))
	for i, w := range ws {
		ing, err := decodeIngredient(w)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, ing)
	}
	return out, nil
}

func decodeMovement(w wireMovement) (Movement, error) {
	c := checker{entity: "movement"}
	m := Movement{
		ID:           c.id("id", w.ID),
		IngredientID: c.id("ingredient_id", w.IngredientID),
		Quantity:     c.num("quantity", w.Quantity),
		Type:         c.text("type", w.Type),
		Note:         c.optText(w.Note),
		CreatedAt:    c.time("created_at", w.CreatedAt),
	}
	switch m.Type {
	case "", "addition", "removal", "adjustment":
	default:
		c.fail("type", "unknown movement type "+m.Type)
	}
	return m, c.result()
}

func (c *Client) ListIngredients(category string) ([]Ingredient, error) {
	path := "/api/admin/ingredients"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	body, err := c.send(request{method: fiber.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	var ws []wireIngredient
	if err := unmarshal("ingredient", body, &ws); err != nil {
		return nil, err
	}
	return decodeIngredients(ws)
}

func (c *Client) ListIngredientGroups(category string) ([]IngredientGroup, error) {
	path := "/api/admin/ingredients?grouped=true"
	if category != "" {
		path += "&category=" + url.QueryEscape(category)
	}
	body, err := c.send(request{method: fiber.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	var ws []wireGroup
	if err := unmarshal("ingredient_group", body, &ws); err != nil {
		return nil, err
	}

	out := make([]IngredientGroup, 0, len(ws))
	for _, w := range ws {
		ch := checker{entity: "ingredient_group"}
		g := IngredientGroup{
			Key:        ch.text("key", w.Key),
			Name:       ch.text("name", w.Name),
			Unit:       ch.unit("unit", w.Unit),
			TotalNetto: ch.nonNegative("total_netto", w.TotalNetto),
		}
		if len(w.Batches) == 0 {
			ch.fail("batches", "empty group")
		}
		if err := ch.result(); err != nil {
			return nil, err
		}
		if g.Batches, err = decodeIngredients(w.Batches); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (c *Client) SearchIngredients(query string) ([]Ingredient, error) {
	body, err := c.send(request{method: fiber.MethodGet, path: "/api/admin/ingredients/search?q=" + url.QueryEscape(query)})
	if err != nil {
		return nil, err
	}
	var ws []wireIngredient
	if err := unmarshal("ingredient", body, &ws); err != nil {
		return nil, err
	}
	return decodeIngredients(ws)
}

func (c *Client) GetIngredient(id uint) (Ingredient, error) {
	return c.ingredientCall(fiber.MethodGet, fmt.Sprintf("/api/admin/ingredients/%d", id), nil)
}

func (c *Client) CreateIngredient(in IngredientInput) (Ingredient, error) {
	return c.ingredientCall(fiber.MethodPost, "/api/admin/ingredients", in)
}

func (c *Client) UpdateIngredient(id uint, in IngredientInput) (Ingredient, error) {
	return c.ingredientCall(fiber.MethodPut, fmt.Sprintf("/api/admin/ingredients/%d", id), in)
}

func (c *Client) DeleteIngredient(id uint) error {
	_, err := c.send(request{method: fiber.MethodDelete, path: fmt.Sprintf("/api/admin/ingredients/%d", id)})
	return err
}

func (c *Client) ingredientCall(method, path string, in any) (Ingredient, error) {
	body, err := c.send(request{method: method, path: path, body: in})
	if err != nil {
		return Ingredient{}, err
	}
	var w wireIngredient
	if err := unmarshal("ingredient", body, &w); err != nil {
		return Ingredient{}, err
	}
	return decodeIngredient(w)
}

func (c *Client) ListMovements(ingredientID uint) (MovementList, error) {
	body, err := c.send(request{method: fiber.MethodGet, path: fmt.Sprintf("/api/admin/ingredients/%d/movements", ingredientID)})
	if err != nil {
		return MovementList{}, err
	}
	var w wireMovementList
	if err := unmarshal("movement_list", body, &w); err != nil {
		return MovementList{}, err
	}

	ch := checker{entity: "movement_list"}
	list := MovementList{
		IngredientID: ch.id("ingredient_id", w.IngredientID),
		Unit:         ch.unit("unit", w.Unit),
		Stock:        ch.num("stock", w.Stock),
	}
	if err := ch.result(); err != nil {
		return MovementList{}, err
	}
	list.Movements = make([]Movement, 0, len(w.Movements))
	for i, wm := range w.Movements {
		m, err := decodeMovement(wm)
		if err != nil {
			return MovementList{}, fmt.Errorf("item %d: %w", i, err)
		}
		list.Movements = append(list.Movements, m)
	}
	return list, nil
}

func (c *Client) AddMovement(ingredientID uint, in MovementInput) (Movement, error) {
	body, err := c.send(request{method: fiber.MethodPost, path: fmt.Sprintf("/api/admin/ingredients/%d/movements", ingredientID), body: in})
	if err != nil {
		return Movement{}, err
	}
	var w wireMovement
	if err := unmarshal("movement", body, &w); err != nil {
		return Movement{}, err
	}
	return decodeMovement(w)
}

// ExportIngredients downloads the XLSX workbook into path.
func (c *Client) ExportIngredients(path string) error {
	body, err := c.send(request{method: fiber.MethodGet, path: "/api/admin/ingredients/export"})
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func (c *Client) ImportIngredients(path string) (ImportResult, error) {
	body, err := c.send(request{method: fiber.MethodPost, path: "/api/admin/ingredients/import", fileField: "file", filePath: path})
	if err != nil {
		return ImportResult{}, err
	}
	var res ImportResult
	if err := unmarshal("import_result", body, &res); err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
