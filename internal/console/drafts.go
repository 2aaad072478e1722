package console

import (
	"fmt"
	"strconv"
	"strings"

	"fodi-backend/internal/adminclient"
	"fodi-backend/internal/costcalc"
)

// DraftError is a draft field that could not be turned into a request.
type DraftError struct {
	Field string
	Value string
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("%s: %q не число", e.Field, e.Value)
}

// optNumber parses form text after comma normalization. Blank text is nil.
func optNumber(field, text string) (*float64, error) {
	s := strings.TrimSpace(costcalc.NormalizeNumberInput(text))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !costcalc.IsFinite(v) {
		return nil, &DraftError{Field: field, Value: text}
	}
	return &v, nil
}

func optInt(field, text string) (*int, error) {
	v, err := optNumber(field, text)
	if err != nil || v == nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

func optText(text string) *string {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	return &s
}

// clearable always sends the trimmed text so an emptied field is cleared on
// the server instead of keeping its previous value.
func clearable(text string) *string {
	s := strings.TrimSpace(text)
	return &s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type IngredientDraft struct {
	Name          string
	Unit          string
	BatchNumber   string
	Category      string
	Supplier      string
	Brutto        string
	Netto         string
	WastePercent  string
	ShelfLifeDays string
	GrossPrice    string
}

// Recalculate keeps the brutto/netto/waste triple consistent after field
// changed, the way the batch form does while typing. Fields that cannot be
// derived yet are left as typed.
func (d *IngredientDraft) Recalculate(field string) {
	switch field {
	case "brutto", "waste_percent":
		if v := costcalc.CalculateWaste(d.Brutto, d.Netto, d.WastePercent, costcalc.TargetNetto); v != "" {
			d.Netto = v
		}
	case "netto":
		if v := costcalc.CalculateWaste(d.Brutto, d.Netto, d.WastePercent, costcalc.TargetWaste); v != "" {
			d.WastePercent = v
		}
	}
}

// PricePerUnit previews the gross price per canonical unit of brutto.
func (d IngredientDraft) PricePerUnit() float64 {
	brutto, _ := optNumber("brutto", d.Brutto)
	gross, _ := optNumber("gross_price", d.GrossPrice)
	if brutto == nil || gross == nil {
		return 0
	}
	return costcalc.CalculatePricePerUnit(*gross, *brutto, d.Unit)
}

func (d IngredientDraft) Input() (adminclient.IngredientInput, error) {
	in := adminclient.IngredientInput{
		Name:        optText(d.Name),
		Unit:        optText(d.Unit),
		BatchNumber: optText(d.BatchNumber),
		Category:    optText(d.Category),
		Supplier:    optText(d.Supplier),
	}
	var err error
	if in.Brutto, err = optNumber("brutto", d.Brutto); err != nil {
		return in, err
	}
	if in.Netto, err = optNumber("netto", d.Netto); err != nil {
		return in, err
	}
	if in.WastePercent, err = optNumber("waste_percent", d.WastePercent); err != nil {
		return in, err
	}
	if in.ShelfLifeDays, err = optInt("shelf_life_days", d.ShelfLifeDays); err != nil {
		return in, err
	}
	if in.GrossPrice, err = optNumber("gross_price", d.GrossPrice); err != nil {
		return in, err
	}
	return in, nil
}

// UpdateInput is Input for the edit form: blank optional text clears the field.
func (d IngredientDraft) UpdateInput() (adminclient.IngredientInput, error) {
	in, err := d.Input()
	if err != nil {
		return in, err
	}
	in.BatchNumber = clearable(d.BatchNumber)
	in.Category = clearable(d.Category)
	in.Supplier = clearable(d.Supplier)
	return in, nil
}

func IngredientDraftFrom(ing adminclient.Ingredient) IngredientDraft {
	d := IngredientDraft{
		Name:         ing.Name,
		Unit:         ing.Unit,
		BatchNumber:  ing.BatchNumber,
		Category:     ing.Category,
		Supplier:     ing.Supplier,
		Brutto:       formatNumber(ing.Brutto),
		Netto:        formatNumber(ing.Netto),
		WastePercent: formatNumber(ing.WastePercent),
		GrossPrice:   formatNumber(ing.GrossPrice),
	}
	if ing.ShelfLifeDays != nil {
		d.ShelfLifeDays = strconv.Itoa(*ing.ShelfLifeDays)
	}
	return d
}

type ItemDraft struct {
	IngredientID uint
	Quantity     string
	Unit         string
}

type SemiFinishedDraft struct {
	Name           string
	OutputQuantity string
	OutputUnit     string
	Category       string
	IsVisible      bool
	IsArchived     bool
	Items          []ItemDraft
}

func (d SemiFinishedDraft) Input() (adminclient.SemiFinishedInput, error) {
	visible, archived := d.IsVisible, d.IsArchived
	in := adminclient.SemiFinishedInput{
		Name:       optText(d.Name),
		OutputUnit: optText(d.OutputUnit),
		Category:   optText(d.Category),
		IsVisible:  &visible,
		IsArchived: &archived,
	}
	var err error
	if in.OutputQuantity, err = optNumber("output_quantity", d.OutputQuantity); err != nil {
		return in, err
	}

	items := make([]adminclient.SemiFinishedItemInput, 0, len(d.Items))
	for i, it := range d.Items {
		q, err := optNumber(fmt.Sprintf("items[%d].quantity", i), it.Quantity)
		if err != nil {
			return in, err
		}
		if q == nil {
			return in, &DraftError{Field: fmt.Sprintf("items[%d].quantity", i), Value: it.Quantity}
		}
		items = append(items, adminclient.SemiFinishedItemInput{
			IngredientID: it.IngredientID,
			Quantity:     *q,
			Unit:         strings.TrimSpace(it.Unit),
		})
	}
	in.Items = &items
	return in, nil
}

func (d SemiFinishedDraft) UpdateInput() (adminclient.SemiFinishedInput, error) {
	in, err := d.Input()
	if err != nil {
		return in, err
	}
	in.Category = clearable(d.Category)
	return in, nil
}

func SemiFinishedDraftFrom(sf adminclient.SemiFinished) SemiFinishedDraft {
	d := SemiFinishedDraft{
		Name:           sf.Name,
		OutputQuantity: formatNumber(sf.OutputQuantity),
		OutputUnit:     sf.OutputUnit,
		Category:       sf.Category,
		IsVisible:      sf.IsVisible,
		IsArchived:     sf.IsArchived,
	}
	for _, it := range sf.Items {
		d.Items = append(d.Items, ItemDraft{
			IngredientID: it.IngredientID,
			Quantity:     formatNumber(it.Quantity),
			Unit:         it.Unit,
		})
	}
	return d
}

type ComponentDraft struct {
	Kind     string // "ingredient" or "semi_finished"
	RefID    uint
	Quantity string
	Unit     string
}

type ProductDraft struct {
	Name        string
	Description string
	Price       string
	Image       string
	Weight      string
	Category    string
	IsVisible   bool
	Components  []ComponentDraft
}

func (c ComponentDraft) input(i int) (adminclient.ComponentInput, error) {
	field := fmt.Sprintf("components[%d].quantity", i)
	q, err := optNumber(field, c.Quantity)
	if err != nil {
		return adminclient.ComponentInput{}, err
	}
	if q == nil {
		return adminclient.ComponentInput{}, &DraftError{Field: field, Value: c.Quantity}
	}
	in := adminclient.ComponentInput{Kind: c.Kind, Quantity: *q, Unit: strings.TrimSpace(c.Unit)}
	id := c.RefID
	if c.Kind == "semi_finished" {
		in.SemiFinishedID = &id
	} else {
		in.Kind = "ingredient"
		in.IngredientID = &id
	}
	return in, nil
}

// ComponentInputs converts the composition for a quote or a save.
func (d ProductDraft) ComponentInputs() ([]adminclient.ComponentInput, error) {
	out := make([]adminclient.ComponentInput, 0, len(d.Components))
	for i, c := range d.Components {
		in, err := c.input(i)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (d ProductDraft) Input() (adminclient.ProductInput, error) {
	visible := d.IsVisible
	in := adminclient.ProductInput{
		Name:        optText(d.Name),
		Description: optText(d.Description),
		Image:       optText(d.Image),
		Weight:      optText(d.Weight),
		Category:    optText(d.Category),
		IsVisible:   &visible,
	}
	var err error
	if in.Price, err = optNumber("price", d.Price); err != nil {
		return in, err
	}
	if len(d.Components) > 0 {
		comps, err := d.ComponentInputs()
		if err != nil {
			return in, err
		}
		in.Components = &comps
	}
	return in, nil
}

func (d ProductDraft) UpdateInput() (adminclient.ProductInput, error) {
	in, err := d.Input()
	if err != nil {
		return in, err
	}
	in.Description = clearable(d.Description)
	in.Image = clearable(d.Image)
	in.Weight = clearable(d.Weight)
	in.Category = clearable(d.Category)
	return in, nil
}

func ProductDraftFrom(p adminclient.Product) ProductDraft {
	d := ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       formatNumber(p.Price),
		Image:       p.Image,
		Weight:      p.Weight,
		Category:    p.Category,
		IsVisible:   p.IsVisible,
	}
	for _, c := range p.Components {
		cd := ComponentDraft{Kind: c.Kind, Quantity: formatNumber(c.Quantity), Unit: c.Unit}
		switch {
		case c.IngredientID != nil:
			cd.RefID = *c.IngredientID
		case c.SemiFinishedID != nil:
			cd.RefID = *c.SemiFinishedID
		default:
			// source was deleted; the line cannot be re-saved
			continue
		}
		d.Components = append(d.Components, cd)
	}
	return d
}
