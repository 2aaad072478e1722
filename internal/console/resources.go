package console

import "fodi-backend/internal/adminclient"

type Ingredients struct {
	Client   *adminclient.Client
	Category string
}

func (r Ingredients) List() ([]adminclient.Ingredient, error) {
	return r.Client.ListIngredients(r.Category)
}

func (r Ingredients) Create(d IngredientDraft) (adminclient.Ingredient, error) {
	in, err := d.Input()
	if err != nil {
		return adminclient.Ingredient{}, err
	}
	return r.Client.CreateIngredient(in)
}

func (r Ingredients) Update(rec adminclient.Ingredient, d IngredientDraft) (adminclient.Ingredient, error) {
	in, err := d.UpdateInput()
	if err != nil {
		return adminclient.Ingredient{}, err
	}
	return r.Client.UpdateIngredient(rec.ID, in)
}

func (r Ingredients) Delete(rec adminclient.Ingredient) error {
	return r.Client.DeleteIngredient(rec.ID)
}

func (Ingredients) EmptyDraft() IngredientDraft { return IngredientDraft{Unit: "kg"} }

func (Ingredients) DraftFrom(rec adminclient.Ingredient) IngredientDraft {
	return IngredientDraftFrom(rec)
}

func (Ingredients) Key(rec adminclient.Ingredient) uint { return rec.ID }

type SemiFinishedGoods struct {
	Client          *adminclient.Client
	IncludeArchived bool
}

func (r SemiFinishedGoods) List() ([]adminclient.SemiFinished, error) {
	return r.Client.ListSemiFinished(r.IncludeArchived)
}

func (r SemiFinishedGoods) Create(d SemiFinishedDraft) (adminclient.SemiFinished, error) {
	in, err := d.Input()
	if err != nil {
		return adminclient.SemiFinished{}, err
	}
	return r.Client.CreateSemiFinished(in)
}

func (r SemiFinishedGoods) Update(rec adminclient.SemiFinished, d SemiFinishedDraft) (adminclient.SemiFinished, error) {
	in, err := d.UpdateInput()
	if err != nil {
		return adminclient.SemiFinished{}, err
	}
	return r.Client.UpdateSemiFinished(rec.ID, in)
}

func (r SemiFinishedGoods) Delete(rec adminclient.SemiFinished) error {
	return r.Client.DeleteSemiFinished(rec.ID)
}

func (SemiFinishedGoods) EmptyDraft() SemiFinishedDraft {
	return SemiFinishedDraft{OutputUnit: "g", IsVisible: true}
}

func (SemiFinishedGoods) DraftFrom(rec adminclient.SemiFinished) SemiFinishedDraft {
	return SemiFinishedDraftFrom(rec)
}

func (SemiFinishedGoods) Key(rec adminclient.SemiFinished) uint { return rec.ID }

type Products struct {
	Client   *adminclient.Client
	Category string
}

func (r Products) List() ([]adminclient.Product, error) {
	return r.Client.ListProducts(r.Category)
}

func (r Products) Create(d ProductDraft) (adminclient.Product, error) {
	in, err := d.Input()
	if err != nil {
		return adminclient.Product{}, err
	}
	return r.Client.CreateProduct(in)
}

func (r Products) Update(rec adminclient.Product, d ProductDraft) (adminclient.Product, error) {
	in, err := d.UpdateInput()
	if err != nil {
		return adminclient.Product{}, err
	}
	return r.Client.UpdateProduct(rec.ID, in)
}

func (r Products) Delete(rec adminclient.Product) error {
	return r.Client.DeleteProduct(rec.ID)
}

func (Products) EmptyDraft() ProductDraft { return ProductDraft{IsVisible: true} }

func (Products) DraftFrom(rec adminclient.Product) ProductDraft { return ProductDraftFrom(rec) }

func (Products) Key(rec adminclient.Product) uint { return rec.ID }

// Quote prices the draft's composition without saving it.
func (r Products) Quote(d ProductDraft, markup *float64) (adminclient.Quote, error) {
	comps, err := d.ComponentInputs()
	if err != nil {
		return adminclient.Quote{}, err
	}
	return r.Client.QuoteProduct(comps, markup)
}

func NewIngredientsPage(c *adminclient.Client, category string) *Page[adminclient.Ingredient, IngredientDraft] {
	return NewPage[adminclient.Ingredient, IngredientDraft](Ingredients{Client: c, Category: category})
}

func NewSemiFinishedPage(c *adminclient.Client, includeArchived bool) *Page[adminclient.SemiFinished, SemiFinishedDraft] {
	return NewPage[adminclient.SemiFinished, SemiFinishedDraft](SemiFinishedGoods{Client: c, IncludeArchived: includeArchived})
}

func NewProductsPage(c *adminclient.Client, category string) *Page[adminclient.Product, ProductDraft] {
	return NewPage[adminclient.Product, ProductDraft](Products{Client: c, Category: category})
}
