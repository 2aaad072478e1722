package inventory

import (
	"bytes"
	"strings"
	"testing"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestApplyIngredientRequest_Create(t *testing.T) {
	var ing models.Ingredient
	err := applyIngredientRequest(&ing, IngredientRequest{
		Name:         strPtr("  Лосось "),
		Unit:         strPtr("кг"),
		Brutto:       floatPtr(10),
		WastePercent: floatPtr(15),
		GrossPrice:   floatPtr(1000),
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ing.Name != "Лосось" || ing.Unit != "kg" {
		t.Errorf("unexpected name/unit %q %q", ing.Name, ing.Unit)
	}
	if ing.Netto != 8.5 || ing.PricePerUnit != 100 || ing.NetPrice != 850 {
		t.Errorf("unexpected derived values: %+v", ing)
	}
	if !strings.HasPrefix(ing.BatchNumber, "B-") || len(ing.BatchNumber) != 10 {
		t.Errorf("unexpected generated batch number %q", ing.BatchNumber)
	}
}

func TestApplyIngredientRequest_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		body IngredientRequest
	}{
		{"unknown unit", IngredientRequest{Name: strPtr("Соль"), Unit: strPtr("box"), Brutto: floatPtr(1)}},
		{"no brutto", IngredientRequest{Name: strPtr("Соль"), Unit: strPtr("kg")}},
		{"netto above brutto", IngredientRequest{Name: strPtr("Соль"), Unit: strPtr("kg"), Brutto: floatPtr(1), Netto: floatPtr(2)}},
		{"blank name", IngredientRequest{Name: strPtr("  "), Unit: strPtr("kg"), Brutto: floatPtr(1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ing models.Ingredient
			if err := applyIngredientRequest(&ing, tc.body, true); err == nil {
				t.Errorf("expected error, got %+v", ing)
			}
		})
	}
}

func TestApplyIngredientRequest_UpdateKeepsNetto(t *testing.T) {
	ing := models.Ingredient{Name: "Рис", Unit: "g", BatchNumber: "B-1", Brutto: 3, Netto: 2, WastePercent: 33.33}

	if err := applyIngredientRequest(&ing, IngredientRequest{Category: strPtr("rice")}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ing.Netto != 2 || ing.WastePercent != 33.33 || ing.Category != "rice" {
		t.Errorf("metadata update must not move netto: %+v", ing)
	}

	if err := applyIngredientRequest(&ing, IngredientRequest{Brutto: floatPtr(6)}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ing.Netto != 4 {
		t.Errorf("new brutto must keep waste percent, netto = %v", ing.Netto)
	}
	if ing.BatchNumber != "B-1" {
		t.Errorf("batch number must be kept, got %q", ing.BatchNumber)
	}
}

func TestNettoAdjustment(t *testing.T) {
	userID := uint(7)
	testCases := []struct {
		name      string
		req       IngredientRequest
		wantDelta float64
		wantMove  bool
	}{
		{"metadata only", IngredientRequest{Supplier: strPtr("Рыбторг")}, 0, false},
		{"netto lowered", IngredientRequest{Netto: floatPtr(1.5)}, -0.5, true},
		{"brutto raised keeps waste", IngredientRequest{Brutto: floatPtr(6)}, 2, true},
		{"same netto resent", IngredientRequest{Netto: floatPtr(2)}, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := models.Ingredient{ID: 3, Name: "Рис", Unit: "g", BatchNumber: "B-1", Brutto: 3, Netto: 2, WastePercent: 33.33}
			after := before
			if err := applyIngredientRequest(&after, tc.req, false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			mv, ok := nettoAdjustment(before, after, &userID)
			if ok != tc.wantMove {
				t.Fatalf("expected movement=%v, got %v", tc.wantMove, ok)
			}
			if !ok {
				return
			}
			if mv.Quantity != tc.wantDelta || mv.Type != models.MovementAdjustment {
				t.Errorf("unexpected movement %+v", mv)
			}
			if mv.IngredientID != 3 || mv.CreatedBy == nil || *mv.CreatedBy != userID {
				t.Errorf("movement must reference batch and user: %+v", mv)
			}
			if !strings.Contains(mv.Note, "B-1") {
				t.Errorf("note must name the batch, got %q", mv.Note)
			}
		})
	}
}

func TestBatchCreatedLog(t *testing.T) {
	user := &auth.SessionUser{ID: 2, Name: "Повар"}
	rows := [][]string{
		{"Лосось", "kg", "B-10", "", "", "10", "8.5"},
		{"Соль", "кг", "", "", "", "1,5"},
	}
	for i, row := range rows {
		req, err := ParseIngredientRow(row)
		if err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		var ing models.Ingredient
		if err := applyIngredientRequest(&ing, req, true); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		ing.ID = uint(i + 1)

		got := batchCreatedLog(user, ing)
		if got.Action != models.AuditActionCreate || got.EntityType != audit.EntityIngredient {
			t.Errorf("row %d: unexpected entry %+v", i, got)
		}
		if got.EntityID != ing.ID || got.UserID != 2 || got.UserName != "Повар" {
			t.Errorf("row %d: entry must reference batch and user: %+v", i, got)
		}
		if !strings.Contains(got.Description, ing.BatchNumber) || !strings.Contains(got.Description, ing.Name) {
			t.Errorf("row %d: description %q", i, got.Description)
		}
	}
}

func TestSignedDelta(t *testing.T) {
	testCases := []struct {
		typ     models.MovementType
		qty     float64
		want    float64
		wantErr bool
	}{
		{models.MovementAddition, 5, 5, false},
		{models.MovementAddition, -5, 5, false},
		{models.MovementRemoval, 5, -5, false},
		{models.MovementAdjustment, -2.5, -2.5, false},
		{models.MovementAdjustment, 0, 0, true},
		{models.MovementType("transfer"), 1, 0, true},
	}
	for _, tc := range testCases {
		got, err := SignedDelta(tc.typ, tc.qty)
		if (err != nil) != tc.wantErr {
			t.Errorf("SignedDelta(%s, %v) error = %v", tc.typ, tc.qty, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SignedDelta(%s, %v) = %v, want %v", tc.typ, tc.qty, got, tc.want)
		}
	}
}

func TestStockOf(t *testing.T) {
	movements := []models.StockMovement{{Quantity: 8.5}, {Quantity: -0.1}, {Quantity: -0.2}}
	if got := stockOf(movements); got != 8.2 {
		t.Errorf("expected 8.2, got %v", got)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	days := 3
	list := []models.Ingredient{{
		Name: "Лосось", Unit: "kg", BatchNumber: "B-42", Category: "fish", Supplier: "Nord",
		Brutto: 10, Netto: 8.5, WastePercent: 15, ShelfLifeDays: &days, GrossPrice: 1000,
		PricePerUnit: 100, NetPrice: 850,
	}}

	var buf bytes.Buffer
	if err := WriteIngredientsXLSX(&buf, list); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ingredientSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "Название" {
		t.Errorf("unexpected header %v", rows[0])
	}

	req, err := ParseIngredientRow(rows[1])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var ing models.Ingredient
	if err := applyIngredientRequest(&ing, req, true); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ing.Name != "Лосось" || ing.BatchNumber != "B-42" || ing.Netto != 8.5 || ing.NetPrice != 850 {
		t.Errorf("round trip mismatch: %+v", ing)
	}
	if ing.ShelfLifeDays == nil || *ing.ShelfLifeDays != 3 {
		t.Errorf("shelf life lost: %v", ing.ShelfLifeDays)
	}
}

func TestParseIngredientRow_Errors(t *testing.T) {
	testCases := []struct {
		name string
		row  []string
	}{
		{"missing name", []string{"", "kg"}},
		{"non-numeric brutto", []string{"Соль", "kg", "", "", "", "много"}},
		{"infinite brutto", []string{"Соль", "kg", "", "", "", "inf"}},
		{"NaN netto", []string{"Соль", "kg", "", "", "", "10", "NaN"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseIngredientRow(tc.row); err == nil {
				t.Errorf("expected error for row %q", tc.row)
			}
		})
	}
	req, err := ParseIngredientRow([]string{"Соль", "kg", "", "", "", "1,5"})
	if err != nil || req.Brutto == nil || *req.Brutto != 1.5 {
		t.Errorf("expected comma decimal to parse, got %v / %v", req.Brutto, err)
	}
}
