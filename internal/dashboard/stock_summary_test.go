package dashboard

import (
	"testing"
	"time"

	"fodi-backend/internal/models"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	three, thirty := 3, 30
	list := []models.Ingredient{
		{ID: 1, Name: "Лосось", Unit: "kg", Category: "fish", NetPricePerUnit: 1800, ShelfLifeDays: &three,
			CreatedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Рис", Unit: "g", Category: "grocery", NetPricePerUnit: 120, ShelfLifeDays: &thirty,
			CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "Соус", Unit: "ml", NetPricePerUnit: 400},
		{ID: 4, Name: "Тунец", Unit: "kg", Category: "fish", NetPricePerUnit: 2000},
	}
	stock := map[uint]float64{1: 2.5, 2: 5000, 3: 250}

	got := Summarize(list, stock, now, 3)

	// 2.5kg*1800 + 5000g*120/kg + 250ml*400/l
	if got.TotalValue != 5200 {
		t.Errorf("expected total 5200, got %v", got.TotalValue)
	}
	if len(got.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %+v", got.Categories)
	}
	if got.Categories[0].Category != "fish" || got.Categories[0].Value != 4500 || got.Categories[0].Batches != 1 {
		t.Errorf("unexpected first category %+v", got.Categories[0])
	}
	if got.Categories[2].Category != "Без категории" || got.Categories[2].Value != 100 {
		t.Errorf("unexpected last category %+v", got.Categories[2])
	}

	if len(got.Expiring) != 1 {
		t.Fatalf("expected 1 expiring batch, got %+v", got.Expiring)
	}
	e := got.Expiring[0]
	if e.ID != 1 || e.DaysLeft != 2 || e.ExpiresAt != "12.03.2026" {
		t.Errorf("unexpected expiring batch %+v", e)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, nil, time.Now(), 3)
	if got.TotalValue != 0 || len(got.Categories) != 0 || got.Expiring == nil {
		t.Errorf("unexpected summary %+v", got)
	}
}
