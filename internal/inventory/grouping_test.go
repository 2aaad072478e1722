package inventory

import (
	"testing"
	"time"

	"fodi-backend/internal/models"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func batch(id uint, name, category, supplier string, updatedHoursAgo int) models.Ingredient {
	return models.Ingredient{
		ID:        id,
		Name:      name,
		Unit:      "g",
		Category:  category,
		Supplier:  supplier,
		UpdatedAt: base.Add(-time.Duration(updatedHoursAgo) * time.Hour),
	}
}

func batchIDs(g GroupedIngredient) []uint {
	ids := make([]uint, 0, len(g.Batches))
	for _, b := range g.Batches {
		ids = append(ids, b.ID)
	}
	return ids
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGroupByName(t *testing.T) {
	list := []models.Ingredient{
		batch(1, "Лосось", "fish", "Nord", 5),
		batch(2, "Рис", "rice", "Asia Trade", 1),
		batch(3, " лосось ", "fish", "Baltic", 1),
		batch(4, "ЛОСОСЬ", "fish", "Nord", 5),
	}

	groups := GroupByName(list)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	salmon := groups[0]
	if salmon.Key != "лосось" || salmon.Name != "Лосось" || salmon.Unit != "g" {
		t.Errorf("unexpected group identity %q / %q / %q", salmon.Key, salmon.Name, salmon.Unit)
	}
	// newest first, ties (1 and 4) keep input order
	if got := batchIDs(salmon); !equalIDs(got, []uint{3, 1, 4}) {
		t.Errorf("expected batch order [3 1 4], got %v", got)
	}
	if groups[1].Name != "Рис" {
		t.Errorf("expected second group Рис, got %q", groups[1].Name)
	}
}

func TestGroupByName_Idempotent(t *testing.T) {
	list := []models.Ingredient{
		batch(1, "Лосось", "fish", "", 5),
		batch(2, "Нори", "seaweed", "", 2),
		batch(3, " лосось ", "fish", "", 1),
		batch(4, "нори", "seaweed", "", 7),
	}

	first := GroupByName(list)

	var flat []models.Ingredient
	for _, g := range first {
		flat = append(flat, g.Batches...)
	}
	second := GroupByName(flat)

	if len(first) != len(second) {
		t.Fatalf("group count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("group %d key changed: %q vs %q", i, first[i].Key, second[i].Key)
		}
		if !equalIDs(batchIDs(first[i]), batchIDs(second[i])) {
			t.Errorf("group %d order changed: %v vs %v", i, batchIDs(first[i]), batchIDs(second[i]))
		}
	}
}

func TestFilterByCategory_Existential(t *testing.T) {
	list := []models.Ingredient{
		batch(1, "Смесь", "fish", "", 1),
		batch(2, "Смесь", "rice", "", 2),
		batch(3, "Имбирь", "pickles", "", 3),
	}
	groups := GroupByName(list)

	for _, category := range []string{"fish", "rice", "FISH"} {
		got := FilterByCategory(groups, category)
		if len(got) != 1 {
			t.Fatalf("category %s: expected 1 group, got %d", category, len(got))
		}
		if !equalIDs(batchIDs(got[0]), []uint{1, 2}) {
			t.Errorf("category %s: expected all batches [1 2], got %v", category, batchIDs(got[0]))
		}
	}

	if got := FilterByCategory(groups, ""); len(got) != 2 {
		t.Errorf("empty category must keep all groups, got %d", len(got))
	}
	if got := FilterByCategory(groups, "dairy"); len(got) != 0 {
		t.Errorf("expected no groups for dairy, got %d", len(got))
	}
}

func TestSearch(t *testing.T) {
	list := []models.Ingredient{
		batch(1, "Лосось охлаждённый", "fish", "Nord", 1),
		batch(2, "Рис", "rice", "Asia Trade", 1),
		batch(3, "Соус унаги", "sauce", "NORDIC foods", 1),
	}

	testCases := []struct {
		query string
		want  []uint
	}{
		{"лосо", []uint{1}},
		{"RICE", []uint{2}},
		{"nord", []uint{1, 3}},
		{"  ", []uint{1, 2, 3}},
		{"tuna", []uint{}},
	}

	for _, tc := range testCases {
		got := Search(list, tc.query)
		ids := make([]uint, 0, len(got))
		for _, g := range got {
			ids = append(ids, g.ID)
		}
		if !equalIDs(ids, tc.want) {
			t.Errorf("Search(%q) = %v, want %v", tc.query, ids, tc.want)
		}
	}
}

func TestDistinct(t *testing.T) {
	got := Distinct([]string{"Рыба", " рыба", "", "Овощи", "РЫБА", "  ", "молочка"})
	want := []string{"молочка", "Овощи", "Рыба"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
