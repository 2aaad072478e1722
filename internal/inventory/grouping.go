package inventory

import (
	"sort"
	"strings"

	"fodi-backend/internal/models"
)

// GroupedIngredient is a read-only view over every batch sharing a
// normalized name.
type GroupedIngredient struct {
	Key     string
	Name    string
	Unit    string
	Batches []models.Ingredient
}

func GroupKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GroupByName groups batches by normalized name. Groups keep the order in
// which their first batch appears; the group's display name and unit come
// from that first batch. Batches are ordered newest update first, ties keep
// input order.
func GroupByName(list []models.Ingredient) []GroupedIngredient {
	index := make(map[string]int)
	groups := make([]GroupedIngredient, 0)

	for _, ing := range list {
		key := GroupKey(ing.Name)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupedIngredient{
				Key:  key,
				Name: strings.TrimSpace(ing.Name),
				Unit: ing.Unit,
			})
		}
		groups[i].Batches = append(groups[i].Batches, ing)
	}

	for i := range groups {
		batches := groups[i].Batches
		sort.SliceStable(batches, func(a, b int) bool {
			return batches[a].UpdatedAt.After(batches[b].UpdatedAt)
		})
	}
	return groups
}

// FilterByCategory keeps groups where at least one batch carries the
// category. Matching groups are returned whole, with all their batches.
func FilterByCategory(groups []GroupedIngredient, category string) []GroupedIngredient {
	category = strings.TrimSpace(category)
	if category == "" {
		return groups
	}

	out := make([]GroupedIngredient, 0, len(groups))
	for _, g := range groups {
		for _, b := range g.Batches {
			if strings.EqualFold(strings.TrimSpace(b.Category), category) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// Search matches the query as a case-insensitive substring of name,
// category or supplier on the flat batch list.
func Search(list []models.Ingredient, query string) []models.Ingredient {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]models.Ingredient, 0)
	for _, ing := range list {
		if strings.Contains(strings.ToLower(ing.Name), q) ||
			strings.Contains(strings.ToLower(ing.Category), q) ||
			strings.Contains(strings.ToLower(ing.Supplier), q) {
			out = append(out, ing)
		}
	}
	return out
}
