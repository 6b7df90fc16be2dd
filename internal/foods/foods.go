// Package foods holds the pure transforms every browsing screen applies to
// an already-fetched filtered-food list: grouping, meal-type filtering, and
// the daily calorie-budget guard.
package foods

import (
	"strings"

	"diet-coach-bot/internal/dietapi"
)

// MealTypeAll matches every meal type in FilterByMealType.
const MealTypeAll = "All"

// GroupByCategory partitions items into a category → items mapping, keeping
// the original relative order within each group.
func GroupByCategory(items []dietapi.FilteredFood) map[string][]dietapi.FilteredFood {
	groups := make(map[string][]dietapi.FilteredFood)
	for _, item := range items {
		groups[item.Category] = append(groups[item.Category], item)
	}
	return groups
}

// Categories returns the category names in order of first appearance, so a
// grouped list can be rendered (and flattened) deterministically.
func Categories(items []dietapi.FilteredFood) []string {
	var order []string
	seen := make(map[string]bool)
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			order = append(order, item.Category)
		}
	}
	return order
}

// Flatten concatenates groups back into one list following the given
// category order.
func Flatten(groups map[string][]dietapi.FilteredFood, order []string) []dietapi.FilteredFood {
	var out []dietapi.FilteredFood
	for _, category := range order {
		out = append(out, groups[category]...)
	}
	return out
}

// FilterByMealType keeps items whose meal type matches, case-insensitively.
// MealTypeAll passes everything through.
func FilterByMealType(items []dietapi.FilteredFood, mealType string) []dietapi.FilteredFood {
	if mealType == MealTypeAll || mealType == "" {
		return items
	}
	var out []dietapi.FilteredFood
	for _, item := range items {
		if strings.EqualFold(item.MealType, mealType) {
			out = append(out, item)
		}
	}
	return out
}

// LowCalorieAlternatives returns items strictly under the threshold, offered
// when a consumption would blow the daily budget.
func LowCalorieAlternatives(items []dietapi.FilteredFood, threshold int) []dietapi.FilteredFood {
	var out []dietapi.FilteredFood
	for _, item := range items {
		if item.Calories < threshold {
			out = append(out, item)
		}
	}
	return out
}

// ExceedsBudget reports whether adding the given calories to the consumed
// total would push past the daily limit. A zero or negative limit means no
// budget is known and nothing is blocked.
func ExceedsBudget(consumed, add, limit int) bool {
	if limit <= 0 {
		return false
	}
	return consumed+add > limit
}
