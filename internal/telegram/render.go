package telegram

import (
	"fmt"
	"strings"

	"diet-coach-bot/internal/bmi"
	"diet-coach-bot/internal/dietapi"
	"diet-coach-bot/internal/foods"
)

func formatBMIRecord(record *dietapi.BMIRecord) string {
	var sb strings.Builder
	sb.WriteString("📏 *Your BMI*\n\n")
	sb.WriteString(fmt.Sprintf("Hello, %s!\n", record.User.Firstname))
	sb.WriteString(fmt.Sprintf("BMI: *%.2f* (%s)\n", record.BMI, bmi.Category(record.BMI)))
	sb.WriteString(fmt.Sprintf("Height: %.2f m | Weight: %.1f kg\n", record.Height, record.Weight))
	sb.WriteString(fmt.Sprintf("Recommended Daily Calories: *%d kcal*\n", record.Recommendation.DailyCalories))
	if record.Recommendation.Plan != "" {
		sb.WriteString(fmt.Sprintf("Plan: _%s_\n", record.Recommendation.Plan))
	}
	return sb.String()
}

// formatFoodList renders foods grouped by category, in order of first
// appearance, optionally narrowed to one meal type.
func formatFoodList(items []dietapi.FilteredFood, mealType string) string {
	visible := foods.FilterByMealType(items, mealType)
	if len(visible) == 0 {
		return fmt.Sprintf("No foods found for *%s*.", mealType)
	}

	groups := foods.GroupByCategory(visible)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🥗 *Your Foods* (%s)\n", mealType))
	for _, category := range foods.Categories(visible) {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", category))
		for _, item := range groups[category] {
			sb.WriteString(fmt.Sprintf("• /food\\_%d %s — %d kcal (%dg, %s)\n",
				item.FilteredID, item.FoodName, item.Calories, item.Grams, item.MealType))
		}
	}
	sb.WriteString("\nTap a /food\\_ link to log a consumption.")
	return sb.String()
}

func formatProgress(progress *dietapi.Progress, dailyCalories int) string {
	total := 0
	if progress != nil {
		total = progress.TotalCalories
		if progress.BMI.DailyCalories > 0 {
			dailyCalories = progress.BMI.DailyCalories
		}
	}

	var sb strings.Builder
	sb.WriteString("📊 *Daily Progress*\n\n")
	if dailyCalories > 0 {
		pct := float64(total) / float64(dailyCalories) * 100
		sb.WriteString(fmt.Sprintf("Today: *%d / %d kcal* (%.1f%%)\n", total, dailyCalories, pct))
	} else {
		sb.WriteString(fmt.Sprintf("Today: *%d kcal*\n", total))
	}
	if progress == nil {
		sb.WriteString("_No calories consumed yet today._\n")
	}
	return sb.String()
}

func formatRecords(records []dietapi.Record) string {
	if len(records) == 0 {
		return "No recent food consumed."
	}

	// Last five, most recent last, mirroring the dashboard's recent list.
	start := 0
	if len(records) > 5 {
		start = len(records) - 5
	}

	var sb strings.Builder
	sb.WriteString("🍽 *Recent Foods Consumed*\n\n")
	for _, r := range records[start:] {
		sb.WriteString(fmt.Sprintf("• %s: %d kcal (%s, %s)\n",
			r.FoodName, r.Calorie, r.MealType, r.ConsumedAt.Format("Jan 2 15:04")))
	}
	return sb.String()
}

const chartWidth = 20

// formatCaloriesChart renders the per-day series as a text bar chart with a
// marker on days that crossed the daily limit.
func formatCaloriesChart(series []dietapi.DailyCalories, dailyCalories int) string {
	if len(series) == 0 {
		return "No calorie data for this period."
	}

	maxCalories := dailyCalories
	for _, point := range series {
		if point.TotalCalories > maxCalories {
			maxCalories = point.TotalCalories
		}
	}
	if maxCalories == 0 {
		maxCalories = 1
	}

	var sb strings.Builder
	sb.WriteString("📈 *Calories Per Day*\n\n")
	for _, point := range series {
		width := point.TotalCalories * chartWidth / maxCalories
		bar := strings.Repeat("█", width)
		marker := ""
		if dailyCalories > 0 && point.TotalCalories > dailyCalories {
			marker = " ⚠️"
		}
		sb.WriteString(fmt.Sprintf("`%s %-20s` %d%s\n", point.Date, bar, point.TotalCalories, marker))
	}
	if dailyCalories > 0 {
		sb.WriteString(fmt.Sprintf("\nDaily limit: %d kcal", dailyCalories))
	}
	return sb.String()
}

func formatLowCalorieSuggestions(foodName string, dailyCalories int, suggestions []dietapi.FilteredFood, threshold int) string {
	var sb strings.Builder
	sb.WriteString("⚠️ *Calorie Limit Reached*\n\n")
	sb.WriteString(fmt.Sprintf("Adding %s will exceed your daily calorie limit of %d kcal. Consider these options under %d calories.\n",
		foodName, dailyCalories, threshold))
	if len(suggestions) == 0 {
		sb.WriteString("\n_No low-calorie alternatives available right now._")
		return sb.String()
	}
	sb.WriteString("\n")
	for _, item := range suggestions {
		sb.WriteString(fmt.Sprintf("• /food\\_%d %s — %d kcal\n", item.FilteredID, item.FoodName, item.Calories))
	}
	return sb.String()
}

func formatQuestion(index, total int, prompt, illustration string) string {
	return fmt.Sprintf("%s *Question %d of %d*\n\n%s", illustration, index+1, total, prompt)
}
