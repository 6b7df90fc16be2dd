package dietapi

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day as the backend serializes it (YYYY-MM-DD).
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

// User is the account profile returned by /register and /users/{id}.
type User struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult tells the client where to go next: users without a BMI record
// are redirected to "BMICalculator", everyone else to "HomeScreen".
type LoginResult struct {
	UserID     int    `json:"user_id"`
	RedirectTo string `json:"redirect_to"`
	Message    string `json:"message"`
}

// Redirect targets returned in LoginResult.RedirectTo.
const (
	RedirectBMICalculator = "BMICalculator"
	RedirectHomeScreen    = "HomeScreen"
)

// BMICreate is the BMI submission payload. Height is in meters; the caller
// converts from centimeters before submitting.
type BMICreate struct {
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	UserID int     `json:"user_id"`
}

// Recommendation is the diet plan attached to a BMI record.
type Recommendation struct {
	DailyCalories int    `json:"daily_calories"`
	Plan          string `json:"plan"`
}

// BMIOwner is the slice of the user profile embedded in a BMI record.
type BMIOwner struct {
	Firstname string `json:"firstname"`
}

// BMIRecord is the server-computed BMI entry. The bmi value is always the
// server's; the client only displays it.
type BMIRecord struct {
	BMIID          int            `json:"bmi_id"`
	Height         float64        `json:"height"`
	Weight         float64        `json:"weight"`
	BMI            float64        `json:"bmi"`
	User           BMIOwner       `json:"user"`
	Recommendation Recommendation `json:"recommendation"`
}

// FilteredFood is a food entry already screened against the user's dietary
// preferences. Field names follow the backend wire format.
type FilteredFood struct {
	FilteredID int     `json:"filtered_id"`
	FoodName   string  `json:"food_name"`
	Calories   int     `json:"calories"`
	Type       string  `json:"type"`
	Grams      int     `json:"grams"`
	Category   string  `json:"categories"`
	MealType   string  `json:"mealtype"`
	Carbs      int     `json:"carbs"`
	Protein    int     `json:"protein"`
	Fats       int     `json:"fats"`
	RecipeLink *string `json:"recipe_link"`
}

// NewRecord is the free-form consumption payload for /add-record.
type NewRecord struct {
	UserID     int       `json:"user_id"`
	FoodName   string    `json:"food_name"`
	Type       string    `json:"type"`
	Carbs      int       `json:"carbs"`
	Protein    int       `json:"protein"`
	Fats       int       `json:"fats"`
	Calorie    int       `json:"calorie"`
	Grams      int       `json:"grams"`
	MealType   string    `json:"meal_type"`
	Category   string    `json:"category"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// Record is a stored consumption entry. FilteredID is nil for free-form
// records added outside the filtered list.
type Record struct {
	RecordID   int       `json:"record_id"`
	UserID     int       `json:"user_id"`
	FilteredID *int      `json:"filtered_id"`
	FoodName   string    `json:"food_name"`
	Type       string    `json:"type"`
	Carbs      float64   `json:"carbs"`
	Protein    float64   `json:"protein"`
	Fats       float64   `json:"fats"`
	Calorie    int       `json:"calorie"`
	Grams      int       `json:"grams"`
	MealType   string    `json:"meal_type"`
	Category   string    `json:"category"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// DailyCaloriesInfo carries the recommended budget alongside progress rows.
type DailyCaloriesInfo struct {
	DailyCalories int `json:"daily_calories"`
}

// Progress is the server-computed calorie total for one day.
type Progress struct {
	ProgressID    int               `json:"progress_id"`
	UserID        int               `json:"user_id"`
	FilteredID    int               `json:"filtered_id"`
	TotalCalories int               `json:"total_calories"`
	Date          Date              `json:"date"`
	BMI           DailyCaloriesInfo `json:"bmi"`
}

// DailyCalories is one point of the calories-per-day series.
type DailyCalories struct {
	Date          Date `json:"date"`
	TotalCalories int  `json:"total_calories"`
}
