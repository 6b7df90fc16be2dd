package dietapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/login" {
				t.Errorf("Expected POST /login, got %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"user_id": 42, "redirect_to": "BMICalculator", "message": "Login successful, redirecting to BMICalculator to set up BMI"}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		result, err := client.Login(context.Background(), Credentials{Username: "anna", Password: "secret"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.UserID != 42 {
			t.Errorf("Expected user_id 42, got %d", result.UserID)
		}
		if result.RedirectTo != RedirectBMICalculator {
			t.Errorf("Expected redirect to BMICalculator, got %q", result.RedirectTo)
		}
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(w, `{"detail": "Invalid username or password"}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		_, err := client.Login(context.Background(), Credentials{Username: "anna", Password: "wrong"})
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if err.Error() != "Invalid username or password" {
			t.Errorf("Expected server detail message, got %q", err.Error())
		}
		if StatusOf(err) != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", StatusOf(err))
		}
	})
}

func TestRegisterFallbackMessage(t *testing.T) {
	// A non-2xx with no detail body must surface the fixed fallback string.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Register(context.Background(), UserCreate{Username: "anna"})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if err.Error() != "Registration failed" {
		t.Errorf("Expected fallback 'Registration failed', got %q", err.Error())
	}
}

func TestNetworkFailure(t *testing.T) {
	// Closed server: no response at all.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.GetBMIRecord(context.Background(), 1)
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if !IsNetwork(err) {
		t.Errorf("Expected a network-kind error, got %v", err)
	}
	if err.Error() != "Failed to fetch BMI record" {
		t.Errorf("Expected fallback message, got %q", err.Error())
	}
}

func TestGetProgressForUserToday(t *testing.T) {
	t.Run("NotFoundMeansEmpty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"detail": "No progress found for today."}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		progress, err := client.GetProgressForUserToday(context.Background(), 7)
		if err != nil {
			t.Fatalf("Expected 404 to be a valid empty result, got error %v", err)
		}
		if progress != nil {
			t.Fatalf("Expected nil progress, got %+v", progress)
		}
	})

	t.Run("OtherStatusIsError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, `{"detail": "database unavailable"}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		_, err := client.GetProgressForUserToday(context.Background(), 7)
		if err == nil {
			t.Fatal("Expected an error for 500, got nil")
		}
		if err.Error() != "database unavailable" {
			t.Errorf("Expected server detail message, got %q", err.Error())
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/progress/7/today" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"progress_id": 1, "user_id": 7, "filtered_id": 3, "total_calories": 850, "date": "2024-10-09", "bmi": {"daily_calories": 2000}}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		progress, err := client.GetProgressForUserToday(context.Background(), 7)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if progress.TotalCalories != 850 {
			t.Errorf("Expected 850 total calories, got %d", progress.TotalCalories)
		}
		if progress.BMI.DailyCalories != 2000 {
			t.Errorf("Expected daily budget 2000, got %d", progress.BMI.DailyCalories)
		}
		if progress.Date.String() != "2024-10-09" {
			t.Errorf("Expected date 2024-10-09, got %s", progress.Date)
		}
	})
}

func TestGetFilteredFoodsNotFoundIsError(t *testing.T) {
	// Only the today-progress operation treats 404 as empty.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"detail": "No filtered foods found for the given user ID."}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.GetFilteredFoods(context.Background(), 7)
	if err == nil {
		t.Fatal("Expected an error for 404, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func TestFilterFoodSendsPreferencePayload(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/filter-foods/42" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[{"filtered_id": 1, "food_name": "Tofu Bowl", "calories": 320, "type": "vegetarian", "grams": 250, "categories": "Plant Protein", "mealtype": "Lunch", "carbs": 30, "protein": 22, "fats": 9, "recipe_link": "https://recipes.test/tofu"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	foods, err := client.FilterFood(context.Background(), 42, map[string]bool{"pork": false})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotBody != `{"pork":false}` {
		t.Errorf("Unexpected request body %s", gotBody)
	}
	if len(foods) != 1 || foods[0].FoodName != "Tofu Bowl" {
		t.Fatalf("Unexpected foods %+v", foods)
	}
	if foods[0].Category != "Plant Protein" || foods[0].MealType != "Lunch" {
		t.Errorf("Category/mealtype not decoded: %+v", foods[0])
	}
	if foods[0].RecipeLink == nil || *foods[0].RecipeLink != "https://recipes.test/tofu" {
		t.Errorf("Recipe link not decoded: %+v", foods[0].RecipeLink)
	}
}

func TestUpdateProgressQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/progress/42/update" || r.URL.Query().Get("filtered_id") != "3" {
			t.Errorf("Unexpected request %s", r.URL.String())
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"progress_id": 9, "user_id": 42, "filtered_id": 3, "total_calories": 540, "date": "2024-10-10", "bmi": {"daily_calories": 1800}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	progress, err := client.UpdateProgress(context.Background(), 42, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if progress.TotalCalories != 540 {
		t.Errorf("Expected 540, got %d", progress.TotalCalories)
	}
}

func TestGetRecommendationSendsBMIAsQueryParam(t *testing.T) {
	// The backend reads bmi as a bare query parameter on this POST.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommendation" {
			t.Errorf("Expected POST /recommendation, got %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("bmi"); got != "27.5" {
			t.Errorf("Expected bmi=27.5, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"daily_calories": 1800, "plan": "Calorie deficit with high protein"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	rec, err := client.GetRecommendation(context.Background(), 27.5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.DailyCalories != 1800 || rec.Plan != "Calorie deficit with high protein" {
		t.Errorf("Unexpected recommendation %+v", rec)
	}
}

func TestGetUserRecordsNullFilteredID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[{"record_id": 1, "user_id": 42, "filtered_id": null, "food_name": "Oatmeal", "type": "grain", "carbs": 27.5, "protein": 5, "fats": 3, "calorie": 150, "grams": 40, "meal_type": "Breakfast", "category": "Grains", "consumed_at": "2024-10-09T08:00:00Z"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	records, err := client.GetUserRecords(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].FilteredID != nil {
		t.Errorf("Expected nil filtered_id for a free-form record, got %v", *records[0].FilteredID)
	}
	if records[0].Carbs != 27.5 {
		t.Errorf("Expected carbs 27.5, got %v", records[0].Carbs)
	}
}

func TestGetCaloriesPerDayRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2024-10-09" || q.Get("end_date") != "2024-10-17" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[{"date": "2024-10-09", "total_calories": 1200}, {"date": "2024-10-10", "total_calories": 1750}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	start := mustDate(t, "2024-10-09")
	end := mustDate(t, "2024-10-17")
	series, err := client.GetCaloriesPerDay(context.Background(), 42, start, end)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(series) != 2 || series[1].TotalCalories != 1750 {
		t.Fatalf("Unexpected series %+v", series)
	}
}

func TestAddRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/add-record" {
			t.Errorf("Expected POST /add-record, got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"record_id": 12, "user_id": 42, "filtered_id": null, "food_name": "Oatmeal", "type": "custom", "carbs": 0, "protein": 0, "fats": 0, "calorie": 150, "grams": 0, "meal_type": "Snack", "category": "Custom", "consumed_at": "2024-10-09T08:00:00Z"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	record, err := client.AddRecord(context.Background(), NewRecord{
		UserID:   42,
		FoodName: "Oatmeal",
		Calorie:  150,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.RecordID != 12 || record.FoodName != "Oatmeal" {
		t.Errorf("Unexpected record %+v", record)
	}
}

func TestGetProgressByDateRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/progress/42/range" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("start") != "2024-10-09" || q.Get("end") != "2024-10-17" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[{"progress_id": 1, "user_id": 42, "filtered_id": 3, "total_calories": 1200, "date": "2024-10-09", "bmi": {"daily_calories": 2000}}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	progress, err := client.GetProgressByDateRange(context.Background(), 42, mustDate(t, "2024-10-09"), mustDate(t, "2024-10-17"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(progress) != 1 || progress[0].TotalCalories != 1200 {
		t.Fatalf("Unexpected progress %+v", progress)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, nil)
	_, err := client.GetAllProgressForUser(ctx, 42)
	if err == nil {
		t.Fatal("Expected an error from a cancelled context, got nil")
	}
	if !IsNetwork(err) {
		t.Errorf("Cancellation should surface as a transport failure, got %v", err)
	}
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	var d Date
	if err := d.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}
