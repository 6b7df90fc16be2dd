// Package dietapi is a typed client for the diet-tracker backend. Each method
// is a single request/response mapping with no retries and no caching; every
// failure is surfaced as an *APIError.
package dietapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Client is the gateway to the remote diet-tracker API.
type Client interface {
	Register(ctx context.Context, user UserCreate) (*User, error)
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	GetUserDetails(ctx context.Context, userID int) (*User, error)

	CreateBMI(ctx context.Context, bmi BMICreate) (*BMIRecord, error)
	GetBMIRecord(ctx context.Context, userID int) (*BMIRecord, error)
	UpdateWeight(ctx context.Context, userID int, weight float64) (*BMIRecord, error)
	GetRecommendation(ctx context.Context, bmi float64) (*Recommendation, error)

	FilterFood(ctx context.Context, userID int, prefs map[string]bool) ([]FilteredFood, error)
	GetFilteredFoods(ctx context.Context, userID int) ([]FilteredFood, error)

	RecordConsumption(ctx context.Context, userID, filteredID int) (*Record, error)
	AddRecord(ctx context.Context, record NewRecord) (*Record, error)
	GetUserRecords(ctx context.Context, userID int) ([]Record, error)

	UpdateProgress(ctx context.Context, userID, filteredID int) (*Progress, error)
	GetProgressForUserToday(ctx context.Context, userID int) (*Progress, error)
	GetProgressByDateRange(ctx context.Context, userID int, start, end Date) ([]Progress, error)
	GetAllProgressForUser(ctx context.Context, userID int) ([]Progress, error)
	GetCaloriesPerDay(ctx context.Context, userID int, start, end Date) ([]DailyCalories, error)
}

type httpClient struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a gateway client against the given base URL. A nil
// http.Client falls back to http.DefaultClient, which carries no timeout;
// callers bound requests through the context.
func NewClient(baseURL string, client *http.Client) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:  client,
		baseURL: baseURL,
	}
}

// detailResponse is the error body shape the backend uses for failures.
type detailResponse struct {
	Detail string `json:"detail"`
}

// do issues one request and decodes a 2xx body into out. Any transport
// failure or non-2xx status becomes an *APIError carrying the server's
// detail message when present, else the operation's fallback message.
func (c *httpClient) do(ctx context.Context, op, method, path string, body, out any, fallback string) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Op: op, Fallback: fallback, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail detailResponse
		json.NewDecoder(resp.Body).Decode(&detail)
		return &APIError{Op: op, Status: resp.StatusCode, Detail: detail.Detail, Fallback: fallback}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *httpClient) Register(ctx context.Context, user UserCreate) (*User, error) {
	var created User
	if err := c.do(ctx, "register", http.MethodPost, "/register", user, &created, "Registration failed"); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *httpClient) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/login", creds, &result, "Login failed"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) GetUserDetails(ctx context.Context, userID int) (*User, error) {
	var user User
	path := fmt.Sprintf("/users/%d", userID)
	if err := c.do(ctx, "getUserDetails", http.MethodGet, path, nil, &user, "Failed to fetch user details"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *httpClient) CreateBMI(ctx context.Context, bmi BMICreate) (*BMIRecord, error) {
	var record BMIRecord
	if err := c.do(ctx, "createBmi", http.MethodPost, "/bmi", bmi, &record, "BMI calculation failed"); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *httpClient) GetBMIRecord(ctx context.Context, userID int) (*BMIRecord, error) {
	var record BMIRecord
	path := fmt.Sprintf("/bmi/user/%d", userID)
	if err := c.do(ctx, "getBmiRecord", http.MethodGet, path, nil, &record, "Failed to fetch BMI record"); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *httpClient) UpdateWeight(ctx context.Context, userID int, weight float64) (*BMIRecord, error) {
	var record BMIRecord
	path := fmt.Sprintf("/bmi/user/%d/update-weight", userID)
	body := map[string]float64{"weight": weight}
	if err := c.do(ctx, "updateWeight", http.MethodPut, path, body, &record, "Failed to update weight"); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *httpClient) GetRecommendation(ctx context.Context, bmi float64) (*Recommendation, error) {
	var rec Recommendation
	path := fmt.Sprintf("/recommendation?bmi=%s", url.QueryEscape(fmt.Sprintf("%g", bmi)))
	if err := c.do(ctx, "getRecommendation", http.MethodPost, path, nil, &rec, "Failed to fetch recommendation"); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *httpClient) FilterFood(ctx context.Context, userID int, prefs map[string]bool) ([]FilteredFood, error) {
	var foods []FilteredFood
	path := fmt.Sprintf("/filter-foods/%d", userID)
	if err := c.do(ctx, "filterFood", http.MethodPost, path, prefs, &foods, "Failed to filter foods"); err != nil {
		return nil, err
	}
	return foods, nil
}

func (c *httpClient) GetFilteredFoods(ctx context.Context, userID int) ([]FilteredFood, error) {
	var foods []FilteredFood
	path := fmt.Sprintf("/filtered-foods/%d", userID)
	if err := c.do(ctx, "getFilteredFoods", http.MethodGet, path, nil, &foods, "Failed to fetch filtered foods"); err != nil {
		return nil, err
	}
	return foods, nil
}

func (c *httpClient) RecordConsumption(ctx context.Context, userID, filteredID int) (*Record, error) {
	var record Record
	body := map[string]int{"user_id": userID, "filtered_id": filteredID}
	if err := c.do(ctx, "recordConsumption", http.MethodPost, "/record-consumption", body, &record, "Failed to record consumption"); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *httpClient) AddRecord(ctx context.Context, record NewRecord) (*Record, error) {
	var created Record
	if err := c.do(ctx, "addRecord", http.MethodPost, "/add-record", record, &created, "Failed to add record"); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *httpClient) GetUserRecords(ctx context.Context, userID int) ([]Record, error) {
	var records []Record
	path := fmt.Sprintf("/records/%d", userID)
	if err := c.do(ctx, "getUserRecords", http.MethodGet, path, nil, &records, "Failed to fetch user records"); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *httpClient) UpdateProgress(ctx context.Context, userID, filteredID int) (*Progress, error) {
	var progress Progress
	path := fmt.Sprintf("/progress/%d/update?filtered_id=%d", userID, filteredID)
	if err := c.do(ctx, "updateProgress", http.MethodPost, path, nil, &progress, "Failed to update progress"); err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetProgressForUserToday fetches today's total. A 404 means no calories have
// been consumed yet and is a valid empty result, not an error; every other
// non-2xx status fails like the rest of the operations.
func (c *httpClient) GetProgressForUserToday(ctx context.Context, userID int) (*Progress, error) {
	var progress Progress
	path := fmt.Sprintf("/progress/%d/today", userID)
	err := c.do(ctx, "getProgressForUserToday", http.MethodGet, path, nil, &progress, "Failed to fetch today's progress")
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (c *httpClient) GetProgressByDateRange(ctx context.Context, userID int, start, end Date) ([]Progress, error) {
	var progress []Progress
	path := fmt.Sprintf("/progress/%d/range?start=%s&end=%s", userID, start, end)
	if err := c.do(ctx, "getProgressByDateRange", http.MethodGet, path, nil, &progress, "Failed to fetch progress by date range"); err != nil {
		return nil, err
	}
	return progress, nil
}

func (c *httpClient) GetAllProgressForUser(ctx context.Context, userID int) ([]Progress, error) {
	var progress []Progress
	path := fmt.Sprintf("/progress/%d", userID)
	if err := c.do(ctx, "getAllProgressForUser", http.MethodGet, path, nil, &progress, "Failed to fetch all progress"); err != nil {
		return nil, err
	}
	return progress, nil
}

func (c *httpClient) GetCaloriesPerDay(ctx context.Context, userID int, start, end Date) ([]DailyCalories, error) {
	var series []DailyCalories
	path := fmt.Sprintf("/progress/%d/calories-per-day?start_date=%s&end_date=%s", userID, start, end)
	if err := c.do(ctx, "getCaloriesPerDay", http.MethodGet, path, nil, &series, "Failed to fetch calorie data per day"); err != nil {
		return nil, err
	}
	return series, nil
}
