package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	DietAPIURL string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	DatabasePath string
	CacheDir     string
	Port         string

	// Foods under this many kcal are offered as alternatives when a
	// consumption would exceed the daily budget.
	LowCalorieThreshold int
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dietAPIURL := os.Getenv("DIET_API_URL")
	if dietAPIURL == "" {
		return nil, fmt.Errorf("DIET_API_URL environment variable not set")
	}

	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if telegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if telegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	allowedIDs, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/diet-coach.db"
	}

	cacheDir := os.Getenv("CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "data/cache"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	lowCalorieThreshold := 20
	if raw := os.Getenv("LOW_CALORIE_THRESHOLD"); raw != "" {
		lowCalorieThreshold, err = strconv.Atoi(raw)
		if err != nil || lowCalorieThreshold <= 0 {
			return nil, fmt.Errorf("invalid LOW_CALORIE_THRESHOLD: %q", raw)
		}
	}

	return &Config{
		DietAPIURL:             strings.TrimRight(dietAPIURL, "/"),
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
		DatabasePath:           databasePath,
		CacheDir:               cacheDir,
		Port:                   port,
		LowCalorieThreshold:    lowCalorieThreshold,
	}, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
