package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Session is the persisted conversation position for one chat. UserID is the
// diet API account id; zero means not logged in.
type Session struct {
	ChatID      int64
	UserID      int
	Screen      string
	ContextData string
	UpdatedAt   time.Time
}

// ScreenContext holds the in-progress input for the current screen, stored
// as JSON in the context_data column.
type ScreenContext struct {
	// Login / registration accumulation. The password only lives here for
	// the few messages between prompt and submission and is cleared after.
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Age       int    `json:"age,omitempty"`

	// BMI entry.
	HeightCm float64 `json:"height_cm,omitempty"`

	// Browsing state.
	MealType          string `json:"meal_type,omitempty"`
	DailyCalories     int    `json:"daily_calories,omitempty"`
	PendingFilteredID int    `json:"pending_filtered_id,omitempty"`
}

// GetContextData unmarshals the context_data JSON field.
func (s *Session) GetContextData() (ScreenContext, error) {
	var data ScreenContext
	if s.ContextData == "" {
		return data, nil
	}
	err := json.Unmarshal([]byte(s.ContextData), &data)
	return data, err
}

// SessionRepository provides access to session persistence operations.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the session for a chat, or nil when none exists.
func (sr *SessionRepository) Get(ctx context.Context, chatID int64) (*Session, error) {
	row := sr.db.QueryRowContext(ctx,
		`SELECT chat_id, user_id, screen, context_data, updated_at FROM sessions WHERE chat_id = ?`,
		chatID)

	var s Session
	if err := row.Scan(&s.ChatID, &s.UserID, &s.Screen, &s.ContextData, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Put upserts the session for a chat, replacing screen and context wholesale.
func (sr *SessionRepository) Put(ctx context.Context, chatID int64, userID int, screen string, data ScreenContext) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}

	_, err = sr.db.ExecContext(ctx,
		`INSERT INTO sessions (chat_id, user_id, screen, context_data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   user_id = excluded.user_id,
		   screen = excluded.screen,
		   context_data = excluded.context_data,
		   updated_at = excluded.updated_at`,
		chatID, userID, screen, string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete removes a chat's session. Used on /logout.
func (sr *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	if _, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
