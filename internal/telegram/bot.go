// Package telegram turns the diet tracker's screens into a chat
// conversation: registration and login, BMI entry, the dietary
// questionnaire, food browsing, consumption logging, and the progress
// dashboard. Each step collects input, calls the remote API, and renders the
// response as a message.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"diet-coach-bot/internal/cache"
	"diet-coach-bot/internal/config"
	"diet-coach-bot/internal/dietapi"
	"diet-coach-bot/internal/foods"
	"diet-coach-bot/internal/questionnaire"
	"diet-coach-bot/internal/recipe"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Conversation screens. The current screen is persisted per chat so a
// conversation survives bot restarts; questionnaire marks do not (the flow
// restarts from its first question instead).
const (
	screenLoginUsername    = "login_username"
	screenLoginPassword    = "login_password"
	screenRegisterUsername = "register_username"
	screenRegisterPassword = "register_password"
	screenRegisterFirst    = "register_firstname"
	screenRegisterLast     = "register_lastname"
	screenRegisterAge      = "register_age"
	screenBMIHeight        = "bmi_height"
	screenBMIWeight        = "bmi_weight"
	screenQuestionnaire    = "questionnaire"
	screenHome             = "home"
	screenWeightUpdate     = "weight_update"
)

// Bot wraps the Telegram API, the diet API gateway, and the per-chat state.
type Bot struct {
	api      *tgbotapi.BotAPI
	dietAPI  dietapi.Client
	sessions *SessionRepository
	cache    *cache.Store
	previews *recipe.Fetcher
	cfg      *config.Config

	// Questionnaire flows are volatile; a restart loses progress and the
	// intake starts over.
	mu    sync.Mutex
	flows map[int64]*questionnaire.Flow
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, dietAPI dietapi.Client, sessions *SessionRepository, cacheStore *cache.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:      api,
		dietAPI:  dietAPI,
		sessions: sessions,
		cache:    cacheStore,
		previews: recipe.NewFetcher(),
		cfg:      cfg,
		flows:    make(map[int64]*questionnaire.Flow),
	}, nil
}

// RegisterHandlers registers the webhook and health routes.
func (b *Bot) RegisterHandlers(router *mux.Router) {
	router.HandleFunc("/webhook", b.handleWebhook).Methods("POST")
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	reqID := uuid.NewString()[:8]

	if update.CallbackQuery != nil {
		if !b.isAllowed(update.CallbackQuery.From.ID) {
			log.Printf("[%s] ⚠️ Unauthorized callback from UserID: %d", reqID, update.CallbackQuery.From.ID)
			return
		}
		go b.processCallback(reqID, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("[%s] ⚠️ Unauthorized access attempt from UserID: %d (@%s)",
			reqID, update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(reqID, update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(reqID string, msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	log.Printf("[%s] Message from chat %d", reqID, chatID)

	sess, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		log.Printf("[%s] Session lookup failed: %v", reqID, err)
		b.send(chatID, "Something went wrong. Please try again.")
		return
	}

	switch {
	case text == "/start":
		b.handleStart(ctx, chatID, sess)
		return
	case text == "/login":
		b.setScreen(ctx, chatID, 0, screenLoginUsername, ScreenContext{})
		b.send(chatID, "Welcome back! What's your username?")
		return
	case text == "/register":
		b.setScreen(ctx, chatID, 0, screenRegisterUsername, ScreenContext{})
		b.send(chatID, "Let's create your account. Pick a username:")
		return
	case text == "/logout":
		b.handleLogout(ctx, chatID)
		return
	}

	// Everything below needs a session.
	if sess == nil {
		b.send(chatID, "Use /login or /register to get started.")
		return
	}

	if sess.UserID != 0 {
		switch {
		case text == "/foods":
			b.showFoods(ctx, chatID, sess, foods.MealTypeAll)
			return
		case text == "/progress":
			b.showProgress(ctx, chatID, sess)
			return
		case text == "/history":
			b.showHistory(ctx, chatID, sess)
			return
		case text == "/dashboard":
			b.showDashboard(ctx, chatID, sess)
			return
		case text == "/weight":
			sctx, _ := sess.GetContextData()
			b.setScreen(ctx, chatID, sess.UserID, screenWeightUpdate, sctx)
			b.send(chatID, "What's your current weight in kg?")
			return
		case text == "/questions":
			b.startQuestionnaire(ctx, chatID, sess.UserID)
			return
		case strings.HasPrefix(text, "/add"):
			b.handleAddRecord(ctx, chatID, sess, strings.TrimSpace(strings.TrimPrefix(text, "/add")))
			return
		case strings.HasPrefix(text, "/food_"):
			b.handleFoodSelection(ctx, chatID, sess, strings.TrimPrefix(text, "/food_"))
			return
		}
	}

	b.handleScreenInput(ctx, reqID, chatID, sess, text)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, sess *Session) {
	if sess != nil && sess.UserID != 0 {
		user, err := b.dietAPI.GetUserDetails(ctx, sess.UserID)
		if err == nil {
			b.send(chatID, fmt.Sprintf("Welcome back, %s! Use /foods, /progress or /dashboard.", user.Firstname))
			return
		}
		log.Printf("User lookup failed: %v", err)
	}
	b.send(chatID, "👋 Welcome to Diet Coach!\n\nUse /login if you have an account, or /register to create one.")
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) {
	if err := b.sessions.Delete(ctx, chatID); err != nil {
		log.Printf("Logout failed: %v", err)
	}
	b.mu.Lock()
	delete(b.flows, chatID)
	b.mu.Unlock()
	b.send(chatID, "You're logged out. Use /login to come back.")
}

// handleScreenInput feeds plain text into whichever form screen the chat is on.
func (b *Bot) handleScreenInput(ctx context.Context, reqID string, chatID int64, sess *Session, text string) {
	sctx, err := sess.GetContextData()
	if err != nil {
		log.Printf("[%s] Corrupt session context for chat %d: %v", reqID, chatID, err)
		sctx = ScreenContext{}
	}

	switch sess.Screen {
	case screenLoginUsername:
		sctx.Username = text
		b.setScreen(ctx, chatID, 0, screenLoginPassword, sctx)
		b.send(chatID, "And your password?")

	case screenLoginPassword:
		b.finishLogin(ctx, chatID, sctx.Username, text)

	case screenRegisterUsername:
		sctx.Username = text
		b.setScreen(ctx, chatID, 0, screenRegisterPassword, sctx)
		b.send(chatID, "Choose a password:")

	case screenRegisterPassword:
		sctx.Password = text
		b.setScreen(ctx, chatID, 0, screenRegisterFirst, sctx)
		b.send(chatID, "Your first name?")

	case screenRegisterFirst:
		sctx.Firstname = text
		b.setScreen(ctx, chatID, 0, screenRegisterLast, sctx)
		b.send(chatID, "Your last name?")

	case screenRegisterLast:
		sctx.Lastname = text
		b.setScreen(ctx, chatID, 0, screenRegisterAge, sctx)
		b.send(chatID, "How old are you?")

	case screenRegisterAge:
		age, err := strconv.Atoi(text)
		if err != nil || age <= 0 {
			b.send(chatID, "Please send your age as a number.")
			return
		}
		sctx.Age = age
		b.finishRegistration(ctx, chatID, sctx)

	case screenBMIHeight:
		height, err := strconv.ParseFloat(text, 64)
		if err != nil || height <= 0 {
			b.send(chatID, "Please send your height in centimeters, e.g. 170.")
			return
		}
		sctx.HeightCm = height
		b.setScreen(ctx, chatID, sess.UserID, screenBMIWeight, sctx)
		b.send(chatID, "And your weight in kg?")

	case screenBMIWeight:
		weight, err := strconv.ParseFloat(text, 64)
		if err != nil || weight <= 0 {
			b.send(chatID, "Please send your weight in kilograms, e.g. 70.")
			return
		}
		b.finishBMIEntry(ctx, chatID, sess.UserID, sctx, weight)

	case screenWeightUpdate:
		weight, err := strconv.ParseFloat(text, 64)
		if err != nil || weight <= 0 {
			b.send(chatID, "Please send your weight in kilograms, e.g. 70.")
			return
		}
		b.finishWeightUpdate(ctx, chatID, sess.UserID, sctx, weight)

	case screenQuestionnaire:
		b.send(chatID, "Please answer with the ✓ / ✗ buttons above.")

	default:
		b.send(chatID, "Use /foods, /progress, /history, /dashboard or /weight.")
	}
}

func (b *Bot) finishLogin(ctx context.Context, chatID int64, username, password string) {
	result, err := b.dietAPI.Login(ctx, dietapi.Credentials{Username: username, Password: password})
	if err != nil {
		b.sendError(chatID, err)
		b.setScreen(ctx, chatID, 0, screenLoginUsername, ScreenContext{})
		b.send(chatID, "Let's try again. What's your username?")
		return
	}

	if result.RedirectTo == dietapi.RedirectBMICalculator {
		b.setScreen(ctx, chatID, result.UserID, screenBMIHeight, ScreenContext{})
		b.send(chatID, "Logged in! Let's set up your BMI first.\nWhat's your height in cm?")
		return
	}

	b.setScreen(ctx, chatID, result.UserID, screenHome, ScreenContext{})
	b.showHome(ctx, chatID, result.UserID)
}

func (b *Bot) finishRegistration(ctx context.Context, chatID int64, sctx ScreenContext) {
	_, err := b.dietAPI.Register(ctx, dietapi.UserCreate{
		Username:  sctx.Username,
		Password:  sctx.Password,
		Firstname: sctx.Firstname,
		Lastname:  sctx.Lastname,
		Age:       sctx.Age,
	})
	if err != nil {
		b.sendError(chatID, err)
		b.setScreen(ctx, chatID, 0, screenRegisterUsername, ScreenContext{})
		b.send(chatID, "Let's try again. Pick a username:")
		return
	}

	// Log straight in to get the user id and redirect target.
	b.finishLogin(ctx, chatID, sctx.Username, sctx.Password)
}

func (b *Bot) finishBMIEntry(ctx context.Context, chatID int64, userID int, sctx ScreenContext, weightKg float64) {
	record, err := b.dietAPI.CreateBMI(ctx, dietapi.BMICreate{
		Height: sctx.HeightCm / 100.0, // backend expects meters
		Weight: weightKg,
		UserID: userID,
	})
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	sctx.DailyCalories = record.Recommendation.DailyCalories
	sctx.Password = ""
	b.setScreen(ctx, chatID, userID, screenQuestionnaire, sctx)
	b.cache.Set(cache.KeyDailyCalories, record.Recommendation.DailyCalories)

	b.sendMarkdown(chatID, formatBMIRecord(record))
	b.send(chatID, "Now a few questions about your diet so we can filter foods for you.")
	b.startQuestionnaire(ctx, chatID, userID)
}

func (b *Bot) finishWeightUpdate(ctx context.Context, chatID int64, userID int, sctx ScreenContext, weightKg float64) {
	if _, err := b.dietAPI.UpdateWeight(ctx, userID, weightKg); err != nil {
		b.sendError(chatID, err)
		return
	}

	// Re-fetch: the server recomputes bmi and the recommendation.
	record, err := b.dietAPI.GetBMIRecord(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	sctx.DailyCalories = record.Recommendation.DailyCalories
	b.setScreen(ctx, chatID, userID, screenHome, sctx)
	b.cache.Set(cache.KeyDailyCalories, record.Recommendation.DailyCalories)
	b.sendMarkdown(chatID, formatBMIRecord(record))
}

// --- Questionnaire ---

func (b *Bot) startQuestionnaire(ctx context.Context, chatID int64, userID int) {
	flow := questionnaire.NewFlow(questionnaire.DefaultQuestions())
	b.mu.Lock()
	b.flows[chatID] = flow
	b.mu.Unlock()

	sess, _ := b.sessions.Get(ctx, chatID)
	sctx := ScreenContext{}
	if sess != nil {
		sctx, _ = sess.GetContextData()
	}
	b.setScreen(ctx, chatID, userID, screenQuestionnaire, sctx)

	if flow.State() == questionnaire.StateSubmitting {
		b.submitQuestionnaire(ctx, chatID, userID, flow)
		return
	}
	b.sendQuestion(chatID, flow)
}

func (b *Bot) currentFlow(chatID int64) *questionnaire.Flow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flows[chatID]
}

func (b *Bot) sendQuestion(chatID int64, flow *questionnaire.Flow) {
	q, ok := flow.Current()
	if !ok {
		return
	}
	total := flow.Total()

	label := "Next"
	if flow.Index() == total-1 {
		label = "Finish"
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✓ Yes", "ans|yes"),
			tgbotapi.NewInlineKeyboardButtonData("✗ No", "ans|no"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label+" ➡️", "next"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, formatQuestion(flow.Index(), total, q.Prompt, q.Illustration))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	b.api.Send(msg)
}

func (b *Bot) processCallback(reqID string, query *tgbotapi.CallbackQuery) {
	// Telegram omits Message for callbacks on messages older than 48 hours;
	// a tap on such a stale keyboard cannot be routed to a chat.
	if query.Message == nil {
		log.Printf("[%s] Callback %s without a message, ignoring", reqID, query.ID)
		return
	}

	ctx := context.Background()
	chatID := query.Message.Chat.ID

	// Answer the callback to remove the spinner.
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	sess, err := b.sessions.Get(ctx, chatID)
	if err != nil || sess == nil {
		log.Printf("[%s] Callback without session for chat %d", reqID, chatID)
		b.send(chatID, "Use /login to get started.")
		return
	}

	action, arg, _ := strings.Cut(query.Data, "|")
	switch action {
	case "ans":
		flow := b.currentFlow(chatID)
		if flow == nil {
			b.send(chatID, "Let's restart the questionnaire.")
			b.startQuestionnaire(ctx, chatID, sess.UserID)
			return
		}
		feedback := flow.Mark(arg == "yes")
		if feedback != "" {
			b.send(chatID, feedback)
		}

	case "next":
		flow := b.currentFlow(chatID)
		if flow == nil {
			b.send(chatID, "Let's restart the questionnaire.")
			b.startQuestionnaire(ctx, chatID, sess.UserID)
			return
		}
		if err := flow.Next(); err != nil {
			b.send(chatID, "Please select an answer before proceeding.")
			return
		}
		if flow.State() == questionnaire.StateSubmitting {
			b.submitQuestionnaire(ctx, chatID, sess.UserID, flow)
			return
		}
		b.sendQuestion(chatID, flow)

	case "meal":
		b.showFoods(ctx, chatID, sess, arg)

	case "eat":
		filteredID, err := strconv.Atoi(arg)
		if err != nil {
			return
		}
		b.handleConfirmedConsumption(ctx, chatID, sess, filteredID)

	case "recipe":
		filteredID, err := strconv.Atoi(arg)
		if err != nil {
			return
		}
		b.showRecipe(ctx, chatID, sess, filteredID)

	case "cancel":
		b.send(chatID, "Okay, nothing recorded.")

	default:
		log.Printf("[%s] Unknown callback action %q", reqID, action)
	}
}

func (b *Bot) submitQuestionnaire(ctx context.Context, chatID int64, userID int, flow *questionnaire.Flow) {
	filtered, err := flow.Submit(ctx, b.dietAPI, userID)
	if err != nil {
		b.sendError(chatID, err)
		b.send(chatID, "Your answers are kept — use /questions ➡️ Finish to resubmit.")
		return
	}

	b.mu.Lock()
	delete(b.flows, chatID)
	b.mu.Unlock()

	sess, _ := b.sessions.Get(ctx, chatID)
	sctx := ScreenContext{}
	if sess != nil {
		sctx, _ = sess.GetContextData()
	}
	b.setScreen(ctx, chatID, userID, screenHome, sctx)

	b.send(chatID, fmt.Sprintf("✅ All set! %d foods match your preferences.", len(filtered)))
	b.sendFoodList(chatID, filtered, foods.MealTypeAll)
}

// --- Home / foods / consumption ---

func (b *Bot) showHome(ctx context.Context, chatID int64, userID int) {
	record, err := b.dietAPI.GetBMIRecord(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	sess, _ := b.sessions.Get(ctx, chatID)
	if sess != nil {
		sctx, _ := sess.GetContextData()
		sctx.DailyCalories = record.Recommendation.DailyCalories
		sctx.Password = ""
		b.setScreen(ctx, chatID, userID, screenHome, sctx)
	}

	b.sendMarkdown(chatID, formatBMIRecord(record))

	progress, err := b.dietAPI.GetProgressForUserToday(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendMarkdown(chatID, formatProgress(progress, record.Recommendation.DailyCalories))
	b.send(chatID, "Browse your foods with /foods.")
}

func (b *Bot) showFoods(ctx context.Context, chatID int64, sess *Session, mealType string) {
	filtered, err := b.dietAPI.GetFilteredFoods(ctx, sess.UserID)
	if err != nil {
		if dietapi.IsNotFound(err) {
			b.send(chatID, "No filtered foods yet — answer the /questions first.")
			return
		}
		b.sendError(chatID, err)
		return
	}

	sctx, _ := sess.GetContextData()
	sctx.MealType = mealType
	b.setScreen(ctx, chatID, sess.UserID, screenHome, sctx)

	b.sendFoodList(chatID, filtered, mealType)
}

func (b *Bot) sendFoodList(chatID int64, filtered []dietapi.FilteredFood, mealType string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All", "meal|All"),
			tgbotapi.NewInlineKeyboardButtonData("Breakfast", "meal|Breakfast"),
			tgbotapi.NewInlineKeyboardButtonData("Lunch", "meal|Lunch"),
			tgbotapi.NewInlineKeyboardButtonData("Dinner", "meal|Dinner"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, formatFoodList(filtered, mealType))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	b.api.Send(msg)
}

func (b *Bot) handleFoodSelection(ctx context.Context, chatID int64, sess *Session, rawID string) {
	filteredID, err := strconv.Atoi(rawID)
	if err != nil {
		b.send(chatID, "That food link doesn't look right.")
		return
	}

	food, _, err := b.lookupFood(ctx, sess.UserID, filteredID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if food == nil {
		b.send(chatID, "That food isn't in your filtered list.")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes", fmt.Sprintf("eat|%d", filteredID)),
			tgbotapi.NewInlineKeyboardButtonData("📖 Recipe", fmt.Sprintf("recipe|%d", filteredID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No", "cancel"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Are you going to eat %s (%d kcal)?", food.FoodName, food.Calories))
	msg.ReplyMarkup = keyboard
	b.api.Send(msg)
}

func (b *Bot) lookupFood(ctx context.Context, userID, filteredID int) (*dietapi.FilteredFood, []dietapi.FilteredFood, error) {
	filtered, err := b.dietAPI.GetFilteredFoods(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for i := range filtered {
		if filtered[i].FilteredID == filteredID {
			return &filtered[i], filtered, nil
		}
	}
	return nil, filtered, nil
}

func (b *Bot) handleConfirmedConsumption(ctx context.Context, chatID int64, sess *Session, filteredID int) {
	food, all, err := b.lookupFood(ctx, sess.UserID, filteredID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if food == nil {
		b.send(chatID, "That food isn't in your filtered list.")
		return
	}

	sctx, _ := sess.GetContextData()
	reply, err := b.consumeFood(ctx, sess.UserID, *food, all, sctx.DailyCalories)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendMarkdown(chatID, reply)
}

// consumeFood applies the calorie-budget guard and, when allowed, records
// the consumption and refreshes progress. Over budget it performs no write
// at all and answers with low-calorie alternatives instead.
func (b *Bot) consumeFood(ctx context.Context, userID int, food dietapi.FilteredFood, all []dietapi.FilteredFood, fallbackLimit int) (string, error) {
	progress, err := b.dietAPI.GetProgressForUserToday(ctx, userID)
	if err != nil {
		return "", err
	}

	total := 0
	limit := fallbackLimit
	if progress != nil {
		total = progress.TotalCalories
		if progress.BMI.DailyCalories > 0 {
			limit = progress.BMI.DailyCalories
		}
	}

	if foods.ExceedsBudget(total, food.Calories, limit) {
		suggestions := foods.LowCalorieAlternatives(all, b.cfg.LowCalorieThreshold)
		return formatLowCalorieSuggestions(food.FoodName, limit, suggestions, b.cfg.LowCalorieThreshold), nil
	}

	record, err := b.dietAPI.RecordConsumption(ctx, userID, food.FilteredID)
	if err != nil {
		return "", err
	}
	if _, err := b.dietAPI.UpdateProgress(ctx, userID, food.FilteredID); err != nil {
		return "", err
	}
	updated, err := b.dietAPI.GetProgressForUserToday(ctx, userID)
	if err != nil {
		return "", err
	}

	b.rememberConsumption(record, limit)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ %s has been recorded as consumed.\n\n", food.FoodName))
	sb.WriteString(formatProgress(updated, limit))
	return sb.String(), nil
}

// rememberConsumption appends to the passive cache the dashboard reads.
func (b *Bot) rememberConsumption(record *dietapi.Record, dailyCalories int) {
	var recent []dietapi.Record
	if _, err := b.cache.Get(cache.KeyFoods, &recent); err != nil {
		log.Printf("Cache read failed: %v", err)
	}
	recent = append(recent, *record)
	if err := b.cache.Set(cache.KeyFoods, recent); err != nil {
		log.Printf("Cache write failed: %v", err)
	}
	if dailyCalories > 0 {
		if err := b.cache.Set(cache.KeyDailyCalories, dailyCalories); err != nil {
			log.Printf("Cache write failed: %v", err)
		}
	}
}

// handleAddRecord logs a food that isn't in the filtered list, e.g.
// "/add Oatmeal 150". The backend folds it into today's progress itself.
func (b *Bot) handleAddRecord(ctx context.Context, chatID int64, sess *Session, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.send(chatID, "Usage: /add <food name> <kcal>")
		return
	}

	calories, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || calories <= 0 {
		b.send(chatID, "Usage: /add <food name> <kcal>")
		return
	}
	name := strings.Join(fields[:len(fields)-1], " ")

	record, err := b.dietAPI.AddRecord(ctx, dietapi.NewRecord{
		UserID:     sess.UserID,
		FoodName:   name,
		Type:       "custom",
		Calorie:    calories,
		MealType:   "Snack",
		Category:   "Custom",
		ConsumedAt: time.Now(),
	})
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	sctx, _ := sess.GetContextData()
	b.rememberConsumption(record, sctx.DailyCalories)

	progress, err := b.dietAPI.GetProgressForUserToday(ctx, sess.UserID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("✅ %s (%d kcal) added.\n\n%s",
		name, calories, formatProgress(progress, sctx.DailyCalories)))
}

func (b *Bot) showRecipe(ctx context.Context, chatID int64, sess *Session, filteredID int) {
	food, _, err := b.lookupFood(ctx, sess.UserID, filteredID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if food == nil || food.RecipeLink == nil || *food.RecipeLink == "" {
		b.send(chatID, "No recipe link available for this food.")
		return
	}

	preview, err := b.previews.FetchPreview(ctx, *food.RecipeLink)
	if err != nil {
		log.Printf("Recipe preview failed for %s: %v", *food.RecipeLink, err)
		b.send(chatID, fmt.Sprintf("Couldn't load a preview — open the recipe here: %s", *food.RecipeLink))
		return
	}

	b.sendMarkdown(chatID, fmt.Sprintf("📖 *%s*\n\n%s\n\n%s", preview.Title, preview.Summary, preview.URL))
}

// --- Progress views ---

func (b *Bot) showProgress(ctx context.Context, chatID int64, sess *Session) {
	progress, err := b.dietAPI.GetProgressForUserToday(ctx, sess.UserID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	sctx, _ := sess.GetContextData()
	b.sendMarkdown(chatID, formatProgress(progress, sctx.DailyCalories))
}

func (b *Bot) showHistory(ctx context.Context, chatID int64, sess *Session) {
	records, err := b.dietAPI.GetUserRecords(ctx, sess.UserID)
	if err != nil {
		if dietapi.IsNotFound(err) {
			b.send(chatID, "No recent food consumed.")
			return
		}
		b.sendError(chatID, err)
		return
	}
	b.sendMarkdown(chatID, formatRecords(records))
}

func (b *Bot) showDashboard(ctx context.Context, chatID int64, sess *Session) {
	end := dietapi.Date{Time: time.Now()}
	start := dietapi.Date{Time: end.AddDate(0, 0, -6)}

	series, err := b.dietAPI.GetCaloriesPerDay(ctx, sess.UserID, start, end)
	if err != nil {
		if dietapi.IsNotFound(err) {
			series = nil
		} else {
			b.sendError(chatID, err)
			return
		}
	}

	sctx, _ := sess.GetContextData()
	dailyCalories := sctx.DailyCalories
	if dailyCalories == 0 {
		// Fall back to the passive cache the way the dashboard screen does.
		b.cache.Get(cache.KeyDailyCalories, &dailyCalories)
	}

	b.sendMarkdown(chatID, formatCaloriesChart(series, dailyCalories))

	var recent []dietapi.Record
	if found, err := b.cache.Get(cache.KeyFoods, &recent); err == nil && found {
		b.sendMarkdown(chatID, formatRecords(recent))
	}
}

// --- Helpers ---

func (b *Bot) setScreen(ctx context.Context, chatID int64, userID int, screen string, sctx ScreenContext) {
	if err := b.sessions.Put(ctx, chatID, userID, screen, sctx); err != nil {
		log.Printf("Session save failed for chat %d: %v", chatID, err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Send failed for chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Send failed for chat %d: %v", chatID, err)
	}
}

// sendError surfaces a failure as a dismissable message; the conversation
// stays where it is so the user can simply retry.
func (b *Bot) sendError(chatID int64, err error) {
	log.Printf("API error for chat %d: %v", chatID, err)
	b.send(chatID, fmt.Sprintf("❌ %v", err))
}
