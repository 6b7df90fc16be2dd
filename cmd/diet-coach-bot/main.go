package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diet-coach-bot/internal/cache"
	"diet-coach-bot/internal/config"
	"diet-coach-bot/internal/database"
	"diet-coach-bot/internal/dietapi"
	"diet-coach-bot/internal/telegram"

	"github.com/gorilla/mux"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize the local session store
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessions := telegram.NewSessionRepository(db)

	cacheStore, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// 3. Initialize the diet API gateway client
	dietClient := dietapi.NewClient(cfg.DietAPIURL, nil)

	// 4. Initialize the Telegram Bot
	bot, err := telegram.NewBot(cfg, dietClient, sessions, cacheStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 5. Start Server with Graceful Shutdown
	router := mux.NewRouter()
	bot.RegisterHandlers(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Diet Coach Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
