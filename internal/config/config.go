package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DatabasePath  string
	MigrationsURL string

	ResendAPIKey string
	EmailFrom    string

	TelegramToken string
	// BroadcastChatID receives tournament-wide announcements. Zero disables them.
	BroadcastChatID int64

	AllowedOrigins []string
}

// Load reads configuration from the environment, after loading a .env file if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		DatabasePath:   getenv("DATABASE_PATH", "courtside.db"),
		MigrationsURL:  getenv("MIGRATIONS_URL", "file://migrations"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		EmailFrom:      getenv("EMAIL_FROM", "Courtside <noreply@courtside.local>"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		AllowedOrigins: utils.SplitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	cfg.Port = port

	if raw := os.Getenv("TELEGRAM_BROADCAST_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_BROADCAST_CHAT_ID: %w", err)
		}
		cfg.BroadcastChatID = chatID
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
