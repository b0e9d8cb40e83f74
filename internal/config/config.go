package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Port         string

	// Telegram Config
	TelegramBotToken   string
	TelegramWebhookURL string
	// TelegramUsers maps an allowed Telegram user ID to a honeyeat username.
	TelegramUsers   map[int64]string
	AdminTelegramID int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	dbPath := os.Getenv("HONEYEAT_DB_PATH")
	if dbPath == "" {
		dbPath = "data/honeyeat.db"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	users, err := parseTelegramUsers(os.Getenv("TELEGRAM_USERS"))
	if err != nil {
		return nil, err
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		adminID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", s, err)
		}
	}

	return &Config{
		DatabasePath:       dbPath,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogFormat:          os.Getenv("LOG_FORMAT"),
		Port:               port,
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramUsers:      users,
		AdminTelegramID:    adminID,
	}, nil
}

// ValidateBot checks the settings the Telegram bot cannot run without.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramUsers) == 0 {
		return fmt.Errorf("TELEGRAM_USERS environment variable not set")
	}
	return nil
}

// parseTelegramUsers reads "123:bf,456:gf".
func parseTelegramUsers(raw string) (map[int64]string, error) {
	users := make(map[int64]string)
	if strings.TrimSpace(raw) == "" {
		return users, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		idStr, name, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid TELEGRAM_USERS entry %q, expected <id>:<username>", pair)
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram user id %q: %w", idStr, err)
		}
		users[id] = name
	}
	return users, nil
}
